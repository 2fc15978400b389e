package ordercontroller

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/config"
	cartcontroller "github.com/storeline/storefront-api/controllers/cart"
	"github.com/storeline/storefront-api/errs"
	"github.com/storeline/storefront-api/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Product{},
		&models.Cart{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{TaxRate: 0.08, ShippingFee: 10.00}
}

func seedUser(t *testing.T, db *gorm.DB, uid string) *models.User {
	t.Helper()
	user := models.User{
		FirebaseUID: uid,
		FirstName:   "Test",
		LastName:    "User",
		Email:       uid + "@example.com",
		Role:        models.RoleCustomer,
		Active:      true,
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Cart{UserID: user.ID}).Error)
	return &user
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()
	category := models.Category{Name: "Electronics " + name, Slug: "electronics-" + name, Active: true}
	require.NoError(t, db.Create(&category).Error)
	product := models.Product{
		Name:          name,
		Slug:          name,
		Price:         price,
		StockQuantity: stock,
		SKU:           "SKU-" + name,
		Status:        models.ProductStatusActive,
		CategoryID:    category.ID,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func checkout() CheckoutInput {
	address := models.Address{
		Street: "1 Main St", City: "Springfield", State: "IL",
		Country: "US", PostalCode: "62701",
	}
	return CheckoutInput{
		PaymentMethod:   "credit_card",
		ShippingAddress: address,
		BillingAddress:  address,
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")

	_, err := Create(db, testConfig(), user.ID, checkout())
	require.ErrorIs(t, err, errs.ErrEmptyCart)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	require.Zero(t, count)
}

func TestCreateOrderTotalsAndSideEffects(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)

	_, err := cartcontroller.AddItem(db, user.ID, product.ID, 2)
	require.NoError(t, err)

	order, err := Create(db, testConfig(), user.ID, checkout())
	require.NoError(t, err)

	require.InDelta(t, 20.00, order.Subtotal, 1e-9)
	require.InDelta(t, 1.60, order.Tax, 1e-9)
	require.InDelta(t, 10.00, order.ShippingCost, 1e-9)
	require.InDelta(t, 31.60, order.TotalAmount, 1e-9)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	require.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	require.Equal(t, 3, fresh.StockQuantity)

	view, err := cartcontroller.GetCart(db, user.ID)
	require.NoError(t, err)
	require.Empty(t, view.Items)
	require.Zero(t, view.TotalAmount)
	require.Zero(t, view.TotalItems)
}

func TestCreateOrderFreezesSnapshotPrices(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)

	_, err := cartcontroller.AddItem(db, user.ID, product.ID, 1)
	require.NoError(t, err)

	// Catalog price changes between add-to-cart and checkout.
	require.NoError(t, db.Model(product).Update("price", 50.00).Error)

	order, err := Create(db, testConfig(), user.ID, checkout())
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	require.InDelta(t, 10.00, order.Items[0].UnitPrice, 1e-9)
	require.InDelta(t, 10.00, order.Items[0].TotalPrice, 1e-9)
	require.Equal(t, "widget", order.Items[0].ProductName)
	require.Equal(t, "SKU-widget", order.Items[0].ProductSKU)
}

func TestCreateOrderStaleCartRollsBack(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)

	_, err := cartcontroller.AddItem(db, user.ID, product.ID, 3)
	require.NoError(t, err)

	// Concurrent purchases drained the stock after the items were carted.
	require.NoError(t, db.Model(product).Update("stock_quantity", 1).Error)

	_, err = Create(db, testConfig(), user.ID, checkout())
	require.ErrorIs(t, err, errs.ErrOutOfStock)

	// Nothing persisted: no order, cart untouched, stock untouched.
	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	require.Zero(t, orders)

	view, err := cartcontroller.GetCart(db, user.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	require.Equal(t, 1, fresh.StockQuantity)
}

func TestCreateOrderExhaustingStockFlipsStatus(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 2)

	_, err := cartcontroller.AddItem(db, user.ID, product.ID, 2)
	require.NoError(t, err)
	_, err = Create(db, testConfig(), user.ID, checkout())
	require.NoError(t, err)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	require.Zero(t, fresh.StockQuantity)
	require.Equal(t, models.ProductStatusOutOfStock, fresh.Status)
}

func TestCancelRestoresStockOnce(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 2)

	_, err := cartcontroller.AddItem(db, user.ID, product.ID, 2)
	require.NoError(t, err)
	order, err := Create(db, testConfig(), user.ID, checkout())
	require.NoError(t, err)

	cancelled, err := Cancel(db, user.ID, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	require.Equal(t, 2, fresh.StockQuantity)
	require.Equal(t, models.ProductStatusActive, fresh.Status)

	// Second cancellation is rejected and must not restore stock again.
	_, err = Cancel(db, user.ID, order.ID)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	require.NoError(t, db.First(&fresh, product.ID).Error)
	require.Equal(t, 2, fresh.StockQuantity)
}

func TestCancelOwnershipAndTransitions(t *testing.T) {
	db := setupDB(t)
	owner := seedUser(t, db, "uid-owner")
	other := seedUser(t, db, "uid-other")
	product := seedProduct(t, db, "widget", 10.00, 5)

	_, err := cartcontroller.AddItem(db, owner.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := Create(db, testConfig(), owner.ID, checkout())
	require.NoError(t, err)

	_, err = Cancel(db, other.ID, order.ID)
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = UpdateStatus(db, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	_, err = Cancel(db, owner.ID, order.ID)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestUpdateStatusSideEffects(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)

	_, err := cartcontroller.AddItem(db, user.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := Create(db, testConfig(), user.ID, checkout())
	require.NoError(t, err)

	shipped, err := UpdateStatus(db, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	require.NotNil(t, shipped.ShippedAt)
	require.True(t, strings.HasPrefix(shipped.TrackingNumber, "TRK-"))

	delivered, err := UpdateStatus(db, order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)
}

func TestAdminCancellationRestoresStock(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 3)

	_, err := cartcontroller.AddItem(db, user.ID, product.ID, 3)
	require.NoError(t, err)
	order, err := Create(db, testConfig(), user.ID, checkout())
	require.NoError(t, err)

	_, err = UpdateStatus(db, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	require.Equal(t, 3, fresh.StockQuantity)
	require.Equal(t, models.ProductStatusActive, fresh.Status)

	// Cancelling an already-cancelled order again must not double-restore.
	_, err = UpdateStatus(db, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	require.NoError(t, db.First(&fresh, product.ID).Error)
	require.Equal(t, 3, fresh.StockQuantity)
}

func TestPaidPaymentConfirmsPendingOrder(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)

	_, err := cartcontroller.AddItem(db, user.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := Create(db, testConfig(), user.ID, checkout())
	require.NoError(t, err)

	updated, err := UpdatePaymentStatus(db, order.ID, models.PaymentStatusPaid)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	require.Equal(t, models.OrderStatusConfirmed, updated.Status)

	// Paying again once shipped leaves the order status alone.
	_, err = UpdateStatus(db, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	updated, err = UpdatePaymentStatus(db, order.ID, models.PaymentStatusPaid)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusShipped, updated.Status)
}

func TestCreateOrderRejectsUnknownPaymentMethod(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")

	input := checkout()
	input.PaymentMethod = "barter"
	_, err := Create(db, testConfig(), user.ID, input)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestOrderNumberFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number := GenerateOrderNumber()
		require.True(t, strings.HasPrefix(number, "ORD-"))
		require.False(t, seen[number], "duplicate order number %s", number)
		seen[number] = true
	}
}

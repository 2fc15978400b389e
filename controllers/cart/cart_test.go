package cartcontroller

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

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

func TestAddItemRecomputesAggregates(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	a := seedProduct(t, db, "widget", 10.00, 5)
	b := seedProduct(t, db, "gadget", 3.50, 10)

	_, err := AddItem(db, user.ID, a.ID, 2)
	require.NoError(t, err)
	view, err := AddItem(db, user.ID, b.ID, 3)
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	require.InDelta(t, 2*10.00+3*3.50, view.TotalAmount, 1e-9)
	require.Equal(t, 5, view.TotalItems)
}

func TestAddItemMergesDuplicateProduct(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)

	_, err := AddItem(db, user.ID, product.ID, 2)
	require.NoError(t, err)
	view, err := AddItem(db, user.ID, product.ID, 1)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	require.Equal(t, 3, view.Items[0].Quantity)
	require.Equal(t, 3, view.TotalItems)
}

func TestAddItemMergedQuantityExceedingStockFails(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 3)

	_, err := AddItem(db, user.ID, product.ID, 2)
	require.NoError(t, err)
	_, err = AddItem(db, user.ID, product.ID, 2)
	require.ErrorIs(t, err, errs.ErrOutOfStock)

	// The failed add must not have touched the cart.
	view, err := GetCart(db, user.ID)
	require.NoError(t, err)
	require.Equal(t, 2, view.TotalItems)
}

func TestAddItemInactiveOrMissingProduct(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)
	require.NoError(t, db.Model(product).Update("status", models.ProductStatusInactive).Error)

	_, err := AddItem(db, user.ID, product.ID, 1)
	require.ErrorIs(t, err, errs.ErrOutOfStock)

	_, err = AddItem(db, user.ID, 9999, 1)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateItemZeroQuantityRemovesLine(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)

	view, err := AddItem(db, user.ID, product.ID, 2)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	view, err = UpdateItem(db, user.ID, itemID, 0)
	require.NoError(t, err)
	require.Empty(t, view.Items)
	require.Zero(t, view.TotalItems)
	require.Zero(t, view.TotalAmount)
}

func TestUpdateItemValidatesAbsoluteQuantity(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 3)

	view, err := AddItem(db, user.ID, product.ID, 1)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	// 3 is an absolute quantity within stock, not an increment.
	view, err = UpdateItem(db, user.ID, itemID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, view.Items[0].Quantity)

	_, err = UpdateItem(db, user.ID, itemID, 4)
	require.ErrorIs(t, err, errs.ErrOutOfStock)
}

func TestUpdateItemOwnership(t *testing.T) {
	db := setupDB(t)
	owner := seedUser(t, db, "uid-owner")
	other := seedUser(t, db, "uid-other")
	product := seedProduct(t, db, "widget", 10.00, 5)

	view, err := AddItem(db, owner.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = UpdateItem(db, other.ID, view.Items[0].ID, 2)
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = RemoveItem(db, other.ID, view.Items[0].ID)
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestRemoveItemRecomputesAggregates(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	a := seedProduct(t, db, "widget", 10.00, 5)
	b := seedProduct(t, db, "gadget", 4.00, 5)

	_, err := AddItem(db, user.ID, a.ID, 1)
	require.NoError(t, err)
	view, err := AddItem(db, user.ID, b.ID, 2)
	require.NoError(t, err)

	var target uint
	for _, item := range view.Items {
		if item.ProductID == a.ID {
			target = item.ID
		}
	}
	view, err = RemoveItem(db, user.ID, target)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.InDelta(t, 8.00, view.TotalAmount, 1e-9)
	require.Equal(t, 2, view.TotalItems)
}

func TestClearEmptiesCart(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)

	_, err := AddItem(db, user.ID, product.ID, 2)
	require.NoError(t, err)
	require.NoError(t, Clear(db, user.ID))

	view, err := GetCart(db, user.ID)
	require.NoError(t, err)
	require.Empty(t, view.Items)
	require.Zero(t, view.TotalAmount)
	require.Zero(t, view.TotalItems)
}

func TestCartPriceSnapshotSurvivesCatalogEdit(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)

	_, err := AddItem(db, user.ID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, db.Model(product).Update("price", 99.99).Error)

	view, err := GetCart(db, user.ID)
	require.NoError(t, err)
	require.InDelta(t, 10.00, view.Items[0].UnitPrice, 1e-9)
	require.InDelta(t, 10.00, view.TotalAmount, 1e-9)
}

func TestGetCartReadTimeAvailability(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)

	_, err := AddItem(db, user.ID, product.ID, 3)
	require.NoError(t, err)

	// Another session buys most of the stock.
	require.NoError(t, db.Model(product).Update("stock_quantity", 2).Error)

	view, err := GetCart(db, user.ID)
	require.NoError(t, err)
	require.False(t, view.Items[0].IsAvailable)
}

func TestSalePriceWinsAtAddTime(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")
	product := seedProduct(t, db, "widget", 10.00, 5)
	sale := 7.50
	require.NoError(t, db.Model(product).Update("sale_price", sale).Error)

	view, err := AddItem(db, user.ID, product.ID, 2)
	require.NoError(t, err)
	require.InDelta(t, 7.50, view.Items[0].UnitPrice, 1e-9)
	require.InDelta(t, 15.00, view.TotalAmount, 1e-9)
}

func TestUpdateMissingItem(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "uid-1")

	_, err := UpdateItem(db, user.ID, 424242, 1)
	require.True(t, errors.Is(err, errs.ErrNotFound))
}

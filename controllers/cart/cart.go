package cartcontroller

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	productcontroller "github.com/storeline/storefront-api/controllers/product"
	"github.com/storeline/storefront-api/errs"
	"github.com/storeline/storefront-api/logger"
	"github.com/storeline/storefront-api/models"
)

// CartItemView is a cart line plus its read-time availability. Availability
// is computed against live stock on every read, never stored.
type CartItemView struct {
	models.CartItem
	IsAvailable bool `json:"is_available"`
}

type CartView struct {
	ID          uint           `json:"id"`
	UserID      uint           `json:"user_id"`
	Items       []CartItemView `json:"items"`
	TotalAmount float64        `json:"total_amount"`
	TotalItems  int            `json:"total_items"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// GetOrCreateCart returns the user's cart, creating it lazily. Registration
// creates one up front, so the lazy path only covers users that predate it.
func GetOrCreateCart(db *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem puts quantity units of a product into the user's cart. If the
// product is already present the quantities merge into the one existing line,
// and availability is checked against the merged total.
func AddItem(db *gorm.DB, userID, productID uint, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, errs.ErrValidation
	}

	product, err := productcontroller.FindProduct(db, productID)
	if err != nil {
		return nil, err
	}

	cart, err := GetOrCreateCart(db, userID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !productcontroller.IsProductAvailable(db, productID, quantity) {
			return nil, errs.ProductUnavailable(product.Name)
		}
		item = models.CartItem{
			CartID:       cart.ID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductSKU:   product.SKU,
			ProductImage: product.FirstImage(),
			UnitPrice:    product.EffectivePrice(),
			Quantity:     quantity,
			AddedAt:      time.Now(),
		}
		if err := db.Create(&item).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		merged := item.Quantity + quantity
		if !productcontroller.IsProductAvailable(db, productID, merged) {
			return nil, errs.ProductUnavailable(product.Name)
		}
		item.Quantity = merged
		item.AddedAt = time.Now()
		if err := db.Save(&item).Error; err != nil {
			return nil, err
		}
	}

	if err := RecomputeTotals(db, cart.ID); err != nil {
		return nil, err
	}

	logger.Get().Info("cart item added",
		zap.Uint("user_id", userID), zap.Uint("product_id", productID), zap.Int("quantity", quantity))
	return GetCart(db, userID)
}

// UpdateItem sets a cart line to an absolute quantity. Zero or negative
// removes the line entirely.
func UpdateItem(db *gorm.DB, userID, cartItemID uint, quantity int) (*CartView, error) {
	item, cart, err := ownedItem(db, userID, cartItemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := db.Delete(item).Error; err != nil {
			return nil, err
		}
	} else {
		if !productcontroller.IsProductAvailable(db, item.ProductID, quantity) {
			return nil, errs.ProductUnavailable(item.ProductName)
		}
		item.Quantity = quantity
		if err := db.Save(item).Error; err != nil {
			return nil, err
		}
	}

	if err := RecomputeTotals(db, cart.ID); err != nil {
		return nil, err
	}
	return GetCart(db, userID)
}

// RemoveItem deletes a cart line the caller owns.
func RemoveItem(db *gorm.DB, userID, cartItemID uint) (*CartView, error) {
	item, cart, err := ownedItem(db, userID, cartItemID)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(item).Error; err != nil {
		return nil, err
	}
	if err := RecomputeTotals(db, cart.ID); err != nil {
		return nil, err
	}
	return GetCart(db, userID)
}

// Clear empties the user's cart.
func Clear(db *gorm.DB, userID uint) error {
	cart, err := GetOrCreateCart(db, userID)
	if err != nil {
		return err
	}
	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return RecomputeTotals(db, cart.ID)
}

// GetCart returns the cart snapshot with read-time availability per line.
func GetCart(db *gorm.DB, userID uint) (*CartView, error) {
	cart, err := GetOrCreateCart(db, userID)
	if err != nil {
		return nil, err
	}

	var items []models.CartItem
	if err := db.Where("cart_id = ?", cart.ID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}

	view := &CartView{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       make([]CartItemView, 0, len(items)),
		TotalAmount: cart.TotalAmount,
		TotalItems:  cart.TotalItems,
		UpdatedAt:   cart.UpdatedAt,
	}
	for _, item := range items {
		view.Items = append(view.Items, CartItemView{
			CartItem:    item,
			IsAvailable: productcontroller.IsProductAvailable(db, item.ProductID, item.Quantity),
		})
	}
	return view, nil
}

// RecomputeTotals re-reads every line of the cart and persists the two
// derived aggregates. Deliberately not incremental: the aggregates cannot
// drift from the item set no matter which mutation path ran.
func RecomputeTotals(db *gorm.DB, cartID uint) error {
	var items []models.CartItem
	if err := db.Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return err
	}

	var amount float64
	var count int
	for _, item := range items {
		amount += item.TotalPrice()
		count += item.Quantity
	}

	return db.Model(&models.Cart{}).Where("id = ?", cartID).
		Updates(map[string]interface{}{"total_amount": amount, "total_items": count}).Error
}

func ownedItem(db *gorm.DB, userID, cartItemID uint) (*models.CartItem, *models.Cart, error) {
	var item models.CartItem
	if err := db.First(&item, cartItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.NotFound("cart item")
		}
		return nil, nil, err
	}

	var cart models.Cart
	if err := db.First(&cart, item.CartID).Error; err != nil {
		return nil, nil, err
	}
	if cart.UserID != userID {
		return nil, nil, errs.ErrForbidden
	}
	return &item, &cart, nil
}

package productcontroller

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/errs"
	"github.com/storeline/storefront-api/logger"
	"github.com/storeline/storefront-api/models"
)

// IsProductAvailable is the single availability predicate shared by the cart
// and order flows: the product exists, is active, and has enough stock.
func IsProductAvailable(db *gorm.DB, productID uint, quantity int) bool {
	var product models.Product
	if err := db.Select("status", "stock_quantity").First(&product, productID).Error; err != nil {
		return false
	}
	return product.Status == models.ProductStatusActive && product.StockQuantity >= quantity
}

// DecrementStock removes quantity units from a product's stock. The decrement
// is a guarded conditional update so two concurrent checkouts can never drive
// stock negative: whichever runs second finds too few units and fails.
func DecrementStock(db *gorm.DB, productID uint, quantity int) error {
	var product models.Product
	if err := db.Select("id", "name", "status").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("product")
		}
		return err
	}
	if product.Status != models.ProductStatusActive {
		return errs.ProductUnavailable(product.Name)
	}

	res := db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.InsufficientStock(product.Name)
	}

	// Stock hitting zero flips the product out of the storefront.
	if err := db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity = 0", productID).
		Update("status", models.ProductStatusOutOfStock).Error; err != nil {
		return err
	}

	logger.Get().Info("stock decremented",
		zap.Uint("product_id", productID), zap.Int("quantity", quantity))
	return nil
}

// RestoreStock adds quantity units back, reactivating a product that had
// sold out.
func RestoreStock(db *gorm.DB, productID uint, quantity int) error {
	res := db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("product")
	}

	if err := db.Model(&models.Product{}).
		Where("id = ? AND status = ? AND stock_quantity > 0", productID, models.ProductStatusOutOfStock).
		Update("status", models.ProductStatusActive).Error; err != nil {
		return err
	}

	logger.Get().Info("stock restored",
		zap.Uint("product_id", productID), zap.Int("quantity", quantity))
	return nil
}

package ordercontroller

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/config"
	cartcontroller "github.com/storeline/storefront-api/controllers/cart"
	productcontroller "github.com/storeline/storefront-api/controllers/product"
	"github.com/storeline/storefront-api/errs"
	"github.com/storeline/storefront-api/logger"
	"github.com/storeline/storefront-api/metrics"
	"github.com/storeline/storefront-api/models"
)

// CheckoutInput is the body of POST /orders.
type CheckoutInput struct {
	PaymentMethod   string         `json:"payment_method" binding:"required"`
	ShippingAddress models.Address `json:"shipping_address" binding:"required"`
	BillingAddress  models.Address `json:"billing_address" binding:"required"`
	Notes           string         `json:"notes"`
}

// Create converts the user's cart into an immutable order. The whole
// sequence runs in one transaction: availability re-check, order insert,
// guarded stock decrements, cart clearing. A failure at any step rolls the
// whole checkout back.
func Create(db *gorm.DB, cfg *config.Config, userID uint, input CheckoutInput) (*models.Order, error) {
	method, err := models.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err, errs.ErrValidation)
	}

	var order *models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrEmptyCart
			}
			return err
		}
		if len(cart.Items) == 0 {
			return errs.ErrEmptyCart
		}

		// The cart may be stale relative to concurrent purchases; every
		// line is re-validated against live stock before anything is
		// written.
		for _, item := range cart.Items {
			if !productcontroller.IsProductAvailable(tx, item.ProductID, item.Quantity) {
				return errs.ProductUnavailable(item.ProductName)
			}
		}

		subtotal := cart.TotalAmount
		tax := subtotal * cfg.TaxRate
		shipping := cfg.ShippingFee

		order = &models.Order{
			OrderNumber:     GenerateOrderNumber(),
			UserID:          userID,
			Status:          models.OrderStatusPending,
			PaymentMethod:   method,
			PaymentStatus:   models.PaymentStatusPending,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  input.BillingAddress,
			Notes:           input.Notes,
			Subtotal:        subtotal,
			Tax:             tax,
			ShippingCost:    shipping,
			TotalAmount:     subtotal + tax + shipping,
		}
		for _, item := range cart.Items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID:    item.ProductID,
				ProductName:  item.ProductName,
				ProductSKU:   item.ProductSKU,
				ProductImage: item.ProductImage,
				UnitPrice:    item.UnitPrice,
				TotalPrice:   item.TotalPrice(),
				Quantity:     item.Quantity,
			})
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for _, item := range cart.Items {
			if err := productcontroller.DecrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return cartcontroller.RecomputeTotals(tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	logger.Get().Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.Uint("user_id", userID),
		zap.Float64("total", order.TotalAmount))
	return order, nil
}

// UpdateStatus overwrites the order status and applies the status-specific
// side effects. Entering cancelled restores stock exactly once: a second
// transition to cancelled is a no-op for stock.
func UpdateStatus(db *gorm.DB, orderID uint, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("order")
			}
			return err
		}

		oldStatus := order.Status
		order.Status = status

		switch status {
		case models.OrderStatusShipped:
			now := time.Now()
			order.ShippedAt = &now
			order.TrackingNumber = GenerateTrackingNumber()
		case models.OrderStatusDelivered:
			now := time.Now()
			order.DeliveredAt = &now
		case models.OrderStatusCancelled:
			if oldStatus != models.OrderStatusCancelled {
				if err := restoreStockForOrder(tx, &order); err != nil {
					return err
				}
			}
		}

		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info("order status updated",
		zap.Uint("order_id", orderID), zap.String("status", string(status)))
	return &order, nil
}

// UpdatePaymentStatus overwrites the payment status. A successful payment on
// a still-pending order implicitly confirms it.
func UpdatePaymentStatus(db *gorm.DB, orderID uint, status models.PaymentStatus) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("order")
		}
		return nil, err
	}

	order.PaymentStatus = status
	if status == models.PaymentStatusPaid && order.Status == models.OrderStatusPending {
		order.Status = models.OrderStatusConfirmed
	}

	if err := db.Save(&order).Error; err != nil {
		return nil, err
	}

	logger.Get().Info("order payment status updated",
		zap.Uint("order_id", orderID), zap.String("payment_status", string(status)))
	return &order, nil
}

// Cancel is the customer-facing cancellation: ownership-checked and only
// legal while the order is pending or confirmed.
func Cancel(db *gorm.DB, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("order")
			}
			return err
		}
		if order.UserID != userID {
			return errs.ErrForbidden
		}
		if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusConfirmed {
			return fmt.Errorf("order %s cannot be cancelled: %w", order.OrderNumber, errs.ErrInvalidTransition)
		}

		order.Status = models.OrderStatusCancelled
		if err := restoreStockForOrder(tx, &order); err != nil {
			return err
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCancelledTotal.Inc()
	logger.Get().Info("order cancelled",
		zap.String("order_number", order.OrderNumber), zap.Uint("user_id", userID))
	return &order, nil
}

func restoreStockForOrder(tx *gorm.DB, order *models.Order) error {
	for _, item := range order.Items {
		if err := productcontroller.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// GenerateOrderNumber mints a human-readable order token. Global uniqueness
// is enforced by the unique index on orders.order_number, not here.
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), randomSuffix())
}

// GenerateTrackingNumber mints a tracking token when an order ships.
func GenerateTrackingNumber() string {
	return fmt.Sprintf("TRK-%d-%s", time.Now().UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

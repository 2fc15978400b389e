package paymentcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	ordercontroller "github.com/storeline/storefront-api/controllers/order"
	"github.com/storeline/storefront-api/errs"
	"github.com/storeline/storefront-api/middleware"
	"github.com/storeline/storefront-api/models"
	"github.com/storeline/storefront-api/payment"
)

type CreateIntentInput struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// POST /payments/intent
func CreateIntentHandler(db *gorm.DB, gw *payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input CreateIntentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.First(&order, input.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				e := errs.NotFound("order")
				c.JSON(errs.Status(e), gin.H{"error": e.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
			return
		}
		if order.UserID != user.ID && user.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": errs.ErrForbidden.Error()})
			return
		}

		intent, err := gw.CreateIntent(&order)
		if err != nil {
			// Gateway errors are surfaced uninterpreted, never retried.
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		if err := db.Model(&order).Update("payment_intent_id", intent.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment intent"})
			return
		}
		c.JSON(http.StatusCreated, intent)
	}
}

type ConfirmInput struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

// POST /payments/confirm confirms the intent and, on success, marks the
// matching order paid (which auto-confirms a pending order).
func ConfirmHandler(db *gorm.DB, gw *payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ConfirmInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		intent, err := gw.ConfirmIntent(input.PaymentIntentID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		if intent.Status == "succeeded" {
			var order models.Order
			err := db.Where("payment_intent_id = ?", intent.ID).First(&order).Error
			switch {
			case err == nil:
				if _, err := ordercontroller.UpdatePaymentStatus(db, order.ID, models.PaymentStatusPaid); err != nil {
					c.JSON(errs.Status(err), gin.H{"error": err.Error()})
					return
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				// No order references this intent; nothing to mark paid.
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up order for payment intent"})
				return
			}
		}
		c.JSON(http.StatusOK, intent)
	}
}

type RefundInput struct {
	OrderID uint    `json:"order_id" binding:"required"`
	Amount  float64 `json:"amount" binding:"required,gt=0"`
}

// POST /payments/refund (admin)
func RefundHandler(db *gorm.DB, gw *payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RefundInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.First(&order, input.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				e := errs.NotFound("order")
				c.JSON(errs.Status(e), gin.H{"error": e.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
			return
		}
		if order.PaymentIntentID == "" || order.PaymentStatus != models.PaymentStatusPaid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order has no captured payment to refund"})
			return
		}
		if input.Amount > order.TotalAmount {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refund exceeds order total"})
			return
		}

		refund, err := gw.RefundIntent(order.PaymentIntentID, input.Amount)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		status := models.PaymentStatusPartiallyRefunded
		if input.Amount == order.TotalAmount {
			status = models.PaymentStatusRefunded
		}
		if _, err := ordercontroller.UpdatePaymentStatus(db, order.ID, status); err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, refund)
	}
}

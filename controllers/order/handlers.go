package ordercontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/config"
	productcontroller "github.com/storeline/storefront-api/controllers/product"
	"github.com/storeline/storefront-api/errs"
	"github.com/storeline/storefront-api/middleware"
	"github.com/storeline/storefront-api/models"
)

// POST /orders
func CreateOrderHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input CheckoutInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := Create(db, cfg, user.ID, input)
		if err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders/:id
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", c.Param("id")).Error; err != nil {
			respondOrderErr(c, err)
			return
		}
		if order.UserID != user.ID && user.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": errs.ErrForbidden.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /orders/number/:orderNumber
func GetOrderByNumberHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var order models.Order
		if err := db.Preload("Items").
			Where("order_number = ?", c.Param("orderNumber")).
			First(&order).Error; err != nil {
			respondOrderErr(c, err)
			return
		}
		if order.UserID != user.ID && user.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": errs.ErrForbidden.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /orders/user
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		page, size := productcontroller.PageParams(c)

		var total int64
		if err := db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		var orders []models.Order
		if err := db.Where("user_id = ?", user.ID).Preload("Items").
			Order("created_at desc").
			Offset(page * size).Limit(size).
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, productcontroller.NewPage(orders, page, size, total))
	}
}

// GET /orders (admin)
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("Items").Order("created_at desc").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/status/:status (admin)
func GetOrdersByStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := models.ParseOrderStatus(c.Param("status"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		page, size := productcontroller.PageParams(c)

		var total int64
		if err := db.Model(&models.Order{}).Where("status = ?", status).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		var orders []models.Order
		if err := db.Where("status = ?", status).Preload("Items").
			Order("created_at desc").
			Offset(page * size).Limit(size).
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, productcontroller.NewPage(orders, page, size, total))
	}
}

// PUT /orders/:id/status?status= (admin)
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		status, err := models.ParseOrderStatus(c.Query("status"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := UpdateStatus(db, uint(orderID), status)
		if err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /orders/:id/payment-status?paymentStatus= (admin)
func UpdatePaymentStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		status, err := models.ParsePaymentStatus(c.Query("paymentStatus"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := UpdatePaymentStatus(db, uint(orderID), status)
		if err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// POST /orders/:id/cancel
func CancelOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		order, err := Cancel(db, user.ID, uint(orderID))
		if err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func respondOrderErr(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e := errs.NotFound("order")
		c.JSON(errs.Status(e), gin.H{"error": e.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
}

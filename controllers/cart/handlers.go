package cartcontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/errs"
	"github.com/storeline/storefront-api/middleware"
)

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// GET /cart
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		view, err := GetCart(db, user.ID)
		if err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// POST /cart and POST /cart/add
func AddItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		view, err := AddItem(db, user.ID, input.ProductID, input.Quantity)
		if err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// PUT /cart/items/:id?quantity=
func UpdateItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart item id"})
			return
		}
		quantity, err := strconv.Atoi(c.Query("quantity"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
			return
		}

		view, err := UpdateItem(db, user.ID, uint(itemID), quantity)
		if err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// DELETE /cart/items/:id
func RemoveItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart item id"})
			return
		}

		view, err := RemoveItem(db, user.ID, uint(itemID))
		if err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// DELETE /cart
func ClearCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if err := Clear(db, user.ID); err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}

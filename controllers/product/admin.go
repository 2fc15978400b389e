package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/errs"
	"github.com/storeline/storefront-api/logger"
	"github.com/storeline/storefront-api/models"
)

type ProductInput struct {
	Name                string   `json:"name" binding:"required"`
	Description         string   `json:"description"`
	DetailedDescription string   `json:"detailed_description"`
	Price               float64  `json:"price" binding:"required,gt=0"`
	SalePrice           *float64 `json:"sale_price"`
	StockQuantity       int      `json:"stock_quantity" binding:"min=0"`
	SKU                 string   `json:"sku"`
	Brand               string   `json:"brand"`
	Status              string   `json:"status"`
	Featured            bool     `json:"featured"`
	Weight              float64  `json:"weight"`
	ImageURLs           []string `json:"image_urls"`
	Tags                []string `json:"tags"`
	CategoryID          uint     `json:"category_id" binding:"required"`
}

// POST /admin/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		status := models.ProductStatusActive
		if input.Status != "" {
			parsed, err := models.ParseProductStatus(input.Status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			status = parsed
		}

		var category models.Category
		if err := db.First(&category, input.CategoryID).Error; err != nil {
			e := errs.NotFound("category")
			c.JSON(errs.Status(e), gin.H{"error": e.Error()})
			return
		}

		product := models.Product{
			Name:                input.Name,
			Slug:                slug.Make(input.Name),
			Description:         input.Description,
			DetailedDescription: input.DetailedDescription,
			Price:               input.Price,
			SalePrice:           input.SalePrice,
			StockQuantity:       input.StockQuantity,
			SKU:                 input.SKU,
			Brand:               input.Brand,
			Status:              status,
			Featured:            input.Featured,
			Weight:              input.Weight,
			ImageURLs:           input.ImageURLs,
			Tags:                input.Tags,
			CategoryID:          input.CategoryID,
		}
		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
			return
		}

		logger.Get().Info("product created", zap.Uint("id", product.ID), zap.String("name", product.Name))
		c.JSON(http.StatusCreated, product)
	}
}

// PUT /admin/products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
			e := errs.NotFound("product")
			c.JSON(errs.Status(e), gin.H{"error": e.Error()})
			return
		}

		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if input.Status != "" {
			parsed, err := models.ParseProductStatus(input.Status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			product.Status = parsed
		}
		if product.Name != input.Name {
			product.Slug = slug.Make(input.Name)
		}
		product.Name = input.Name
		product.Description = input.Description
		product.DetailedDescription = input.DetailedDescription
		product.Price = input.Price
		product.SalePrice = input.SalePrice
		product.StockQuantity = input.StockQuantity
		product.SKU = input.SKU
		product.Brand = input.Brand
		product.Featured = input.Featured
		product.Weight = input.Weight
		product.ImageURLs = input.ImageURLs
		product.Tags = input.Tags
		product.CategoryID = input.CategoryID

		if err := db.Save(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
			return
		}

		logger.Get().Info("product updated", zap.Uint("id", product.ID))
		c.JSON(http.StatusOK, product)
	}
}

// DELETE /admin/products/:id marks a product inactive; rows are never removed
// so historical order items keep a valid reference.
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.Model(&models.Product{}).
			Where("id = ?", c.Param("id")).
			Update("status", models.ProductStatusInactive)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
			return
		}
		if res.RowsAffected == 0 {
			e := errs.NotFound("product")
			c.JSON(errs.Status(e), gin.H{"error": e.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}

// GET /admin/products lists every product regardless of status.
func GetAdminProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := PageParams(c)
		var total int64
		if err := db.Model(&models.Product{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		var products []models.Product
		if err := db.Preload("Category").
			Order("created_at desc").
			Offset(page * size).Limit(size).
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, NewPage(products, page, size, total))
	}
}

// GET /admin/products/low-stock?threshold=
func GetLowStockProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		threshold, err := strconv.Atoi(c.DefaultQuery("threshold", "5"))
		if err != nil || threshold < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
			return
		}
		var products []models.Product
		if err := db.Where("status = ? AND stock_quantity <= ?", models.ProductStatusActive, threshold).
			Order("stock_quantity asc").
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// ActiveProductCount reports how many products are currently purchasable.
func ActiveProductCount(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Product{}).
		Where("status = ?", models.ProductStatusActive).
		Count(&count).Error
	return count, err
}

// GET /admin/products/count
func GetActiveProductCount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := ActiveProductCount(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count products"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// FindProduct loads a product by id regardless of status; purchase flows
// check availability separately so they can report why the line failed.
func FindProduct(db *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("product")
		}
		return nil, err
	}
	return &product, nil
}

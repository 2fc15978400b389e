package categorycontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/errs"
	"github.com/storeline/storefront-api/logger"
	"github.com/storeline/storefront-api/models"
)

// GET /categories
func GetCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Where("active = ?", true).Order("sort_order asc").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GET /categories/top-level
func GetTopLevelCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Where("active = ? AND parent_id IS NULL", true).
			Order("sort_order asc").
			Preload("Children", "active = ?", true).
			Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GET /categories/:id
func GetCategoryByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		err := db.Where("active = ?", true).First(&category, "id = ?", c.Param("id")).Error
		respondCategory(c, &category, err)
	}
}

// GET /categories/slug/:slug
func GetCategoryBySlug(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		err := db.Where("active = ? AND slug = ?", true, c.Param("slug")).First(&category).Error
		respondCategory(c, &category, err)
	}
}

func respondCategory(c *gin.Context, category *models.Category, err error) {
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			e := errs.NotFound("category")
			c.JSON(errs.Status(e), gin.H{"error": e.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch category"})
		return
	}
	c.JSON(http.StatusOK, category)
}

// GET /categories/:id/subcategories
func GetSubCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Where("active = ? AND parent_id = ?", true, c.Param("id")).
			Order("sort_order asc").
			Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch subcategories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GET /categories/:id/product-count
func GetProductCount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var count int64
		if err := db.Model(&models.Product{}).
			Where("category_id = ? AND status = ?", c.Param("id"), models.ProductStatusActive).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count products"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SortOrder   int    `json:"sort_order"`
	Active      *bool  `json:"active"`
	ParentID    *uint  `json:"parent_id"`
}

// POST /admin/categories
func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		category := models.Category{
			Name:        input.Name,
			Slug:        slug.Make(input.Name),
			Description: input.Description,
			ImageURL:    input.ImageURL,
			SortOrder:   input.SortOrder,
			Active:      true,
			ParentID:    input.ParentID,
		}
		if input.Active != nil {
			category.Active = *input.Active
		}
		if err := db.Create(&category).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "category name already exists"})
			return
		}

		logger.Get().Info("category created", zap.Uint("id", category.ID), zap.String("name", category.Name))
		c.JSON(http.StatusCreated, category)
	}
}

// PUT /admin/categories/:id
func UpdateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		if err := db.First(&category, "id = ?", c.Param("id")).Error; err != nil {
			e := errs.NotFound("category")
			c.JSON(errs.Status(e), gin.H{"error": e.Error()})
			return
		}

		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if category.Name != input.Name {
			category.Slug = slug.Make(input.Name)
		}
		category.Name = input.Name
		category.Description = input.Description
		category.ImageURL = input.ImageURL
		category.SortOrder = input.SortOrder
		category.ParentID = input.ParentID
		if input.Active != nil {
			category.Active = *input.Active
		}

		if err := db.Save(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update category"})
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// DELETE /admin/categories/:id deactivates a single node. Children keep their
// own active flag and must be deactivated one by one.
func DeleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.Model(&models.Category{}).
			Where("id = ?", c.Param("id")).
			Update("active", false)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete category"})
			return
		}
		if res.RowsAffected == 0 {
			e := errs.NotFound("category")
			c.JSON(errs.Status(e), gin.H{"error": e.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
	}
}

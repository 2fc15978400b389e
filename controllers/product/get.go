package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/errs"
	"github.com/storeline/storefront-api/models"
)

// Page is the shape of every paginated list response.
type Page struct {
	Content       interface{} `json:"content"`
	Page          int         `json:"page"`
	Size          int         `json:"size"`
	TotalElements int64       `json:"total_elements"`
	TotalPages    int         `json:"total_pages"`
}

// NewPage assembles a Page from a result slice and the total row count.
func NewPage(content interface{}, page, size int, total int64) Page {
	pages := int(total) / size
	if int(total)%size != 0 {
		pages++
	}
	return Page{Content: content, Page: page, Size: size, TotalElements: total, TotalPages: pages}
}

// countRows counts the rows a scope matches on its own query chain, so the
// count never shares statement state with the page fetch.
func countRows(db *gorm.DB, scope func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	err := scope(db.Model(&models.Product{})).Count(&total).Error
	return total, err
}

// PageParams reads page/size query params with sane bounds.
func PageParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "12"))
	if page < 0 {
		page = 0
	}
	if size < 1 || size > 100 {
		size = 12
	}
	return page, size
}

var sortColumns = map[string]string{
	"name":          "name",
	"price":         "price",
	"createdAt":     "created_at",
	"created_at":    "created_at",
	"averageRating": "average_rating",
	"brand":         "brand",
}

// GET /products
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := PageParams(c)

		column, ok := sortColumns[c.DefaultQuery("sortBy", "createdAt")]
		if !ok {
			column = "created_at"
		}
		direction := "asc"
		if strings.EqualFold(c.DefaultQuery("sortDir", "desc"), "desc") {
			direction = "desc"
		}

		scope := func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ?", models.ProductStatusActive)
		}
		total, err := countRows(db, scope)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		var products []models.Product
		if err := scope(db).Preload("Category").
			Order(column + " " + direction).
			Offset(page * size).Limit(size).
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, NewPage(products, page, size, total))
	}
}

// GET /products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		err := db.Preload("Category").
			Where("status = ?", models.ProductStatusActive).
			First(&product, "id = ?", c.Param("id")).Error
		respondProduct(c, &product, err)
	}
}

// GET /products/slug/:slug
func GetProductBySlug(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		err := db.Preload("Category").
			Where("status = ? AND slug = ?", models.ProductStatusActive, c.Param("slug")).
			First(&product).Error
		respondProduct(c, &product, err)
	}
}

func respondProduct(c *gin.Context, product *models.Product, err error) {
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			e := errs.NotFound("product")
			c.JSON(errs.Status(e), gin.H{"error": e.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// GET /products/category/:id
func GetProductsByCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := PageParams(c)
		scope := func(q *gorm.DB) *gorm.DB {
			return q.Where("category_id = ? AND status = ?", c.Param("id"), models.ProductStatusActive)
		}
		total, err := countRows(db, scope)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		var products []models.Product
		if err := scope(db).Order("created_at desc").Offset(page * size).Limit(size).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, NewPage(products, page, size, total))
	}
}

// GET /products/featured
func GetFeaturedProducts(db *gorm.DB) gin.HandlerFunc {
	return curatedList(db, func(q *gorm.DB) *gorm.DB {
		return q.Where("featured = ?", true).Order("created_at desc")
	})
}

// GET /products/latest
func GetLatestProducts(db *gorm.DB) gin.HandlerFunc {
	return curatedList(db, func(q *gorm.DB) *gorm.DB {
		return q.Order("created_at desc")
	})
}

// GET /products/top-rated
func GetTopRatedProducts(db *gorm.DB) gin.HandlerFunc {
	return curatedList(db, func(q *gorm.DB) *gorm.DB {
		return q.Order("average_rating desc")
	})
}

func curatedList(db *gorm.DB, scope func(*gorm.DB) *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
		if limit < 1 || limit > 50 {
			limit = 8
		}
		var products []models.Product
		q := db.Where("status = ?", models.ProductStatusActive)
		if err := scope(q).Limit(limit).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// GET /products/search?keyword=
func SearchProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		keyword := strings.TrimSpace(c.Query("keyword"))
		if keyword == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
			return
		}
		page, size := PageParams(c)
		pattern := "%" + strings.ToLower(keyword) + "%"

		scope := func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ?", models.ProductStatusActive).
				Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ?",
					pattern, pattern, pattern)
		}
		total, err := countRows(db, scope)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}
		var products []models.Product
		if err := scope(db).Order("created_at desc").Offset(page * size).Limit(size).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}
		c.JSON(http.StatusOK, NewPage(products, page, size, total))
	}
}

// GET /products/filter/price?minPrice=&maxPrice=
func GetProductsByPriceRange(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		minPrice, err1 := strconv.ParseFloat(c.DefaultQuery("minPrice", "0"), 64)
		maxPrice, err2 := strconv.ParseFloat(c.DefaultQuery("maxPrice", "0"), 64)
		if err1 != nil || err2 != nil || minPrice < 0 || maxPrice < minPrice {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price range"})
			return
		}
		page, size := PageParams(c)

		scope := func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ? AND price >= ? AND price <= ?", models.ProductStatusActive, minPrice, maxPrice)
		}
		total, err := countRows(db, scope)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		var products []models.Product
		if err := scope(db).Order("price asc").Offset(page * size).Limit(size).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, NewPage(products, page, size, total))
	}
}

// GET /products/filter/brand?brand=
func GetProductsByBrand(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		brand := strings.TrimSpace(c.Query("brand"))
		if brand == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "brand is required"})
			return
		}
		page, size := PageParams(c)

		scope := func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ? AND brand = ?", models.ProductStatusActive, brand)
		}
		total, err := countRows(db, scope)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		var products []models.Product
		if err := scope(db).Order("created_at desc").Offset(page * size).Limit(size).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, NewPage(products, page, size, total))
	}
}

// GET /products/brands
func GetAllBrands(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var brands []string
		if err := db.Model(&models.Product{}).
			Where("status = ? AND brand <> ''", models.ProductStatusActive).
			Distinct().Order("brand asc").
			Pluck("brand", &brands).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch brands"})
			return
		}
		c.JSON(http.StatusOK, brands)
	}
}

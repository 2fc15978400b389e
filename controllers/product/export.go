package productcontroller

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/models"
)

// ExportProductsToExcel streams the full catalog as an xlsx attachment.
// GET /admin/products/export
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Preload("Category").Order("id asc").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Products")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build spreadsheet"})
			return
		}

		header := sheet.AddRow()
		for _, title := range []string{
			"ID", "Name", "Slug", "SKU", "Brand", "Category",
			"Price", "Sale Price", "Stock", "Status", "Featured", "Tags",
		} {
			header.AddCell().Value = title
		}

		for _, p := range products {
			row := sheet.AddRow()
			row.AddCell().SetInt(int(p.ID))
			row.AddCell().Value = p.Name
			row.AddCell().Value = p.Slug
			row.AddCell().Value = p.SKU
			row.AddCell().Value = p.Brand
			row.AddCell().Value = p.Category.Name
			row.AddCell().SetFloat(p.Price)
			if p.SalePrice != nil {
				row.AddCell().SetFloat(*p.SalePrice)
			} else {
				row.AddCell().Value = ""
			}
			row.AddCell().SetInt(p.StockQuantity)
			row.AddCell().Value = string(p.Status)
			row.AddCell().SetBool(p.Featured)
			row.AddCell().Value = strings.Join(p.Tags, ", ")
		}

		filename := fmt.Sprintf("products-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write spreadsheet"})
		}
	}
}

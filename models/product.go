package models

import (
	"fmt"
	"strings"
	"time"
)

type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

// ParseProductStatus maps a request string onto a ProductStatus.
func ParseProductStatus(s string) (ProductStatus, error) {
	switch ProductStatus(strings.ToLower(s)) {
	case ProductStatusActive:
		return ProductStatusActive, nil
	case ProductStatusInactive:
		return ProductStatusInactive, nil
	case ProductStatusOutOfStock:
		return ProductStatusOutOfStock, nil
	default:
		return "", fmt.Errorf("invalid product status %q", s)
	}
}

type Product struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	Name                string        `gorm:"not null" json:"name"`
	Slug                string        `gorm:"uniqueIndex;not null" json:"slug"`
	Description         string        `gorm:"size:1000" json:"description"`
	DetailedDescription string        `gorm:"size:2000" json:"detailed_description"`
	Price               float64       `gorm:"not null" json:"price"`
	SalePrice           *float64      `json:"sale_price"`
	StockQuantity       int           `gorm:"not null;default:0" json:"stock_quantity"`
	SKU                 string        `json:"sku"`
	Brand               string        `json:"brand"`
	Status              ProductStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	Featured            bool          `gorm:"default:false" json:"featured"`
	Weight              float64       `json:"weight"`

	// Stored as JSON so the postgres and sqlite drivers share one mapping.
	ImageURLs []string `gorm:"serializer:json" json:"image_urls"`
	Tags      []string `gorm:"serializer:json" json:"tags"`

	CategoryID uint     `gorm:"not null;index" json:"category_id"`
	Category   Category `gorm:"foreignKey:CategoryID" json:"category"`

	AverageRating float64 `gorm:"default:0" json:"average_rating"`
	ReviewCount   int     `gorm:"default:0" json:"review_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectivePrice is the price a buyer pays right now: the sale price when one
// is set, the list price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// FirstImage returns the primary display image, if any.
func (p *Product) FirstImage() string {
	if len(p.ImageURLs) > 0 {
		return p.ImageURLs[0]
	}
	return ""
}

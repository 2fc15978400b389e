package models

import "time"

// Cart is the single working cart of a user. TotalAmount and TotalItems are
// derived: they are recomputed from the full item set after every mutation
// and never adjusted incrementally.
type Cart struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Items       []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount float64    `gorm:"default:0" json:"total_amount"`
	TotalItems  int        `gorm:"default:0" json:"total_items"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CartItem snapshots the product's display fields and effective price at the
// moment it is added; later catalog edits do not touch it.
type CartItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CartID       uint      `gorm:"index;not null" json:"cart_id"`
	ProductID    uint      `gorm:"not null" json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductSKU   string    `json:"product_sku"`
	ProductImage string    `json:"product_image"`
	UnitPrice    float64   `gorm:"not null" json:"unit_price"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}

// TotalPrice is the line total at the snapshot price.
func (ci *CartItem) TotalPrice() float64 {
	return ci.UnitPrice * float64(ci.Quantity)
}

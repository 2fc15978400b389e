package models

import "time"

// Category is a node in the category tree. Children are the categories whose
// ParentID points at this node; deactivation never cascades to them.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Active      bool   `gorm:"default:true" json:"active"`
	SortOrder   int    `gorm:"default:0" json:"sort_order"`

	ParentID *uint      `gorm:"index" json:"parent_id"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

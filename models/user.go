package models

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// User is keyed internally by ID; the external identity provider's UID is
// the lookup key for every authenticated request.
type User struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	FirebaseUID string   `gorm:"uniqueIndex;not null" json:"firebase_uid"`
	FirstName   string   `gorm:"not null" json:"first_name"`
	LastName    string   `gorm:"not null" json:"last_name"`
	Email       string   `gorm:"uniqueIndex;not null" json:"email"`
	Phone       string   `json:"phone"`
	Role        UserRole `gorm:"type:varchar(20);default:'customer'" json:"role"`
	Active      bool     `gorm:"default:true" json:"active"`

	Cart   *Cart   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Orders []Order `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"

	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodPaypal     PaymentMethod = "paypal"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(s)) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusConfirmed:
		return OrderStatusConfirmed, nil
	case OrderStatusProcessing:
		return OrderStatusProcessing, nil
	case OrderStatusShipped:
		return OrderStatusShipped, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	default:
		return "", fmt.Errorf("invalid order status %q", s)
	}
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(s)) {
	case PaymentStatusPending:
		return PaymentStatusPending, nil
	case PaymentStatusPaid:
		return PaymentStatusPaid, nil
	case PaymentStatusFailed:
		return PaymentStatusFailed, nil
	case PaymentStatusRefunded:
		return PaymentStatusRefunded, nil
	case PaymentStatusPartiallyRefunded:
		return PaymentStatusPartiallyRefunded, nil
	default:
		return "", fmt.Errorf("invalid payment status %q", s)
	}
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(s)) {
	case PaymentMethodCreditCard:
		return PaymentMethodCreditCard, nil
	case PaymentMethodDebitCard:
		return PaymentMethodDebitCard, nil
	case PaymentMethodPaypal:
		return PaymentMethodPaypal, nil
	default:
		return "", fmt.Errorf("invalid payment method %q", s)
	}
}

// Address is embedded twice on Order, once per shipping and billing.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

// Order is an immutable snapshot of a checkout. Totals are computed once at
// creation and never re-derived.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	User        User        `gorm:"foreignKey:UserID" json:"-"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	Status          OrderStatus   `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty"`
	TrackingNumber  string        `json:"tracking_number,omitempty"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress  Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`
	Notes           string  `json:"notes,omitempty"`

	Subtotal     float64 `gorm:"not null" json:"subtotal"`
	Tax          float64 `gorm:"not null" json:"tax"`
	ShippingCost float64 `gorm:"not null" json:"shipping_cost"`
	TotalAmount  float64 `gorm:"not null" json:"total_amount"`

	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OrderItem keeps its own copy of the product display fields so historical
// orders stay correct after the catalog changes.
type OrderItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	OrderID      uint    `gorm:"index;not null" json:"order_id"`
	ProductID    uint    `gorm:"not null" json:"product_id"`
	ProductName  string  `gorm:"not null" json:"product_name"`
	ProductSKU   string  `json:"product_sku"`
	ProductImage string  `json:"product_image"`
	UnitPrice    float64 `gorm:"not null" json:"unit_price"`
	TotalPrice   float64 `gorm:"not null" json:"total_price"`
	Quantity     int     `gorm:"not null" json:"quantity"`
}

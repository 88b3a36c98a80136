package models

import (
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	StatusPlaced     OrderStatus = "PLACED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
)

// NextStatus returns the only legal successor, or "" for the terminal state.
func (s OrderStatus) NextStatus() OrderStatus {
	switch s {
	case StatusPlaced:
		return StatusProcessing
	case StatusProcessing:
		return StatusShipped
	case StatusShipped:
		return StatusDelivered
	}
	return ""
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPlaced, StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "ONLINE"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline
}

// Order totals are stored in minor currency units (paise/cents); floats
// belong to the presentation layer only.
type Order struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	StoreID       int64           `json:"store_id"`
	AddressID     int64           `json:"address_id"`
	Total         int64           `json:"total"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	IsPaid        bool            `json:"is_paid"`
	IsCouponUsed  bool            `json:"is_coupon_used"`
	Coupon        *CouponSnapshot `json:"coupon,omitempty"`
	Items         []OrderItem     `json:"items,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem price is the unit price at purchase time and is never recomputed
// from the current product price. Customizations pass through this layer as
// opaque JSON.
type OrderItem struct {
	ID             int64           `json:"id"`
	OrderID        int64           `json:"order_id"`
	ProductID      int64           `json:"product_id"`
	Quantity       int             `json:"quantity"`
	Price          int64           `json:"price"`
	Customizations json.RawMessage `json:"customizations,omitempty"`
}

package domain

import (
	"time"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// User represents a signed-in shopper
type User struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   *string  `json:"phone,omitempty"`
	Avatar  *string  `json:"avatar,omitempty"`
	Address *Address `json:"address,omitempty"`
	Orders  []Order  `json:"orders"`
}

// Address represents a postal address
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Order represents a past order shown on the user's profile
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Items           []CartLine  `json:"items"`
	Total           int64       `json:"total"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	ShippingAddress Address     `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
}

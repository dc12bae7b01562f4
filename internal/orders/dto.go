package orders

import (
	"time"

	"github.com/google/uuid"
)

// CreateForm is the write shape for checkout. The cart is addressed by its
// public token.
type CreateForm struct {
	CartToken      uuid.UUID       `json:"cart_token" validate:"required"`
	CustomerName   string          `json:"customer_name" validate:"required"`
	CustomerPhone  *string         `json:"customer_phone"`
	ShippingMethod ShippingMethod  `json:"shipping_method" validate:"required"`
	PaymentMethod  PaymentMethod   `json:"payment_method" validate:"required"`
	DeliveryOption *DeliveryOption `json:"delivery_option"`
	DeliveryAt     *time.Time      `json:"delivery_at"`
}

// View decorates an order with its current cart total.
type View struct {
	Order
	Total float64 `json:"total"`
}

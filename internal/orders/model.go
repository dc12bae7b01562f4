// Package orders turns a cart into a pedido: who buys, how it ships and how
// it is paid. An order stores no amounts; its total always delegates to the
// cart it references.
package orders

import (
	"fmt"
	"time"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

// ShippingMethod is how the purchase reaches the customer.
type ShippingMethod string

const (
	ShippingOlmos     ShippingMethod = "olmos"     // pickup at Patio Olmos
	ShippingCadete    ShippingMethod = "cadete"    // courier delivery, scheduled
	ShippingDomicilio ShippingMethod = "domicilio" // pickup at the seller's home
	ShippingPlaza     ShippingMethod = "plaza"     // pickup at Plaza Rivadavia
)

func (m ShippingMethod) Valid() bool {
	switch m {
	case ShippingOlmos, ShippingCadete, ShippingDomicilio, ShippingPlaza:
		return true
	}
	return false
}

// Scheduled reports whether the method carries delivery scheduling fields.
func (m ShippingMethod) Scheduled() bool {
	return m == ShippingCadete
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "efectivo"
	PaymentTransfer PaymentMethod = "transferencia"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentTransfer
}

// DeliveryOption narrows when a scheduled delivery happens.
type DeliveryOption string

const (
	DeliveryNow      DeliveryOption = "ahora"
	DeliveryToday    DeliveryOption = "hoy"
	DeliveryTomorrow DeliveryOption = "manana"
	DeliveryOnDate   DeliveryOption = "fecha"
)

func (o DeliveryOption) Valid() bool {
	switch o {
	case DeliveryNow, DeliveryToday, DeliveryTomorrow, DeliveryOnDate:
		return true
	}
	return false
}

// NeedsTimestamp reports whether the option requires a concrete delivery
// time.
func (o DeliveryOption) NeedsTimestamp() bool {
	return o == DeliveryToday || o == DeliveryTomorrow || o == DeliveryOnDate
}

// Order references exactly one cart. Completed is the only field that may
// change after creation.
type Order struct {
	ID             int64           `json:"id"`
	CartID         int64           `json:"cart_id"`
	CustomerName   string          `json:"customer_name"`
	CustomerPhone  *string         `json:"customer_phone,omitempty"`
	ShippingMethod ShippingMethod  `json:"shipping_method"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	DeliveryOption *DeliveryOption `json:"delivery_option,omitempty"`
	DeliveryAt     *time.Time      `json:"delivery_at,omitempty"`
	Completed      bool            `json:"completed"`
	CreatedAt      time.Time       `json:"created_at"`
}

var (
	// ErrCartAlreadyOrdered enforces the one-order-per-cart rule.
	ErrCartAlreadyOrdered = fmt.Errorf("cart already has an order: %w", shared.ErrConflict)

	errNameRequired      = fmt.Errorf("customer name is required: %w", shared.ErrValidation)
	errBadShipping       = fmt.Errorf("unknown shipping method: %w", shared.ErrValidation)
	errBadPayment        = fmt.Errorf("unknown payment method: %w", shared.ErrValidation)
	errBadDeliveryOption = fmt.Errorf("unknown delivery option: %w", shared.ErrValidation)
	errScheduleRequired  = fmt.Errorf("delivery scheduling is required for courier shipping: %w", shared.ErrValidation)
	errScheduleForbidden = fmt.Errorf("delivery scheduling only applies to courier shipping: %w", shared.ErrValidation)
	errTimestampRequired = fmt.Errorf("delivery option requires a delivery time: %w", shared.ErrValidation)
)

// ValidateDeliverySchedule checks the shipping method against the delivery
// fields: courier shipping must say when, pickup methods must not carry
// scheduling at all.
func ValidateDeliverySchedule(method ShippingMethod, option *DeliveryOption, deliveryAt *time.Time) error {
	if !method.Scheduled() {
		if option != nil || deliveryAt != nil {
			return errScheduleForbidden
		}
		return nil
	}
	if option == nil {
		return errScheduleRequired
	}
	if !option.Valid() {
		return errBadDeliveryOption
	}
	if option.NeedsTimestamp() && deliveryAt == nil {
		return errTimestampRequired
	}
	return nil
}

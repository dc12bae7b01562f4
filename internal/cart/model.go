// Package cart owns anonymous shopper carts. Carts are addressed by an
// opaque UUID token so they can be handed to a browser without exposing
// serial ids.
package cart

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

// Cart is the aggregate root. Completed flips one way, false to true, when
// the cart is checked out; every item mutation requires completed=false.
type Cart struct {
	ID        int64     `json:"id"`
	Token     uuid.UUID `json:"token"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is one line of a cart. Color and talle are descriptive choices the
// shopper made; pricing comes from the referenced product alone.
type Item struct {
	ID        int64     `json:"id"`
	CartID    int64     `json:"cart_id"`
	ProductID int64     `json:"product_id"`
	ColorID   *int64    `json:"color_id,omitempty"`
	TalleID   *int64    `json:"talle_id,omitempty"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrCartFinalized rejects item writes on a completed cart.
	ErrCartFinalized = fmt.Errorf("cart already completed: %w", shared.ErrState)
	// ErrInvalidQuantity rejects non-positive item quantities.
	ErrInvalidQuantity = fmt.Errorf("quantity must be at least one: %w", shared.ErrValidation)
)

// Package stock is the stock ledger. A product tracks stock in exactly one
// of two modes: flat decomposition rows per talle and per color, or per-SKU
// variant rows when has_variants is set. The canonical total in flat mode is
// the sum of talle rows only; color rows are descriptive breakdowns.
package stock

import (
	"errors"
	"fmt"
	"time"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

// TalleStock is one flat-mode decomposition row keyed by talle.
type TalleStock struct {
	TalleID   int64  `json:"talle_id"`
	TalleName string `json:"talle_name"`
	Stock     int    `json:"stock"`
}

// ColorStock is one flat-mode decomposition row keyed by color.
type ColorStock struct {
	ColorID   int64  `json:"color_id"`
	ColorName string `json:"color_name"`
	Stock     int    `json:"stock"`
}

// Breakdown is the full stock picture of a product.
type Breakdown struct {
	ProductID   int64        `json:"product_id"`
	HasVariants bool         `json:"has_variants"`
	Talles      []TalleStock `json:"talles"`
	Colors      []ColorStock `json:"colors"`
	VariantSum  int          `json:"variant_sum"`
}

// Total applies the canonical rule: variant sum in variant mode, talle sum in
// flat mode.
func (b Breakdown) Total() int {
	if b.HasVariants {
		return b.VariantSum
	}
	total := 0
	for _, t := range b.Talles {
		total += t.Stock
	}
	return total
}

// productRow is the slice of the products table the ledger needs to
// recompute the derived label.
type productRow struct {
	ID          int64
	Price       float64
	PriceCost   float64
	SalePrice   *float64
	HasVariants bool
	CreatedAt   time.Time
}

var (
	// ErrNegativeStock is returned when a movement would drop stock below zero.
	ErrNegativeStock = errors.New("stock: negative stock not allowed")
	// ErrInvalidQuantity is returned for a zero adjustment or a negative absolute quantity.
	ErrInvalidQuantity = errors.New("stock: invalid quantity")
	// ErrDuplicateEntry is returned when a write violates the one-row-per
	// (product, talle) or (product, color) pair rule. The service's set
	// operations are upserts, so this surfaces only for writers that insert
	// pair rows directly.
	ErrDuplicateEntry = fmt.Errorf("stock: duplicate breakdown entry: %w", shared.ErrConflict)
)

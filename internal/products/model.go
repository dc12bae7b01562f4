// Package products owns the product aggregate: the product row, its images,
// its allowed variant attributes and its SKU variants.
package products

import (
	"errors"
	"fmt"
	"time"

	"github.com/tienda-shop/tienda-shop/internal/pricing"
	"github.com/tienda-shop/tienda-shop/internal/shared"
)

// Product is the aggregate root. The etiqueta column is derived and is
// rewritten eagerly by the stock ledger on every stock movement.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"category_id"`
	MaterialID  *int64    `json:"material_id,omitempty"`
	ColorID     *int64    `json:"color_id,omitempty"`
	TalleID     *int64    `json:"talle_id,omitempty"`
	Price       float64   `json:"price"`
	PriceCost   float64   `json:"price_cost"`
	SalePrice   *float64  `json:"sale_price,omitempty"`
	HasVariants bool      `json:"has_variants"`
	Etiqueta    string    `json:"etiqueta"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PricingView projects the fields the pricing engine reads.
func (p Product) PricingView() pricing.ProductView {
	return pricing.ProductView{
		Price:     p.Price,
		PriceCost: p.PriceCost,
		SalePrice: p.SalePrice,
		CreatedAt: p.CreatedAt,
	}
}

// ProductImage belongs to one product. The main image is the one with the
// lowest (display_order, id).
type ProductImage struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
	Alt          string `json:"alt,omitempty"`
}

// Variant is one purchasable SKU of a product in variant mode. Attrs maps
// attribute name to the chosen value and must stay within the product's
// allowed variant attributes.
type Variant struct {
	ID        int64             `json:"id"`
	ProductID int64             `json:"product_id"`
	SKU       string            `json:"sku"`
	Attrs     map[string]string `json:"attributes"`
	Price     *float64          `json:"price,omitempty"`
	Stock     int               `json:"stock"`
	ImageURL  *string           `json:"image_url,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// RefNames carries the resolved names of a product's references. Optional
// references degrade to empty strings when the target row is gone.
type RefNames struct {
	Category string
	Material string
	Color    string
	Talle    string
}

var (
	ErrInvalidPrice        = fmt.Errorf("price must be greater than zero: %w", shared.ErrValidation)
	ErrCostAbovePrice      = fmt.Errorf("price_cost must not exceed price: %w", shared.ErrValidation)
	ErrSalePriceTooHigh    = fmt.Errorf("sale_price must be below price: %w", shared.ErrValidation)
	ErrAttributeNotAllowed = fmt.Errorf("attribute not allowed for product: %w", shared.ErrValidation)
	ErrValueNotAllowed     = fmt.Errorf("attribute value not allowed: %w", shared.ErrValidation)
	ErrMalformedAttributes = fmt.Errorf("malformed attribute set: %w", shared.ErrValidation)
	ErrDuplicateSKU        = fmt.Errorf("sku already in use: %w", shared.ErrConflict)
	ErrDuplicateVariant    = fmt.Errorf("variant with identical attributes exists: %w", shared.ErrConflict)
)

// ErrVariantsExhausted is returned when SKU collision resolution gives up.
var ErrVariantsExhausted = errors.New("products: could not derive a unique sku")

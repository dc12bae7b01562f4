// Package pricing computes effective prices, profit margins and display
// labels for catalog products. It is storage-free: callers pass a snapshot of
// the fields the rules depend on.
package pricing

import "time"

// Display labels, in priority order.
const (
	LabelLastUnit   = "Última unidad"
	LabelOnSale     = "Descuento"
	LabelNewArrival = "Nuevo ingreso"
)

// NewArrivalWindow is how long a product counts as a new arrival.
const NewArrivalWindow = 7 * 24 * time.Hour

// ProductView is the pricing-relevant snapshot of a product.
type ProductView struct {
	Price     float64
	PriceCost float64
	SalePrice *float64
	CreatedAt time.Time
}

// IsOnSale reports whether the promotional price applies. A sale price equal
// to or above the base price never counts as a sale.
func IsOnSale(p ProductView) bool {
	return p.SalePrice != nil && *p.SalePrice < p.Price
}

// EffectivePrice returns the sale price when the product is on sale,
// otherwise the base price.
func EffectivePrice(p ProductView) float64 {
	if IsOnSale(p) {
		return *p.SalePrice
	}
	return p.Price
}

// ProfitMargin returns the margin over cost as a percentage. A zero cost
// yields 0, not an error; callers rely on that boundary.
func ProfitMargin(p ProductView) float64 {
	if p.PriceCost == 0 {
		return 0
	}
	return (p.Price - p.PriceCost) / p.PriceCost * 100
}

// VariantPrice returns the variant's own price override when set, otherwise
// the parent's base price. Sale pricing never applies to variant overrides.
func VariantPrice(override *float64, p ProductView) float64 {
	if override != nil && *override > 0 {
		return *override
	}
	return p.Price
}

// Label returns the display label for a product given its total stock.
// Rules are checked in priority order and the first match wins: a single
// remaining unit beats an active discount, which beats a recent arrival.
func Label(p ProductView, totalStock int, now time.Time) string {
	if totalStock == 1 {
		return LabelLastUnit
	}
	if IsOnSale(p) {
		return LabelOnSale
	}
	if !p.CreatedAt.IsZero() && now.Sub(p.CreatedAt) <= NewArrivalWindow {
		return LabelNewArrival
	}
	return ""
}

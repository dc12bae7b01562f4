package products

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tienda-shop/tienda-shop/internal/pricing"
	"github.com/tienda-shop/tienda-shop/internal/stock"
)

// ProductForm is the write shape for create and update.
type ProductForm struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	CategoryID   int64    `json:"category_id" validate:"required,gt=0"`
	MaterialID   *int64   `json:"material_id"`
	ColorID      *int64   `json:"color_id"`
	TalleID      *int64   `json:"talle_id"`
	Price        float64  `json:"price" validate:"required,gt=0"`
	PriceCost    float64  `json:"price_cost" validate:"gte=0"`
	SalePrice    *float64 `json:"sale_price"`
	HasVariants  bool     `json:"has_variants"`
	AttributeIDs []int64  `json:"attribute_ids"`
}

// VariantForm is the write shape for variants. SKU may be left empty to have
// one derived from the product name and attributes.
type VariantForm struct {
	SKU      string            `json:"sku"`
	Attrs    map[string]string `json:"attributes"`
	Price    *float64          `json:"price"`
	Stock    int               `json:"stock" validate:"gte=0"`
	ImageURL *string           `json:"image_url"`
}

// ImageForm is the write shape for product images.
type ImageForm struct {
	URL          string `json:"url" validate:"required,url"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
	Alt          string `json:"alt"`
}

// ProductSummary is the list projection.
type ProductSummary struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	CategoryID   int64    `json:"category_id"`
	CategoryName string   `json:"category_name"`
	MaterialName string   `json:"material_name,omitempty"`
	ColorName    string   `json:"color_name,omitempty"`
	TalleName    string   `json:"talle_name,omitempty"`
	Price        float64  `json:"price"`
	SalePrice    *float64 `json:"sale_price,omitempty"`
	DisplayPrice string   `json:"display_price"`
	IsOnSale     bool     `json:"is_on_sale"`
	TotalStock   int      `json:"total_stock"`
	Etiqueta     string   `json:"etiqueta,omitempty"`
	MainImage    string   `json:"main_image,omitempty"`
}

// VariantView decorates a variant with its resolved price.
type VariantView struct {
	Variant
	CurrentPrice float64 `json:"current_price"`
	DisplayPrice string  `json:"display_price"`
}

// ProductDetail is the full projection.
type ProductDetail struct {
	Product
	CategoryName       string             `json:"category_name"`
	MaterialName       string             `json:"material_name,omitempty"`
	ColorName          string             `json:"color_name,omitempty"`
	TalleName          string             `json:"talle_name,omitempty"`
	DisplayPrice       string             `json:"display_price"`
	IsOnSale           bool               `json:"is_on_sale"`
	ProfitMargin       float64            `json:"profit_margin"`
	TotalStock         int                `json:"total_stock"`
	TallesDisponibles  []stock.TalleStock `json:"talles_disponibles,omitempty"`
	ColoresDisponibles []stock.ColorStock `json:"colores_disponibles,omitempty"`
	Variants           []VariantView      `json:"variants,omitempty"`
	MainImage          string             `json:"main_image,omitempty"`
	Images             []string           `json:"images"`
}

// Prices are shown formatted for the es-AR locale.
var pricePrinter = message.NewPrinter(language.MustParse("es-AR"))

func formatPrice(v float64) string {
	return pricePrinter.Sprintf("$ %.2f", v)
}

func newVariantView(v Variant, parent pricing.ProductView) VariantView {
	price := pricing.VariantPrice(v.Price, parent)
	return VariantView{Variant: v, CurrentPrice: price, DisplayPrice: formatPrice(price)}
}

package products

import (
	"fmt"
	"strings"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

func validateForm(form ProductForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return fmt.Errorf("product name is required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(form.Description) == "" {
		return fmt.Errorf("product description is required: %w", shared.ErrValidation)
	}
	if form.CategoryID <= 0 {
		return fmt.Errorf("category is required: %w", shared.ErrValidation)
	}
	if form.Price <= 0 {
		return ErrInvalidPrice
	}
	if form.PriceCost < 0 {
		return fmt.Errorf("price_cost must not be negative: %w", shared.ErrValidation)
	}
	if form.PriceCost > form.Price {
		return ErrCostAbovePrice
	}
	if form.SalePrice != nil {
		if *form.SalePrice <= 0 {
			return fmt.Errorf("sale_price must be positive: %w", shared.ErrValidation)
		}
		if *form.SalePrice >= form.Price {
			return ErrSalePriceTooHigh
		}
	}
	return nil
}

func validateVariantForm(form VariantForm) error {
	if len(form.Attrs) == 0 {
		return ErrMalformedAttributes
	}
	for key, value := range form.Attrs {
		if strings.TrimSpace(key) == "" || strings.TrimSpace(value) == "" {
			return ErrMalformedAttributes
		}
	}
	if form.Stock < 0 {
		return fmt.Errorf("variant stock must not be negative: %w", shared.ErrValidation)
	}
	if form.Price != nil && *form.Price <= 0 {
		return fmt.Errorf("variant price must be positive: %w", shared.ErrValidation)
	}
	return nil
}

package catalog

import (
	"fmt"
	"strings"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required: %w", shared.ErrValidation)
	}
	return nil
}

func validateAttribute(attr VariantAttribute) error {
	if err := validateName(attr.Name); err != nil {
		return err
	}
	if len(attr.ValuesList()) == 0 {
		return fmt.Errorf("attribute needs at least one allowed value: %w", shared.ErrValidation)
	}
	return nil
}

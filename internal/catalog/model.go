// Package catalog manages the descriptive attributes products are built
// from: categories, materials, colors, talles and variant attributes.
package catalog

import "strings"

// Category groups products.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Material is an optional descriptive attribute of a product.
type Material struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Color is a descriptive attribute; in flat mode it also carries a per-color
// stock breakdown.
type Color struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Talle is the garment size attribute; in flat mode it carries the
// stock-bearing breakdown.
type Talle struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// VariantAttribute declares a free-form attribute and its allowed values,
// stored as a comma-separated list (e.g. "Rojo,Azul,Verde").
type VariantAttribute struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Values string `json:"values"`
}

// ValuesList splits the comma-separated allowed values, trimming whitespace.
func (a VariantAttribute) ValuesList() []string {
	parts := strings.Split(a.Values, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// HasValue reports whether v is one of the allowed values.
func (a VariantAttribute) HasValue(v string) bool {
	for _, allowed := range a.ValuesList() {
		if allowed == v {
			return true
		}
	}
	return false
}

package products

import (
	"sort"
	"strings"
)

const skuBaseLimit = 20

// GenerateSKU derives a deterministic SKU from the product name and the
// variant's attribute set: the uppercased name (spaces replaced by
// underscores, truncated to 20 characters) followed by a two-character
// abbreviation of each attribute key and value, keys in sorted order.
func GenerateSKU(productName string, attrs map[string]string) string {
	base := strings.ReplaceAll(strings.ToUpper(productName), " ", "_")
	if runes := []rune(base); len(runes) > skuBaseLimit {
		base = string(runes[:skuBaseLimit])
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, abbrev(k)+abbrev(attrs[k]))
	}
	if len(parts) == 0 {
		return base
	}
	return base + "_" + strings.Join(parts, "_")
}

func abbrev(s string) string {
	runes := []rune(s)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return string(runes)
}

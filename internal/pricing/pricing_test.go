package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestIsOnSale(t *testing.T) {
	cases := []struct {
		name string
		p    ProductView
		want bool
	}{
		{"no sale price", ProductView{Price: 1000}, false},
		{"sale below base", ProductView{Price: 1000, SalePrice: fptr(800)}, true},
		{"sale equal to base", ProductView{Price: 1000, SalePrice: fptr(1000)}, false},
		{"sale above base", ProductView{Price: 1000, SalePrice: fptr(1200)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsOnSale(tc.p))
		})
	}
}

func TestEffectivePrice(t *testing.T) {
	require.InDelta(t, 800.0, EffectivePrice(ProductView{Price: 1000, SalePrice: fptr(800)}), 0.0001)
	require.InDelta(t, 1000.0, EffectivePrice(ProductView{Price: 1000, SalePrice: fptr(1200)}), 0.0001)
	require.InDelta(t, 1000.0, EffectivePrice(ProductView{Price: 1000}), 0.0001)
}

func TestProfitMargin(t *testing.T) {
	require.Zero(t, ProfitMargin(ProductView{Price: 100, PriceCost: 0}))
	require.InDelta(t, 100.0, ProfitMargin(ProductView{Price: 100, PriceCost: 50}), 0.0001)
	require.InDelta(t, 25.0, ProfitMargin(ProductView{Price: 125, PriceCost: 100}), 0.0001)
}

func TestVariantPrice(t *testing.T) {
	parent := ProductView{Price: 1000, SalePrice: fptr(800)}
	require.InDelta(t, 1500.0, VariantPrice(fptr(1500), parent), 0.0001)
	// No override falls back to the base price, never the sale price.
	require.InDelta(t, 1000.0, VariantPrice(nil, parent), 0.0001)
	require.InDelta(t, 1000.0, VariantPrice(fptr(0), parent), 0.0001)
}

func TestLabelPriority(t *testing.T) {
	now := time.Now()
	fresh := now.Add(-24 * time.Hour)
	old := now.Add(-30 * 24 * time.Hour)

	onSale := ProductView{Price: 1000, SalePrice: fptr(800), CreatedAt: fresh}

	// A single unit wins even when the product is also on sale and recent.
	require.Equal(t, LabelLastUnit, Label(onSale, 1, now))
	require.Equal(t, LabelOnSale, Label(onSale, 5, now))
	require.Equal(t, LabelNewArrival, Label(ProductView{Price: 1000, CreatedAt: fresh}, 5, now))
	require.Equal(t, "", Label(ProductView{Price: 1000, CreatedAt: old}, 5, now))
	require.Equal(t, "", Label(ProductView{Price: 1000, CreatedAt: old}, 0, now))
}

func TestLabelNewArrivalBoundary(t *testing.T) {
	now := time.Now()
	exactly := now.Add(-NewArrivalWindow)
	past := now.Add(-NewArrivalWindow - time.Second)

	require.Equal(t, LabelNewArrival, Label(ProductView{Price: 10, CreatedAt: exactly}, 3, now))
	require.Equal(t, "", Label(ProductView{Price: 10, CreatedAt: past}, 3, now))
}

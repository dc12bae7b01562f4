package products

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSKU(t *testing.T) {
	t.Run("name is uppercased and spaces become underscores", func(t *testing.T) {
		sku := GenerateSKU("remera basica", map[string]string{"color": "rojo"})
		require.Equal(t, "REMERA_BASICA_coro", sku)
	})

	t.Run("name is truncated to twenty characters", func(t *testing.T) {
		sku := GenerateSKU("camisa manga larga oxford premium", map[string]string{"talle": "m"})
		require.Equal(t, "CAMISA_MANGA_LARGA_O_tam", sku)
	})

	t.Run("attribute keys are sorted for determinism", func(t *testing.T) {
		attrs := map[string]string{"talle": "xl", "color": "azul"}
		first := GenerateSKU("buzo", attrs)
		for i := 0; i < 20; i++ {
			require.Equal(t, first, GenerateSKU("buzo", attrs))
		}
		require.Equal(t, "BUZO_coaz_taxl", first)
	})

	t.Run("single-rune segments are kept whole", func(t *testing.T) {
		sku := GenerateSKU("gorra", map[string]string{"t": "s"})
		require.Equal(t, "GORRA_ts", sku)
	})

	t.Run("no attributes yields the bare name", func(t *testing.T) {
		sku := GenerateSKU("pantalon", nil)
		require.Equal(t, "PANTALON", sku)
	})
}

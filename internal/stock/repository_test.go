package stock

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

func TestTranslatePairWrite(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "product_talle_stock_pkey"}
	require.ErrorIs(t, translatePairWrite(dup), ErrDuplicateEntry)
	require.ErrorIs(t, translatePairWrite(dup), shared.ErrConflict)

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "product_color_stock_color_id_fkey"}
	require.ErrorIs(t, translatePairWrite(fk), shared.ErrNotFound)

	plain := errors.New("connection reset")
	require.Equal(t, plain, translatePairWrite(plain))
	require.NoError(t, translatePairWrite(nil))
}

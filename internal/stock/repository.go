package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

// Repository persists the stock ledger in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations the service composes.
// LockProduct must be called first: it serializes concurrent movements on the
// same product.
type TxRepository interface {
	LockProduct(ctx context.Context, productID int64) (productRow, error)
	VariantProduct(ctx context.Context, variantID int64) (int64, error)
	GetTalleStock(ctx context.Context, productID, talleID int64) (int, bool, error)
	UpsertTalleStock(ctx context.Context, productID, talleID int64, qty int) error
	GetColorStock(ctx context.Context, productID, colorID int64) (int, bool, error)
	UpsertColorStock(ctx context.Context, productID, colorID int64, qty int) error
	LockVariant(ctx context.Context, variantID int64) (productID int64, stock int, err error)
	UpdateVariantStock(ctx context.Context, variantID int64, qty int) error
	SumTalleStock(ctx context.Context, productID int64) (int, error)
	SumVariantStock(ctx context.Context, productID int64) (int, error)
	UpdateProductLabel(ctx context.Context, productID int64, label string) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("stock repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// GetBreakdown loads the complete stock picture of a product.
func (r *Repository) GetBreakdown(ctx context.Context, productID int64) (Breakdown, error) {
	b := Breakdown{ProductID: productID}
	err := r.pool.QueryRow(ctx, `SELECT has_variants FROM products WHERE id = $1`, productID).Scan(&b.HasVariants)
	if errors.Is(err, pgx.ErrNoRows) {
		return Breakdown{}, fmt.Errorf("product %d: %w", productID, shared.ErrNotFound)
	}
	if err != nil {
		return Breakdown{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT ts.talle_id, t.name, ts.stock
FROM product_talle_stock ts JOIN talles t ON t.id = ts.talle_id
WHERE ts.product_id = $1 ORDER BY t.name`, productID)
	if err != nil {
		return Breakdown{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var entry TalleStock
		if err := rows.Scan(&entry.TalleID, &entry.TalleName, &entry.Stock); err != nil {
			return Breakdown{}, err
		}
		b.Talles = append(b.Talles, entry)
	}
	if err := rows.Err(); err != nil {
		return Breakdown{}, err
	}

	colorRows, err := r.pool.Query(ctx, `SELECT cs.color_id, c.name, cs.stock
FROM product_color_stock cs JOIN colors c ON c.id = cs.color_id
WHERE cs.product_id = $1 ORDER BY c.name`, productID)
	if err != nil {
		return Breakdown{}, err
	}
	defer colorRows.Close()
	for colorRows.Next() {
		var entry ColorStock
		if err := colorRows.Scan(&entry.ColorID, &entry.ColorName, &entry.Stock); err != nil {
			return Breakdown{}, err
		}
		b.Colors = append(b.Colors, entry)
	}
	if err := colorRows.Err(); err != nil {
		return Breakdown{}, err
	}

	if b.HasVariants {
		err = r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(stock), 0) FROM product_variants WHERE product_id = $1`, productID).Scan(&b.VariantSum)
		if err != nil {
			return Breakdown{}, err
		}
	}
	return b, nil
}

func (r *txRepository) LockProduct(ctx context.Context, productID int64) (productRow, error) {
	var p productRow
	err := r.tx.QueryRow(ctx, `SELECT id, price, price_cost, sale_price, has_variants, created_at
FROM products WHERE id = $1 FOR UPDATE`, productID).
		Scan(&p.ID, &p.Price, &p.PriceCost, &p.SalePrice, &p.HasVariants, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return productRow{}, fmt.Errorf("product %d: %w", productID, shared.ErrNotFound)
	}
	return p, err
}

func (r *txRepository) GetTalleStock(ctx context.Context, productID, talleID int64) (int, bool, error) {
	var qty int
	err := r.tx.QueryRow(ctx, `SELECT stock FROM product_talle_stock WHERE product_id = $1 AND talle_id = $2 FOR UPDATE`, productID, talleID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	return qty, err == nil, err
}

func (r *txRepository) UpsertTalleStock(ctx context.Context, productID, talleID int64, qty int) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO product_talle_stock (product_id, talle_id, stock)
VALUES ($1, $2, $3)
ON CONFLICT (product_id, talle_id) DO UPDATE SET stock = EXCLUDED.stock`, productID, talleID, qty)
	return translatePairWrite(err)
}

func (r *txRepository) GetColorStock(ctx context.Context, productID, colorID int64) (int, bool, error) {
	var qty int
	err := r.tx.QueryRow(ctx, `SELECT stock FROM product_color_stock WHERE product_id = $1 AND color_id = $2 FOR UPDATE`, productID, colorID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	return qty, err == nil, err
}

func (r *txRepository) UpsertColorStock(ctx context.Context, productID, colorID int64, qty int) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO product_color_stock (product_id, color_id, stock)
VALUES ($1, $2, $3)
ON CONFLICT (product_id, color_id) DO UPDATE SET stock = EXCLUDED.stock`, productID, colorID, qty)
	return translatePairWrite(err)
}

// VariantProduct resolves the owning product without taking a lock. Callers
// lock the product row first so product and variant locks are always taken in
// the same order.
func (r *txRepository) VariantProduct(ctx context.Context, variantID int64) (int64, error) {
	var productID int64
	err := r.tx.QueryRow(ctx, `SELECT product_id FROM product_variants WHERE id = $1`, variantID).Scan(&productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("variant %d: %w", variantID, shared.ErrNotFound)
	}
	return productID, err
}

func (r *txRepository) LockVariant(ctx context.Context, variantID int64) (int64, int, error) {
	var productID int64
	var qty int
	err := r.tx.QueryRow(ctx, `SELECT product_id, stock FROM product_variants WHERE id = $1 FOR UPDATE`, variantID).Scan(&productID, &qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("variant %d: %w", variantID, shared.ErrNotFound)
	}
	return productID, qty, err
}

func (r *txRepository) UpdateVariantStock(ctx context.Context, variantID int64, qty int) error {
	_, err := r.tx.Exec(ctx, `UPDATE product_variants SET stock = $1, updated_at = NOW() WHERE id = $2`, qty, variantID)
	return err
}

func (r *txRepository) SumTalleStock(ctx context.Context, productID int64) (int, error) {
	var total int
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(SUM(stock), 0) FROM product_talle_stock WHERE product_id = $1`, productID).Scan(&total)
	return total, err
}

func (r *txRepository) SumVariantStock(ctx context.Context, productID int64) (int, error) {
	var total int
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(SUM(stock), 0) FROM product_variants WHERE product_id = $1`, productID).Scan(&total)
	return total, err
}

func (r *txRepository) UpdateProductLabel(ctx context.Context, productID int64, label string) error {
	_, err := r.tx.Exec(ctx, `UPDATE products SET etiqueta = $1, updated_at = NOW() WHERE id = $2`, label, productID)
	return err
}

// translatePairWrite maps constraint violations on the decomposition tables:
// a duplicate pair insert is a conflict, a reference to a talle or color that
// does not exist is not found.
func translatePairWrite(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicateEntry
		case "23503":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, shared.ErrNotFound)
		}
	}
	return err
}

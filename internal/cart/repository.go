package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

// Repository persists carts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// itemDetail is a cart line joined with the fields the service needs to
// price it. Optional references degrade to empty names.
type itemDetail struct {
	Item
	ProductName string
	ColorName   string
	TalleName   string
	Price       float64
	SalePrice   *float64
}

// TxRepository exposes the transactional operations the service composes.
// LockCart must be called first: it serializes concurrent writes on the same
// cart.
type TxRepository interface {
	InsertCart(ctx context.Context, token uuid.UUID) (Cart, error)
	LockCart(ctx context.Context, token uuid.UUID) (Cart, error)
	ProductExists(ctx context.Context, productID int64) (bool, error)
	InsertItem(ctx context.Context, item Item) (Item, error)
	GetItem(ctx context.Context, cartID, itemID int64) (Item, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, cartID, itemID int64) error
	MarkCompleted(ctx context.Context, cartID int64) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("cart repository not initialised")
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

// GetByToken loads a cart without locking it.
func (r *Repository) GetByToken(ctx context.Context, token uuid.UUID) (Cart, error) {
	var c Cart
	err := r.pool.QueryRow(ctx,
		`SELECT id, token, completed, created_at FROM carts WHERE token = $1`, token).
		Scan(&c.ID, &c.Token, &c.Completed, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cart{}, fmt.Errorf("cart %s: %w", token, shared.ErrNotFound)
	}
	if err != nil {
		return Cart{}, err
	}
	return c, nil
}

// GetByID loads a cart by its internal id.
func (r *Repository) GetByID(ctx context.Context, id int64) (Cart, error) {
	var c Cart
	err := r.pool.QueryRow(ctx,
		`SELECT id, token, completed, created_at FROM carts WHERE id = $1`, id).
		Scan(&c.ID, &c.Token, &c.Completed, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cart{}, fmt.Errorf("cart %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Items loads the cart lines with their pricing context, oldest first.
func (r *Repository) Items(ctx context.Context, cartID int64) ([]itemDetail, error) {
	rows, err := r.pool.Query(ctx, `SELECT ci.id, ci.cart_id, ci.product_id, ci.color_id, ci.talle_id,
ci.quantity, ci.created_at, p.name, COALESCE(c.name, ''), COALESCE(t.name, ''), p.price, p.sale_price
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
LEFT JOIN colors c ON c.id = ci.color_id
LEFT JOIN talles t ON t.id = ci.talle_id
WHERE ci.cart_id = $1
ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]itemDetail, 0)
	for rows.Next() {
		var d itemDetail
		if err := rows.Scan(&d.ID, &d.CartID, &d.ProductID, &d.ColorID, &d.TalleID,
			&d.Quantity, &d.CreatedAt, &d.ProductName, &d.ColorName, &d.TalleName,
			&d.Price, &d.SalePrice); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (t *txRepository) InsertCart(ctx context.Context, token uuid.UUID) (Cart, error) {
	var c Cart
	err := t.tx.QueryRow(ctx,
		`INSERT INTO carts (token) VALUES ($1) RETURNING id, token, completed, created_at`, token).
		Scan(&c.ID, &c.Token, &c.Completed, &c.CreatedAt)
	return c, err
}

func (t *txRepository) LockCart(ctx context.Context, token uuid.UUID) (Cart, error) {
	var c Cart
	err := t.tx.QueryRow(ctx,
		`SELECT id, token, completed, created_at FROM carts WHERE token = $1 FOR UPDATE`, token).
		Scan(&c.ID, &c.Token, &c.Completed, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cart{}, fmt.Errorf("cart %s: %w", token, shared.ErrNotFound)
	}
	if err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (t *txRepository) ProductExists(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	return exists, err
}

func (t *txRepository) InsertItem(ctx context.Context, item Item) (Item, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO cart_items (cart_id, product_id, color_id, talle_id, quantity)
VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		item.CartID, item.ProductID, item.ColorID, item.TalleID, item.Quantity).
		Scan(&item.ID, &item.CreatedAt)
	return item, err
}

func (t *txRepository) GetItem(ctx context.Context, cartID, itemID int64) (Item, error) {
	var item Item
	err := t.tx.QueryRow(ctx, `SELECT id, cart_id, product_id, color_id, talle_id, quantity, created_at
FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.ColorID, &item.TalleID, &item.Quantity, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, fmt.Errorf("cart item %d: %w", itemID, shared.ErrNotFound)
	}
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (t *txRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	tag, err := t.tx.Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cart item %d: %w", itemID, shared.ErrNotFound)
	}
	return nil
}

func (t *txRepository) DeleteItem(ctx context.Context, cartID, itemID int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cart item %d: %w", itemID, shared.ErrNotFound)
	}
	return nil
}

func (t *txRepository) MarkCompleted(ctx context.Context, cartID int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE carts SET completed = true WHERE id = $1`, cartID)
	return err
}

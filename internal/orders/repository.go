package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

// Repository persists orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional checkout operations. LockCart must
// be called first so concurrent checkouts of the same cart serialize.
type TxRepository interface {
	LockCart(ctx context.Context, token uuid.UUID) (cartID int64, err error)
	OrderExistsForCart(ctx context.Context, cartID int64) (bool, error)
	InsertOrder(ctx context.Context, order Order) (Order, error)
	MarkCartCompleted(ctx context.Context, cartID int64) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("orders repository not initialised")
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

const orderColumns = `id, cart_id, customer_name, customer_phone, shipping_method, payment_method, delivery_option, delivery_at, completed, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CartID, &o.CustomerName, &o.CustomerPhone, &o.ShippingMethod,
		&o.PaymentMethod, &o.DeliveryOption, &o.DeliveryAt, &o.Completed, &o.CreatedAt)
	return o, err
}

func (r *Repository) Get(ctx context.Context, id int64) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// List returns all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *Repository) MarkCompleted(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET completed = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (t *txRepository) LockCart(ctx context.Context, token uuid.UUID) (int64, error) {
	var cartID int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM carts WHERE token = $1 FOR UPDATE`, token).Scan(&cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("cart %s: %w", token, shared.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return cartID, nil
}

func (t *txRepository) OrderExistsForCart(ctx context.Context, cartID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE cart_id = $1)`, cartID).Scan(&exists)
	return exists, err
}

func (t *txRepository) InsertOrder(ctx context.Context, o Order) (Order, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO orders (cart_id, customer_name, customer_phone, shipping_method, payment_method, delivery_option, delivery_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, completed, created_at`,
		o.CartID, o.CustomerName, o.CustomerPhone, o.ShippingMethod, o.PaymentMethod, o.DeliveryOption, o.DeliveryAt).
		Scan(&o.ID, &o.Completed, &o.CreatedAt)
	return o, err
}

func (t *txRepository) MarkCartCompleted(ctx context.Context, cartID int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE carts SET completed = true WHERE id = $1`, cartID)
	return err
}

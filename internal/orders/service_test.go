package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

type fakeCart struct {
	id        int64
	completed bool
}

type memoryRepo struct {
	nextID int64
	carts  map[uuid.UUID]*fakeCart
	orders map[int64]Order
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, carts: make(map[uuid.UUID]*fakeCart), orders: make(map[int64]Order)}
}

func (r *memoryRepo) addCart() uuid.UUID {
	token := uuid.New()
	r.carts[token] = &fakeCart{id: r.nextID}
	r.nextID++
	return token
}

// WithTx snapshots state and restores it when the callback fails, mimicking
// a rollback.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapOrders := make(map[int64]Order, len(r.orders))
	for k, v := range r.orders {
		snapOrders[k] = v
	}
	snapCarts := make(map[uuid.UUID]*fakeCart, len(r.carts))
	for k, v := range r.carts {
		c := *v
		snapCarts[k] = &c
	}
	snapNext := r.nextID

	if err := fn(ctx, (*memoryTx)(r)); err != nil {
		r.orders = snapOrders
		r.carts = snapCarts
		r.nextID = snapNext
		return err
	}
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return o, nil
}

func (r *memoryRepo) List(_ context.Context) ([]Order, error) {
	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	// Newest first.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *memoryRepo) MarkCompleted(_ context.Context, id int64) error {
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	o.Completed = true
	r.orders[id] = o
	return nil
}

type memoryTx memoryRepo

func (t *memoryTx) LockCart(_ context.Context, token uuid.UUID) (int64, error) {
	c, ok := t.carts[token]
	if !ok {
		return 0, fmt.Errorf("cart %s: %w", token, shared.ErrNotFound)
	}
	return c.id, nil
}

func (t *memoryTx) OrderExistsForCart(_ context.Context, cartID int64) (bool, error) {
	for _, o := range t.orders {
		if o.CartID == cartID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) InsertOrder(_ context.Context, o Order) (Order, error) {
	r := (*memoryRepo)(t)
	o.ID = r.nextID
	r.nextID++
	o.CreatedAt = time.Now()
	r.orders[o.ID] = o
	return o, nil
}

func (t *memoryTx) MarkCartCompleted(_ context.Context, cartID int64) error {
	for _, c := range t.carts {
		if c.id == cartID {
			c.completed = true
			return nil
		}
	}
	return fmt.Errorf("cart %d: %w", cartID, shared.ErrNotFound)
}

type fixedTotals map[int64]float64

func (f fixedTotals) TotalByID(_ context.Context, cartID int64) (float64, error) {
	return f[cartID], nil
}

func validOrderForm(token uuid.UUID) CreateForm {
	return CreateForm{
		CartToken:      token,
		CustomerName:   "Ana Perez",
		ShippingMethod: ShippingOlmos,
		PaymentMethod:  PaymentCash,
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("checkout marks the cart completed", func(t *testing.T) {
		repo := newMemoryRepo()
		token := repo.addCart()
		svc := NewService(repo, fixedTotals{repo.carts[token].id: 3500})

		view, err := svc.Create(ctx, validOrderForm(token))
		require.NoError(t, err)
		require.Equal(t, "Ana Perez", view.CustomerName)
		require.Equal(t, 3500.0, view.Total)
		require.False(t, view.Completed)
		require.True(t, repo.carts[token].completed)
	})

	t.Run("second order on the same cart conflicts", func(t *testing.T) {
		repo := newMemoryRepo()
		token := repo.addCart()
		svc := NewService(repo, fixedTotals{})

		_, err := svc.Create(ctx, validOrderForm(token))
		require.NoError(t, err)

		_, err = svc.Create(ctx, validOrderForm(token))
		require.ErrorIs(t, err, ErrCartAlreadyOrdered)
		require.ErrorIs(t, err, shared.ErrConflict)
		require.Len(t, repo.orders, 1)
	})

	t.Run("unknown cart", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := NewService(repo, fixedTotals{})
		_, err := svc.Create(ctx, validOrderForm(uuid.New()))
		require.ErrorIs(t, err, shared.ErrNotFound)
		require.Empty(t, repo.orders)
	})

	t.Run("customer name is required", func(t *testing.T) {
		repo := newMemoryRepo()
		token := repo.addCart()
		svc := NewService(repo, fixedTotals{})

		form := validOrderForm(token)
		form.CustomerName = "   "
		_, err := svc.Create(ctx, form)
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("enums are checked", func(t *testing.T) {
		repo := newMemoryRepo()
		token := repo.addCart()
		svc := NewService(repo, fixedTotals{})

		form := validOrderForm(token)
		form.ShippingMethod = "drone"
		_, err := svc.Create(ctx, form)
		require.ErrorIs(t, err, shared.ErrValidation)

		form = validOrderForm(token)
		form.PaymentMethod = "cheque"
		_, err = svc.Create(ctx, form)
		require.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestValidateDeliverySchedule(t *testing.T) {
	now := time.Now()
	opt := func(o DeliveryOption) *DeliveryOption { return &o }

	cases := []struct {
		name    string
		method  ShippingMethod
		option  *DeliveryOption
		at      *time.Time
		wantErr bool
	}{
		{"pickup without scheduling", ShippingOlmos, nil, nil, false},
		{"pickup with option is rejected", ShippingPlaza, opt(DeliveryNow), nil, true},
		{"pickup with timestamp is rejected", ShippingDomicilio, nil, &now, true},
		{"courier requires an option", ShippingCadete, nil, nil, true},
		{"courier asap", ShippingCadete, opt(DeliveryNow), nil, false},
		{"courier today needs a time", ShippingCadete, opt(DeliveryToday), nil, true},
		{"courier today with time", ShippingCadete, opt(DeliveryToday), &now, false},
		{"courier tomorrow with time", ShippingCadete, opt(DeliveryTomorrow), &now, false},
		{"courier on date needs a time", ShippingCadete, opt(DeliveryOnDate), nil, true},
		{"courier unknown option", ShippingCadete, opt("pasado"), nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDeliverySchedule(tc.method, tc.option, tc.at)
			if tc.wantErr {
				require.ErrorIs(t, err, shared.ErrValidation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	token := repo.addCart()
	svc := NewService(repo, fixedTotals{repo.carts[token].id: 100})

	created, err := svc.Create(ctx, validOrderForm(token))
	require.NoError(t, err)

	view, err := svc.MarkCompleted(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, view.Completed)

	_, err = svc.MarkCompleted(ctx, 999)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, fixedTotals{})

	repo.orders[1] = Order{ID: 1, CartID: 1, CreatedAt: time.Now().Add(-time.Hour)}
	repo.orders[2] = Order{ID: 2, CartID: 2, CreatedAt: time.Now()}

	views, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, int64(2), views[0].ID)
	require.Equal(t, int64(1), views[1].ID)
}

package cart

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

type fakeProduct struct {
	name      string
	price     float64
	salePrice *float64
}

type memoryRepo struct {
	nextID   int64
	carts    map[int64]Cart
	items    map[int64]Item
	products map[int64]fakeProduct
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:   1,
		carts:    make(map[int64]Cart),
		items:    make(map[int64]Item),
		products: make(map[int64]fakeProduct),
	}
}

func (r *memoryRepo) id() int64 {
	id := r.nextID
	r.nextID++
	return id
}

// WithTx snapshots state and restores it when the callback fails, mimicking
// a rollback.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapCarts := make(map[int64]Cart, len(r.carts))
	for k, v := range r.carts {
		snapCarts[k] = v
	}
	snapItems := make(map[int64]Item, len(r.items))
	for k, v := range r.items {
		snapItems[k] = v
	}
	snapNext := r.nextID

	if err := fn(ctx, (*memoryTx)(r)); err != nil {
		r.carts = snapCarts
		r.items = snapItems
		r.nextID = snapNext
		return err
	}
	return nil
}

func (r *memoryRepo) GetByToken(_ context.Context, token uuid.UUID) (Cart, error) {
	for _, c := range r.carts {
		if c.Token == token {
			return c, nil
		}
	}
	return Cart{}, fmt.Errorf("cart %s: %w", token, shared.ErrNotFound)
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (Cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return Cart{}, fmt.Errorf("cart %d: %w", id, shared.ErrNotFound)
	}
	return c, nil
}

func (r *memoryRepo) Items(_ context.Context, cartID int64) ([]itemDetail, error) {
	details := make([]itemDetail, 0)
	for _, item := range r.items {
		if item.CartID != cartID {
			continue
		}
		p := r.products[item.ProductID]
		details = append(details, itemDetail{
			Item:        item,
			ProductName: p.name,
			Price:       p.price,
			SalePrice:   p.salePrice,
		})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].ID < details[j].ID })
	return details, nil
}

type memoryTx memoryRepo

func (t *memoryTx) InsertCart(_ context.Context, token uuid.UUID) (Cart, error) {
	r := (*memoryRepo)(t)
	c := Cart{ID: r.id(), Token: token, CreatedAt: time.Now()}
	r.carts[c.ID] = c
	return c, nil
}

func (t *memoryTx) LockCart(_ context.Context, token uuid.UUID) (Cart, error) {
	return (*memoryRepo)(t).GetByToken(context.Background(), token)
}

func (t *memoryTx) ProductExists(_ context.Context, productID int64) (bool, error) {
	_, ok := t.products[productID]
	return ok, nil
}

func (t *memoryTx) InsertItem(_ context.Context, item Item) (Item, error) {
	r := (*memoryRepo)(t)
	item.ID = r.id()
	item.CreatedAt = time.Now()
	r.items[item.ID] = item
	return item, nil
}

func (t *memoryTx) GetItem(_ context.Context, cartID, itemID int64) (Item, error) {
	item, ok := t.items[itemID]
	if !ok || item.CartID != cartID {
		return Item{}, fmt.Errorf("cart item %d: %w", itemID, shared.ErrNotFound)
	}
	return item, nil
}

func (t *memoryTx) UpdateItemQuantity(_ context.Context, itemID int64, quantity int) error {
	item, ok := t.items[itemID]
	if !ok {
		return fmt.Errorf("cart item %d: %w", itemID, shared.ErrNotFound)
	}
	item.Quantity = quantity
	t.items[itemID] = item
	return nil
}

func (t *memoryTx) DeleteItem(_ context.Context, cartID, itemID int64) error {
	item, ok := t.items[itemID]
	if !ok || item.CartID != cartID {
		return fmt.Errorf("cart item %d: %w", itemID, shared.ErrNotFound)
	}
	delete(t.items, itemID)
	return nil
}

func (t *memoryTx) MarkCompleted(_ context.Context, cartID int64) error {
	c, ok := t.carts[cartID]
	if !ok {
		return fmt.Errorf("cart %d: %w", cartID, shared.ErrNotFound)
	}
	c.Completed = true
	t.carts[cartID] = c
	return nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	sale := 800.0
	repo.products[1] = fakeProduct{name: "Remera", price: 1000}
	repo.products[2] = fakeProduct{name: "Buzo", price: 2000, salePrice: &sale}
	return NewService(repo), repo
}

func TestCreateCart(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart has total zero", func(t *testing.T) {
		svc, _ := newTestService()
		view, err := svc.Create(ctx, CreateForm{})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, view.Token)
		require.False(t, view.Completed)
		require.Empty(t, view.Items)
		require.Zero(t, view.Total)
	})

	t.Run("nested items are priced at the effective price", func(t *testing.T) {
		svc, _ := newTestService()
		view, err := svc.Create(ctx, CreateForm{Items: []ItemForm{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 3},
		}})
		require.NoError(t, err)
		require.Len(t, view.Items, 2)
		require.Equal(t, 2000.0, view.Items[0].Subtotal)
		require.Equal(t, 2400.0, view.Items[1].Subtotal, "sale price applies")
		require.Equal(t, 4400.0, view.Total)
	})

	t.Run("quantity defaults to one", func(t *testing.T) {
		svc, _ := newTestService()
		view, err := svc.Create(ctx, CreateForm{Items: []ItemForm{{ProductID: 1}}})
		require.NoError(t, err)
		require.Equal(t, 1, view.Items[0].Quantity)
	})

	t.Run("an unknown product leaves no cart behind", func(t *testing.T) {
		svc, repo := newTestService()
		_, err := svc.Create(ctx, CreateForm{Items: []ItemForm{
			{ProductID: 1, Quantity: 1},
			{ProductID: 99, Quantity: 1},
		}})
		require.ErrorIs(t, err, shared.ErrNotFound)
		require.Empty(t, repo.carts, "creation is all-or-nothing")
		require.Empty(t, repo.items)
	})

	t.Run("negative quantity is rejected", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Create(ctx, CreateForm{Items: []ItemForm{{ProductID: 1, Quantity: -1}}})
		require.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestCartItemMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("add then update then remove", func(t *testing.T) {
		svc, _ := newTestService()
		view, err := svc.Create(ctx, CreateForm{})
		require.NoError(t, err)

		view, err = svc.AddItem(ctx, view.Token, ItemForm{ProductID: 1, Quantity: 1})
		require.NoError(t, err)
		require.Len(t, view.Items, 1)
		require.Equal(t, 1000.0, view.Total)

		view, err = svc.UpdateQuantity(ctx, view.Token, view.Items[0].ID, 4)
		require.NoError(t, err)
		require.Equal(t, 4000.0, view.Total)

		view, err = svc.RemoveItem(ctx, view.Token, view.Items[0].ID)
		require.NoError(t, err)
		require.Empty(t, view.Items)
		require.Zero(t, view.Total)
	})

	t.Run("total does not depend on insertion order", func(t *testing.T) {
		svc, _ := newTestService()
		a, err := svc.Create(ctx, CreateForm{Items: []ItemForm{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}})
		require.NoError(t, err)
		b, err := svc.Create(ctx, CreateForm{Items: []ItemForm{{ProductID: 2, Quantity: 1}, {ProductID: 1, Quantity: 2}}})
		require.NoError(t, err)
		require.Equal(t, a.Total, b.Total)
	})

	t.Run("zero quantity update is rejected", func(t *testing.T) {
		svc, _ := newTestService()
		view, err := svc.Create(ctx, CreateForm{Items: []ItemForm{{ProductID: 1}}})
		require.NoError(t, err)
		_, err = svc.UpdateQuantity(ctx, view.Token, view.Items[0].ID, 0)
		require.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("items of other carts are out of reach", func(t *testing.T) {
		svc, _ := newTestService()
		first, err := svc.Create(ctx, CreateForm{Items: []ItemForm{{ProductID: 1}}})
		require.NoError(t, err)
		second, err := svc.Create(ctx, CreateForm{})
		require.NoError(t, err)

		_, err = svc.RemoveItem(ctx, second.Token, first.Items[0].ID)
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.AddItem(ctx, uuid.New(), ItemForm{ProductID: 1})
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCompleteCart(t *testing.T) {
	ctx := context.Background()

	t.Run("completion is one way and idempotent", func(t *testing.T) {
		svc, _ := newTestService()
		view, err := svc.Create(ctx, CreateForm{})
		require.NoError(t, err)

		c, err := svc.Complete(ctx, view.Token)
		require.NoError(t, err)
		require.True(t, c.Completed)

		c, err = svc.Complete(ctx, view.Token)
		require.NoError(t, err)
		require.True(t, c.Completed)
	})

	t.Run("a completed cart rejects item writes", func(t *testing.T) {
		svc, _ := newTestService()
		view, err := svc.Create(ctx, CreateForm{Items: []ItemForm{{ProductID: 1}}})
		require.NoError(t, err)
		_, err = svc.Complete(ctx, view.Token)
		require.NoError(t, err)

		_, err = svc.AddItem(ctx, view.Token, ItemForm{ProductID: 2})
		require.ErrorIs(t, err, ErrCartFinalized)
		require.ErrorIs(t, err, shared.ErrState)

		_, err = svc.UpdateQuantity(ctx, view.Token, view.Items[0].ID, 2)
		require.ErrorIs(t, err, ErrCartFinalized)

		_, err = svc.RemoveItem(ctx, view.Token, view.Items[0].ID)
		require.ErrorIs(t, err, ErrCartFinalized)

		// The cart remains readable and keeps its total.
		got, err := svc.Get(ctx, view.Token)
		require.NoError(t, err)
		require.Equal(t, view.Total, got.Total)
	})
}

func TestTotalByID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	view, err := svc.Create(ctx, CreateForm{Items: []ItemForm{{ProductID: 2, Quantity: 2}}})
	require.NoError(t, err)

	total, err := svc.TotalByID(ctx, view.Cart.ID)
	require.NoError(t, err)
	require.Equal(t, 1600.0, total)
}

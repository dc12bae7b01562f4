package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tienda-shop/tienda-shop/internal/pricing"
	"github.com/tienda-shop/tienda-shop/internal/shared"
)

// RepositoryPort is the persistence surface the service depends on.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetByToken(ctx context.Context, token uuid.UUID) (Cart, error)
	GetByID(ctx context.Context, id int64) (Cart, error)
	Items(ctx context.Context, cartID int64) ([]itemDetail, error)
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create opens a new cart under a fresh token. When items are supplied the
// cart and every line are written in one transaction: either the whole cart
// exists afterwards or none of it does.
func (s *Service) Create(ctx context.Context, form CreateForm) (View, error) {
	items := make([]Item, 0, len(form.Items))
	for _, f := range form.Items {
		item, err := itemFromForm(f)
		if err != nil {
			return View{}, err
		}
		items = append(items, item)
	}

	var created Cart
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		c, err := tx.InsertCart(ctx, uuid.New())
		if err != nil {
			return err
		}
		for _, item := range items {
			exists, err := tx.ProductExists(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("product %d: %w", item.ProductID, shared.ErrNotFound)
			}
			item.CartID = c.ID
			if _, err := tx.InsertItem(ctx, item); err != nil {
				return err
			}
		}
		created = c
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.buildView(ctx, created)
}

// Get loads the cart projection behind a token.
func (s *Service) Get(ctx context.Context, token uuid.UUID) (View, error) {
	c, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return View{}, err
	}
	return s.buildView(ctx, c)
}

// AddItem appends a line to an open cart.
func (s *Service) AddItem(ctx context.Context, token uuid.UUID, form ItemForm) (View, error) {
	item, err := itemFromForm(form)
	if err != nil {
		return View{}, err
	}

	var c Cart
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		locked, err := tx.LockCart(ctx, token)
		if err != nil {
			return err
		}
		if locked.Completed {
			return ErrCartFinalized
		}
		exists, err := tx.ProductExists(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("product %d: %w", item.ProductID, shared.ErrNotFound)
		}
		item.CartID = locked.ID
		if _, err := tx.InsertItem(ctx, item); err != nil {
			return err
		}
		c = locked
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.buildView(ctx, c)
}

// UpdateQuantity replaces one line's quantity.
func (s *Service) UpdateQuantity(ctx context.Context, token uuid.UUID, itemID int64, quantity int) (View, error) {
	if quantity < 1 {
		return View{}, ErrInvalidQuantity
	}

	var c Cart
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		locked, err := tx.LockCart(ctx, token)
		if err != nil {
			return err
		}
		if locked.Completed {
			return ErrCartFinalized
		}
		if _, err := tx.GetItem(ctx, locked.ID, itemID); err != nil {
			return err
		}
		if err := tx.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
			return err
		}
		c = locked
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.buildView(ctx, c)
}

// RemoveItem drops one line from an open cart.
func (s *Service) RemoveItem(ctx context.Context, token uuid.UUID, itemID int64) (View, error) {
	var c Cart
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		locked, err := tx.LockCart(ctx, token)
		if err != nil {
			return err
		}
		if locked.Completed {
			return ErrCartFinalized
		}
		if err := tx.DeleteItem(ctx, locked.ID, itemID); err != nil {
			return err
		}
		c = locked
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.buildView(ctx, c)
}

// Complete flips the cart to completed. Completing an already completed cart
// is a no-op.
func (s *Service) Complete(ctx context.Context, token uuid.UUID) (Cart, error) {
	var c Cart
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		locked, err := tx.LockCart(ctx, token)
		if err != nil {
			return err
		}
		if !locked.Completed {
			if err := tx.MarkCompleted(ctx, locked.ID); err != nil {
				return err
			}
			locked.Completed = true
		}
		c = locked
		return nil
	})
	if err != nil {
		return Cart{}, err
	}
	return c, nil
}

// TotalByID returns the cart's current total. Orders delegate here instead
// of storing a total of their own.
func (s *Service) TotalByID(ctx context.Context, cartID int64) (float64, error) {
	details, err := s.repo.Items(ctx, cartID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, d := range details {
		total += subtotal(d)
	}
	return total, nil
}

func (s *Service) buildView(ctx context.Context, c Cart) (View, error) {
	details, err := s.repo.Items(ctx, c.ID)
	if err != nil {
		return View{}, err
	}
	view := View{Cart: c, Items: make([]ItemView, 0, len(details))}
	for _, d := range details {
		unit := pricing.EffectivePrice(pricing.ProductView{Price: d.Price, SalePrice: d.SalePrice})
		view.Items = append(view.Items, ItemView{
			Item:        d.Item,
			ProductName: d.ProductName,
			ColorName:   d.ColorName,
			TalleName:   d.TalleName,
			UnitPrice:   unit,
			Subtotal:    unit * float64(d.Quantity),
		})
		view.Total += unit * float64(d.Quantity)
	}
	return view, nil
}

func subtotal(d itemDetail) float64 {
	unit := pricing.EffectivePrice(pricing.ProductView{Price: d.Price, SalePrice: d.SalePrice})
	return unit * float64(d.Quantity)
}

// itemFromForm applies the default quantity of one and validates the rest.
func itemFromForm(f ItemForm) (Item, error) {
	if f.ProductID <= 0 {
		return Item{}, fmt.Errorf("product is required: %w", shared.ErrValidation)
	}
	quantity := f.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return Item{}, ErrInvalidQuantity
	}
	return Item{
		ProductID: f.ProductID,
		ColorID:   f.ColorID,
		TalleID:   f.TalleID,
		Quantity:  quantity,
	}, nil
}

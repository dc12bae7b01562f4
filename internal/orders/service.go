package orders

import (
	"context"
	"strings"
)

// RepositoryPort is the persistence surface the service depends on.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Order, error)
	List(ctx context.Context) ([]Order, error)
	MarkCompleted(ctx context.Context, id int64) error
}

// CartPort resolves totals; orders never store one.
type CartPort interface {
	TotalByID(ctx context.Context, cartID int64) (float64, error)
}

type Service struct {
	repo  RepositoryPort
	carts CartPort
}

func NewService(repo RepositoryPort, carts CartPort) *Service {
	return &Service{repo: repo, carts: carts}
}

// Create checks out a cart. The cart row is locked for the duration of the
// transaction, the one-order-per-cart rule is checked under that lock, and
// the cart is marked completed together with the insert, so either the whole
// checkout lands or none of it.
func (s *Service) Create(ctx context.Context, form CreateForm) (View, error) {
	if err := validateForm(form); err != nil {
		return View{}, err
	}

	var created Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		cartID, err := tx.LockCart(ctx, form.CartToken)
		if err != nil {
			return err
		}
		taken, err := tx.OrderExistsForCart(ctx, cartID)
		if err != nil {
			return err
		}
		if taken {
			return ErrCartAlreadyOrdered
		}

		created, err = tx.InsertOrder(ctx, Order{
			CartID:         cartID,
			CustomerName:   strings.TrimSpace(form.CustomerName),
			CustomerPhone:  form.CustomerPhone,
			ShippingMethod: form.ShippingMethod,
			PaymentMethod:  form.PaymentMethod,
			DeliveryOption: form.DeliveryOption,
			DeliveryAt:     form.DeliveryAt,
		})
		if err != nil {
			return err
		}
		return tx.MarkCartCompleted(ctx, cartID)
	})
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, created)
}

func (s *Service) Get(ctx context.Context, id int64) (View, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, o)
}

// List returns all orders with their totals, newest first.
func (s *Service) List(ctx context.Context) ([]View, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(all))
	for _, o := range all {
		v, err := s.view(ctx, o)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// MarkCompleted flips the order's completed flag, the only mutation an order
// supports.
func (s *Service) MarkCompleted(ctx context.Context, id int64) (View, error) {
	if err := s.repo.MarkCompleted(ctx, id); err != nil {
		return View{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) view(ctx context.Context, o Order) (View, error) {
	total, err := s.carts.TotalByID(ctx, o.CartID)
	if err != nil {
		return View{}, err
	}
	return View{Order: o, Total: total}, nil
}

func validateForm(form CreateForm) error {
	if strings.TrimSpace(form.CustomerName) == "" {
		return errNameRequired
	}
	if !form.ShippingMethod.Valid() {
		return errBadShipping
	}
	if !form.PaymentMethod.Valid() {
		return errBadPayment
	}
	return ValidateDeliverySchedule(form.ShippingMethod, form.DeliveryOption, form.DeliveryAt)
}

package stock

import (
	"context"
	"time"

	"github.com/tienda-shop/tienda-shop/internal/pricing"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetBreakdown(ctx context.Context, productID int64) (Breakdown, error)
}

// ListingCache is the slice of the product read-model cache that stock
// writes must drop. Cached summaries carry total_stock and etiqueta, so a
// committed mutation that leaves the cache warm would serve pre-write data
// until the TTL expires. A nil cache disables the hook.
type ListingCache interface {
	Invalidate(ctx context.Context)
}

// Service coordinates stock movements. Every mutation runs in one
// transaction that locks the product row, applies the change and rewrites
// the product's derived label, so readers never observe a stale etiqueta.
type Service struct {
	repo  RepositoryPort
	cache ListingCache
	now   func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, cache ListingCache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// GetBreakdown returns the full stock picture of a product.
func (s *Service) GetBreakdown(ctx context.Context, productID int64) (Breakdown, error) {
	return s.repo.GetBreakdown(ctx, productID)
}

// TotalStock returns the canonical total for a product.
func (s *Service) TotalStock(ctx context.Context, productID int64) (int, error) {
	b, err := s.repo.GetBreakdown(ctx, productID)
	if err != nil {
		return 0, err
	}
	return b.Total(), nil
}

// AvailableTalles lists talle entries with stock remaining, ordered by name.
func (s *Service) AvailableTalles(ctx context.Context, productID int64) ([]TalleStock, error) {
	b, err := s.repo.GetBreakdown(ctx, productID)
	if err != nil {
		return nil, err
	}
	available := make([]TalleStock, 0, len(b.Talles))
	for _, entry := range b.Talles {
		if entry.Stock > 0 {
			available = append(available, entry)
		}
	}
	return available, nil
}

// AvailableColors lists color entries with stock remaining, ordered by name.
func (s *Service) AvailableColors(ctx context.Context, productID int64) ([]ColorStock, error) {
	b, err := s.repo.GetBreakdown(ctx, productID)
	if err != nil {
		return nil, err
	}
	available := make([]ColorStock, 0, len(b.Colors))
	for _, entry := range b.Colors {
		if entry.Stock > 0 {
			available = append(available, entry)
		}
	}
	return available, nil
}

// SetTalleStock writes an absolute quantity for a (product, talle) pair.
func (s *Service) SetTalleStock(ctx context.Context, productID, talleID int64, qty int) error {
	if qty < 0 {
		return ErrNegativeStock
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return err
		}
		if err := tx.UpsertTalleStock(ctx, productID, talleID, qty); err != nil {
			return err
		}
		return s.recomputeLabel(ctx, tx, product)
	})
	if err != nil {
		return err
	}
	s.dropListings(ctx)
	return nil
}

// AdjustTalleStock applies a delta to a (product, talle) pair. A decrement
// below zero fails and rolls back, leaving the row unchanged.
func (s *Service) AdjustTalleStock(ctx context.Context, productID, talleID int64, delta int) error {
	if delta == 0 {
		return ErrInvalidQuantity
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return err
		}
		current, _, err := tx.GetTalleStock(ctx, productID, talleID)
		if err != nil {
			return err
		}
		next := current + delta
		if next < 0 {
			return ErrNegativeStock
		}
		if err := tx.UpsertTalleStock(ctx, productID, talleID, next); err != nil {
			return err
		}
		return s.recomputeLabel(ctx, tx, product)
	})
	if err != nil {
		return err
	}
	s.dropListings(ctx)
	return nil
}

// SetColorStock writes an absolute quantity for a (product, color) pair.
func (s *Service) SetColorStock(ctx context.Context, productID, colorID int64, qty int) error {
	if qty < 0 {
		return ErrNegativeStock
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return err
		}
		if err := tx.UpsertColorStock(ctx, productID, colorID, qty); err != nil {
			return err
		}
		return s.recomputeLabel(ctx, tx, product)
	})
	if err != nil {
		return err
	}
	s.dropListings(ctx)
	return nil
}

// AdjustColorStock applies a delta to a (product, color) pair.
func (s *Service) AdjustColorStock(ctx context.Context, productID, colorID int64, delta int) error {
	if delta == 0 {
		return ErrInvalidQuantity
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return err
		}
		current, _, err := tx.GetColorStock(ctx, productID, colorID)
		if err != nil {
			return err
		}
		next := current + delta
		if next < 0 {
			return ErrNegativeStock
		}
		if err := tx.UpsertColorStock(ctx, productID, colorID, next); err != nil {
			return err
		}
		return s.recomputeLabel(ctx, tx, product)
	})
	if err != nil {
		return err
	}
	s.dropListings(ctx)
	return nil
}

// AdjustVariantStock applies a delta to one variant's stock.
func (s *Service) AdjustVariantStock(ctx context.Context, variantID int64, delta int) error {
	if delta == 0 {
		return ErrInvalidQuantity
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		productID, err := tx.VariantProduct(ctx, variantID)
		if err != nil {
			return err
		}
		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return err
		}
		_, current, err := tx.LockVariant(ctx, variantID)
		if err != nil {
			return err
		}
		next := current + delta
		if next < 0 {
			return ErrNegativeStock
		}
		if err := tx.UpdateVariantStock(ctx, variantID, next); err != nil {
			return err
		}
		return s.recomputeLabel(ctx, tx, product)
	})
	if err != nil {
		return err
	}
	s.dropListings(ctx)
	return nil
}

// RecomputeLabel rewrites the derived label of a product. Product writes that
// change pricing fields call this, as do the periodic refresh jobs that age
// out the new-arrival label.
func (s *Service) RecomputeLabel(ctx context.Context, productID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return err
		}
		return s.recomputeLabel(ctx, tx, product)
	})
	if err != nil {
		return err
	}
	s.dropListings(ctx)
	return nil
}

func (s *Service) recomputeLabel(ctx context.Context, tx TxRepository, product productRow) error {
	var total int
	var err error
	if product.HasVariants {
		total, err = tx.SumVariantStock(ctx, product.ID)
	} else {
		total, err = tx.SumTalleStock(ctx, product.ID)
	}
	if err != nil {
		return err
	}
	view := pricing.ProductView{
		Price:     product.Price,
		PriceCost: product.PriceCost,
		SalePrice: product.SalePrice,
		CreatedAt: product.CreatedAt,
	}
	return tx.UpdateProductLabel(ctx, product.ID, pricing.Label(view, total, s.now()))
}

func (s *Service) dropListings(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

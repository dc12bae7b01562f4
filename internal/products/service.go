package products

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tienda-shop/tienda-shop/internal/pricing"
	"github.com/tienda-shop/tienda-shop/internal/shared"
	"github.com/tienda-shop/tienda-shop/internal/stock"
)

// StockPort is the slice of the stock ledger the aggregate needs.
type StockPort interface {
	GetBreakdown(ctx context.Context, productID int64) (stock.Breakdown, error)
	RecomputeLabel(ctx context.Context, productID int64) error
}

// SummaryCache caches list projections. Implementations must be safe for
// concurrent use; a nil cache disables caching.
type SummaryCache interface {
	Get(ctx context.Context, key string) ([]ProductSummary, int, bool)
	Set(ctx context.Context, key string, summaries []ProductSummary, total int)
	Invalidate(ctx context.Context)
}

const skuCollisionLimit = 50

type Service struct {
	repo  Repository
	stock StockPort
	cache SummaryCache
	now   func() time.Time
}

func NewService(repo Repository, stockPort StockPort, cache SummaryCache) *Service {
	return &Service{repo: repo, stock: stockPort, cache: cache, now: time.Now}
}

// List returns summary projections for the given filters.
func (s *Service) List(ctx context.Context, filters Filters) ([]ProductSummary, int, error) {
	key := cacheKey(filters)
	if s.cache != nil {
		if summaries, total, ok := s.cache.Get(ctx, key); ok {
			return summaries, total, nil
		}
	}

	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]ProductSummary, 0, len(items))
	for _, p := range items {
		summary, err := s.buildSummary(ctx, p)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, summary)
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, summaries, total)
	}
	return summaries, total, nil
}

// Get returns the full projection of one product.
func (s *Service) Get(ctx context.Context, id int64) (ProductDetail, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}
	refs, err := s.repo.GetRefs(ctx, p)
	if err != nil {
		return ProductDetail{}, err
	}
	breakdown, err := s.stock.GetBreakdown(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}
	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}

	view := p.PricingView()
	detail := ProductDetail{
		Product:      p,
		CategoryName: refs.Category,
		MaterialName: refs.Material,
		ColorName:    refs.Color,
		TalleName:    refs.Talle,
		DisplayPrice: formatPrice(pricing.EffectivePrice(view)),
		IsOnSale:     pricing.IsOnSale(view),
		ProfitMargin: pricing.ProfitMargin(view),
		TotalStock:   breakdown.Total(),
		Images:       make([]string, 0, len(images)),
	}
	for _, img := range images {
		detail.Images = append(detail.Images, img.URL)
	}
	if len(images) > 0 {
		detail.MainImage = images[0].URL
	}

	if p.HasVariants {
		variants, err := s.repo.ListVariants(ctx, id)
		if err != nil {
			return ProductDetail{}, err
		}
		detail.Variants = make([]VariantView, 0, len(variants))
		for _, v := range variants {
			detail.Variants = append(detail.Variants, newVariantView(v, view))
		}
	} else {
		for _, entry := range breakdown.Talles {
			if entry.Stock > 0 {
				detail.TallesDisponibles = append(detail.TallesDisponibles, entry)
			}
		}
		for _, entry := range breakdown.Colors {
			if entry.Stock > 0 {
				detail.ColoresDisponibles = append(detail.ColoresDisponibles, entry)
			}
		}
	}
	return detail, nil
}

// Create validates and persists a new product. The initial label is computed
// here; stock movements keep it current afterwards.
func (s *Service) Create(ctx context.Context, form ProductForm) (Product, error) {
	if err := validateForm(form); err != nil {
		return Product{}, err
	}
	exists, err := s.repo.CategoryExists(ctx, form.CategoryID)
	if err != nil {
		return Product{}, err
	}
	if !exists {
		return Product{}, fmt.Errorf("category %d: %w", form.CategoryID, shared.ErrNotFound)
	}

	p := productFromForm(form)
	p.CreatedAt = s.now()
	p.Etiqueta = pricing.Label(p.PricingView(), 0, p.CreatedAt)

	created, err := s.repo.Create(ctx, p, form.AttributeIDs)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Update validates and rewrites a product. Switching has_variants off
// cascades to the product's variants inside the repository transaction.
func (s *Service) Update(ctx context.Context, id int64, form ProductForm) error {
	if err := validateForm(form); err != nil {
		return err
	}
	exists, err := s.repo.CategoryExists(ctx, form.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("category %d: %w", form.CategoryID, shared.ErrNotFound)
	}

	if err := s.repo.Update(ctx, id, productFromForm(form), form.AttributeIDs); err != nil {
		return err
	}
	// Pricing fields may have changed, so the persisted label is refreshed.
	if err := s.stock.RecomputeLabel(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) AddImage(ctx context.Context, productID int64, form ImageForm) (ProductImage, error) {
	if _, err := s.repo.Get(ctx, productID); err != nil {
		return ProductImage{}, err
	}
	image, err := s.repo.AddImage(ctx, ProductImage{
		ProductID:    productID,
		URL:          form.URL,
		DisplayOrder: form.DisplayOrder,
		Alt:          form.Alt,
	})
	if err != nil {
		return ProductImage{}, err
	}
	s.invalidate(ctx)
	return image, nil
}

func (s *Service) DeleteImage(ctx context.Context, productID, imageID int64) error {
	if err := s.repo.DeleteImage(ctx, productID, imageID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) ReorderImages(ctx context.Context, productID int64, imageIDs []int64) error {
	if len(imageIDs) == 0 {
		return fmt.Errorf("image order is required: %w", shared.ErrValidation)
	}
	if err := s.repo.ReorderImages(ctx, productID, imageIDs); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) ListVariants(ctx context.Context, productID int64) ([]VariantView, error) {
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	variants, err := s.repo.ListVariants(ctx, productID)
	if err != nil {
		return nil, err
	}
	view := p.PricingView()
	views := make([]VariantView, 0, len(variants))
	for _, v := range variants {
		views = append(views, newVariantView(v, view))
	}
	return views, nil
}

// CreateVariant validates the attribute set against the product's allowed
// variant attributes and derives a unique SKU when none is supplied.
func (s *Service) CreateVariant(ctx context.Context, productID int64, form VariantForm) (Variant, error) {
	if err := validateVariantForm(form); err != nil {
		return Variant{}, err
	}
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return Variant{}, err
	}
	if !p.HasVariants {
		return Variant{}, fmt.Errorf("product %d does not track variants: %w", productID, shared.ErrValidation)
	}
	if err := s.checkAttrsAllowed(ctx, productID, form.Attrs); err != nil {
		return Variant{}, err
	}

	duplicate, err := s.repo.VariantAttrsExist(ctx, productID, form.Attrs)
	if err != nil {
		return Variant{}, err
	}
	if duplicate {
		return Variant{}, ErrDuplicateVariant
	}

	sku := form.SKU
	if sku == "" {
		sku, err = s.uniqueSKU(ctx, p.Name, form.Attrs)
		if err != nil {
			return Variant{}, err
		}
	} else {
		taken, err := s.repo.SKUExists(ctx, sku)
		if err != nil {
			return Variant{}, err
		}
		if taken {
			return Variant{}, ErrDuplicateSKU
		}
	}

	variant, err := s.repo.CreateVariant(ctx, Variant{
		ProductID: productID,
		SKU:       sku,
		Attrs:     form.Attrs,
		Price:     form.Price,
		Stock:     form.Stock,
		ImageURL:  form.ImageURL,
	})
	if err != nil {
		return Variant{}, err
	}
	if err := s.stock.RecomputeLabel(ctx, productID); err != nil {
		return Variant{}, err
	}
	s.invalidate(ctx)
	return variant, nil
}

func (s *Service) UpdateVariant(ctx context.Context, variantID int64, form VariantForm) error {
	if err := validateVariantForm(form); err != nil {
		return err
	}
	current, err := s.repo.GetVariant(ctx, variantID)
	if err != nil {
		return err
	}
	if err := s.checkAttrsAllowed(ctx, current.ProductID, form.Attrs); err != nil {
		return err
	}

	sku := form.SKU
	if sku == "" {
		sku = current.SKU
	}

	current.SKU = sku
	current.Attrs = form.Attrs
	current.Price = form.Price
	current.Stock = form.Stock
	current.ImageURL = form.ImageURL
	if err := s.repo.UpdateVariant(ctx, current); err != nil {
		return err
	}
	if err := s.stock.RecomputeLabel(ctx, current.ProductID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) DeleteVariant(ctx context.Context, variantID int64) error {
	variant, err := s.repo.GetVariant(ctx, variantID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteVariant(ctx, variantID); err != nil {
		return err
	}
	if err := s.stock.RecomputeLabel(ctx, variant.ProductID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) VariantsLowStock(ctx context.Context, threshold int) ([]Variant, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("threshold must not be negative: %w", shared.ErrValidation)
	}
	return s.repo.VariantsLowStock(ctx, threshold)
}

func (s *Service) VariantsOutOfStock(ctx context.Context) ([]Variant, error) {
	return s.repo.VariantsOutOfStock(ctx)
}

func (s *Service) VariantsByAttribute(ctx context.Context, name, value string) ([]Variant, error) {
	if name == "" || value == "" {
		return nil, fmt.Errorf("attribute name and value are required: %w", shared.ErrValidation)
	}
	return s.repo.VariantsByAttribute(ctx, name, value)
}

func (s *Service) buildSummary(ctx context.Context, p Product) (ProductSummary, error) {
	refs, err := s.repo.GetRefs(ctx, p)
	if err != nil {
		return ProductSummary{}, err
	}
	breakdown, err := s.stock.GetBreakdown(ctx, p.ID)
	if err != nil {
		return ProductSummary{}, err
	}
	images, err := s.repo.ListImages(ctx, p.ID)
	if err != nil {
		return ProductSummary{}, err
	}

	view := p.PricingView()
	summary := ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		CategoryName: refs.Category,
		MaterialName: refs.Material,
		ColorName:    refs.Color,
		TalleName:    refs.Talle,
		Price:        p.Price,
		SalePrice:    p.SalePrice,
		DisplayPrice: formatPrice(pricing.EffectivePrice(view)),
		IsOnSale:     pricing.IsOnSale(view),
		TotalStock:   breakdown.Total(),
		Etiqueta:     p.Etiqueta,
	}
	if len(images) > 0 {
		summary.MainImage = images[0].URL
	}
	return summary, nil
}

func (s *Service) checkAttrsAllowed(ctx context.Context, productID int64, attrs map[string]string) error {
	allowed, err := s.repo.AllowedAttributes(ctx, productID)
	if err != nil {
		return err
	}
	byName := make(map[string][]string, len(allowed))
	for _, a := range allowed {
		byName[a.Name] = a.ValuesList()
	}
	for key, value := range attrs {
		values, ok := byName[key]
		if !ok {
			return fmt.Errorf("%q: %w", key, ErrAttributeNotAllowed)
		}
		found := false
		for _, v := range values {
			if v == value {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%q=%q: %w", key, value, ErrValueNotAllowed)
		}
	}
	return nil
}

// uniqueSKU resolves collisions with a deterministic numeric suffix.
func (s *Service) uniqueSKU(ctx context.Context, productName string, attrs map[string]string) (string, error) {
	base := GenerateSKU(productName, attrs)
	candidate := base
	for i := 2; ; i++ {
		taken, err := s.repo.SKUExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		if i > skuCollisionLimit {
			return "", ErrVariantsExhausted
		}
		candidate = base + "_" + strconv.Itoa(i)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func productFromForm(form ProductForm) Product {
	return Product{
		Name:        form.Name,
		Description: form.Description,
		CategoryID:  form.CategoryID,
		MaterialID:  form.MaterialID,
		ColorID:     form.ColorID,
		TalleID:     form.TalleID,
		Price:       form.Price,
		PriceCost:   form.PriceCost,
		SalePrice:   form.SalePrice,
		HasVariants: form.HasVariants,
	}
}

func cacheKey(filters Filters) string {
	key := "products:list"
	if filters.CategoryID != nil {
		key += ":cat=" + strconv.FormatInt(*filters.CategoryID, 10)
	}
	if filters.MaterialID != nil {
		key += ":mat=" + strconv.FormatInt(*filters.MaterialID, 10)
	}
	if filters.OnSale {
		key += ":onsale"
	}
	if filters.NewArrivals {
		key += ":new"
	}
	if filters.Search != "" {
		key += ":q=" + filters.Search
	}
	key += ":p=" + strconv.Itoa(filters.Page) + ":pp=" + strconv.Itoa(filters.PerPage)
	return key
}

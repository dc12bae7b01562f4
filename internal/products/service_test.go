package products

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tienda-shop/tienda-shop/internal/catalog"
	"github.com/tienda-shop/tienda-shop/internal/pricing"
	"github.com/tienda-shop/tienda-shop/internal/shared"
	"github.com/tienda-shop/tienda-shop/internal/stock"
)

type memoryRepo struct {
	nextID     int64
	products   map[int64]Product
	categories map[int64]bool
	images     map[int64][]ProductImage
	variants   map[int64]Variant
	allowed    map[int64][]catalog.VariantAttribute
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:     1,
		products:   make(map[int64]Product),
		categories: map[int64]bool{1: true},
		images:     make(map[int64][]ProductImage),
		variants:   make(map[int64]Variant),
		allowed:    make(map[int64][]catalog.VariantAttribute),
	}
}

func (r *memoryRepo) id() int64 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *memoryRepo) List(_ context.Context, _ Filters) ([]Product, int, error) {
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	return p, nil
}

func (r *memoryRepo) Create(_ context.Context, p Product, _ []int64) (Product, error) {
	p.ID = r.id()
	p.CreatedAt = time.Now()
	r.products[p.ID] = p
	return p, nil
}

func (r *memoryRepo) Update(_ context.Context, id int64, p Product, _ []int64) error {
	current, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	p.ID = id
	p.CreatedAt = current.CreatedAt
	p.Etiqueta = current.Etiqueta
	r.products[id] = p
	if !p.HasVariants {
		for vid, v := range r.variants {
			if v.ProductID == id {
				delete(r.variants, vid)
			}
		}
	}
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

func (r *memoryRepo) CategoryExists(_ context.Context, id int64) (bool, error) {
	return r.categories[id], nil
}

func (r *memoryRepo) GetRefs(_ context.Context, _ Product) (RefNames, error) {
	return RefNames{Category: "Remeras"}, nil
}

func (r *memoryRepo) ListImages(_ context.Context, productID int64) ([]ProductImage, error) {
	images := append([]ProductImage(nil), r.images[productID]...)
	sort.Slice(images, func(i, j int) bool {
		if images[i].DisplayOrder != images[j].DisplayOrder {
			return images[i].DisplayOrder < images[j].DisplayOrder
		}
		return images[i].ID < images[j].ID
	})
	return images, nil
}

func (r *memoryRepo) AddImage(_ context.Context, image ProductImage) (ProductImage, error) {
	image.ID = r.id()
	r.images[image.ProductID] = append(r.images[image.ProductID], image)
	return image, nil
}

func (r *memoryRepo) DeleteImage(_ context.Context, productID, imageID int64) error {
	images := r.images[productID]
	for i, img := range images {
		if img.ID == imageID {
			r.images[productID] = append(images[:i], images[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("image %d: %w", imageID, shared.ErrNotFound)
}

func (r *memoryRepo) ReorderImages(_ context.Context, productID int64, imageIDs []int64) error {
	order := make(map[int64]int, len(imageIDs))
	for i, id := range imageIDs {
		order[id] = i
	}
	images := r.images[productID]
	for i := range images {
		if pos, ok := order[images[i].ID]; ok {
			images[i].DisplayOrder = pos
		}
	}
	return nil
}

func (r *memoryRepo) ListVariants(_ context.Context, productID int64) ([]Variant, error) {
	out := make([]Variant, 0)
	for _, v := range r.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) GetVariant(_ context.Context, variantID int64) (Variant, error) {
	v, ok := r.variants[variantID]
	if !ok {
		return Variant{}, fmt.Errorf("variant %d: %w", variantID, shared.ErrNotFound)
	}
	return v, nil
}

func (r *memoryRepo) CreateVariant(_ context.Context, variant Variant) (Variant, error) {
	variant.ID = r.id()
	r.variants[variant.ID] = variant
	return variant, nil
}

func (r *memoryRepo) UpdateVariant(_ context.Context, variant Variant) error {
	if _, ok := r.variants[variant.ID]; !ok {
		return fmt.Errorf("variant %d: %w", variant.ID, shared.ErrNotFound)
	}
	r.variants[variant.ID] = variant
	return nil
}

func (r *memoryRepo) DeleteVariant(_ context.Context, variantID int64) error {
	if _, ok := r.variants[variantID]; !ok {
		return fmt.Errorf("variant %d: %w", variantID, shared.ErrNotFound)
	}
	delete(r.variants, variantID)
	return nil
}

func (r *memoryRepo) AllowedAttributes(_ context.Context, productID int64) ([]catalog.VariantAttribute, error) {
	return r.allowed[productID], nil
}

func (r *memoryRepo) SKUExists(_ context.Context, sku string) (bool, error) {
	for _, v := range r.variants {
		if v.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) VariantAttrsExist(_ context.Context, productID int64, attrs map[string]string) (bool, error) {
	for _, v := range r.variants {
		if v.ProductID != productID || len(v.Attrs) != len(attrs) {
			continue
		}
		same := true
		for k, want := range attrs {
			if v.Attrs[k] != want {
				same = false
				break
			}
		}
		if same {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) VariantsLowStock(_ context.Context, threshold int) ([]Variant, error) {
	out := make([]Variant, 0)
	for _, v := range r.variants {
		if v.Stock > 0 && v.Stock <= threshold {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memoryRepo) VariantsOutOfStock(_ context.Context) ([]Variant, error) {
	out := make([]Variant, 0)
	for _, v := range r.variants {
		if v.Stock == 0 {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memoryRepo) VariantsByAttribute(_ context.Context, name, value string) ([]Variant, error) {
	out := make([]Variant, 0)
	for _, v := range r.variants {
		if v.Attrs[name] == value {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeStock struct {
	breakdowns map[int64]stock.Breakdown
	recomputed []int64
}

func (f *fakeStock) GetBreakdown(_ context.Context, productID int64) (stock.Breakdown, error) {
	if b, ok := f.breakdowns[productID]; ok {
		return b, nil
	}
	return stock.Breakdown{ProductID: productID}, nil
}

func (f *fakeStock) RecomputeLabel(_ context.Context, productID int64) error {
	f.recomputed = append(f.recomputed, productID)
	return nil
}

func newTestService() (*Service, *memoryRepo, *fakeStock) {
	repo := newMemoryRepo()
	st := &fakeStock{breakdowns: make(map[int64]stock.Breakdown)}
	svc := NewService(repo, st, nil)
	return svc, repo, st
}

func validForm() ProductForm {
	return ProductForm{
		Name:        "Remera Basica",
		Description: "Remera de algodon",
		CategoryID:  1,
		Price:       1000,
		PriceCost:   400,
	}
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("new product starts labelled as a new arrival", func(t *testing.T) {
		svc, _, _ := newTestService()
		created, err := svc.Create(ctx, validForm())
		require.NoError(t, err)
		require.Equal(t, pricing.LabelNewArrival, created.Etiqueta)
	})

	t.Run("rejects missing category", func(t *testing.T) {
		svc, _, _ := newTestService()
		form := validForm()
		form.CategoryID = 99
		_, err := svc.Create(ctx, form)
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects cost above price", func(t *testing.T) {
		svc, _, _ := newTestService()
		form := validForm()
		form.PriceCost = 1500
		_, err := svc.Create(ctx, form)
		require.ErrorIs(t, err, ErrCostAbovePrice)
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects sale price at or above price", func(t *testing.T) {
		svc, _, _ := newTestService()
		form := validForm()
		sale := 1000.0
		form.SalePrice = &sale
		_, err := svc.Create(ctx, form)
		require.ErrorIs(t, err, ErrSalePriceTooHigh)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes the label after a pricing change", func(t *testing.T) {
		svc, _, st := newTestService()
		created, err := svc.Create(ctx, validForm())
		require.NoError(t, err)

		form := validForm()
		sale := 800.0
		form.SalePrice = &sale
		require.NoError(t, svc.Update(ctx, created.ID, form))
		require.Contains(t, st.recomputed, created.ID)
	})

	t.Run("switching variants off removes the product's variants", func(t *testing.T) {
		svc, repo, _ := newTestService()
		form := validForm()
		form.HasVariants = true
		created, err := svc.Create(ctx, form)
		require.NoError(t, err)
		repo.allowed[created.ID] = []catalog.VariantAttribute{{ID: 1, Name: "color", Values: "rojo,azul"}}

		_, err = svc.CreateVariant(ctx, created.ID, VariantForm{Attrs: map[string]string{"color": "rojo"}, Stock: 3})
		require.NoError(t, err)

		form.HasVariants = false
		require.NoError(t, svc.Update(ctx, created.ID, form))

		variants, err := repo.ListVariants(ctx, created.ID)
		require.NoError(t, err)
		require.Empty(t, variants)
	})
}

func TestMainImageSelection(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	created, err := svc.Create(ctx, validForm())
	require.NoError(t, err)

	// Ties on display order break on the lower id.
	repo.images[created.ID] = []ProductImage{
		{ID: 5, ProductID: created.ID, URL: "https://img/5.jpg", DisplayOrder: 2},
		{ID: 3, ProductID: created.ID, URL: "https://img/3.jpg", DisplayOrder: 0},
		{ID: 7, ProductID: created.ID, URL: "https://img/7.jpg", DisplayOrder: 0},
	}

	detail, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "https://img/3.jpg", detail.MainImage)
	require.Equal(t, []string{"https://img/3.jpg", "https://img/7.jpg", "https://img/5.jpg"}, detail.Images)
}

func TestCreateVariant(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *memoryRepo, Product) {
		t.Helper()
		svc, repo, _ := newTestService()
		form := validForm()
		form.HasVariants = true
		created, err := svc.Create(ctx, form)
		require.NoError(t, err)
		repo.allowed[created.ID] = []catalog.VariantAttribute{
			{ID: 1, Name: "color", Values: "rojo,azul"},
			{ID: 2, Name: "talle", Values: "S,M,L"},
		}
		return svc, repo, created
	}

	t.Run("derives the sku when none is supplied", func(t *testing.T) {
		svc, _, p := setup(t)
		v, err := svc.CreateVariant(ctx, p.ID, VariantForm{Attrs: map[string]string{"color": "rojo", "talle": "M"}, Stock: 5})
		require.NoError(t, err)
		require.Equal(t, "REMERA_BASICA_coro_taM", v.SKU)
	})

	t.Run("collisions get a numeric suffix", func(t *testing.T) {
		svc, repo, p := setup(t)
		repo.variants[999] = Variant{ID: 999, ProductID: p.ID, SKU: "REMERA_BASICA_coro_taM", Attrs: map[string]string{"color": "rojo", "talle": "M"}}

		v, err := svc.CreateVariant(ctx, p.ID, VariantForm{Attrs: map[string]string{"color": "rojo", "talle": "S"}, Stock: 1})
		require.NoError(t, err)
		require.Equal(t, "REMERA_BASICA_coro_taS", v.SKU)

		// Same derived base as an existing sku.
		repo.variants[v.ID] = Variant{ID: v.ID, ProductID: p.ID, SKU: "REMERA_BASICA_coaz_taS", Attrs: map[string]string{"x": "y"}}
		v2, err := svc.CreateVariant(ctx, p.ID, VariantForm{Attrs: map[string]string{"color": "azul", "talle": "S"}, Stock: 1})
		require.NoError(t, err)
		require.Equal(t, "REMERA_BASICA_coaz_taS_2", v2.SKU)
	})

	t.Run("rejects attributes outside the allowed set", func(t *testing.T) {
		svc, _, p := setup(t)
		_, err := svc.CreateVariant(ctx, p.ID, VariantForm{Attrs: map[string]string{"material": "lino"}, Stock: 1})
		require.ErrorIs(t, err, ErrAttributeNotAllowed)
	})

	t.Run("rejects values outside the allowed list", func(t *testing.T) {
		svc, _, p := setup(t)
		_, err := svc.CreateVariant(ctx, p.ID, VariantForm{Attrs: map[string]string{"color": "verde"}, Stock: 1})
		require.ErrorIs(t, err, ErrValueNotAllowed)
	})

	t.Run("rejects a duplicate attribute combination", func(t *testing.T) {
		svc, _, p := setup(t)
		attrs := map[string]string{"color": "rojo", "talle": "L"}
		_, err := svc.CreateVariant(ctx, p.ID, VariantForm{Attrs: attrs, Stock: 1})
		require.NoError(t, err)
		_, err = svc.CreateVariant(ctx, p.ID, VariantForm{Attrs: attrs, Stock: 1})
		require.ErrorIs(t, err, ErrDuplicateVariant)
		require.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("rejects a supplied sku already in use", func(t *testing.T) {
		svc, _, p := setup(t)
		_, err := svc.CreateVariant(ctx, p.ID, VariantForm{SKU: "ABC", Attrs: map[string]string{"color": "rojo"}, Stock: 1})
		require.NoError(t, err)
		_, err = svc.CreateVariant(ctx, p.ID, VariantForm{SKU: "ABC", Attrs: map[string]string{"color": "azul"}, Stock: 1})
		require.ErrorIs(t, err, ErrDuplicateSKU)
	})

	t.Run("rejects variants on a product without variant mode", func(t *testing.T) {
		svc, _, _ := newTestService()
		created, err := svc.Create(ctx, validForm())
		require.NoError(t, err)
		_, err = svc.CreateVariant(ctx, created.ID, VariantForm{Attrs: map[string]string{"color": "rojo"}, Stock: 1})
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects an empty attribute set", func(t *testing.T) {
		svc, _, p := setup(t)
		_, err := svc.CreateVariant(ctx, p.ID, VariantForm{Stock: 1})
		require.ErrorIs(t, err, ErrMalformedAttributes)
	})
}

func TestVariantPriceResolution(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()

	form := validForm()
	form.HasVariants = true
	sale := 700.0
	form.SalePrice = &sale
	created, err := svc.Create(ctx, form)
	require.NoError(t, err)
	repo.allowed[created.ID] = []catalog.VariantAttribute{{ID: 1, Name: "color", Values: "rojo,azul"}}

	override := 1200.0
	_, err = svc.CreateVariant(ctx, created.ID, VariantForm{Attrs: map[string]string{"color": "rojo"}, Price: &override, Stock: 1})
	require.NoError(t, err)
	_, err = svc.CreateVariant(ctx, created.ID, VariantForm{Attrs: map[string]string{"color": "azul"}, Stock: 1})
	require.NoError(t, err)

	views, err := svc.ListVariants(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Variant overrides win; otherwise the base price applies, never the sale price.
	require.Equal(t, 1200.0, views[0].CurrentPrice)
	require.Equal(t, 1000.0, views[1].CurrentPrice)
}

func TestVariantQueries(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	repo.variants[1] = Variant{ID: 1, ProductID: 10, SKU: "A", Attrs: map[string]string{"color": "rojo"}, Stock: 2}
	repo.variants[2] = Variant{ID: 2, ProductID: 10, SKU: "B", Attrs: map[string]string{"color": "azul"}, Stock: 0}

	low, err := svc.VariantsLowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "A", low[0].SKU)

	_, err = svc.VariantsLowStock(ctx, -1)
	require.ErrorIs(t, err, shared.ErrValidation)

	out, err := svc.VariantsOutOfStock(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "B", out[0].SKU)

	byAttr, err := svc.VariantsByAttribute(ctx, "color", "rojo")
	require.NoError(t, err)
	require.Len(t, byAttr, 1)

	_, err = svc.VariantsByAttribute(ctx, "", "rojo")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestListUsesCache(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	st := &fakeStock{breakdowns: make(map[int64]stock.Breakdown)}
	cache := &countingCache{entries: make(map[string]cachedEntry)}
	svc := NewService(repo, st, cache)

	_, err := svc.Create(ctx, validForm())
	require.NoError(t, err)
	require.Equal(t, 1, cache.invalidations, "create invalidates the cache")

	_, _, err = svc.List(ctx, Filters{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Equal(t, 1, cache.misses)

	_, _, err = svc.List(ctx, Filters{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Equal(t, 1, cache.hits, "second identical listing is served from cache")

	// Different filters are distinct entries.
	_, _, err = svc.List(ctx, Filters{OnSale: true, Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Equal(t, 2, cache.misses)
}

type cachedEntry struct {
	summaries []ProductSummary
	total     int
}

type countingCache struct {
	entries       map[string]cachedEntry
	hits          int
	misses        int
	invalidations int
}

func (c *countingCache) Get(_ context.Context, key string) ([]ProductSummary, int, bool) {
	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, 0, false
	}
	c.hits++
	return entry.summaries, entry.total, true
}

func (c *countingCache) Set(_ context.Context, key string, summaries []ProductSummary, total int) {
	c.entries[key] = cachedEntry{summaries: summaries, total: total}
}

func (c *countingCache) Invalidate(_ context.Context) {
	c.invalidations++
	c.entries = make(map[string]cachedEntry)
}

func TestDeleteVariantRecomputesLabel(t *testing.T) {
	ctx := context.Background()
	svc, repo, st := newTestService()

	form := validForm()
	form.HasVariants = true
	created, err := svc.Create(ctx, form)
	require.NoError(t, err)
	repo.allowed[created.ID] = []catalog.VariantAttribute{{ID: 1, Name: "color", Values: "rojo"}}

	v, err := svc.CreateVariant(ctx, created.ID, VariantForm{Attrs: map[string]string{"color": "rojo"}, Stock: 2})
	require.NoError(t, err)

	st.recomputed = nil
	require.NoError(t, svc.DeleteVariant(ctx, v.ID))
	require.Equal(t, []int64{created.ID}, st.recomputed)

	err = svc.DeleteVariant(ctx, v.ID)
	require.True(t, errors.Is(err, shared.ErrNotFound))
}

package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tienda-shop/tienda-shop/internal/catalog"
	"github.com/tienda-shop/tienda-shop/internal/platform/db"
	"github.com/tienda-shop/tienda-shop/internal/shared"
)

// Filters narrows product listings.
type Filters struct {
	CategoryID  *int64
	MaterialID  *int64
	OnSale      bool
	NewArrivals bool
	Search      string
	Page        int
	PerPage     int
}

type Repository interface {
	List(ctx context.Context, filters Filters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product, attributeIDs []int64) (Product, error)
	Update(ctx context.Context, id int64, product Product, attributeIDs []int64) error
	Delete(ctx context.Context, id int64) error
	CategoryExists(ctx context.Context, id int64) (bool, error)
	GetRefs(ctx context.Context, product Product) (RefNames, error)

	ListImages(ctx context.Context, productID int64) ([]ProductImage, error)
	AddImage(ctx context.Context, image ProductImage) (ProductImage, error)
	DeleteImage(ctx context.Context, productID, imageID int64) error
	ReorderImages(ctx context.Context, productID int64, imageIDs []int64) error

	ListVariants(ctx context.Context, productID int64) ([]Variant, error)
	GetVariant(ctx context.Context, variantID int64) (Variant, error)
	CreateVariant(ctx context.Context, variant Variant) (Variant, error)
	UpdateVariant(ctx context.Context, variant Variant) error
	DeleteVariant(ctx context.Context, variantID int64) error
	AllowedAttributes(ctx context.Context, productID int64) ([]catalog.VariantAttribute, error)
	SKUExists(ctx context.Context, sku string) (bool, error)
	VariantAttrsExist(ctx context.Context, productID int64, attrs map[string]string) (bool, error)
	VariantsLowStock(ctx context.Context, threshold int) ([]Variant, error)
	VariantsOutOfStock(ctx context.Context) ([]Variant, error)
	VariantsByAttribute(ctx context.Context, name, value string) ([]Variant, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const productColumns = `id, name, description, category_id, material_id, color_id, talle_id, price, price_cost, sale_price, has_variants, etiqueta, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.MaterialID, &p.ColorID, &p.TalleID,
		&p.Price, &p.PriceCost, &p.SalePrice, &p.HasVariants, &p.Etiqueta, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filters Filters) ([]Product, int, error) {
	where := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filters.CategoryID != nil {
		where = append(where, "category_id = "+arg(*filters.CategoryID))
	}
	if filters.MaterialID != nil {
		where = append(where, "material_id = "+arg(*filters.MaterialID))
	}
	if filters.OnSale {
		where = append(where, "sale_price IS NOT NULL")
	}
	if filters.NewArrivals {
		where = append(where, "created_at >= "+arg(time.Now().Add(-7*24*time.Hour)))
	}
	if filters.Search != "" {
		p := arg("%" + filters.Search + "%")
		where = append(where, "(name ILIKE "+p+" OR description ILIKE "+p+")")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + clause + ` ORDER BY name`
	if filters.PerPage > 0 {
		query += ` LIMIT ` + arg(filters.PerPage) + ` OFFSET ` + arg(shared.Offset(filters.Page, filters.PerPage))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product, attributeIDs []int64) (Product, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		now := time.Now()
		err := tx.QueryRow(ctx, `INSERT INTO products (name, description, category_id, material_id, color_id, talle_id, price, price_cost, sale_price, has_variants, etiqueta, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12) RETURNING id`,
			product.Name, product.Description, product.CategoryID, product.MaterialID, product.ColorID, product.TalleID,
			product.Price, product.PriceCost, product.SalePrice, product.HasVariants, product.Etiqueta, now).Scan(&product.ID)
		if err != nil {
			return err
		}
		product.CreatedAt = now
		product.UpdatedAt = now
		return replaceAllowedAttributes(ctx, tx, product.ID, attributeIDs)
	})
	if err != nil {
		return Product{}, translateFK(err)
	}
	return product, nil
}

// Update rewrites the product row and, when has_variants flips off, deletes
// every variant in the same transaction so no orphaned variant stock
// survives the mode switch.
func (r *repository) Update(ctx context.Context, id int64, product Product, attributeIDs []int64) error {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE products SET name=$1, description=$2, category_id=$3, material_id=$4, color_id=$5, talle_id=$6, price=$7, price_cost=$8, sale_price=$9, has_variants=$10, updated_at=NOW() WHERE id=$11`,
			product.Name, product.Description, product.CategoryID, product.MaterialID, product.ColorID, product.TalleID,
			product.Price, product.PriceCost, product.SalePrice, product.HasVariants, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
		}
		if !product.HasVariants {
			if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, id); err != nil {
				return err
			}
		}
		return replaceAllowedAttributes(ctx, tx, id, attributeIDs)
	})
	return translateFK(err)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// GetRefs resolves reference names. The category is required; optional
// references resolve to empty strings when missing.
func (r *repository) GetRefs(ctx context.Context, product Product) (RefNames, error) {
	var refs RefNames
	err := r.db.QueryRow(ctx, `SELECT c.name,
COALESCE(m.name, ''), COALESCE(col.name, ''), COALESCE(t.name, '')
FROM products p
JOIN categories c ON c.id = p.category_id
LEFT JOIN materials m ON m.id = p.material_id
LEFT JOIN colors col ON col.id = p.color_id
LEFT JOIN talles t ON t.id = p.talle_id
WHERE p.id = $1`, product.ID).Scan(&refs.Category, &refs.Material, &refs.Color, &refs.Talle)
	if errors.Is(err, pgx.ErrNoRows) {
		return RefNames{}, fmt.Errorf("product %d: %w", product.ID, shared.ErrNotFound)
	}
	return refs, err
}

func (r *repository) ListImages(ctx context.Context, productID int64) ([]ProductImage, error) {
	rows, err := r.db.Query(ctx, `SELECT id, product_id, url, display_order, alt FROM product_images
WHERE product_id = $1 ORDER BY display_order, id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []ProductImage
	for rows.Next() {
		var img ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.DisplayOrder, &img.Alt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *repository) AddImage(ctx context.Context, image ProductImage) (ProductImage, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO product_images (product_id, url, display_order, alt) VALUES ($1,$2,$3,$4) RETURNING id`,
		image.ProductID, image.URL, image.DisplayOrder, image.Alt).Scan(&image.ID)
	if err != nil {
		return ProductImage{}, translateFK(err)
	}
	return image, nil
}

func (r *repository) DeleteImage(ctx context.Context, productID, imageID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_images WHERE id = $1 AND product_id = $2`, imageID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("image %d: %w", imageID, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) ReorderImages(ctx context.Context, productID int64, imageIDs []int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		for position, imageID := range imageIDs {
			tag, err := tx.Exec(ctx, `UPDATE product_images SET display_order = $1 WHERE id = $2 AND product_id = $3`,
				position, imageID, productID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("image %d: %w", imageID, shared.ErrNotFound)
			}
		}
		return nil
	})
}

const variantColumns = `id, product_id, sku, attrs, price, stock, image_url, created_at, updated_at`

func scanVariant(row pgx.Row) (Variant, error) {
	var v Variant
	var attrs []byte
	err := row.Scan(&v.ID, &v.ProductID, &v.SKU, &attrs, &v.Price, &v.Stock, &v.ImageURL, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return Variant{}, err
	}
	if err := json.Unmarshal(attrs, &v.Attrs); err != nil {
		return Variant{}, fmt.Errorf("decode variant %d attrs: %w", v.ID, err)
	}
	return v, nil
}

func (r *repository) variantQuery(ctx context.Context, query string, args ...interface{}) ([]Variant, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (r *repository) ListVariants(ctx context.Context, productID int64) ([]Variant, error) {
	return r.variantQuery(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE product_id = $1 ORDER BY sku`, productID)
}

func (r *repository) GetVariant(ctx context.Context, variantID int64) (Variant, error) {
	v, err := scanVariant(r.db.QueryRow(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE id = $1`, variantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Variant{}, fmt.Errorf("variant %d: %w", variantID, shared.ErrNotFound)
	}
	return v, err
}

func (r *repository) CreateVariant(ctx context.Context, variant Variant) (Variant, error) {
	attrs, err := json.Marshal(variant.Attrs)
	if err != nil {
		return Variant{}, ErrMalformedAttributes
	}
	now := time.Now()
	err = r.db.QueryRow(ctx, `INSERT INTO product_variants (product_id, sku, attrs, price, stock, image_url, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7) RETURNING id`,
		variant.ProductID, variant.SKU, attrs, variant.Price, variant.Stock, variant.ImageURL, now).Scan(&variant.ID)
	if err != nil {
		return Variant{}, translateVariantConflict(err)
	}
	variant.CreatedAt = now
	variant.UpdatedAt = now
	return variant, nil
}

func (r *repository) UpdateVariant(ctx context.Context, variant Variant) error {
	attrs, err := json.Marshal(variant.Attrs)
	if err != nil {
		return ErrMalformedAttributes
	}
	tag, err := r.db.Exec(ctx, `UPDATE product_variants SET sku=$1, attrs=$2, price=$3, stock=$4, image_url=$5, updated_at=NOW() WHERE id=$6`,
		variant.SKU, attrs, variant.Price, variant.Stock, variant.ImageURL, variant.ID)
	if err != nil {
		return translateVariantConflict(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("variant %d: %w", variant.ID, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) DeleteVariant(ctx context.Context, variantID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_variants WHERE id = $1`, variantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("variant %d: %w", variantID, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) AllowedAttributes(ctx context.Context, productID int64) ([]catalog.VariantAttribute, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.name, a.allowed_values
FROM variant_attributes a
JOIN product_variant_attributes pva ON pva.attribute_id = a.id
WHERE pva.product_id = $1 ORDER BY a.name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attrs []catalog.VariantAttribute
	for rows.Next() {
		var a catalog.VariantAttribute
		if err := rows.Scan(&a.ID, &a.Name, &a.Values); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

func (r *repository) SKUExists(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM product_variants WHERE sku = $1)`, sku).Scan(&exists)
	return exists, err
}

func (r *repository) VariantAttrsExist(ctx context.Context, productID int64, attrs map[string]string) (bool, error) {
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return false, ErrMalformedAttributes
	}
	var exists bool
	err = r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM product_variants WHERE product_id = $1 AND attrs = $2::jsonb)`, productID, encoded).Scan(&exists)
	return exists, err
}

func (r *repository) VariantsLowStock(ctx context.Context, threshold int) ([]Variant, error) {
	return r.variantQuery(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE stock <= $1 ORDER BY stock, sku`, threshold)
}

func (r *repository) VariantsOutOfStock(ctx context.Context) ([]Variant, error) {
	return r.variantQuery(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE stock = 0 ORDER BY sku`)
}

func (r *repository) VariantsByAttribute(ctx context.Context, name, value string) ([]Variant, error) {
	return r.variantQuery(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE attrs->>$1 = $2 ORDER BY sku`, name, value)
}

func replaceAllowedAttributes(ctx context.Context, tx pgx.Tx, productID int64, attributeIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM product_variant_attributes WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, attrID := range attributeIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO product_variant_attributes (product_id, attribute_id) VALUES ($1, $2)`, productID, attrID); err != nil {
			return err
		}
	}
	return nil
}

// translateFK maps foreign-key violations on required references to not
// found, matching the validation contract.
func translateFK(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, shared.ErrNotFound)
	}
	return err
}

func translateVariantConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "sku"):
			return ErrDuplicateSKU
		case pgErr.Code == "23505":
			return ErrDuplicateVariant
		case pgErr.Code == "23503":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, shared.ErrNotFound)
		}
	}
	return err
}

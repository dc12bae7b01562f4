package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

type Repository interface {
	ListCategories(ctx context.Context, search string) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	CreateCategory(ctx context.Context, name string) (Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) error
	DeleteCategory(ctx context.Context, id int64) error
	CategoriesWithProducts(ctx context.Context) ([]Category, error)

	ListMaterials(ctx context.Context, search string) ([]Material, error)
	GetMaterial(ctx context.Context, id int64) (Material, error)
	CreateMaterial(ctx context.Context, name string) (Material, error)
	UpdateMaterial(ctx context.Context, id int64, name string) error
	DeleteMaterial(ctx context.Context, id int64) error
	MaterialsUsedInProducts(ctx context.Context) ([]Material, error)

	ListColors(ctx context.Context, search string) ([]Color, error)
	GetColor(ctx context.Context, id int64) (Color, error)
	CreateColor(ctx context.Context, name string) (Color, error)
	UpdateColor(ctx context.Context, id int64, name string) error
	DeleteColor(ctx context.Context, id int64) error

	ListTalles(ctx context.Context, search string) ([]Talle, error)
	GetTalle(ctx context.Context, id int64) (Talle, error)
	CreateTalle(ctx context.Context, name string) (Talle, error)
	UpdateTalle(ctx context.Context, id int64, name string) error
	DeleteTalle(ctx context.Context, id int64) error

	ListAttributes(ctx context.Context, search string) ([]VariantAttribute, error)
	GetAttribute(ctx context.Context, id int64) (VariantAttribute, error)
	CreateAttribute(ctx context.Context, attr VariantAttribute) (VariantAttribute, error)
	UpdateAttribute(ctx context.Context, id int64, attr VariantAttribute) error
	DeleteAttribute(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

type named interface {
	Category | Material | Color | Talle
}

// listNamed queries a name-only table ordered by name, optionally filtered.
func listNamed[T named](ctx context.Context, db *pgxpool.Pool, table, search string, build func(id int64, name string) T) ([]T, error) {
	query := `SELECT id, name FROM ` + table
	args := []interface{}{}
	if search != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		items = append(items, build(id, name))
	}
	return items, rows.Err()
}

func getNamed[T named](ctx context.Context, db *pgxpool.Pool, table, entity string, id int64, build func(id int64, name string) T) (T, error) {
	var zero T
	var name string
	err := db.QueryRow(ctx, `SELECT name FROM `+table+` WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, fmt.Errorf("%s %d: %w", entity, id, shared.ErrNotFound)
	}
	if err != nil {
		return zero, err
	}
	return build(id, name), nil
}

func createNamed[T named](ctx context.Context, db *pgxpool.Pool, table, name string, build func(id int64, name string) T) (T, error) {
	var zero T
	var id int64
	if err := db.QueryRow(ctx, `INSERT INTO `+table+` (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
		return zero, translateNameConflict(err, name)
	}
	return build(id, name), nil
}

func updateNamed(ctx context.Context, db *pgxpool.Pool, table, entity string, id int64, name string) error {
	tag, err := db.Exec(ctx, `UPDATE `+table+` SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return translateNameConflict(err, name)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, shared.ErrNotFound)
	}
	return nil
}

func deleteNamed(ctx context.Context, db *pgxpool.Pool, table, entity string, id int64) error {
	tag, err := db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) ListCategories(ctx context.Context, search string) ([]Category, error) {
	return listNamed(ctx, r.db, "categories", search, func(id int64, name string) Category { return Category{ID: id, Name: name} })
}

func (r *repository) GetCategory(ctx context.Context, id int64) (Category, error) {
	return getNamed(ctx, r.db, "categories", "category", id, func(id int64, name string) Category { return Category{ID: id, Name: name} })
}

func (r *repository) CreateCategory(ctx context.Context, name string) (Category, error) {
	return createNamed(ctx, r.db, "categories", name, func(id int64, name string) Category { return Category{ID: id, Name: name} })
}

func (r *repository) UpdateCategory(ctx context.Context, id int64, name string) error {
	return updateNamed(ctx, r.db, "categories", "category", id, name)
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	return deleteNamed(ctx, r.db, "categories", "category", id)
}

func (r *repository) CategoriesWithProducts(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT c.id, c.name FROM categories c
JOIN products p ON p.category_id = c.id
ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) ListMaterials(ctx context.Context, search string) ([]Material, error) {
	return listNamed(ctx, r.db, "materials", search, func(id int64, name string) Material { return Material{ID: id, Name: name} })
}

func (r *repository) GetMaterial(ctx context.Context, id int64) (Material, error) {
	return getNamed(ctx, r.db, "materials", "material", id, func(id int64, name string) Material { return Material{ID: id, Name: name} })
}

func (r *repository) CreateMaterial(ctx context.Context, name string) (Material, error) {
	return createNamed(ctx, r.db, "materials", name, func(id int64, name string) Material { return Material{ID: id, Name: name} })
}

func (r *repository) UpdateMaterial(ctx context.Context, id int64, name string) error {
	return updateNamed(ctx, r.db, "materials", "material", id, name)
}

func (r *repository) DeleteMaterial(ctx context.Context, id int64) error {
	return deleteNamed(ctx, r.db, "materials", "material", id)
}

func (r *repository) MaterialsUsedInProducts(ctx context.Context) ([]Material, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT m.id, m.name FROM materials m
JOIN products p ON p.material_id = m.id
ORDER BY m.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func (r *repository) ListColors(ctx context.Context, search string) ([]Color, error) {
	return listNamed(ctx, r.db, "colors", search, func(id int64, name string) Color { return Color{ID: id, Name: name} })
}

func (r *repository) GetColor(ctx context.Context, id int64) (Color, error) {
	return getNamed(ctx, r.db, "colors", "color", id, func(id int64, name string) Color { return Color{ID: id, Name: name} })
}

func (r *repository) CreateColor(ctx context.Context, name string) (Color, error) {
	return createNamed(ctx, r.db, "colors", name, func(id int64, name string) Color { return Color{ID: id, Name: name} })
}

func (r *repository) UpdateColor(ctx context.Context, id int64, name string) error {
	return updateNamed(ctx, r.db, "colors", "color", id, name)
}

func (r *repository) DeleteColor(ctx context.Context, id int64) error {
	return deleteNamed(ctx, r.db, "colors", "color", id)
}

func (r *repository) ListTalles(ctx context.Context, search string) ([]Talle, error) {
	return listNamed(ctx, r.db, "talles", search, func(id int64, name string) Talle { return Talle{ID: id, Name: name} })
}

func (r *repository) GetTalle(ctx context.Context, id int64) (Talle, error) {
	return getNamed(ctx, r.db, "talles", "talle", id, func(id int64, name string) Talle { return Talle{ID: id, Name: name} })
}

func (r *repository) CreateTalle(ctx context.Context, name string) (Talle, error) {
	return createNamed(ctx, r.db, "talles", name, func(id int64, name string) Talle { return Talle{ID: id, Name: name} })
}

func (r *repository) UpdateTalle(ctx context.Context, id int64, name string) error {
	return updateNamed(ctx, r.db, "talles", "talle", id, name)
}

func (r *repository) DeleteTalle(ctx context.Context, id int64) error {
	return deleteNamed(ctx, r.db, "talles", "talle", id)
}

func (r *repository) ListAttributes(ctx context.Context, search string) ([]VariantAttribute, error) {
	query := `SELECT id, name, allowed_values FROM variant_attributes`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attrs []VariantAttribute
	for rows.Next() {
		var a VariantAttribute
		if err := rows.Scan(&a.ID, &a.Name, &a.Values); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

func (r *repository) GetAttribute(ctx context.Context, id int64) (VariantAttribute, error) {
	var a VariantAttribute
	err := r.db.QueryRow(ctx, `SELECT id, name, allowed_values FROM variant_attributes WHERE id = $1`, id).Scan(&a.ID, &a.Name, &a.Values)
	if errors.Is(err, pgx.ErrNoRows) {
		return VariantAttribute{}, fmt.Errorf("variant attribute %d: %w", id, shared.ErrNotFound)
	}
	return a, err
}

func (r *repository) CreateAttribute(ctx context.Context, attr VariantAttribute) (VariantAttribute, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO variant_attributes (name, allowed_values) VALUES ($1, $2) RETURNING id`, attr.Name, attr.Values).Scan(&attr.ID)
	if err != nil {
		return VariantAttribute{}, translateNameConflict(err, attr.Name)
	}
	return attr, nil
}

func (r *repository) UpdateAttribute(ctx context.Context, id int64, attr VariantAttribute) error {
	tag, err := r.db.Exec(ctx, `UPDATE variant_attributes SET name = $1, allowed_values = $2 WHERE id = $3`, attr.Name, attr.Values, id)
	if err != nil {
		return translateNameConflict(err, attr.Name)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("variant attribute %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) DeleteAttribute(ctx context.Context, id int64) error {
	return deleteNamed(ctx, r.db, "variant_attributes", "variant attribute", id)
}

// translateNameConflict maps a unique violation on a catalog name to the
// conflict category so duplicates answer 409 instead of 500.
func translateNameConflict(err error, name string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("name %q already exists: %w", name, shared.ErrConflict)
	}
	return err
}

package catalog

import (
	"context"
	"fmt"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListCategories(ctx context.Context, search string) ([]Category, error) {
	return s.repo.ListCategories(ctx, search)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, fmt.Errorf("invalid category id: %w", shared.ErrValidation)
	}
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (Category, error) {
	if err := validateName(name); err != nil {
		return Category{}, err
	}
	return s.repo.CreateCategory(ctx, name)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	return s.repo.UpdateCategory(ctx, id, name)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) CategoriesWithProducts(ctx context.Context) ([]Category, error) {
	return s.repo.CategoriesWithProducts(ctx)
}

func (s *Service) ListMaterials(ctx context.Context, search string) ([]Material, error) {
	return s.repo.ListMaterials(ctx, search)
}

func (s *Service) GetMaterial(ctx context.Context, id int64) (Material, error) {
	if id <= 0 {
		return Material{}, fmt.Errorf("invalid material id: %w", shared.ErrValidation)
	}
	return s.repo.GetMaterial(ctx, id)
}

func (s *Service) CreateMaterial(ctx context.Context, name string) (Material, error) {
	if err := validateName(name); err != nil {
		return Material{}, err
	}
	return s.repo.CreateMaterial(ctx, name)
}

func (s *Service) UpdateMaterial(ctx context.Context, id int64, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	return s.repo.UpdateMaterial(ctx, id, name)
}

func (s *Service) DeleteMaterial(ctx context.Context, id int64) error {
	return s.repo.DeleteMaterial(ctx, id)
}

func (s *Service) MaterialsUsedInProducts(ctx context.Context) ([]Material, error) {
	return s.repo.MaterialsUsedInProducts(ctx)
}

func (s *Service) ListColors(ctx context.Context, search string) ([]Color, error) {
	return s.repo.ListColors(ctx, search)
}

func (s *Service) GetColor(ctx context.Context, id int64) (Color, error) {
	if id <= 0 {
		return Color{}, fmt.Errorf("invalid color id: %w", shared.ErrValidation)
	}
	return s.repo.GetColor(ctx, id)
}

func (s *Service) CreateColor(ctx context.Context, name string) (Color, error) {
	if err := validateName(name); err != nil {
		return Color{}, err
	}
	return s.repo.CreateColor(ctx, name)
}

func (s *Service) UpdateColor(ctx context.Context, id int64, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	return s.repo.UpdateColor(ctx, id, name)
}

func (s *Service) DeleteColor(ctx context.Context, id int64) error {
	return s.repo.DeleteColor(ctx, id)
}

func (s *Service) ListTalles(ctx context.Context, search string) ([]Talle, error) {
	return s.repo.ListTalles(ctx, search)
}

func (s *Service) GetTalle(ctx context.Context, id int64) (Talle, error) {
	if id <= 0 {
		return Talle{}, fmt.Errorf("invalid talle id: %w", shared.ErrValidation)
	}
	return s.repo.GetTalle(ctx, id)
}

func (s *Service) CreateTalle(ctx context.Context, name string) (Talle, error) {
	if err := validateName(name); err != nil {
		return Talle{}, err
	}
	return s.repo.CreateTalle(ctx, name)
}

func (s *Service) UpdateTalle(ctx context.Context, id int64, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	return s.repo.UpdateTalle(ctx, id, name)
}

func (s *Service) DeleteTalle(ctx context.Context, id int64) error {
	return s.repo.DeleteTalle(ctx, id)
}

func (s *Service) ListAttributes(ctx context.Context, search string) ([]VariantAttribute, error) {
	return s.repo.ListAttributes(ctx, search)
}

func (s *Service) GetAttribute(ctx context.Context, id int64) (VariantAttribute, error) {
	if id <= 0 {
		return VariantAttribute{}, fmt.Errorf("invalid attribute id: %w", shared.ErrValidation)
	}
	return s.repo.GetAttribute(ctx, id)
}

func (s *Service) CreateAttribute(ctx context.Context, attr VariantAttribute) (VariantAttribute, error) {
	if err := validateAttribute(attr); err != nil {
		return VariantAttribute{}, err
	}
	return s.repo.CreateAttribute(ctx, attr)
}

func (s *Service) UpdateAttribute(ctx context.Context, id int64, attr VariantAttribute) error {
	if err := validateAttribute(attr); err != nil {
		return err
	}
	return s.repo.UpdateAttribute(ctx, id, attr)
}

func (s *Service) DeleteAttribute(ctx context.Context, id int64) error {
	return s.repo.DeleteAttribute(ctx, id)
}

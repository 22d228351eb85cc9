package services

import (
	"context"

	"github.com/pkg/errors"

	"carrental/internal/events"
	"carrental/internal/models"
	"carrental/internal/repositories"
)

// BrandService handles business logic related to brands.
type BrandService struct {
	repo   repositories.BrandRepository
	events events.Publisher
}

// NewBrandService creates a new BrandService.
func NewBrandService(repo repositories.BrandRepository, publisher events.Publisher) *BrandService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &BrandService{
		repo:   repo,
		events: publisher,
	}
}

// GetAllBrands retrieves all brands.
func (s *BrandService) GetAllBrands(ctx context.Context) ([]models.Brand, error) {
	return s.repo.List(ctx, repositories.BrandFilter{})
}

// FeaturedBrands retrieves the brands flagged as featured.
func (s *BrandService) FeaturedBrands(ctx context.Context) ([]models.Brand, error) {
	featured := true
	return s.repo.List(ctx, repositories.BrandFilter{Featured: &featured})
}

// GetBrandBySlug returns the first brand with slug, or nil when none has it.
func (s *BrandService) GetBrandBySlug(ctx context.Context, slug string) (*models.Brand, error) {
	brands, err := s.repo.List(ctx, repositories.BrandFilter{Slug: slug})
	if err != nil {
		return nil, err
	}
	if len(brands) == 0 {
		return nil, nil
	}
	return &brands[0], nil
}

// GetBrandByID retrieves a single brand by its ID.
func (s *BrandService) GetBrandByID(ctx context.Context, id string) (*models.Brand, error) {
	brand, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrBrandNotFound)
	}
	return brand, nil
}

// CreateBrand creates a new brand. Slugs are not checked for uniqueness.
func (s *BrandService) CreateBrand(ctx context.Context, req models.CreateBrandRequest) (*models.Brand, error) {
	brand := req.NewBrand()
	if err := s.repo.Create(ctx, brand); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.events, events.New(events.BrandCreated, brand.ID, nil))
	return brand, nil
}

// UpdateBrand writes the non-empty fields of patch and returns them.
func (s *BrandService) UpdateBrand(ctx context.Context, id string, patch models.BrandPatch) (map[string]interface{}, error) {
	patch.Normalize()
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, notFound(err, ErrBrandNotFound)
	}
	changes := patch.Changes()
	events.Emit(ctx, s.events, events.New(events.BrandUpdated, id, changes))
	return changes, nil
}

// DeleteBrand deletes a brand by its ID. Deleting a missing brand succeeds.
func (s *BrandService) DeleteBrand(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	events.Emit(ctx, s.events, events.New(events.BrandDeleted, id, nil))
	return nil
}

package repositories

import (
	"context"

	"carrental/internal/models"
)

// BrandFilter narrows a brand listing.
type BrandFilter struct {
	Slug     string
	Featured *bool
}

// BrandRepository defines the interface for brand data access.
type BrandRepository interface {
	List(ctx context.Context, filter BrandFilter) ([]models.Brand, error)
	GetByID(ctx context.Context, id string) (*models.Brand, error)
	Create(ctx context.Context, brand *models.Brand) error
	Update(ctx context.Context, id string, patch models.BrandPatch) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

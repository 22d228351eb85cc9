package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"carrental/internal/models"
)

// GORMBrandRepository is a GORM implementation of BrandRepository.
type GORMBrandRepository struct {
	db *gorm.DB
}

// NewGORMBrandRepository creates a new instance of GORMBrandRepository.
func NewGORMBrandRepository(db *gorm.DB) *GORMBrandRepository {
	return &GORMBrandRepository{db: db}
}

func (r *GORMBrandRepository) List(ctx context.Context, filter BrandFilter) ([]models.Brand, error) {
	q := r.db.WithContext(ctx).Model(&models.Brand{})
	if filter.Slug != "" {
		q = q.Where("slug = ?", filter.Slug)
	}
	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}

	brands := []models.Brand{}
	if err := q.Order("id").Find(&brands).Error; err != nil {
		return nil, translate(err, "failed to list brands")
	}
	return brands, nil
}

func (r *GORMBrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, translate(err, "brand "+id)
	}
	return &brand, nil
}

func (r *GORMBrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.New().String()
	}
	return translate(r.db.WithContext(ctx).Create(brand).Error, "failed to create brand")
}

func (r *GORMBrandRepository) Update(ctx context.Context, id string, patch models.BrandPatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var brand models.Brand
		if err := forUpdate(tx).First(&brand, "id = ?", id).Error; err != nil {
			return translate(err, "brand "+id)
		}
		patch.Apply(&brand)
		return translate(tx.Save(&brand).Error, "failed to update brand "+id)
	})
}

func (r *GORMBrandRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Brand{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "failed to delete brand "+id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "brand %s", id)
	}
	return nil
}

func (r *GORMBrandRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Brand{}).Count(&n).Error; err != nil {
		return 0, translate(err, "failed to count brands")
	}
	return n, nil
}

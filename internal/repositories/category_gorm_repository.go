package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"carrental/internal/models"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) List(ctx context.Context, filter CategoryFilter) ([]models.Category, error) {
	if err := checkSortField(filter.SortBy); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&models.Category{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Value != "" {
		q = q.Where("value = ?", filter.Value)
	}
	if filter.Slug != "" {
		q = q.Where("slug = ?", filter.Slug)
	}
	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}
	if filter.SortBy != "" {
		q = q.Order(CategorySortFields[filter.SortBy] + ", id")
	} else {
		q = q.Order("id")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	categories := []models.Category{}
	if err := q.Find(&categories).Error; err != nil {
		return nil, translate(err, "failed to list categories")
	}
	return categories, nil
}

func (r *GORMCategoryRepository) SearchPrefix(ctx context.Context, field, prefix string) ([]models.Category, error) {
	if err := checkSearchField(field); err != nil {
		return nil, err
	}

	categories := []models.Category{}
	err := r.db.WithContext(ctx).
		Where(field+" >= ? AND "+field+" <= ?", prefix, prefix+prefixUpperBound).
		Order(field + ", id").
		Find(&categories).Error
	if err != nil {
		return nil, translate(err, "failed to search categories by "+field)
	}
	return categories, nil
}

func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err, "category "+id)
	}
	return &category, nil
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	return translate(r.db.WithContext(ctx).Create(category).Error, "failed to create category")
}

func (r *GORMCategoryRepository) Update(ctx context.Context, id string, patch models.CategoryPatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := forUpdate(tx).First(&category, "id = ?", id).Error; err != nil {
			return translate(err, "category "+id)
		}
		patch.Apply(&category)
		return translate(tx.Save(&category).Error, "failed to update category "+id)
	})
}

func (r *GORMCategoryRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "failed to delete category "+id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "category %s", id)
	}
	return nil
}

func (r *GORMCategoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&n).Error; err != nil {
		return 0, translate(err, "failed to count categories")
	}
	return n, nil
}

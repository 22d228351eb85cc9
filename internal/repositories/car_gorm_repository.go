package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"carrental/internal/models"
)

// GORMCarRepository is a GORM implementation of CarRepository.
type GORMCarRepository struct {
	db *gorm.DB
}

// NewGORMCarRepository creates a new instance of GORMCarRepository.
func NewGORMCarRepository(db *gorm.DB) *GORMCarRepository {
	return &GORMCarRepository{
		db: db,
	}
}

// List retrieves the cars matching filter.
func (r *GORMCarRepository) List(ctx context.Context, filter CarFilter) ([]models.Car, error) {
	q := r.db.WithContext(ctx).Model(&models.Car{})
	if filter.Brand != "" {
		q = q.Where("brand = ?", filter.Brand)
	}
	if filter.Transmission != "" {
		q = q.Where("transmission = ?", filter.Transmission)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.FuelType != "" {
		q = q.Where("fuel_type = ?", filter.FuelType)
	}
	if filter.Available != nil {
		q = q.Where("available = ?", *filter.Available)
	}
	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}

	cars := []models.Car{}
	if err := q.Order("id").Find(&cars).Error; err != nil {
		return nil, translate(err, "failed to list cars")
	}

	// tags and categories are serialized columns, so membership is checked
	// on the decoded rows.
	if filter.Tag == "" && filter.Category == "" {
		return cars, nil
	}
	matched := make([]models.Car, 0, len(cars))
	for i := range cars {
		if filter.matches(&cars[i]) {
			matched = append(matched, cars[i])
		}
	}
	return matched, nil
}

// GetByID retrieves a single car by its ID.
func (r *GORMCarRepository) GetByID(ctx context.Context, id string) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).First(&car, "id = ?", id).Error; err != nil {
		return nil, translate(err, "car "+id)
	}
	return &car, nil
}

// Create stores a new car, assigning an ID when none is set.
func (r *GORMCarRepository) Create(ctx context.Context, car *models.Car) error {
	if car.ID == "" {
		car.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(car).Error; err != nil {
		return translate(err, "failed to create car")
	}
	return nil
}

// Update applies patch to the car with the given ID.
func (r *GORMCarRepository) Update(ctx context.Context, id string, patch models.CarPatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.updateTx(tx, id, patch)
	})
}

func (r *GORMCarRepository) updateTx(tx *gorm.DB, id string, patch models.CarPatch) error {
	var car models.Car
	if err := forUpdate(tx).First(&car, "id = ?", id).Error; err != nil {
		return translate(err, "car "+id)
	}
	patch.Apply(&car)
	return translate(tx.Save(&car).Error, "failed to update car "+id)
}

// BulkUpdate applies all updates in one transaction.
func (r *GORMCarRepository) BulkUpdate(ctx context.Context, updates []models.CarUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := r.updateTx(tx, u.ID, *u.Data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a car by its ID.
func (r *GORMCarRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Car{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "failed to delete car "+id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "car %s", id)
	}
	return nil
}

// AddCategory adds categoryID to the car's categories unless present.
func (r *GORMCarRepository) AddCategory(ctx context.Context, id, categoryID string) error {
	return r.modifyCategories(ctx, id, func(categories []string) []string {
		if contains(categories, categoryID) {
			return categories
		}
		return append(categories, categoryID)
	})
}

// RemoveCategory removes every occurrence of categoryID from the car.
func (r *GORMCarRepository) RemoveCategory(ctx context.Context, id, categoryID string) error {
	return r.modifyCategories(ctx, id, func(categories []string) []string {
		return without(categories, categoryID)
	})
}

func (r *GORMCarRepository) modifyCategories(ctx context.Context, id string, modify func([]string) []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var car models.Car
		if err := forUpdate(tx).First(&car, "id = ?", id).Error; err != nil {
			return translate(err, "car "+id)
		}
		car.Categories = modify(car.Categories)
		return translate(tx.Save(&car).Error, "failed to update categories of car "+id)
	})
}

// Count returns the number of stored cars.
func (r *GORMCarRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Car{}).Count(&n).Error; err != nil {
		return 0, translate(err, "failed to count cars")
	}
	return n, nil
}

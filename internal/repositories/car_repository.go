package repositories

import (
	"context"

	"carrental/internal/models"
)

// CarFilter narrows a car listing. Zero values are not applied.
type CarFilter struct {
	Brand        string
	Transmission string
	Type         string
	FuelType     string
	Available    *bool
	Featured     *bool
	Tag          string
	Category     string
}

// CarRepository defines the interface for car data access.
type CarRepository interface {
	List(ctx context.Context, filter CarFilter) ([]models.Car, error)
	GetByID(ctx context.Context, id string) (*models.Car, error)
	Create(ctx context.Context, car *models.Car) error
	Update(ctx context.Context, id string, patch models.CarPatch) error
	// BulkUpdate applies every update or none of them.
	BulkUpdate(ctx context.Context, updates []models.CarUpdate) error
	Delete(ctx context.Context, id string) error
	AddCategory(ctx context.Context, id, categoryID string) error
	RemoveCategory(ctx context.Context, id, categoryID string) error
	Count(ctx context.Context) (int64, error)
}

func (f CarFilter) matches(car *models.Car) bool {
	switch {
	case f.Brand != "" && car.Brand != f.Brand,
		f.Transmission != "" && car.Transmission != f.Transmission,
		f.Type != "" && car.Type != f.Type,
		f.FuelType != "" && car.FuelType != f.FuelType,
		f.Available != nil && car.Available != *f.Available,
		f.Featured != nil && car.Featured != *f.Featured,
		f.Tag != "" && !contains(car.Tags, f.Tag),
		f.Category != "" && !contains(car.Categories, f.Category):
		return false
	}
	return true
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func without(values []string, v string) []string {
	out := make([]string, 0, len(values))
	for _, s := range values {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

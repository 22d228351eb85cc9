package repositories

import (
	"context"

	"github.com/pkg/errors"

	"carrental/internal/models"
)

// CategoryFilter narrows a category listing. SortBy is a document field name
// from CategorySortFields and orders results ascending. Limit 0 means all.
type CategoryFilter struct {
	Type     string
	Value    string
	Slug     string
	Featured *bool
	SortBy   string
	Limit    int
}

// CategorySortFields maps sortable document fields to their column names.
var CategorySortFields = map[string]string{
	"name":      "name",
	"type":      "type",
	"slug":      "slug",
	"carCount":  "car_count",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(ctx context.Context, filter CategoryFilter) ([]models.Category, error)
	// SearchPrefix returns categories whose field starts with prefix.
	// field is "name" or "type".
	SearchPrefix(ctx context.Context, field, prefix string) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id string, patch models.CategoryPatch) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// prefixUpperBound closes the range [prefix, prefix+"\uf8ff"] used for
// prefix matching on ordered string indexes.
const prefixUpperBound = "\uf8ff"

func checkSortField(field string) error {
	if field == "" {
		return nil
	}
	if _, ok := CategorySortFields[field]; !ok {
		return errors.Wrapf(ErrInvalidArgument, "cannot sort categories by %q", field)
	}
	return nil
}

func checkSearchField(field string) error {
	if field != "name" && field != "type" {
		return errors.Wrapf(ErrInvalidArgument, "cannot search categories by %q", field)
	}
	return nil
}

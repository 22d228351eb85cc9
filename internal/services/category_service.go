package services

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"carrental/internal/events"
	"carrental/internal/models"
	"carrental/internal/repositories"
)

// Category listing defaults and bounds.
const (
	DefaultCategoryPage  = 1
	DefaultCategoryLimit = 10
	DefaultCategorySort  = "name"
	MaxCategoryLimit     = 100
)

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo   repositories.CategoryRepository
	events events.Publisher
	now    func() time.Time
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository, publisher events.Publisher) *CategoryService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CategoryService{
		repo:   repo,
		events: publisher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ListCategories returns one page of categories ordered by sort.
func (s *CategoryService) ListCategories(ctx context.Context, page, limit int, sort string) (*models.CategoryPage, error) {
	if page < 1 {
		return nil, errors.Wrapf(repositories.ErrInvalidArgument, "page must be at least 1, got %d", page)
	}
	if limit < 1 || limit > MaxCategoryLimit {
		return nil, errors.Wrapf(repositories.ErrInvalidArgument, "limit must be between 1 and %d, got %d", MaxCategoryLimit, limit)
	}

	all, err := s.repo.List(ctx, repositories.CategoryFilter{SortBy: sort})
	if err != nil {
		return nil, err
	}

	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &models.CategoryPage{
		Categories:  all[start:end],
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
		TotalItems:  total,
	}, nil
}

// CategoriesByType returns categories of type t. Car body types such as SUV
// are stored as carType categories whose value is the body type.
func (s *CategoryService) CategoriesByType(ctx context.Context, t string) ([]models.Category, error) {
	filter := repositories.CategoryFilter{Type: t}
	if models.IsCarType(t) {
		filter = repositories.CategoryFilter{Type: models.CarTypeCategory, Value: t}
	}
	return s.repo.List(ctx, filter)
}

// FeaturedCategories returns the categories flagged as featured.
func (s *CategoryService) FeaturedCategories(ctx context.Context) ([]models.Category, error) {
	featured := true
	return s.repo.List(ctx, repositories.CategoryFilter{Featured: &featured})
}

// SearchCategories returns categories whose name or type starts with q. Name
// matches come first and each category appears once.
func (s *CategoryService) SearchCategories(ctx context.Context, q string) ([]models.Category, error) {
	if q == "" {
		return []models.Category{}, nil
	}

	byName, err := s.repo.SearchPrefix(ctx, "name", q)
	if err != nil {
		return nil, err
	}
	byType, err := s.repo.SearchPrefix(ctx, "type", q)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(byName)+len(byType))
	results := make([]models.Category, 0, len(byName)+len(byType))
	for _, c := range append(byName, byType...) {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		results = append(results, c)
	}
	return results, nil
}

// GetCategoryBySlug returns the first category with slug.
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := s.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.Wrapf(ErrCategoryNotFound, "slug %s", slug)
	}
	return c, nil
}

func (s *CategoryService) findBySlug(ctx context.Context, slug string) (*models.Category, error) {
	found, err := s.repo.List(ctx, repositories.CategoryFilter{Slug: slug, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// GetCategory retrieves a single category by its ID.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return c, nil
}

// CreateCategory stores a new category unless its slug is taken. The check
// and the insert are separate store calls, so concurrent creates can race.
func (s *CategoryService) CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	existing, err := s.findBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateSlug
	}

	category := req.NewCategory(s.now())
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.events, events.New(events.CategoryCreated, category.ID, nil))
	return category, nil
}

// UpdateCategory applies patch, refreshing updatedAt, and returns the stored
// category. A changed slug is checked for duplicates first.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) (*models.Category, error) {
	current, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Slug != nil && *patch.Slug != current.Slug {
		existing, err := s.findBySlug(ctx, *patch.Slug)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDuplicateSlug
		}
	}

	now := s.now()
	patch.UpdatedAt = &now
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}

	events.Emit(ctx, s.events, events.New(events.CategoryUpdated, id, patch.Changes()))
	return s.GetCategory(ctx, id)
}

// DeleteCategory deletes an existing category.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, ErrCategoryNotFound)
	}
	events.Emit(ctx, s.events, events.New(events.CategoryDeleted, id, nil))
	return nil
}

package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"

	"carrental/internal/events"
	"carrental/internal/models"
	"carrental/internal/repositories"
)

// searchLimit caps the number of cars returned by Search.
const searchLimit = 10

// patches checks bulk update entries one by one so a bad entry is skipped
// instead of failing its batch.
var patches = validator.New()

// CarQuery is a car listing request: store side equality filters plus a
// daily price range applied to the fetched cars.
type CarQuery struct {
	repositories.CarFilter
	MinPrice *float64
	MaxPrice *float64
}

func (q CarQuery) inPriceRange(car *models.Car) bool {
	if q.MinPrice != nil && car.DailyPrice < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && car.DailyPrice > *q.MaxPrice {
		return false
	}
	return true
}

// BulkUpdateResult reports how many updates of a batch were written and how
// many were skipped for lacking an id, lacking data or carrying invalid data.
type BulkUpdateResult struct {
	Updated int
	Skipped int
}

// CarService handles business logic related to cars.
type CarService struct {
	cars       repositories.CarRepository
	categories repositories.CategoryRepository
	events     events.Publisher
}

// NewCarService creates a new CarService.
func NewCarService(cars repositories.CarRepository, categories repositories.CategoryRepository, publisher events.Publisher) *CarService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CarService{
		cars:       cars,
		categories: categories,
		events:     publisher,
	}
}

// ListCars returns the cars matching q.
func (s *CarService) ListCars(ctx context.Context, q CarQuery) ([]models.Car, error) {
	cars, err := s.cars.List(ctx, q.CarFilter)
	if err != nil {
		return nil, err
	}
	if q.MinPrice == nil && q.MaxPrice == nil {
		return cars, nil
	}

	out := make([]models.Car, 0, len(cars))
	for i := range cars {
		if q.inPriceRange(&cars[i]) {
			out = append(out, cars[i])
		}
	}
	return out, nil
}

// FeaturedCars returns the cars flagged as featured.
func (s *CarService) FeaturedCars(ctx context.Context) ([]models.Car, error) {
	featured := true
	return s.cars.List(ctx, repositories.CarFilter{Featured: &featured})
}

// SearchCars returns up to ten cars whose name, brand, model or description
// contains query, ignoring case. An empty query matches nothing.
func (s *CarService) SearchCars(ctx context.Context, query string) ([]models.Car, error) {
	if query == "" {
		return []models.Car{}, nil
	}

	cars, err := s.cars.List(ctx, repositories.CarFilter{})
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	results := make([]models.Car, 0, searchLimit)
	for _, car := range cars {
		if len(results) == searchLimit {
			break
		}
		for _, field := range []string{car.Name, car.Brand, car.Model, car.Description} {
			if strings.Contains(strings.ToLower(field), needle) {
				results = append(results, car)
				break
			}
		}
	}
	return results, nil
}

// GetCar retrieves a single car by its ID.
func (s *CarService) GetCar(ctx context.Context, id string) (*models.Car, error) {
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCarNotFound)
	}
	return car, nil
}

// CreateCar stores a new car built from req.
func (s *CarService) CreateCar(ctx context.Context, req models.CreateCarRequest) (*models.Car, error) {
	if err := s.checkCategories(ctx, req.Categories); err != nil {
		return nil, err
	}
	car := req.NewCar()
	if err := s.cars.Create(ctx, car); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.events, events.New(events.CarCreated, car.ID, nil))
	return car, nil
}

// UpdateCar applies patch to the car and returns the fields written.
func (s *CarService) UpdateCar(ctx context.Context, id string, patch models.CarPatch) (map[string]interface{}, error) {
	if patch.Categories != nil {
		if err := s.checkCategories(ctx, *patch.Categories); err != nil {
			return nil, err
		}
	}
	if err := s.cars.Update(ctx, id, patch); err != nil {
		return nil, notFound(err, ErrCarNotFound)
	}
	changes := patch.Changes()
	events.Emit(ctx, s.events, events.New(events.CarUpdated, id, changes))
	return changes, nil
}

// DeleteCar removes a car. Deleting a car that does not exist succeeds.
func (s *CarService) DeleteCar(ctx context.Context, id string) error {
	err := s.cars.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	events.Emit(ctx, s.events, events.New(events.CarDeleted, id, nil))
	return nil
}

// DeleteExistingCar removes a car, failing with ErrCarNotFound when it does
// not exist.
func (s *CarService) DeleteExistingCar(ctx context.Context, id string) error {
	if _, err := s.GetCar(ctx, id); err != nil {
		return err
	}
	if err := s.cars.Delete(ctx, id); err != nil {
		return notFound(err, ErrCarNotFound)
	}
	events.Emit(ctx, s.events, events.New(events.CarDeleted, id, nil))
	return nil
}

// BulkUpdateCars applies every usable update in one atomic write. Entries
// without an id or data are skipped, and so are patches that change nothing
// or fail validation. An update naming a missing car or category fails the
// whole batch.
func (s *CarService) BulkUpdateCars(ctx context.Context, updates []models.CarUpdate) (*BulkUpdateResult, error) {
	if len(updates) == 0 {
		return nil, ErrInvalidUpdates
	}

	batch := make([]models.CarUpdate, 0, len(updates))
	ids := make([]string, 0, len(updates))
	for i, u := range updates {
		if u.ID == "" || u.Data == nil || u.Data.Empty() {
			grip.Debug(message.Fields{
				"message": "skipping bulk update entry",
				"index":   i,
				"id":      u.ID,
			})
			continue
		}
		if err := patches.Struct(u.Data); err != nil {
			grip.Debug(message.WrapError(err, message.Fields{
				"message": "skipping invalid bulk update entry",
				"index":   i,
				"id":      u.ID,
			}))
			continue
		}
		if u.Data.Categories != nil {
			if err := s.checkCategories(ctx, *u.Data.Categories); err != nil {
				return nil, err
			}
		}
		batch = append(batch, u)
		ids = append(ids, u.ID)
	}

	if err := s.cars.BulkUpdate(ctx, batch); err != nil {
		return nil, notFound(err, ErrCarNotFound)
	}

	result := &BulkUpdateResult{Updated: len(batch), Skipped: len(updates) - len(batch)}
	if result.Updated > 0 {
		events.Emit(ctx, s.events, events.New(events.CarsBulkUpdated, "", map[string]interface{}{"ids": ids}))
	}
	return result, nil
}

// checkCategories fails with ErrCategoryNotFound unless every id names a
// stored category.
func (s *CarService) checkCategories(ctx context.Context, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.categories.GetByID(ctx, id); err != nil {
			return notFound(err, ErrCategoryNotFound)
		}
	}
	return nil
}

// AddCategory attaches an existing category to an existing car.
func (s *CarService) AddCategory(ctx context.Context, carID, categoryID string) error {
	car, err := s.GetCar(ctx, carID)
	if err != nil {
		return err
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return notFound(err, ErrCategoryNotFound)
	}
	if car.HasCategory(categoryID) {
		return ErrCategoryAlreadyAdded
	}

	if err := s.cars.AddCategory(ctx, carID, categoryID); err != nil {
		return notFound(err, ErrCarNotFound)
	}
	events.Emit(ctx, s.events, events.New(events.CarCategoryAdded, carID, map[string]interface{}{"categoryId": categoryID}))
	return nil
}

// RemoveCategory detaches a category from a car. Removing a category the car
// does not hold succeeds.
func (s *CarService) RemoveCategory(ctx context.Context, carID, categoryID string) error {
	if err := s.cars.RemoveCategory(ctx, carID, categoryID); err != nil {
		return notFound(err, ErrCarNotFound)
	}
	events.Emit(ctx, s.events, events.New(events.CarCategoryRemoved, carID, map[string]interface{}{"categoryId": categoryID}))
	return nil
}

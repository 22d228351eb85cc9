package services

import (
	"context"
	"time"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
)

// DefaultAnalyticsTimeout bounds the whole analytics aggregation.
const DefaultAnalyticsTimeout = 30 * time.Second

// Counter is a collection that can report its size.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Analytics holds the catalog totals shown on the admin dashboard.
type Analytics struct {
	TotalCars       int64 `json:"totalCars"`
	TotalBrands     int64 `json:"totalBrands"`
	TotalCategories int64 `json:"totalCategories"`
}

// AnalyticsService aggregates collection counts.
type AnalyticsService struct {
	cars       Counter
	brands     Counter
	categories Counter
	timeout    time.Duration
}

// NewAnalyticsService creates a new AnalyticsService. A non-positive timeout
// selects DefaultAnalyticsTimeout.
func NewAnalyticsService(cars, brands, categories Counter, timeout time.Duration) *AnalyticsService {
	if timeout <= 0 {
		timeout = DefaultAnalyticsTimeout
	}
	return &AnalyticsService{
		cars:       cars,
		brands:     brands,
		categories: categories,
		timeout:    timeout,
	}
}

// Summary counts cars, brands and categories one after another. A count that
// fails is reported as zero. When the deadline passes the context error is
// returned instead of partial totals.
func (s *AnalyticsService) Summary(ctx context.Context) (*Analytics, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out := &Analytics{}
	for _, c := range []struct {
		name    string
		counter Counter
		total   *int64
	}{
		{"cars", s.cars, &out.TotalCars},
		{"brands", s.brands, &out.TotalBrands},
		{"categories", s.categories, &out.TotalCategories},
	} {
		n, err := c.counter.Count(ctx)
		if err != nil {
			grip.Error(message.WrapError(err, message.Fields{
				"message":    "failed to count collection",
				"collection": c.name,
			}))
			n = 0
		}
		*c.total = n

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return out, nil
}

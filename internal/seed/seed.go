// Package seed fills an empty catalog with sample and generated documents.
package seed

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/gosimple/slug"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"

	"carrental/internal/models"
	"carrental/internal/repositories"
)

// Result counts the documents a seeding run inserted.
type Result struct {
	Brands     int `json:"brands"`
	Categories int `json:"categories"`
	Cars       int `json:"cars"`
}

// Seeder writes seed documents through the repositories.
type Seeder struct {
	repos *repositories.Repositories
	now   func() time.Time
	rand  *rand.Rand
}

// New creates a Seeder.
func New(repos *repositories.Repositories) *Seeder {
	return &Seeder{
		repos: repos,
		now:   time.Now,
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var sampleBrands = []struct {
	name     string
	featured bool
}{
	{"BMW", true},
	{"Mercedes-Benz", true},
	{"Audi", false},
	{"Porsche", true},
	{"Toyota", false},
	{"Tesla", false},
}

var fuelTypes = []string{"Petrol", "Diesel", "Electric", "Hybrid"}

var sampleCars = []models.Car{
	{Name: "X5", Brand: "BMW", Model: "xDrive40i", Transmission: "Automatic", FuelType: "Petrol", Type: "SUV", Seats: 5, Year: 2023, Rating: 4.7, DailyPrice: 250, Tags: []string{"family", "luxury"}},
	{Name: "M4", Brand: "BMW", Model: "Competition", Transmission: "Automatic", FuelType: "Petrol", Type: "Coupe", Seats: 4, Year: 2024, Rating: 4.9, DailyPrice: 480, RareCar: true, Tags: []string{"sport"}},
	{Name: "G 63", Brand: "Mercedes-Benz", Model: "AMG", Transmission: "Automatic", FuelType: "Petrol", Type: "SUV", Seats: 5, Year: 2023, Rating: 4.8, DailyPrice: 900, AdvancePayment: true, Tags: []string{"luxury"}},
	{Name: "E-Class", Brand: "Mercedes-Benz", Model: "E 300", Transmission: "Automatic", FuelType: "Diesel", Type: "Sedan", Seats: 5, Year: 2022, Rating: 4.5, DailyPrice: 220, Tags: []string{"business"}},
	{Name: "A3", Brand: "Audi", Model: "Sportback", Transmission: "Manual", FuelType: "Petrol", Type: "Hatchback", Seats: 5, Year: 2021, Rating: 4.2, DailyPrice: 120, Tags: []string{"city"}},
	{Name: "911", Brand: "Porsche", Model: "Carrera S Cabriolet", Transmission: "Automatic", FuelType: "Petrol", Type: "Convertible", Seats: 4, Year: 2024, Rating: 5, DailyPrice: 1100, RareCar: true, AdvancePayment: true, Tags: []string{"sport", "luxury"}},
	{Name: "Camry", Brand: "Toyota", Model: "Hybrid SE", Transmission: "Automatic", FuelType: "Hybrid", Type: "Sedan", Seats: 5, Year: 2023, Rating: 4.4, DailyPrice: 90, Tags: []string{"city", "economy"}},
	{Name: "Model Y", Brand: "Tesla", Model: "Long Range", Transmission: "Automatic", FuelType: "Electric", Type: "SUV", Seats: 5, Year: 2024, Rating: 4.6, DailyPrice: 180, Tags: []string{"family", "electric"}},
}

// Sample inserts the built-in brands, categories and cars. It does nothing
// when the catalog already holds cars.
func (s *Seeder) Sample(ctx context.Context) (*Result, error) {
	n, err := s.repos.Cars.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting cars")
	}
	if n > 0 {
		grip.Info(message.Fields{
			"message": "catalog is not empty, skipping sample data",
			"cars":    n,
		})
		return &Result{}, nil
	}

	result := &Result{}
	carCounts := map[string]int{}
	for _, car := range sampleCars {
		carCounts[car.Brand]++
	}

	for _, b := range sampleBrands {
		brand := &models.Brand{
			Name:     b.name,
			Logo:     "/images/brands/" + slug.Make(b.name) + ".svg",
			Slug:     slug.Make(b.name),
			Featured: b.featured,
			CarCount: carCounts[b.name],
		}
		if err := s.repos.Brands.Create(ctx, brand); err != nil {
			return result, errors.Wrapf(err, "creating brand %s", b.name)
		}
		result.Brands++
	}

	// category ids by the car attribute value they group
	categoryIDs := map[string]string{}
	addCategory := func(name, kind, value string, featured bool) error {
		req := models.CreateCategoryRequest{
			Name:        name,
			Type:        kind,
			Value:       value,
			Slug:        slug.Make(name),
			Featured:    featured,
			Description: name + " cars",
		}
		category := req.NewCategory(s.now())
		if err := s.repos.Categories.Create(ctx, category); err != nil {
			return errors.Wrapf(err, "creating category %s", name)
		}
		categoryIDs[value] = category.ID
		result.Categories++
		return nil
	}
	for i, t := range models.CarTypes {
		if err := addCategory(t, models.CarTypeCategory, t, i < 2); err != nil {
			return result, err
		}
	}
	for _, f := range fuelTypes {
		if err := addCategory(f, "fuelType", f, false); err != nil {
			return result, err
		}
	}

	for i := range sampleCars {
		car := sampleCars[i]
		car.Available = true
		car.Featured = car.Rating >= 4.8
		car.Images = []string{}
		car.Tags = append([]string{}, car.Tags...)
		car.Categories = categoriesFor(categoryIDs, car.Type, car.FuelType)
		car.Description = faker.Sentence()
		if err := s.repos.Cars.Create(ctx, &car); err != nil {
			return result, errors.Wrapf(err, "creating car %s %s", car.Brand, car.Name)
		}
		result.Cars++
	}

	grip.Info(message.Fields{
		"message":    "inserted sample catalog",
		"brands":     result.Brands,
		"categories": result.Categories,
		"cars":       result.Cars,
	})
	return result, nil
}

func categoriesFor(ids map[string]string, values ...string) []string {
	out := []string{}
	for _, v := range values {
		if id, ok := ids[v]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Fake inserts n generated cars from the sample brands, body types and fuel
// types.
func (s *Seeder) Fake(ctx context.Context, n int) (int, error) {
	for i := 0; i < n; i++ {
		car := s.fakeCar()
		if err := s.repos.Cars.Create(ctx, car); err != nil {
			return i, errors.Wrapf(err, "creating fake car %d", i)
		}
	}
	grip.Info(message.Fields{
		"message": "inserted fake cars",
		"count":   n,
	})
	return n, nil
}

func (s *Seeder) fakeCar() *models.Car {
	brand := sampleBrands[s.rand.Intn(len(sampleBrands))].name
	word := faker.Word()
	name := strings.ToUpper(word[:1]) + word[1:]
	transmission := "Automatic"
	if s.rand.Intn(4) == 0 {
		transmission = "Manual"
	}

	return &models.Car{
		Name:         name,
		Brand:        brand,
		Model:        strings.ToUpper(slug.Make(faker.Word())),
		Transmission: transmission,
		FuelType:     fuelTypes[s.rand.Intn(len(fuelTypes))],
		Type:         models.CarTypes[s.rand.Intn(len(models.CarTypes))],
		Seats:        2 + s.rand.Intn(6),
		Year:         2015 + s.rand.Intn(10),
		Rating:       float64(30+s.rand.Intn(21)) / 10,
		DailyPrice:   float64(50 + s.rand.Intn(950)),
		Description:  faker.Paragraph(),
		Location:     faker.GetRealAddress().City,
		Tags:         []string{slug.Make(faker.Word())},
		Images:       []string{},
		Categories:   []string{},
		Available:    s.rand.Intn(5) != 0,
		Featured:     s.rand.Intn(10) == 0,
	}
}

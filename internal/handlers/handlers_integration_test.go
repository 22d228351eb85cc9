package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"carrental/internal/auth"
	"carrental/internal/config"
	"carrental/internal/models"
	"carrental/internal/repositories"
	"carrental/internal/server"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	repos *repositories.Repositories

	carsAdmin       string
	categoriesAdmin string
	outsider        string
}

// setupApp builds the full server over a private in-memory SQLite database.
func setupApp(t *testing.T) *testEnv {
	db, err := repositories.OpenGORM(config.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repositories.Migrate(db))

	repos := repositories.NewGORMRepositories(db)
	t.Cleanup(func() { _ = repos.Close(context.Background()) })

	verifier, err := auth.NewLocalVerifier("test_secret", time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:             "0",
		AppEnv:           "test",
		FrontendURL:      "https://catalog.example.com",
		RequestTimeout:   5 * time.Second,
		AnalyticsTimeout: 5 * time.Second,
		Auth: config.AuthConfig{
			Mode:                  config.AuthModeLocal,
			CarsAdminDomain:       "autoluxe.com",
			CategoriesAdminDomain: "esrent.ae",
		},
	}

	env := &testEnv{
		app:   server.New(server.Deps{Config: cfg, Repos: repos, Verifier: verifier}),
		db:    db,
		repos: repos,
	}
	env.carsAdmin, err = verifier.IssueToken("fleet@autoluxe.com", false)
	require.NoError(t, err)
	env.categoriesAdmin, err = verifier.IssueToken("catalog@esrent.ae", false)
	require.NoError(t, err)
	env.outsider, err = verifier.IssueToken("someone@gmail.com", false)
	require.NoError(t, err)
	return env
}

// do sends a request and decodes the JSON response into out when out is
// not nil.
func (env *testEnv) do(t *testing.T, method, path string, body interface{}, token string, out interface{}) *http.Response {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (env *testEnv) createCar(t *testing.T, fields map[string]interface{}) models.Car {
	body := map[string]interface{}{
		"name":         "X5",
		"brand":        "BMW",
		"transmission": "Automatic",
		"fuelType":     "Petrol",
		"type":         "SUV",
		"dailyPrice":   250,
	}
	for k, v := range fields {
		body[k] = v
	}
	var car models.Car
	resp := env.do(t, http.MethodPost, "/api/cars", body, "", &car)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return car
}

func (env *testEnv) countCars(t *testing.T) int64 {
	n, err := env.repos.Cars.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestCreateCarRequiresFields(t *testing.T) {
	env := setupApp(t)

	for _, missing := range []string{"name", "brand", "transmission", "fuelType", "type"} {
		t.Run(missing, func(t *testing.T) {
			body := map[string]interface{}{
				"name":         "X5",
				"brand":        "BMW",
				"transmission": "Automatic",
				"fuelType":     "Petrol",
				"type":         "SUV",
			}
			delete(body, missing)

			var errBody map[string]interface{}
			resp := env.do(t, http.MethodPost, "/api/cars", body, "", &errBody)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Missing required fields", errBody["error"])
			assert.Contains(t, errBody["errors"], missing)
		})
	}
	assert.Zero(t, env.countCars(t))
}

func TestCreateCarDefaultsAndLookup(t *testing.T) {
	env := setupApp(t)

	car := env.createCar(t, nil)
	assert.NotEmpty(t, car.ID)
	assert.True(t, car.Available)
	assert.False(t, car.Featured)
	assert.Equal(t, []string{}, car.Tags)
	assert.Equal(t, []string{}, car.Categories)

	var fetched models.Car
	resp := env.do(t, http.MethodGet, "/api/cars/"+car.ID, nil, "", &fetched)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=300", resp.Header.Get("Cache-Control"))
	assert.Equal(t, car.ID, fetched.ID)

	var errBody map[string]string
	resp = env.do(t, http.MethodGet, "/api/cars/missing", nil, "", &errBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Car not found", errBody["error"])
}

func TestCreateCarRejectsUnknownFields(t *testing.T) {
	env := setupApp(t)

	var errBody map[string]interface{}
	resp := env.do(t, http.MethodPost, "/api/cars", `{"name":"X5","brand":"BMW","transmission":"A","fuelType":"P","type":"SUV","objectID":"x"}`, "", &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", errBody["error"])
	assert.Zero(t, env.countCars(t))
}

func TestListCarsFilters(t *testing.T) {
	env := setupApp(t)

	env.createCar(t, map[string]interface{}{"name": "Cheap", "dailyPrice": 50, "tags": []string{"city"}})
	env.createCar(t, map[string]interface{}{"name": "Mid", "dailyPrice": 150, "brand": "Audi"})
	rare := env.createCar(t, map[string]interface{}{"name": "Rare", "dailyPrice": 900})
	env.do(t, http.MethodPut, "/api/cars/"+rare.ID, map[string]interface{}{"available": false}, "", nil)

	var cars []models.Car
	env.do(t, http.MethodGet, "/api/cars?brand=BMW", nil, "", &cars)
	assert.Len(t, cars, 2)

	env.do(t, http.MethodGet, "/api/cars?minPrice=100&maxPrice=500", nil, "", &cars)
	require.Len(t, cars, 1)
	assert.Equal(t, "Mid", cars[0].Name)

	env.do(t, http.MethodGet, "/api/cars?available=yes", nil, "", &cars)
	require.Len(t, cars, 1)
	assert.Equal(t, "Rare", cars[0].Name)

	env.do(t, http.MethodGet, "/api/cars/tag/city", nil, "", &cars)
	require.Len(t, cars, 1)
	assert.Equal(t, "Cheap", cars[0].Name)

	resp := env.do(t, http.MethodGet, "/api/cars?minPrice=abc", nil, "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchCars(t *testing.T) {
	env := setupApp(t)

	env.createCar(t, map[string]interface{}{"name": "Golf", "brand": "VW"})
	env.createCar(t, map[string]interface{}{"name": "Model 3", "brand": "Tesla", "description": "Quicker than a BMW"})
	for i := 0; i < 11; i++ {
		env.createCar(t, map[string]interface{}{"name": fmt.Sprintf("Series %d", i), "brand": "BMW"})
	}

	var cars []models.Car
	resp := env.do(t, http.MethodGet, "/api/cars/search?query=bmw", nil, "", &cars)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=60", resp.Header.Get("Cache-Control"))
	assert.Len(t, cars, 10)
	for _, car := range cars {
		haystack := strings.ToLower(car.Name + car.Brand + car.Model + car.Description)
		assert.Contains(t, haystack, "bmw")
	}

	env.do(t, http.MethodGet, "/api/cars/search", nil, "", &cars)
	assert.Empty(t, cars)
}

func TestUpdateCar(t *testing.T) {
	env := setupApp(t)
	car := env.createCar(t, nil)

	var updated map[string]interface{}
	resp := env.do(t, http.MethodPut, "/api/cars/"+car.ID, map[string]interface{}{"id": "other", "dailyPrice": 300, "featured": true}, "", &updated)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"id": car.ID, "dailyPrice": 300.0, "featured": true}, updated)

	var featured []models.Car
	env.do(t, http.MethodGet, "/api/cars/featured", nil, "", &featured)
	require.Len(t, featured, 1)
	assert.Equal(t, car.ID, featured[0].ID)

	resp = env.do(t, http.MethodPut, "/api/cars/missing", map[string]interface{}{"featured": true}, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteCar(t *testing.T) {
	env := setupApp(t)
	car := env.createCar(t, nil)

	var body map[string]interface{}
	resp := env.do(t, http.MethodDelete, "/api/cars/"+car.ID, nil, "", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Car deleted successfully", body["message"])

	resp = env.do(t, http.MethodDelete, "/api/cars/"+car.ID, nil, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/cars/admin/"+car.ID, nil, env.carsAdmin, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	other := env.createCar(t, nil)
	resp = env.do(t, http.MethodDelete, "/api/cars/admin/"+other.ID, nil, env.carsAdmin, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, other.ID, body["id"])
	assert.Zero(t, env.countCars(t))
}

func TestAdminRoutesRequireCredentials(t *testing.T) {
	env := setupApp(t)

	var body map[string]interface{}
	resp := env.do(t, http.MethodGet, "/api/cars/admin/analytics", nil, "", &body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "No bearer token", body["error"])

	resp = env.do(t, http.MethodGet, "/api/cars/admin/analytics", nil, "garbage", &body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// each router observes its own domain
	resp = env.do(t, http.MethodGet, "/api/cars/admin/analytics", nil, env.categoriesAdmin, &body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Not an authorized email domain", body["error"])

	resp = env.do(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": "SUV", "type": "carType", "slug": "suv"}, env.carsAdmin, &body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": "SUV", "type": "carType", "slug": "suv"}, env.categoriesAdmin, &body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAnalytics(t *testing.T) {
	env := setupApp(t)
	env.createCar(t, nil)
	env.createCar(t, nil)
	env.do(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": "SUV", "type": "carType", "slug": "suv"}, env.categoriesAdmin, nil)

	// counting brands fails once their table is gone
	require.NoError(t, env.db.Migrator().DropTable(&models.Brand{}))

	var counts map[string]int
	resp := env.do(t, http.MethodGet, "/api/cars/admin/analytics", nil, env.carsAdmin, &counts)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]int{"totalCars": 2, "totalBrands": 0, "totalCategories": 1}, counts)
}

func TestBulkUpdate(t *testing.T) {
	env := setupApp(t)
	a := env.createCar(t, nil)
	b := env.createCar(t, nil)

	var body map[string]interface{}
	for _, payload := range []string{`{"updates":[]}`, `{"updates":{"id":"x"}}`, `{}`} {
		resp := env.do(t, http.MethodPost, "/api/cars/admin/bulk-update", payload, env.carsAdmin, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, payload)
		assert.Equal(t, "Invalid updates format", body["error"], payload)
	}

	payload := map[string]interface{}{"updates": []map[string]interface{}{
		{"id": a.ID, "data": map[string]interface{}{"featured": true}},
		{"id": b.ID, "data": map[string]interface{}{"dailyPrice": 99}},
		{"id": "", "data": map[string]interface{}{"featured": true}},
		{"id": b.ID},
	}}
	resp := env.do(t, http.MethodPost, "/api/cars/admin/bulk-update", payload, env.carsAdmin, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Updated 2 cars", body["message"])
	assert.EqualValues(t, 2, body["skipped"])

	var car models.Car
	env.do(t, http.MethodGet, "/api/cars/"+a.ID, nil, "", &car)
	assert.True(t, car.Featured)
	env.do(t, http.MethodGet, "/api/cars/"+b.ID, nil, "", &car)
	assert.Equal(t, 99.0, car.DailyPrice)

	// a missing car rolls back the whole batch
	payload = map[string]interface{}{"updates": []map[string]interface{}{
		{"id": a.ID, "data": map[string]interface{}{"featured": false}},
		{"id": "missing", "data": map[string]interface{}{"featured": false}},
	}}
	resp = env.do(t, http.MethodPost, "/api/cars/admin/bulk-update", payload, env.carsAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	env.do(t, http.MethodGet, "/api/cars/"+a.ID, nil, "", &car)
	assert.True(t, car.Featured)
}

func TestBulkUpdateSkipsInvalidEntries(t *testing.T) {
	env := setupApp(t)
	a := env.createCar(t, nil)
	b := env.createCar(t, nil)

	var body map[string]interface{}
	payload := map[string]interface{}{"updates": []map[string]interface{}{
		{"id": a.ID, "data": map[string]interface{}{"dailyPrice": -1}},
		{"id": b.ID, "data": map[string]interface{}{"dailyPrice": 80}},
		{"id": a.ID, "data": map[string]interface{}{"rating": 9}},
	}}
	resp := env.do(t, http.MethodPost, "/api/cars/admin/bulk-update", payload, env.carsAdmin, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Updated 1 cars", body["message"])
	assert.EqualValues(t, 1, body["updated"])
	assert.EqualValues(t, 2, body["skipped"])

	var car models.Car
	env.do(t, http.MethodGet, "/api/cars/"+a.ID, nil, "", &car)
	assert.Equal(t, 250.0, car.DailyPrice)
	env.do(t, http.MethodGet, "/api/cars/"+b.ID, nil, "", &car)
	assert.Equal(t, 80.0, car.DailyPrice)
}

func TestCarCategoryReferencesMustExist(t *testing.T) {
	env := setupApp(t)

	var category models.Category
	resp := env.do(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": "SUV", "type": "carType", "slug": "suv"}, env.categoriesAdmin, &category)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var errBody map[string]interface{}
	body := map[string]interface{}{
		"name": "X5", "brand": "BMW", "transmission": "Automatic", "fuelType": "Petrol", "type": "SUV",
		"categories": []string{category.ID, "missing"},
	}
	resp = env.do(t, http.MethodPost, "/api/cars", body, "", &errBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Category not found", errBody["error"])
	assert.Zero(t, env.countCars(t))

	car := env.createCar(t, map[string]interface{}{"categories": []string{category.ID}})
	assert.Equal(t, []string{category.ID}, car.Categories)

	resp = env.do(t, http.MethodPut, "/api/cars/"+car.ID, map[string]interface{}{"categories": []string{"missing"}, "featured": true}, "", &errBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Category not found", errBody["error"])

	var fetched models.Car
	env.do(t, http.MethodGet, "/api/cars/"+car.ID, nil, "", &fetched)
	assert.Equal(t, []string{category.ID}, fetched.Categories)
	assert.False(t, fetched.Featured)

	payload := map[string]interface{}{"updates": []map[string]interface{}{
		{"id": car.ID, "data": map[string]interface{}{"featured": true}},
		{"id": car.ID, "data": map[string]interface{}{"categories": []string{"missing"}}},
	}}
	resp = env.do(t, http.MethodPost, "/api/cars/admin/bulk-update", payload, env.carsAdmin, &errBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Category not found", errBody["error"])

	env.do(t, http.MethodGet, "/api/cars/"+car.ID, nil, "", &fetched)
	assert.Equal(t, []string{category.ID}, fetched.Categories)
	assert.False(t, fetched.Featured)
}

func TestCarCategories(t *testing.T) {
	env := setupApp(t)
	car := env.createCar(t, nil)

	var category models.Category
	resp := env.do(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": "SUV", "type": "carType", "value": "SUV", "slug": "suv"}, env.categoriesAdmin, &category)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	path := "/api/cars/" + car.ID + "/categories/" + category.ID
	var body map[string]string
	resp = env.do(t, http.MethodPost, path, nil, env.carsAdmin, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Category added successfully", body["message"])

	resp = env.do(t, http.MethodPost, path, nil, env.carsAdmin, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Category already added to this car", body["error"])

	var fetched models.Car
	env.do(t, http.MethodGet, "/api/cars/"+car.ID, nil, "", &fetched)
	assert.Equal(t, []string{category.ID}, fetched.Categories)

	var byCategory []models.Car
	env.do(t, http.MethodGet, "/api/cars/category/"+category.ID, nil, "", &byCategory)
	assert.Len(t, byCategory, 1)

	resp = env.do(t, http.MethodPost, "/api/cars/"+car.ID+"/categories/missing", nil, env.carsAdmin, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Category not found", body["error"])

	resp = env.do(t, http.MethodPost, "/api/cars/missing/categories/"+category.ID, nil, env.carsAdmin, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Car not found", body["error"])

	resp = env.do(t, http.MethodDelete, path, nil, env.carsAdmin, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env.do(t, http.MethodGet, "/api/cars/"+car.ID, nil, "", &fetched)
	assert.Empty(t, fetched.Categories)
}

func TestBrands(t *testing.T) {
	env := setupApp(t)

	var brand models.Brand
	resp := env.do(t, http.MethodPost, "/api/brands", map[string]interface{}{"name": "BMW", "logo": "bmw.png", "slug": "bmw"}, "", &brand)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 0, brand.CarCount)

	resp = env.do(t, http.MethodPost, "/api/brands", map[string]interface{}{"name": "Audi"}, "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var bySlug *models.Brand
	env.do(t, http.MethodGet, "/api/brands/slug/bmw", nil, "", &bySlug)
	require.NotNil(t, bySlug)
	assert.Equal(t, brand.ID, bySlug.ID)

	resp = env.do(t, http.MethodGet, "/api/brands/slug/none", nil, "", nil)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	var updated map[string]interface{}
	env.do(t, http.MethodPut, "/api/brands/"+brand.ID, map[string]interface{}{"name": "", "featured": true, "carCount": 3}, "", &updated)
	assert.Equal(t, map[string]interface{}{"id": brand.ID, "featured": true, "carCount": 3.0}, updated)

	var featured []models.Brand
	env.do(t, http.MethodGet, "/api/brands/featured", nil, "", &featured)
	require.Len(t, featured, 1)
	assert.Equal(t, "BMW", featured[0].Name)

	resp = env.do(t, http.MethodDelete, "/api/brands/"+brand.ID, nil, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/brands/"+brand.ID, nil, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoryPagination(t *testing.T) {
	env := setupApp(t)
	ctx := context.Background()
	for i := 12; i >= 1; i-- {
		require.NoError(t, env.repos.Categories.Create(ctx, &models.Category{
			Name: fmt.Sprintf("Category %02d", i),
			Type: "tag",
			Slug: fmt.Sprintf("category-%02d", i),
		}))
	}

	var page models.CategoryPage
	resp := env.do(t, http.MethodGet, "/api/categories?page=2&limit=5", nil, "", &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=600", resp.Header.Get("Cache-Control"))
	require.Len(t, page.Categories, 5)
	for i, c := range page.Categories {
		assert.Equal(t, fmt.Sprintf("Category %02d", i+6), c.Name)
	}
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 12, page.TotalItems)

	for _, query := range []string{"page=0", "limit=0", "limit=500", "page=x", "sort=password"} {
		resp = env.do(t, http.MethodGet, "/api/categories?"+query, nil, "", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
	}
}

func TestCategoryLookups(t *testing.T) {
	env := setupApp(t)
	create := func(body map[string]interface{}) models.Category {
		var c models.Category
		resp := env.do(t, http.MethodPost, "/api/categories", body, env.categoriesAdmin, &c)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		return c
	}
	suv := create(map[string]interface{}{"name": "SUV", "type": "carType", "value": "SUV", "slug": "suv", "featured": true})
	create(map[string]interface{}{"name": "Electric", "type": "fuelType", "slug": "electric"})
	create(map[string]interface{}{"name": "Family", "type": "fuelTypeLike", "slug": "family"})

	var errBody map[string]string
	resp := env.do(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": "Dup", "type": "x", "slug": "suv"}, env.categoriesAdmin, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Category with this slug already exists", errBody["error"])

	var list []models.Category
	env.do(t, http.MethodGet, "/api/categories/type/SUV", nil, "", &list)
	require.Len(t, list, 1)
	assert.Equal(t, suv.ID, list[0].ID)

	env.do(t, http.MethodGet, "/api/categories/type/fuelType", nil, "", &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Electric", list[0].Name)

	env.do(t, http.MethodGet, "/api/categories/featured", nil, "", &list)
	require.Len(t, list, 1)

	env.do(t, http.MethodGet, "/api/categories/search?q=E", nil, "", &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Electric", list[0].Name)

	env.do(t, http.MethodGet, "/api/categories/search?q=fuel", nil, "", &list)
	assert.Len(t, list, 2)

	var found models.Category
	resp = env.do(t, http.MethodGet, "/api/categories/slug/suv", nil, "", &found)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, suv.ID, found.ID)
	resp = env.do(t, http.MethodGet, "/api/categories/slug/none", nil, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoryUpdateAndDelete(t *testing.T) {
	env := setupApp(t)

	var suv, sedan models.Category
	env.do(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": "SUV", "type": "carType", "slug": "suv"}, env.categoriesAdmin, &suv)
	env.do(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": "Sedan", "type": "carType", "slug": "sedan"}, env.categoriesAdmin, &sedan)

	resp := env.do(t, http.MethodPut, "/api/categories/"+suv.ID, map[string]interface{}{"slug": "sedan"}, env.categoriesAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var updated models.Category
	resp = env.do(t, http.MethodPut, "/api/categories/"+suv.ID, map[string]interface{}{"slug": "suv", "description": "Tall cars"}, env.categoriesAdmin, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Tall cars", updated.Description)
	assert.Equal(t, "SUV", updated.Name)
	assert.False(t, updated.UpdatedAt.Before(suv.UpdatedAt))

	resp = env.do(t, http.MethodPut, "/api/categories/missing", map[string]interface{}{"name": "x"}, env.categoriesAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/categories/"+suv.ID, nil, env.categoriesAdmin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodDelete, "/api/categories/"+suv.ID, nil, env.categoriesAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUsers(t *testing.T) {
	env := setupApp(t)

	body := map[string]interface{}{"email": "driver@example.com", "phoneNumber": "+971500000000", "name": "Driver"}
	var user models.User
	resp := env.do(t, http.MethodPost, "/api/users", body, "", &user)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{}, user.Favorites)

	var errBody map[string]string
	resp = env.do(t, http.MethodPost, "/api/users", body, "", &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", errBody["error"])

	var users []map[string]interface{}
	env.do(t, http.MethodGet, "/api/users", nil, "", &users)
	require.Len(t, users, 1)
	assert.NotContains(t, users[0], "password")

	var updated map[string]interface{}
	env.do(t, http.MethodPut, "/api/users/"+user.ID, map[string]interface{}{"email": "new@example.com", "password": "x", "name": "Renamed"}, "", &updated)
	assert.Equal(t, map[string]interface{}{"id": user.ID, "name": "Renamed"}, updated)

	var fetched models.User
	env.do(t, http.MethodGet, "/api/users/"+user.ID, nil, "", &fetched)
	assert.Equal(t, "driver@example.com", fetched.Email)
	assert.Equal(t, "Renamed", fetched.Name)

	resp = env.do(t, http.MethodGet, "/api/users/missing", nil, "", &errBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", errBody["error"])
}

func TestFavorites(t *testing.T) {
	env := setupApp(t)

	var user models.User
	env.do(t, http.MethodPost, "/api/users", map[string]interface{}{"email": "fav@example.com", "phoneNumber": "1", "name": "Fav"}, "", &user)

	var errBody map[string]interface{}
	resp := env.do(t, http.MethodPost, "/api/users/"+user.ID+"/favorites", map[string]interface{}{}, "", &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Car ID is required", errBody["error"])
	assert.Contains(t, errBody["errors"], "carId")

	for i := 0; i < 2; i++ {
		resp = env.do(t, http.MethodPost, "/api/users/"+user.ID+"/favorites", map[string]interface{}{"carId": "car-1"}, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var fetched models.User
	env.do(t, http.MethodGet, "/api/users/"+user.ID, nil, "", &fetched)
	assert.Equal(t, []string{"car-1"}, fetched.Favorites)

	var body map[string]string
	resp = env.do(t, http.MethodDelete, "/api/users/"+user.ID+"/favorites/car-2", nil, "", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Car removed from favorites", body["message"])
	env.do(t, http.MethodGet, "/api/users/"+user.ID, nil, "", &fetched)
	assert.Equal(t, []string{"car-1"}, fetched.Favorites)

	resp = env.do(t, http.MethodDelete, "/api/users/"+user.ID+"/favorites/car-1", nil, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env.do(t, http.MethodGet, "/api/users/"+user.ID, nil, "", &fetched)
	assert.Empty(t, fetched.Favorites)
}

func TestHealthNotFoundAndCORS(t *testing.T) {
	env := setupApp(t)

	var health map[string]string
	resp := env.do(t, http.MethodGet, "/health", nil, "", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "local", health["identityProvider"])

	var notFound map[string]string
	resp = env.do(t, http.MethodGet, "/api/nothing?x=1", nil, "", &notFound)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", notFound["error"])
	assert.Equal(t, "Cannot GET /api/nothing?x=1", notFound["details"])

	for origin, allowed := range map[string]bool{
		"https://catalog.example.com": true,
		"http://localhost:5173":       true,
		"https://preview.vercel.app":  true,
		"https://evil.example.com":    false,
		"http://vercel.app.evil.com":  false,
	} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		if allowed {
			assert.Equal(t, origin, resp.Header.Get("Access-Control-Allow-Origin"), origin)
		} else {
			assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"), origin)
		}
	}
}

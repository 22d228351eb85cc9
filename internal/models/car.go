package models

// Car represents a rentable car in the catalog. Categories holds the ids of
// the Category documents the car belongs to.
type Car struct {
	ID             string   `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name           string   `json:"name" bson:"name"`
	Brand          string   `json:"brand" bson:"brand" gorm:"index"`
	Model          string   `json:"model,omitempty" bson:"model,omitempty"`
	Transmission   string   `json:"transmission" bson:"transmission"`
	FuelType       string   `json:"fuelType" bson:"fuelType" gorm:"index"`
	Type           string   `json:"type" bson:"type" gorm:"index"`
	Seats          int      `json:"seats,omitempty" bson:"seats,omitempty"`
	Year           int      `json:"year,omitempty" bson:"year,omitempty"`
	Rating         float64  `json:"rating" bson:"rating"`
	DailyPrice     float64  `json:"dailyPrice" bson:"dailyPrice"`
	AdvancePayment bool     `json:"advancePayment" bson:"advancePayment"`
	RareCar        bool     `json:"rareCar" bson:"rareCar"`
	EngineCapacity string   `json:"engineCapacity,omitempty" bson:"engineCapacity,omitempty"`
	Power          string   `json:"power,omitempty" bson:"power,omitempty"`
	Description    string   `json:"description,omitempty" bson:"description,omitempty"`
	Location       string   `json:"location,omitempty" bson:"location,omitempty"`
	Tags           []string `json:"tags" bson:"tags" gorm:"type:text;serializer:json"`
	Images         []string `json:"images" bson:"images" gorm:"type:text;serializer:json"`
	Categories     []string `json:"categories" bson:"categories" gorm:"type:text;serializer:json"`
	Available      bool     `json:"available" bson:"available"`
	Featured       bool     `json:"featured" bson:"featured"`
}

// HasCategory reports whether categoryID is attached to the car.
func (c *Car) HasCategory(categoryID string) bool {
	for _, id := range c.Categories {
		if id == categoryID {
			return true
		}
	}
	return false
}

// CreateCarRequest is the body accepted by car creation.
type CreateCarRequest struct {
	Name           string   `json:"name" validate:"required"`
	Brand          string   `json:"brand" validate:"required"`
	Model          string   `json:"model"`
	Transmission   string   `json:"transmission" validate:"required"`
	FuelType       string   `json:"fuelType" validate:"required"`
	Type           string   `json:"type" validate:"required"`
	Seats          int      `json:"seats" validate:"gte=0"`
	Year           int      `json:"year" validate:"gte=0"`
	Rating         float64  `json:"rating" validate:"gte=0,lte=5"`
	DailyPrice     float64  `json:"dailyPrice" validate:"gte=0"`
	AdvancePayment bool     `json:"advancePayment"`
	RareCar        bool     `json:"rareCar"`
	EngineCapacity string   `json:"engineCapacity"`
	Power          string   `json:"power"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	Tags           []string `json:"tags"`
	Images         []string `json:"images"`
	Categories     []string `json:"categories"`
}

// NewCar builds the stored document for a creation request. New cars are
// available and not featured.
func (r CreateCarRequest) NewCar() *Car {
	return &Car{
		Name:           r.Name,
		Brand:          r.Brand,
		Model:          r.Model,
		Transmission:   r.Transmission,
		FuelType:       r.FuelType,
		Type:           r.Type,
		Seats:          r.Seats,
		Year:           r.Year,
		Rating:         r.Rating,
		DailyPrice:     r.DailyPrice,
		AdvancePayment: r.AdvancePayment,
		RareCar:        r.RareCar,
		EngineCapacity: r.EngineCapacity,
		Power:          r.Power,
		Description:    r.Description,
		Location:       r.Location,
		Tags:           orEmpty(r.Tags),
		Images:         orEmpty(r.Images),
		Categories:     orEmpty(r.Categories),
		Available:      true,
		Featured:       false,
	}
}

// CarPatch is a partial car update. Nil fields are left untouched.
type CarPatch struct {
	ID             *string   `json:"id" patch:"-"`
	Name           *string   `json:"name" validate:"omitempty,min=1"`
	Brand          *string   `json:"brand" validate:"omitempty,min=1"`
	Model          *string   `json:"model"`
	Transmission   *string   `json:"transmission" validate:"omitempty,min=1"`
	FuelType       *string   `json:"fuelType" validate:"omitempty,min=1"`
	Type           *string   `json:"type" validate:"omitempty,min=1"`
	Seats          *int      `json:"seats" validate:"omitempty,gte=0"`
	Year           *int      `json:"year" validate:"omitempty,gte=0"`
	Rating         *float64  `json:"rating" validate:"omitempty,gte=0,lte=5"`
	DailyPrice     *float64  `json:"dailyPrice" validate:"omitempty,gte=0"`
	AdvancePayment *bool     `json:"advancePayment"`
	RareCar        *bool     `json:"rareCar"`
	EngineCapacity *string   `json:"engineCapacity"`
	Power          *string   `json:"power"`
	Description    *string   `json:"description"`
	Location       *string   `json:"location"`
	Tags           *[]string `json:"tags"`
	Images         *[]string `json:"images"`
	Categories     *[]string `json:"categories"`
	Available      *bool     `json:"available"`
	Featured       *bool     `json:"featured"`
}

// Changes returns the set fields keyed by document field name.
func (p CarPatch) Changes() map[string]interface{} { return changes(&p) }

// Apply writes the set fields onto car.
func (p CarPatch) Apply(car *Car) { apply(car, &p) }

// Empty reports whether the patch changes nothing.
func (p CarPatch) Empty() bool { return len(p.Changes()) == 0 }

// CarUpdate pairs a car id with the patch to apply to it.
type CarUpdate struct {
	ID   string    `json:"id"`
	Data *CarPatch `json:"data"`
}

// BulkUpdateRequest is the body of the admin bulk update. Entries are
// validated individually by the car service.
type BulkUpdateRequest struct {
	Updates []CarUpdate `json:"updates"`
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

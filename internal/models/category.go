package models

import "time"

// CarTypeCategory is the category type whose Value holds a car body type.
const CarTypeCategory = "carType"

// CarTypes are the body types looked up through carType categories.
var CarTypes = []string{"SUV", "Sedan", "Hatchback", "Convertible", "Coupe"}

// IsCarType reports whether t names one of CarTypes.
func IsCarType(t string) bool {
	for _, ct := range CarTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// Category groups cars for browsing, e.g. by body type or fuel type.
type Category struct {
	ID          string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" bson:"name" gorm:"index"`
	Type        string    `json:"type" bson:"type" gorm:"index"`
	Value       string    `json:"value,omitempty" bson:"value,omitempty"`
	Slug        string    `json:"slug" bson:"slug" gorm:"index"`
	Description string    `json:"description" bson:"description"`
	Featured    bool      `json:"featured" bson:"featured"`
	CarCount    int       `json:"carCount" bson:"carCount"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CreateCategoryRequest is the body accepted by category creation.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Value       string `json:"value"`
	Slug        string `json:"slug" validate:"required"`
	Featured    bool   `json:"featured"`
	Description string `json:"description"`
}

// NewCategory builds the stored document for a creation request, stamping
// both timestamps with now.
func (r CreateCategoryRequest) NewCategory(now time.Time) *Category {
	return &Category{
		Name:        r.Name,
		Type:        r.Type,
		Value:       r.Value,
		Slug:        r.Slug,
		Featured:    r.Featured,
		Description: r.Description,
		CarCount:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CategoryPatch is a partial category update.
type CategoryPatch struct {
	ID          *string `json:"id" patch:"-"`
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Type        *string `json:"type" validate:"omitempty,min=1"`
	Value       *string `json:"value"`
	Slug        *string `json:"slug" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Featured    *bool   `json:"featured"`
	CarCount    *int    `json:"carCount" validate:"omitempty,gte=0"`

	UpdatedAt *time.Time `json:"-" patch:"-"`
}

// Changes returns the set fields keyed by document field name.
func (p CategoryPatch) Changes() map[string]interface{} {
	c := changes(&p)
	if p.UpdatedAt != nil {
		c["updatedAt"] = *p.UpdatedAt
	}
	return c
}

// Apply writes the set fields onto category.
func (p CategoryPatch) Apply(category *Category) {
	apply(category, &p)
	if p.UpdatedAt != nil {
		category.UpdatedAt = *p.UpdatedAt
	}
}

// CategoryPage is one page of the category listing.
type CategoryPage struct {
	Categories  []Category `json:"categories"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
	TotalItems  int        `json:"totalItems"`
}

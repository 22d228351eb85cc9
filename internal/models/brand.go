package models

// Brand is a car manufacturer shown in the catalog.
type Brand struct {
	ID       string `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name     string `json:"name" bson:"name"`
	Logo     string `json:"logo" bson:"logo"`
	Slug     string `json:"slug" bson:"slug" gorm:"index"`
	Featured bool   `json:"featured" bson:"featured"`
	CarCount int    `json:"carCount" bson:"carCount"`
}

// CreateBrandRequest is the body accepted by brand creation.
type CreateBrandRequest struct {
	Name     string `json:"name" validate:"required"`
	Logo     string `json:"logo" validate:"required"`
	Slug     string `json:"slug" validate:"required"`
	Featured bool   `json:"featured"`
}

// NewBrand builds the stored document for a creation request.
func (r CreateBrandRequest) NewBrand() *Brand {
	return &Brand{
		Name:     r.Name,
		Logo:     r.Logo,
		Slug:     r.Slug,
		Featured: r.Featured,
		CarCount: 0,
	}
}

// BrandPatch is a partial brand update. Empty strings are treated as absent.
type BrandPatch struct {
	ID       *string `json:"id" patch:"-"`
	Name     *string `json:"name"`
	Logo     *string `json:"logo"`
	Slug     *string `json:"slug"`
	Featured *bool   `json:"featured"`
	CarCount *int    `json:"carCount" validate:"omitempty,gte=0"`
}

// Normalize drops empty string fields so they never overwrite stored values.
func (p *BrandPatch) Normalize() {
	for _, s := range []**string{&p.Name, &p.Logo, &p.Slug} {
		if *s != nil && **s == "" {
			*s = nil
		}
	}
}

// Changes returns the set fields keyed by document field name.
func (p BrandPatch) Changes() map[string]interface{} { return changes(&p) }

// Apply writes the set fields onto brand.
func (p BrandPatch) Apply(brand *Brand) { apply(brand, &p) }

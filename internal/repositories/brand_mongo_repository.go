package repositories

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"carrental/internal/models"
)

// MongoBrandRepository stores brands as documents in the brands collection.
type MongoBrandRepository struct {
	coll *mongo.Collection
}

// NewMongoBrandRepository creates a new instance of MongoBrandRepository.
func NewMongoBrandRepository(db *mongo.Database) *MongoBrandRepository {
	return &MongoBrandRepository{coll: db.Collection(BrandsCollection)}
}

func (r *MongoBrandRepository) List(ctx context.Context, filter BrandFilter) ([]models.Brand, error) {
	q := bson.M{}
	if filter.Slug != "" {
		q["slug"] = filter.Slug
	}
	if filter.Featured != nil {
		q["featured"] = *filter.Featured
	}

	cur, err := r.coll.Find(ctx, q, sortByID)
	if err != nil {
		return nil, translate(err, "failed to list brands")
	}
	brands := []models.Brand{}
	if err := cur.All(ctx, &brands); err != nil {
		return nil, translate(err, "failed to decode brands")
	}
	return brands, nil
}

func (r *MongoBrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&brand); err != nil {
		return nil, translate(err, "brand "+id)
	}
	return &brand, nil
}

func (r *MongoBrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.New().String()
	}
	_, err := r.coll.InsertOne(ctx, brand)
	return translate(err, "failed to create brand")
}

func (r *MongoBrandRepository) Update(ctx context.Context, id string, patch models.BrandPatch) error {
	changes := patch.Changes()
	if len(changes) == 0 {
		return exists(ctx, r.coll, id, "brand "+id)
	}
	res, err := r.coll.UpdateOne(ctx, byID(id), setFields(changes))
	return checkMatched(res, err, "brand "+id)
}

func (r *MongoBrandRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	return checkDeleted(res, err, "brand "+id)
}

func (r *MongoBrandRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	return n, translate(err, "failed to count brands")
}

package repositories

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"carrental/internal/models"
)

// MongoCategoryRepository stores categories in the categories collection.
type MongoCategoryRepository struct {
	coll *mongo.Collection
}

// NewMongoCategoryRepository creates a new instance of MongoCategoryRepository.
func NewMongoCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	return &MongoCategoryRepository{coll: db.Collection(CategoriesCollection)}
}

func (r *MongoCategoryRepository) List(ctx context.Context, filter CategoryFilter) ([]models.Category, error) {
	if err := checkSortField(filter.SortBy); err != nil {
		return nil, err
	}

	q := bson.M{}
	if filter.Type != "" {
		q["type"] = filter.Type
	}
	if filter.Value != "" {
		q["value"] = filter.Value
	}
	if filter.Slug != "" {
		q["slug"] = filter.Slug
	}
	if filter.Featured != nil {
		q["featured"] = *filter.Featured
	}

	opts := options.Find()
	if filter.SortBy != "" {
		// ordering by a field leaves out documents that lack it
		if _, set := q[filter.SortBy]; !set {
			q[filter.SortBy] = bson.M{"$exists": true}
		}
		opts.SetSort(bson.D{{Key: filter.SortBy, Value: 1}, {Key: "_id", Value: 1}})
	} else {
		opts.SetSort(bson.D{{Key: "_id", Value: 1}})
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, translate(err, "failed to list categories")
	}
	categories := []models.Category{}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, translate(err, "failed to decode categories")
	}
	return categories, nil
}

func (r *MongoCategoryRepository) SearchPrefix(ctx context.Context, field, prefix string) ([]models.Category, error) {
	if err := checkSearchField(field); err != nil {
		return nil, err
	}

	q := bson.M{field: bson.M{"$gte": prefix, "$lte": prefix + prefixUpperBound}}
	opts := options.Find().SetSort(bson.D{{Key: field, Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, translate(err, "failed to search categories by "+field)
	}
	categories := []models.Category{}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, translate(err, "failed to decode categories")
	}
	return categories, nil
}

func (r *MongoCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&category); err != nil {
		return nil, translate(err, "category "+id)
	}
	return &category, nil
}

func (r *MongoCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	_, err := r.coll.InsertOne(ctx, category)
	return translate(err, "failed to create category")
}

func (r *MongoCategoryRepository) Update(ctx context.Context, id string, patch models.CategoryPatch) error {
	changes := patch.Changes()
	if len(changes) == 0 {
		return exists(ctx, r.coll, id, "category "+id)
	}
	res, err := r.coll.UpdateOne(ctx, byID(id), setFields(changes))
	return checkMatched(res, err, "category "+id)
}

func (r *MongoCategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	return checkDeleted(res, err, "category "+id)
}

func (r *MongoCategoryRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	return n, translate(err, "failed to count categories")
}

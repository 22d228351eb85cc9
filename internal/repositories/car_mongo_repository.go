package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"carrental/internal/models"
)

// MongoCarRepository stores cars as documents in the cars collection.
type MongoCarRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoCarRepository creates a new instance of MongoCarRepository.
func NewMongoCarRepository(db *mongo.Database) *MongoCarRepository {
	return &MongoCarRepository{
		client: db.Client(),
		coll:   db.Collection(CarsCollection),
	}
}

func carQuery(filter CarFilter) bson.M {
	q := bson.M{}
	if filter.Brand != "" {
		q["brand"] = filter.Brand
	}
	if filter.Transmission != "" {
		q["transmission"] = filter.Transmission
	}
	if filter.Type != "" {
		q["type"] = filter.Type
	}
	if filter.FuelType != "" {
		q["fuelType"] = filter.FuelType
	}
	if filter.Available != nil {
		q["available"] = *filter.Available
	}
	if filter.Featured != nil {
		q["featured"] = *filter.Featured
	}
	// equality on an array field matches documents containing the value
	if filter.Tag != "" {
		q["tags"] = filter.Tag
	}
	if filter.Category != "" {
		q["categories"] = filter.Category
	}
	return q
}

func (r *MongoCarRepository) List(ctx context.Context, filter CarFilter) ([]models.Car, error) {
	cur, err := r.coll.Find(ctx, carQuery(filter), sortByID)
	if err != nil {
		return nil, translate(err, "failed to list cars")
	}
	cars := []models.Car{}
	if err := cur.All(ctx, &cars); err != nil {
		return nil, translate(err, "failed to decode cars")
	}
	return cars, nil
}

func (r *MongoCarRepository) GetByID(ctx context.Context, id string) (*models.Car, error) {
	var car models.Car
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&car); err != nil {
		return nil, translate(err, "car "+id)
	}
	return &car, nil
}

func (r *MongoCarRepository) Create(ctx context.Context, car *models.Car) error {
	if car.ID == "" {
		car.ID = uuid.New().String()
	}
	_, err := r.coll.InsertOne(ctx, car)
	return translate(err, "failed to create car")
}

func (r *MongoCarRepository) Update(ctx context.Context, id string, patch models.CarPatch) error {
	changes := patch.Changes()
	if len(changes) == 0 {
		return exists(ctx, r.coll, id, "car "+id)
	}
	res, err := r.coll.UpdateOne(ctx, byID(id), setFields(changes))
	return checkMatched(res, err, "car "+id)
}

// BulkUpdate writes every update inside one transaction; a missing car
// aborts the whole batch.
func (r *MongoCarRepository) BulkUpdate(ctx context.Context, updates []models.CarUpdate) error {
	writes := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(byID(u.ID)).
			SetUpdate(setFields(u.Data.Changes())))
	}
	if len(writes) == 0 {
		return nil
	}

	session, err := r.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "starting session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.coll.BulkWrite(sc, writes)
		if err != nil {
			return nil, translate(err, "failed to bulk update cars")
		}
		if res.MatchedCount != int64(len(writes)) {
			return nil, errors.Wrapf(ErrNotFound, "%d of %d cars", len(writes)-int(res.MatchedCount), len(writes))
		}
		return nil, nil
	})
	return err
}

func (r *MongoCarRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	return checkDeleted(res, err, "car "+id)
}

func (r *MongoCarRepository) AddCategory(ctx context.Context, id, categoryID string) error {
	res, err := r.coll.UpdateOne(ctx, byID(id), bson.M{"$addToSet": bson.M{"categories": categoryID}})
	return checkMatched(res, err, "car "+id)
}

func (r *MongoCarRepository) RemoveCategory(ctx context.Context, id, categoryID string) error {
	res, err := r.coll.UpdateOne(ctx, byID(id), bson.M{"$pull": bson.M{"categories": categoryID}})
	return checkMatched(res, err, "car "+id)
}

func (r *MongoCarRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	return n, translate(err, "failed to count cars")
}

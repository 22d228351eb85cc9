package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"carrental/internal/models"
)

// MongoUserRepository stores users in the users collection.
type MongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(UsersCollection)}
}

func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, sortByID)
	if err != nil {
		return nil, translate(err, "failed to list users")
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, translate(err, "failed to decode users")
	}
	return users, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&user); err != nil {
		return nil, translate(err, "user "+id)
	}
	return &user, nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "failed to get user by email")
	}
	return &user, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	_, err := r.coll.InsertOne(ctx, user)
	return translate(err, "failed to create user")
}

func (r *MongoUserRepository) Update(ctx context.Context, id string, patch models.UserPatch) error {
	changes := patch.Changes()
	if len(changes) == 0 {
		return exists(ctx, r.coll, id, "user "+id)
	}
	res, err := r.coll.UpdateOne(ctx, byID(id), setFields(changes))
	return checkMatched(res, err, "user "+id)
}

func (r *MongoUserRepository) AddFavorite(ctx context.Context, id, carID string) error {
	res, err := r.coll.UpdateOne(ctx, byID(id), bson.M{"$addToSet": bson.M{"favorites": carID}})
	return checkMatched(res, err, "user "+id)
}

func (r *MongoUserRepository) RemoveFavorite(ctx context.Context, id, carID string) error {
	res, err := r.coll.UpdateOne(ctx, byID(id), bson.M{"$pull": bson.M{"favorites": carID}})
	return checkMatched(res, err, "user "+id)
}

package repositories

import (
	"context"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoTransactions is returned when the deployment cannot run multi
// document transactions, which the car bulk update needs.
var ErrNoTransactions = errors.New("mongo deployment does not support transactions; run a replica set (a single node one is enough) or connect through mongos")

// ConnectMongo opens a client to uri and returns the named database. It fails
// when the deployment is a standalone server.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "pinging mongo")
	}
	db := client.Database(database)
	if err := CheckTransactions(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return db, nil
}

// CheckTransactions asks the server for its topology and returns
// ErrNoTransactions unless it is a replica set member or a mongos router.
func CheckTransactions(ctx context.Context, db *mongo.Database) error {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	if err := db.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return translate(err, "failed to describe mongo deployment")
	}
	if hello.SetName == "" && hello.Msg != "isdbgrid" {
		return ErrNoTransactions
	}
	grip.Debug(message.Fields{
		"message": "mongo deployment supports transactions",
		"set":     hello.SetName,
		"mongos":  hello.Msg == "isdbgrid",
	})
	return nil
}

// EnsureMongoIndexes creates the indexes backing the filtered listings.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]string{
		CarsCollection:       {"brand", "type", "fuelType", "featured", "tags", "categories"},
		BrandsCollection:     {"slug", "featured"},
		CategoriesCollection: {"slug", "name", "type", "featured"},
		UsersCollection:      {"email"},
	}
	for collection, fields := range indexes {
		models := make([]mongo.IndexModel, 0, len(fields))
		for _, field := range fields {
			models = append(models, mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}})
		}
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating indexes on %s", collection)
		}
		grip.Info(message.Fields{
			"message":    "ensured indexes",
			"collection": collection,
			"fields":     fields,
		})
	}
	return nil
}

// byID selects the document with the given ID.
func byID(id string) bson.M {
	return bson.M{"_id": id}
}

// setFields builds a $set update from a patch's changes.
func setFields(changes map[string]interface{}) bson.M {
	return bson.M{"$set": bson.M(changes)}
}

// checkMatched turns an update that matched nothing into ErrNotFound.
func checkMatched(res *mongo.UpdateResult, err error, what string) error {
	if err != nil {
		return translate(err, "failed to update "+what)
	}
	if res.MatchedCount == 0 {
		return errors.Wrap(ErrNotFound, what)
	}
	return nil
}

// exists reports an ErrNotFound when no document has the given ID.
func exists(ctx context.Context, coll *mongo.Collection, id, what string) error {
	n, err := coll.CountDocuments(ctx, byID(id), options.Count().SetLimit(1))
	if err != nil {
		return translate(err, "failed to look up "+what)
	}
	if n == 0 {
		return errors.Wrap(ErrNotFound, what)
	}
	return nil
}

func checkDeleted(res *mongo.DeleteResult, err error, what string) error {
	if err != nil {
		return translate(err, "failed to delete "+what)
	}
	if res.DeletedCount == 0 {
		return errors.Wrap(ErrNotFound, what)
	}
	return nil
}

var sortByID = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

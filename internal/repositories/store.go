package repositories

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"carrental/internal/models"
)

// Collection names shared by every backend.
const (
	CarsCollection       = "cars"
	BrandsCollection     = "brands"
	CategoriesCollection = "categories"
	UsersCollection      = "users"
)

// Repositories bundles the data access for every collection.
type Repositories struct {
	Cars       CarRepository
	Brands     BrandRepository
	Categories CategoryRepository
	Users      UserRepository

	close func(ctx context.Context) error
}

// Close releases the underlying connection.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

// NewGORMRepositories builds repositories over a relational database.
func NewGORMRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Cars:       NewGORMCarRepository(db),
		Brands:     NewGORMBrandRepository(db),
		Categories: NewGORMCategoryRepository(db),
		Users:      NewGORMUserRepository(db),
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return errors.Wrap(err, "getting sql handle")
			}
			return sqlDB.Close()
		},
	}
}

// NewMongoRepositories builds repositories over a mongo database.
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Cars:       NewMongoCarRepository(db),
		Brands:     NewMongoBrandRepository(db),
		Categories: NewMongoCategoryRepository(db),
		Users:      NewMongoUserRepository(db),
		close:      db.Client().Disconnect,
	}
}

// OpenGORM connects to a postgres or sqlite database.
func OpenGORM(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s database", driver)
	}
	return db, nil
}

// Migrate creates or updates the tables backing every collection.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&models.Car{}, &models.Brand{}, &models.Category{}, &models.User{})
	return errors.Wrap(err, "failed to auto-migrate database")
}

// forUpdate locks the selected rows until the transaction ends on backends
// that support row locks.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

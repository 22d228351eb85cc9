package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"carrental/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// List retrieves every user.
func (r *GORMUserRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, translate(err, "failed to list users")
	}
	return users, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user "+id)
	}
	return &user, nil
}

// FindByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "failed to get user by email")
	}
	return &user, nil
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return translate(r.db.WithContext(ctx).Create(user).Error, "failed to create user")
}

// Update applies patch to the user with the given ID.
func (r *GORMUserRepository) Update(ctx context.Context, id string, patch models.UserPatch) error {
	return r.modify(ctx, id, patch.Apply)
}

// AddFavorite adds carID to the user's favorites unless present.
func (r *GORMUserRepository) AddFavorite(ctx context.Context, id, carID string) error {
	return r.modify(ctx, id, func(user *models.User) {
		if !contains(user.Favorites, carID) {
			user.Favorites = append(user.Favorites, carID)
		}
	})
}

// RemoveFavorite removes every occurrence of carID from the user's favorites.
func (r *GORMUserRepository) RemoveFavorite(ctx context.Context, id, carID string) error {
	return r.modify(ctx, id, func(user *models.User) {
		user.Favorites = without(user.Favorites, carID)
	})
}

func (r *GORMUserRepository) modify(ctx context.Context, id string, change func(*models.User)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := forUpdate(tx).First(&user, "id = ?", id).Error; err != nil {
			return translate(err, "user "+id)
		}
		change(&user)
		return translate(tx.Save(&user).Error, "failed to update user "+id)
	})
}

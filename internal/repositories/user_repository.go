package repositories

import (
	"context"

	"carrental/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// FindByEmail returns nil, nil when no user holds email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, patch models.UserPatch) error
	AddFavorite(ctx context.Context, id, carID string) error
	RemoveFavorite(ctx context.Context, id, carID string) error
}

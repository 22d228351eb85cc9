package services

import (
	"context"
	"time"

	"carrental/internal/models"
	"carrental/internal/repositories"
)

// UserService handles business logic related to users.
type UserService struct {
	repo repositories.UserRepository
	now  func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// GetAllUsers retrieves every user.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// RegisterUser creates a user unless the email is already registered. The
// check and the insert are separate store calls, so concurrent registrations
// can race.
func (s *UserService) RegisterUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	user := req.NewUser(s.now())
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies patch and returns the fields written. The id, email and
// password are never changed here.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (map[string]interface{}, error) {
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return patch.Changes(), nil
}

// AddFavorite adds carID to the user's favorites.
func (s *UserService) AddFavorite(ctx context.Context, id, carID string) error {
	return notFound(s.repo.AddFavorite(ctx, id, carID), ErrUserNotFound)
}

// RemoveFavorite removes carID from the user's favorites. Removing a car
// that is not a favorite succeeds.
func (s *UserService) RemoveFavorite(ctx context.Context, id, carID string) error {
	return notFound(s.repo.RemoveFavorite(ctx, id, carID), ErrUserNotFound)
}

package services_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carrental/internal/models"
	"carrental/internal/repositories"
	"carrental/internal/services"
)

func TestUserService_RegisterUser(t *testing.T) {
	repo := new(MockUserRepository)
	service := services.NewUserService(repo)
	ctx := context.Background()

	req := models.CreateUserRequest{Email: "a@example.com", PhoneNumber: "+971500000000", Name: "A"}

	repo.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, nil).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()
	user, err := service.RegisterUser(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{}, user.Favorites)
	assert.Equal(t, []string{}, user.Rentals)
	assert.False(t, user.CreatedAt.IsZero())

	repo.On("FindByEmail", mock.Anything, "a@example.com").Return(&models.User{ID: "1"}, nil).Once()
	_, err = service.RegisterUser(ctx, req)
	assert.True(t, errors.Is(err, services.ErrDuplicateEmail))

	repo.AssertNumberOfCalls(t, "Create", 1)
	repo.AssertExpectations(t)
}

func TestUserService_UpdateUserStripsProtectedFields(t *testing.T) {
	repo := new(MockUserRepository)
	service := services.NewUserService(repo)

	patch := models.UserPatch{
		ID:       ptr("other"),
		Email:    ptr("new@example.com"),
		Password: ptr("secret"),
		Name:     ptr("Renamed"),
	}
	repo.On("Update", mock.Anything, "1", patch).Return(nil).Once()

	changes, err := service.UpdateUser(context.Background(), "1", patch)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "Renamed"}, changes)

	repo.On("Update", mock.Anything, "2", patch).Return(repositories.ErrNotFound).Once()
	_, err = service.UpdateUser(context.Background(), "2", patch)
	assert.True(t, errors.Is(err, services.ErrUserNotFound))
	repo.AssertExpectations(t)
}

func TestUserService_Favorites(t *testing.T) {
	repo := new(MockUserRepository)
	service := services.NewUserService(repo)
	ctx := context.Background()

	repo.On("AddFavorite", mock.Anything, "1", "car").Return(nil).Once()
	repo.On("RemoveFavorite", mock.Anything, "1", "absent").Return(nil).Once()
	repo.On("AddFavorite", mock.Anything, "nobody", "car").Return(errors.Wrap(repositories.ErrNotFound, "user nobody")).Once()

	assert.NoError(t, service.AddFavorite(ctx, "1", "car"))
	assert.NoError(t, service.RemoveFavorite(ctx, "1", "absent"))
	assert.True(t, errors.Is(service.AddFavorite(ctx, "nobody", "car"), services.ErrUserNotFound))
	repo.AssertExpectations(t)
}

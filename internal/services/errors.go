package services

import (
	"github.com/pkg/errors"

	"carrental/internal/repositories"
)

var (
	ErrCarNotFound          = errors.New("car not found")
	ErrBrandNotFound        = errors.New("brand not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateSlug        = errors.New("category with this slug already exists")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrCategoryAlreadyAdded = errors.New("category already added to this car")
	ErrInvalidUpdates       = errors.New("invalid updates format")
)

// notFound replaces a repository ErrNotFound with the resource specific
// sentinel and passes every other error through.
func notFound(err, sentinel error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return errors.Wrap(sentinel, err.Error())
	}
	return err
}

package repositories

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrPermissionDenied is returned when the store refuses the operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidArgument is returned when the store rejects a query or value.
	ErrInvalidArgument = errors.New("invalid argument")
)

// mongo server error codes translated to repository errors.
const (
	codeBadValue       = 2
	codeFailedToParse  = 9
	codeTypeMismatch   = 14
	codeUnauthorized   = 13
	codeInvalidOptions = 72
)

// translate maps backend specific errors onto the repository sentinels and
// attaches msg as context.
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments), errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(ErrNotFound, msg)
	}

	var se mongo.ServerError
	if errors.As(err, &se) {
		switch {
		case se.HasErrorCode(codeUnauthorized):
			return errors.Wrapf(ErrPermissionDenied, "%s: %s", msg, err.Error())
		case se.HasErrorCode(codeBadValue), se.HasErrorCode(codeFailedToParse),
			se.HasErrorCode(codeTypeMismatch), se.HasErrorCode(codeInvalidOptions):
			return errors.Wrapf(ErrInvalidArgument, "%s: %s", msg, err.Error())
		}
	}
	return errors.Wrap(err, msg)
}

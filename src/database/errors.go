package database

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// MapError translates driver errors into ErrNotFound / ErrDuplicateKey and adds context.
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errors.Wrap(ErrNotFound, op)
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(ErrDuplicateKey, op)
	}
	return errors.Wrap(err, op)
}

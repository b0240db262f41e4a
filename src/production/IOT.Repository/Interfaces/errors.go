package interfaces

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a unique index rejects a write
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidID is returned for identifiers that are not hex ObjectIDs
	ErrInvalidID = errors.New("invalid id")
)

// DuplicateKeyError names the field whose unique index was violated.
// errors.Is(err, ErrDuplicateKey) matches it.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return ErrDuplicateKey.Error()
	}
	return fmt.Sprintf("%s: %s", ErrDuplicateKey, e.Field)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

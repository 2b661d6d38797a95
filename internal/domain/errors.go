package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a listing does not exist, or when a
	// Remove targets a participant with no history in the listing.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyInserted is returned when an Add targets a participant
	// whose latest event is already an Add.
	ErrAlreadyInserted = errors.New("participant already inserted")

	// ErrAlreadyRemoved is returned when a Remove targets a participant
	// whose latest event is already a Remove.
	ErrAlreadyRemoved = errors.New("participant already removed")

	// ErrListingExists is returned when a listing name is already taken.
	ErrListingExists = errors.New("listing already exists")
)

// ValidationError reports every rule a request broke.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

// Violation is one broken rule on one field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "invalid listing: " + strings.Join(parts, "; ")
}

// ErrorKind is the closed set of outcomes callers switch over.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNotFound
	KindAlreadyInserted
	KindAlreadyRemoved
	KindListingExists
	KindInvalid
	KindInternal
)

// String returns a stable code for the kind, used on the wire.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindAlreadyInserted:
		return "already_inserted"
	case KindAlreadyRemoved:
		return "already_removed"
	case KindListingExists:
		return "listing_exists"
	case KindInvalid:
		return "invalid"
	default:
		return "internal"
	}
}

// KindOf classifies err. Wrapped errors are unwrapped with errors.Is/As;
// anything unrecognised is an infrastructure fault.
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyInserted):
		return KindAlreadyInserted
	case errors.Is(err, ErrAlreadyRemoved):
		return KindAlreadyRemoved
	case errors.Is(err, ErrListingExists):
		return KindListingExists
	case errors.As(err, &ve), errors.Is(err, ErrEmptyName):
		return KindInvalid
	default:
		return KindInternal
	}
}

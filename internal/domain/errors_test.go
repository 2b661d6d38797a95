package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"not found", ErrNotFound, KindNotFound},
		{"wrapped not found", fmt.Errorf("listing l-1: %w", ErrNotFound), KindNotFound},
		{"already inserted", ErrAlreadyInserted, KindAlreadyInserted},
		{"already removed", fmt.Errorf("append: %w", ErrAlreadyRemoved), KindAlreadyRemoved},
		{"listing exists", ErrListingExists, KindListingExists},
		{"validation", &ValidationError{Violations: []Violation{{Field: "name", Message: "required"}}}, KindInvalid},
		{"wrapped validation", fmt.Errorf("create: %w", &ValidationError{}), KindInvalid},
		{"empty name", ErrEmptyName, KindInvalid},
		{"storage fault", errors.New("disk I/O error"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "ok", KindNone.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "already_inserted", KindAlreadyInserted.String())
	assert.Equal(t, "already_removed", KindAlreadyRemoved.String())
	assert.Equal(t, "listing_exists", KindListingExists.String())
	assert.Equal(t, "invalid", KindInvalid.String())
	assert.Equal(t, "internal", KindInternal.String())
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Violations: []Violation{
		{Field: "name", Message: "must not be empty"},
		{Field: "max_size", Message: "must be at least 1"},
	}}
	assert.Equal(t, "invalid listing: name: must not be empty; max_size: must be at least 1", err.Error())
}

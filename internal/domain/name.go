package domain

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyName is returned by NormalizeName for blank names.
var ErrEmptyName = errors.New("participant name must not be empty")

// NormalizeName trims surrounding whitespace and applies Unicode NFC so that
// visually identical names map to one participant.
func NormalizeName(name string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(name))
	if n == "" {
		return "", ErrEmptyName
	}
	return n, nil
}

// Package validate checks new listings before they are stored.
//
// Structural rules live in listing.cue and are evaluated with the CUE Go
// API. Rules that depend on the current time are checked in Go, since the
// caller decides what "now" is.
package validate

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/rollcall/internal/domain"
)

//go:embed listing.cue
var listingSchema string

// Friendly messages per field. CUE's own message is used for anything else.
var fieldMessages = map[string]string{
	"name":     "must not be empty",
	"max_size": "must be at least 1",
}

// Validator evaluates listings against the embedded schema.
//
// A CUE runtime is not safe for concurrent use, so evaluation is serialized.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(listingSchema, cue.Filename("listing.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile listing schema: %w", err)
	}
	schema := root.LookupPath(cue.ParsePath("#Listing"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Listing: %w", err)
	}
	return &Validator{ctx: ctx, schema: schema}, nil
}

// Listing reports every rule l breaks as a *domain.ValidationError,
// or nil if l is acceptable. now is the creation instant used to judge
// the cutoff date.
func (v *Validator) Listing(l domain.Listing, now time.Time) error {
	var violations []domain.Violation

	violations = append(violations, v.structural(l)...)

	if l.CutoffDate != nil && !l.CutoffDate.After(now) {
		violations = append(violations, domain.Violation{
			Field:   "cutoff_date",
			Message: "must be in the future",
		})
	}

	if len(violations) == 0 {
		return nil
	}
	return &domain.ValidationError{Violations: violations}
}

func (v *Validator) structural(l domain.Listing) []domain.Violation {
	doc := map[string]any{"name": l.Name}
	if l.MaxSize != nil {
		doc["max_size"] = *l.MaxSize
	}
	if l.CutoffDate != nil {
		doc["cutoff_date"] = l.CutoffDate.UTC().Format(time.RFC3339)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	val := v.schema.Unify(v.ctx.Encode(doc))
	err := val.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var out []domain.Violation
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		field := fieldOf(e.Path())
		if seen[field] {
			continue
		}
		seen[field] = true

		msg, ok := fieldMessages[field]
		if !ok {
			format, args := e.Msg()
			msg = fmt.Sprintf(format, args...)
		}
		out = append(out, domain.Violation{Field: field, Message: msg})
	}
	return out
}

// fieldOf returns the last label of a CUE error path.
func fieldOf(path []string) string {
	if len(path) == 0 {
		return "listing"
	}
	return path[len(path)-1]
}

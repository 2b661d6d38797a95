package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable listing IDs.
//
// Production code uses random UUIDs. Golden snapshots need the same IDs on
// every run, so tests plug this in instead.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator producing "<prefix>-0001", "<prefix>-0002", ...
//
// If prefix is empty, "listing" is used.
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "listing"
	}
	return &SequentialIDs{prefix: prefix}
}

// NewID returns the next ID. Implements service.IDGenerator.
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

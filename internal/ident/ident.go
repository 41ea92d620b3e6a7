// Package ident produces identifiers for categories and tasks.
package ident

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator hands out unique string identifiers.
type Generator interface {
	NewID() string
}

// UUID generates time-ordered UUIDv7 identifiers. If the random source fails
// it falls back to a random v4 id suffixed with a process-local counter.
type UUID struct {
	fallback atomic.Uint64
}

// NewUUID returns a UUIDv7 generator.
func NewUUID() *UUID {
	return &UUID{}
}

func (g *UUID) NewID() string {
	id, err := uuid.NewV7()
	if err == nil {
		return id.String()
	}
	n := g.fallback.Add(1)
	return fmt.Sprintf("%s-%d", uuid.New().String(), n)
}

// Sequence generates predictable ids ("prefix-1", "prefix-2", ...).
type Sequence struct {
	prefix string
	next   atomic.Uint64
}

// NewSequence returns a counter-based generator with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.next.Add(1))
}

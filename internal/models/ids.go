package models

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces workout identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator issues time-ordered UUIDv7 identifiers.
type UUIDGenerator struct{}

// NewID returns a fresh UUIDv7 string.
func (UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating workout id: %w", err)
	}
	return id.String(), nil
}

// SequenceGenerator issues prefix-1, prefix-2, ... and is safe for
// concurrent use. Useful where IDs must be predictable.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewID returns the next identifier in the sequence.
func (g *SequenceGenerator) NewID() (string, error) {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "w"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n.Add(1)), nil
}

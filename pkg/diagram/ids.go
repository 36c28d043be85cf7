package diagram

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out ids for anchors and edges.
// Implementations must never return the same id twice.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator returns random (version 4) UUIDs. It is the default.
type UUIDGenerator struct{}

// NewID implements [IDGenerator].
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequenceGenerator returns Prefix followed by a monotonically increasing
// counter starting at 1. It is safe for concurrent use.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewSequence creates a sequence generator with the given prefix.
func NewSequence(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

// NewID implements [IDGenerator].
func (g *SequenceGenerator) NewID() string {
	return g.Prefix + strconv.FormatUint(g.n.Add(1), 10)
}

package application

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultOrderNumberPrefix is used when no prefix is configured.
const DefaultOrderNumberPrefix = "SO"

// NumberGenerator produces human-facing order numbers. Uniqueness is enforced by storage;
// generators only need to make collisions unlikely.
type NumberGenerator interface {
	Next(now time.Time) string
}

// SequenceNumberGenerator combines the placement date, an in-process counter and a random
// ULID tail, e.g. SO-20260301-0042K7QZ.
type SequenceNumberGenerator struct {
	prefix string
	seq    atomic.Uint32
}

// NewSequenceNumberGenerator builds a generator with the given prefix.
func NewSequenceNumberGenerator(prefix string) *SequenceNumberGenerator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultOrderNumberPrefix
	}
	return &SequenceNumberGenerator{prefix: prefix}
}

// Next returns a fresh order number for an order placed at now.
func (g *SequenceNumberGenerator) Next(now time.Time) string {
	n := g.seq.Add(1) % 10000
	tail := ulid.Make().String()
	return fmt.Sprintf("%s-%s-%04d%s", g.prefix, now.UTC().Format("20060102"), n, tail[len(tail)-4:])
}

package engine

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// UUIDGenerator produces UUIDs for identifiers the input failed to supply.
// Implemented by SeededGenerator (production) and FixedGenerator (tests).
type UUIDGenerator interface {
	NewUUID() uuid.UUID
}

// SeededGenerator draws version 4 UUIDs from a deterministic stream.
//
// The same four seeds always yield the same sequence, so a job whose
// project had to be synthesized can be reproduced exactly.
//
// Thread-safety: SeededGenerator is safe for concurrent use via internal mutex.
type SeededGenerator struct {
	mu  sync.Mutex
	rng *rand.ChaCha8
}

// NewSeededGenerator creates a generator from four 32-bit seeds.
func NewSeededGenerator(seeds [4]int32) *SeededGenerator {
	var raw [16]byte
	for i, s := range seeds {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(s))
	}
	return &SeededGenerator{rng: rand.NewChaCha8(sha256.Sum256(raw[:]))}
}

// NewUUID returns the next UUID in the stream.
//
// Panics if the stream cannot be read, which ChaCha8 never does.
func (g *SeededGenerator) NewUUID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return uuid.Must(uuid.NewRandomFromReader(g.rng))
}

// FixedGenerator returns predetermined UUIDs for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu    sync.Mutex
	uuids []uuid.UUID
	idx   int
}

// NewFixedGenerator creates a generator that returns the parsed ids in
// order. Panics if any id does not parse.
//
// Example:
//
//	gen := NewFixedGenerator("6ba7b810-9dad-41d1-80b4-00c04fd430c8")
//	gen.NewUUID() // 6ba7b810-...
//	gen.NewUUID() // panic: all UUIDs exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	g := &FixedGenerator{uuids: make([]uuid.UUID, len(ids))}
	for i, id := range ids {
		g.uuids[i] = uuid.MustParse(id)
	}
	return g
}

// NewUUID returns the next predetermined UUID.
//
// Panics if all UUIDs have been consumed, which catches tests that draw
// more ids than they expect.
func (g *FixedGenerator) NewUUID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.uuids) {
		panic("FixedGenerator: all UUIDs exhausted")
	}
	u := g.uuids[g.idx]
	g.idx++
	return u
}

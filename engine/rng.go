package engine

import (
	"hash/fnv"
	"math/rand"
)

// RNG wraps math/rand.Rand with deterministic position tracking.
// The position is stored with the conversation so a restarted process
// continues the same sequence.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// SeedFor derives a per-character seed from the shop seed.
func SeedFor(base int64, characterID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(characterID))
	return base ^ int64(h.Sum64())
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	r.pos++
	if sides <= 1 {
		r.src.Int63()
		return 1
	}
	return int(r.src.Int63()%int64(sides)) + 1
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r.pos++
	roll := int(r.src.Int63() % int64(total))
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Position returns the number of RNG calls made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// RestoreRNG creates an RNG and advances it to the given position.
// Every call draws exactly one value, so replaying position draws
// reproduces the sequence.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.src.Int63()
	}
	rng.pos = position
	return rng
}

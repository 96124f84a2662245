package battle

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// RandomSource yields one uniform draw in [0, 1) per call.
type RandomSource interface {
	Float64() float64
}

// PCGSource is a seeded RandomSource safe for concurrent use.
type PCGSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPCGSource returns a source seeded with seed. The same seed always
// produces the same sequence of draws.
func NewPCGSource(seed uint64) *PCGSource {
	return &PCGSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewSeededSource seeds from crypto/rand when seed is zero.
func NewSeededSource(seed uint64) (*PCGSource, error) {
	if seed == 0 {
		var b [8]byte
		if _, err := crand.Read(b[:]); err != nil {
			return nil, fmt.Errorf("read random seed: %w", err)
		}
		seed = binary.LittleEndian.Uint64(b[:])
	}
	return NewPCGSource(seed), nil
}

// Float64 returns a uniform draw in [0, 1).
func (s *PCGSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

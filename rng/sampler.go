// Package rng provides the random selection primitives for draw execution.
// All draws go through crypto/rand so an organizer cannot predict or steer
// the outcome; entry ids are never used as seeds.
package rng

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

var ErrEmptyPool = errors.New("selection pool is empty")

// Intn returns a uniform random integer in [0, n) from crypto/rand.
func Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("bound must be positive, got %d", n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random source: %w", err)
	}
	return int(v.Int64()), nil
}

// SampleWithoutReplacement picks count distinct indices from [0, poolSize),
// uniformly at random. If count exceeds poolSize, every index is returned
// (the caller treats that as a partial fill, not an error).
//
// Each pick removes the chosen index from a working copy of the pool, so a
// single call can never select the same index twice.
func SampleWithoutReplacement(poolSize, count int) ([]int, error) {
	if poolSize <= 0 {
		return nil, ErrEmptyPool
	}
	if count <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", count)
	}
	if count > poolSize {
		count = poolSize
	}

	remaining := make([]int, poolSize)
	for i := range remaining {
		remaining[i] = i
	}

	selected := make([]int, 0, count)
	for i := 0; i < count; i++ {
		pick, err := Intn(len(remaining))
		if err != nil {
			return nil, err
		}
		selected = append(selected, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return selected, nil
}

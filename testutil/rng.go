package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/vectis/vector"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// Vectors generates random vectors with components in range [-1, 1).
func (r *RNG) Vectors(num, dimensions int) []vector.Vector {
	vectors := make([]vector.Vector, num)
	buf := make([]float32, dimensions)
	for i := range num {
		r.FillUniformRange(buf, -1, 1)
		vectors[i] = vector.New(buf)
	}
	return vectors
}

// UnitVectors generates L2-normalized random vectors (on the hypersphere).
// Uses Gaussian distribution for uniform distribution on the sphere.
func (r *RNG) UnitVectors(num, dimensions int) []vector.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([]vector.Vector, num)
	buf := make([]float32, dimensions)
	for i := range num {
		var norm float64
		for j := range buf {
			v := r.rand.NormFloat64()
			buf[j] = float32(v)
			norm += v * v
		}
		if norm == 0 {
			norm = 1
		}
		inv := 1 / math.Sqrt(norm)
		for j := range buf {
			buf[j] = float32(float64(buf[j]) * inv)
		}
		vectors[i] = vector.New(buf)
	}
	return vectors
}

// Entries generates num key/value pairs with zero-padded keys under prefix,
// so lexicographic key order equals generation order.
func (r *RNG) Entries(prefix string, num int) map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]string, num)
	for i := range num {
		out[fmt.Sprintf("%s%06d", prefix, i)] = fmt.Sprintf("v%d", r.rand.Int63())
	}
	return out
}

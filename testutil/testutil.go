package testutil

import (
	"math/rand"
	"sync"
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
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
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

// Sizes returns n allocation sizes in [0, maxSize).
// Locks only once per call (preferred over calling Intn in a loop).
func (r *RNG) Sizes(n, maxSize int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, n)
	for i := range out {
		out[i] = r.rand.Intn(maxSize)
	}
	return out
}

// ExitRecorder records exit codes instead of terminating the process.
// The zero value is ready to use.
type ExitRecorder struct {
	mu    sync.Mutex
	codes []int
}

// Exit records code. It matches the signature of os.Exit.
func (e *ExitRecorder) Exit(code int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.codes = append(e.codes, code)
}

// Codes returns every recorded exit code in order.
func (e *ExitRecorder) Codes() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.codes...)
}

// Last returns the most recent exit code.
func (e *ExitRecorder) Last() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.codes) == 0 {
		return 0, false
	}
	return e.codes[len(e.codes)-1], true
}

// Recover runs fn and returns the value it panicked with, or nil.
func Recover(fn func()) (v any) {
	defer func() {
		v = recover()
	}()
	fn()
	return nil
}

package narrative

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the source of randomness used to pick phrasing.
type Rand interface {
	Intn(n int) int
}

// LockedRand is a seedable Rand that is safe for concurrent use.
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand returns a LockedRand seeded with seed, or with the current time when
// seed is 0.
func NewRand(seed int64) *LockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LockedRand{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a value in [0,n). It returns 0 when n <= 0.
func (r *LockedRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// Pick returns one of options chosen by r.
func Pick(r Rand, options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[r.Intn(len(options))]
}

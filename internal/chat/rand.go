package chat

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Rand is a seedable random source that is safe for concurrent use.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand seeds from the clock when seed is zero.
func NewRand(seed uint64) *Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Pick returns a uniformly chosen element, or "" for an empty slice.
func (r *Rand) Pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	r.mu.Lock()
	i := r.r.IntN(len(items))
	r.mu.Unlock()
	return items[i]
}

func (r *Rand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.IntN(n)
}

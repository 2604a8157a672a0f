// Package randsrc provides the pseudo-random source shared by persona
// selection and fallback replies. Tests pass a fixed seed to get
// reproducible picks.
package randsrc

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source picks an index in [0, n).
type Source interface {
	IntN(n int) int
}

type locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a goroutine-safe source. A zero seed derives one from the clock.
func New(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &locked{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}

// Fixed always returns the same index, clamped to n-1.
type Fixed int

func (f Fixed) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	if f < 0 {
		return 0
	}
	return int(f)
}

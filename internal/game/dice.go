package game

import (
	"math/rand"
	"sync"
	"time"
)

// Roller produces die faces. Injected so tests can script rolls.
type Roller interface {
	Roll() int
}

func NewRoller() Roller {
	return &lockedRoller{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

type lockedRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRoller) Roll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(6) + 1
}

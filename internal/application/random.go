package application

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// Random is the subset of *rand.Rand the services draw from.
type Random interface {
	IntN(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int                     { return rand.IntN(n) }
func (globalRandom) Float64() float64                   { return rand.Float64() }
func (globalRandom) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

func defaultRandom(r Random) Random {
	if r == nil {
		return globalRandom{}
	}
	return r
}

// shortID returns 8 hex characters.
func shortID() string {
	return uuid.NewString()[:8]
}

package playground

import (
	"math/rand/v2"
	"time"

	"kubelearn/internal/levels"
)

type Shuffler interface {
	Shuffle(lines []levels.Line) []levels.Line
}

// RandShuffler shuffles with a PCG source so sessions can be replayed from a seed.
type RandShuffler struct {
	r *rand.Rand
}

const maxReshuffles = 8

func NewShuffler(seed uint64) *RandShuffler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandShuffler{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Shuffle returns a new permutation of lines. For more than one line it
// avoids handing back the solved order.
func (s *RandShuffler) Shuffle(lines []levels.Line) []levels.Line {
	out := append([]levels.Line(nil), lines...)
	if len(out) < 2 {
		return out
	}
	for i := 0; i < maxReshuffles; i++ {
		s.r.Shuffle(len(out), func(a, b int) { out[a], out[b] = out[b], out[a] })
		if !solved(out) {
			break
		}
	}
	return out
}

func solved(lines []levels.Line) bool {
	for i, l := range lines {
		if l.Position != i {
			return false
		}
	}
	return true
}

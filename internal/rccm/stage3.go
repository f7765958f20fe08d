package rccm

import (
	"github.com/banshee-data/rccm.repair/internal/monitoring"
)

// DefaultStage3Iterations is the per-camera iteration cap for the
// neighbourhood filler. The loop also exits early on the first iteration that
// changes nothing.
const DefaultStage3Iterations = 4

// Stage3Options configures the neighbourhood filler.
type Stage3Options struct {
	// MaxIterations caps the per-camera damped-majority iterations. Values
	// below 1 select DefaultStage3Iterations.
	MaxIterations int
}

// FillFromNeighbourhood is Stage 3: it fills any remaining gaps from
// intra-camera context. Each camera is processed independently, in fixed
// camera order. Within a camera, each iteration votes every gap against the
// tile as it stood at iteration start (a second buffer preserves the
// reads-before-writes invariant): a 3×3 window assigns the majority valid
// class when that class holds at least three cells, otherwise a 5×5 window
// with a five-cell threshold. Ties prefer {4,3,2,1}. Window edges clip at the
// block boundary; they do not wrap.
//
// The procedure is a damped majority filter: once a pixel is set, later
// iterations leave it alone, so the gap count decreases monotonically.
// Cameras that still hold gaps at the cap are reported, not failed.
func FillFromNeighbourhood(in *Tile, counts Counts, opts Stage3Options) (*Tile, Counts) {
	maxIter := opts.MaxIterations
	if maxIter < 1 {
		maxIter = DefaultStage3Iterations
	}

	out := in.Clone()
	for _, cam := range Cameras() {
		if counts[cam] == 0 {
			continue
		}
		cur := out.Plane(cam)
		iters := 0
		for iter := 0; iter < maxIter; iter++ {
			iters++
			next := make([]ClassCode, PlaneCells)
			copy(next, cur)
			changed := 0
			for s := 0; s < BlockSamples; s++ {
				for l := 0; l < BlockLines; l++ {
					i := s*BlockLines + l
					if cur[i] != ClassMissing {
						continue
					}
					if v, ok := windowVote(cur, s, l, 1, 3); ok {
						next[i] = v
						changed++
					} else if v, ok := windowVote(cur, s, l, 2, 5); ok {
						next[i] = v
						changed++
					}
				}
			}
			copy(cur, next)
			if changed == 0 {
				break
			}
		}
		if residual := countMissing(cur); residual > 0 {
			monitoring.Logf("[Stage3] camera %s: %d gaps remain after %d iterations", cam, residual, iters)
		}
	}
	return out, out.MissingCounts()
}

// windowVote tallies the valid classes in the square window of the given
// radius centred on (sample, line) and returns the majority class when it
// holds at least threshold cells. Ties prefer high confidence and clear over
// cloud.
func windowVote(plane []ClassCode, sample, line, radius, threshold int) (ClassCode, bool) {
	var votes [5]int
	for s := sample - radius; s <= sample+radius; s++ {
		if s < 0 || s >= BlockSamples {
			continue
		}
		for l := line - radius; l <= line+radius; l++ {
			if l < 0 || l >= BlockLines {
				continue
			}
			if v := plane[s*BlockLines+l]; v.Valid() {
				votes[v]++
			}
		}
	}
	winner := ClassMissing
	best := 0
	for _, v := range tiePreference {
		if votes[v] > best {
			winner, best = v, votes[v]
		}
	}
	if best < threshold {
		return ClassMissing, false
	}
	return winner, true
}

func countMissing(plane []ClassCode) int {
	n := 0
	for _, v := range plane {
		if v == ClassMissing {
			n++
		}
	}
	return n
}

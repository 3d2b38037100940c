package registration

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pointalign/pointalign/core/parallel"
)

// MatchClosest finds, for each source point, the index of the nearest target
// point within maxDistance, or -1 when none qualifies. The search is brute
// force and runs in parallel chunks over the source set; each source index is
// written by exactly one worker, so no locking is needed.
func MatchClosest(src, tgt []r3.Vec, maxDistance float64) []int {
	corres := make([]int, len(src))
	maxSq := maxDistance * maxDistance
	if math.IsInf(maxDistance, 1) {
		maxSq = math.Inf(1)
	}

	parallel.ParallelizeWithThreshold(len(src), 256, func(start, end int) {
		for i := start; i < end; i++ {
			best := -1
			bestSq := maxSq
			for j, t := range tgt {
				d := r3.Sub(src[i], t)
				dSq := d.X*d.X + d.Y*d.Y + d.Z*d.Z
				if dSq <= bestSq {
					best = j
					bestSq = dSq
				}
			}
			corres[i] = best
		}
	})
	return corres
}

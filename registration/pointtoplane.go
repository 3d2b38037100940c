package registration

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pointalign/pointalign/core/parallel"
	"github.com/pointalign/pointalign/pkg/errors"
	"github.com/pointalign/pointalign/robust"
)

// Stats summarises one normal-equations accumulation pass.
type Stats struct {
	// WeightedSquaredError is the sum of w_i * r_i^2 over the inliers.
	WeightedSquaredError float64
	// Inliers is the number of valid correspondences folded in.
	Inliers int
}

// The per-correspondence reduction carries 29 values: the 21 upper-triangular
// entries of the symmetric 6x6 JtWJ matrix, the 6 entries of JtWr, the
// weighted squared error, and the inlier count.
const reductionWidth = 29

// Below this many correspondences the accumulation runs sequentially; the
// goroutine fan-out costs more than it saves.
const sequentialThreshold = 1024

// ComputePosePointToPlane builds and solves the weighted point-to-plane
// normal equations for one Gauss–Newton step.
//
// src[i] corresponds to tgtPoints[corres[i]] with surface normal
// tgtNormals[corres[i]]; corres[i] < 0 marks a pruned correspondence. The
// residual of a pair is r = n·(s − t) and its Jacobian row is [s×n, n]. The
// robust kernel is resolved once, then applied per-correspondence inside the
// parallel accumulation; the returned pose increment minimises the weighted
// squared point-to-plane error around the current alignment.
func ComputePosePointToPlane(src, tgtPoints, tgtNormals []r3.Vec, corres []int, kernel robust.Kernel) (Pose, Stats, error) {
	const op = "ComputePosePointToPlane"

	if len(src) == 0 {
		return Pose{}, Stats{}, errors.Wrap(errors.ErrEmptyData, op)
	}
	if len(corres) != len(src) {
		return Pose{}, Stats{}, errors.NewDimensionError(op, len(src), len(corres), 0)
	}
	if len(tgtNormals) != len(tgtPoints) {
		return Pose{}, Stats{}, errors.NewDimensionError(op, len(tgtPoints), len(tgtNormals), 0)
	}

	weight, err := robust.Resolve[float64](kernel)
	if err != nil {
		return Pose{}, Stats{}, errors.Wrap(err, op)
	}

	sums := parallel.ReduceWithThreshold(len(src), sequentialThreshold, reductionWidth,
		func(start, end int, acc []float64) {
			for i := start; i < end; i++ {
				ci := corres[i]
				if ci < 0 {
					continue
				}
				s := src[i]
				n := tgtNormals[ci]
				r := r3.Dot(r3.Sub(s, tgtPoints[ci]), n)
				w := weight(r)

				c := r3.Cross(s, n)
				j := [6]float64{c.X, c.Y, c.Z, n.X, n.Y, n.Z}

				k := 0
				for a := 0; a < 6; a++ {
					for b := a; b < 6; b++ {
						acc[k] += j[a] * j[b] * w
						k++
					}
					acc[21+a] += j[a] * r * w
				}
				acc[27] += w * r * r
				acc[28]++
			}
		})

	stats := Stats{WeightedSquaredError: sums[27], Inliers: int(sums[28])}
	if stats.Inliers == 0 {
		return Pose{}, stats, errors.Wrap(errors.ErrNoCorrespondences, op)
	}

	pose, err := solveNormalEquations(sums)
	if err != nil {
		return Pose{}, stats, errors.Wrap(err, op)
	}
	return pose, stats, nil
}

// solveNormalEquations solves JtWJ · x = −JtWr from the packed reduction.
// Cholesky handles the well-conditioned common case; a dense LU solve covers
// borderline positive-semidefinite systems before giving up as singular.
func solveNormalEquations(sums []float64) (Pose, error) {
	ata := mat.NewSymDense(6, nil)
	k := 0
	for a := 0; a < 6; a++ {
		for b := a; b < 6; b++ {
			ata.SetSym(a, b, sums[k])
			k++
		}
	}

	atb := mat.NewVecDense(6, nil)
	for a := 0; a < 6; a++ {
		atb.SetVec(a, -sums[21+a])
	}

	var x mat.VecDense
	var chol mat.Cholesky
	if chol.Factorize(ata) {
		if err := chol.SolveVecTo(&x, atb); err != nil {
			return Pose{}, errors.Wrap(errors.ErrSingularMatrix, "cholesky solve")
		}
	} else {
		dense := mat.NewDense(6, 6, nil)
		dense.Copy(ata)
		if err := x.SolveVec(dense, atb); err != nil {
			return Pose{}, errors.Wrap(errors.ErrSingularMatrix, "dense solve")
		}
	}

	var pose Pose
	copy(pose[:], x.RawVector().Data)
	if err := errors.CheckFinite("solveNormalEquations", pose[:], 0); err != nil {
		return Pose{}, err
	}
	return pose, nil
}

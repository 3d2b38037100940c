package registration

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pointalign/pointalign/pkg/errors"
)

// ComputeRtPointToPoint estimates the rigid rotation and translation that maps
// the corresponded source points onto the target points, minimising the
// point-to-point squared error (Umeyama/Kabsch via SVD of the demeaned
// cross-covariance). corres[i] < 0 marks a pruned correspondence.
//
// The returned rotation is a proper rotation (det = +1) even when the SVD
// alone would produce a reflection.
func ComputeRtPointToPoint(src, tgt []r3.Vec, corres []int) (*mat.Dense, r3.Vec, int, error) {
	const op = "ComputeRtPointToPoint"

	if len(src) == 0 {
		return nil, r3.Vec{}, 0, errors.Wrap(errors.ErrEmptyData, op)
	}
	if len(corres) != len(src) {
		return nil, r3.Vec{}, 0, errors.NewDimensionError(op, len(src), len(corres), 0)
	}

	var meanS, meanT r3.Vec
	inliers := 0
	for i, ci := range corres {
		if ci < 0 {
			continue
		}
		meanS = r3.Add(meanS, src[i])
		meanT = r3.Add(meanT, tgt[ci])
		inliers++
	}
	if inliers < 3 {
		return nil, r3.Vec{}, inliers, errors.Wrap(errors.ErrNoCorrespondences, op)
	}
	invN := 1.0 / float64(inliers)
	meanS = r3.Scale(invN, meanS)
	meanT = r3.Scale(invN, meanT)

	// Cross-covariance Sxy = (1/n) Σ (t_i − mean_t)(s_i − mean_s)^T.
	var sxy [9]float64
	for i, ci := range corres {
		if ci < 0 {
			continue
		}
		dt := r3.Sub(tgt[ci], meanT)
		ds := r3.Sub(src[i], meanS)
		sxy[0] += dt.X * ds.X
		sxy[1] += dt.X * ds.Y
		sxy[2] += dt.X * ds.Z
		sxy[3] += dt.Y * ds.X
		sxy[4] += dt.Y * ds.Y
		sxy[5] += dt.Y * ds.Z
		sxy[6] += dt.Z * ds.X
		sxy[7] += dt.Z * ds.Y
		sxy[8] += dt.Z * ds.Z
	}
	cov := mat.NewDense(3, 3, sxy[:])
	cov.Scale(invN, cov)

	var svd mat.SVD
	if !svd.Factorize(cov, mat.SVDFull) {
		return nil, r3.Vec{}, inliers, errors.Wrap(errors.ErrSingularMatrix, op)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// Guard against reflections: S = diag(1, 1, det(U)·det(V)).
	s := mat.NewDiagDense(3, []float64{1, 1, 1})
	if mat.Det(&u)*mat.Det(&v) < 0 {
		s.SetDiag(2, -1)
	}

	r := mat.NewDense(3, 3, nil)
	var sv mat.Dense
	sv.Mul(s, v.T())
	r.Mul(&u, &sv)

	rotMeanS := r3.Vec{
		X: r.At(0, 0)*meanS.X + r.At(0, 1)*meanS.Y + r.At(0, 2)*meanS.Z,
		Y: r.At(1, 0)*meanS.X + r.At(1, 1)*meanS.Y + r.At(1, 2)*meanS.Z,
		Z: r.At(2, 0)*meanS.X + r.At(2, 1)*meanS.Y + r.At(2, 2)*meanS.Z,
	}
	t := r3.Sub(meanT, rotMeanS)

	return r, t, inliers, nil
}

// RtToTransformation embeds a 3x3 rotation and translation into a 4x4
// homogeneous transform.
func RtToTransformation(r *mat.Dense, t r3.Vec) *mat.Dense {
	out := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, r.At(i, j))
		}
	}
	out.Set(0, 3, t.X)
	out.Set(1, 3, t.Y)
	out.Set(2, 3, t.Z)
	return out
}

// Package registration implements weighted Gauss–Newton kernels for rigid
// point-cloud alignment: point-to-plane pose estimation, SVD-based
// point-to-point estimation, and an IRLS driver (ICP) composing them with the
// robust-loss weight functions from the robust package.
package registration

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is a 6-DoF pose increment [rx, ry, rz, tx, ty, tz]: three Euler angles
// in radians followed by the translation.
type Pose [6]float64

// PoseToTransformation expands a pose vector into a 4x4 homogeneous transform
// with rotation Rz(rz)·Ry(ry)·Rx(rx).
func PoseToTransformation(pose Pose) *mat.Dense {
	cx, sx := math.Cos(pose[0]), math.Sin(pose[0])
	cy, sy := math.Cos(pose[1]), math.Sin(pose[1])
	cz, sz := math.Cos(pose[2]), math.Sin(pose[2])

	return mat.NewDense(4, 4, []float64{
		cz * cy, -sz*cx + cz*sy*sx, sz*sx + cz*sy*cx, pose[3],
		sz * cy, cz*cx + sz*sy*sx, -cz*sx + sz*sy*cx, pose[4],
		-sy, cy * sx, cy * cx, pose[5],
		0, 0, 0, 1,
	})
}

// Identity returns the 4x4 identity transform.
func Identity() *mat.Dense {
	t := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		t.Set(i, i, 1)
	}
	return t
}

// ApplyTransform applies a 4x4 homogeneous transform to a point.
func ApplyTransform(t *mat.Dense, p r3.Vec) r3.Vec {
	return r3.Vec{
		X: t.At(0, 0)*p.X + t.At(0, 1)*p.Y + t.At(0, 2)*p.Z + t.At(0, 3),
		Y: t.At(1, 0)*p.X + t.At(1, 1)*p.Y + t.At(1, 2)*p.Z + t.At(1, 3),
		Z: t.At(2, 0)*p.X + t.At(2, 1)*p.Y + t.At(2, 2)*p.Z + t.At(2, 3),
	}
}

// RotatePoint applies only the rotational part of a 4x4 transform, used for
// direction vectors such as normals.
func RotatePoint(t *mat.Dense, p r3.Vec) r3.Vec {
	return r3.Vec{
		X: t.At(0, 0)*p.X + t.At(0, 1)*p.Y + t.At(0, 2)*p.Z,
		Y: t.At(1, 0)*p.X + t.At(1, 1)*p.Y + t.At(1, 2)*p.Z,
		Z: t.At(2, 0)*p.X + t.At(2, 1)*p.Y + t.At(2, 2)*p.Z,
	}
}

// TransformPoints returns a transformed copy of the point set.
func TransformPoints(t *mat.Dense, points []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(points))
	for i, p := range points {
		out[i] = ApplyTransform(t, p)
	}
	return out
}

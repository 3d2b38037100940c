package registration

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func vecClose(a, b r3.Vec, tol float64) bool {
	d := r3.Sub(a, b)
	return math.Abs(d.X) <= tol && math.Abs(d.Y) <= tol && math.Abs(d.Z) <= tol
}

func TestPoseToTransformation_ZeroPoseIsIdentity(t *testing.T) {
	tr := PoseToTransformation(Pose{})

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if got := tr.At(i, j); math.Abs(got-want) > 1e-15 {
				t.Errorf("T[%d,%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestPoseToTransformation_KnownRotation(t *testing.T) {
	tests := []struct {
		name  string
		pose  Pose
		point r3.Vec
		want  r3.Vec
	}{
		{
			name:  "quarter turn about z",
			pose:  Pose{0, 0, math.Pi / 2, 0, 0, 0},
			point: r3.Vec{X: 1},
			want:  r3.Vec{Y: 1},
		},
		{
			name:  "quarter turn about x",
			pose:  Pose{math.Pi / 2, 0, 0, 0, 0, 0},
			point: r3.Vec{Y: 1},
			want:  r3.Vec{Z: 1},
		},
		{
			name:  "pure translation",
			pose:  Pose{0, 0, 0, 1, 2, 3},
			point: r3.Vec{X: -1, Y: 0.5, Z: 2},
			want:  r3.Vec{X: 0, Y: 2.5, Z: 5},
		},
		{
			name:  "rotation then translation",
			pose:  Pose{0, 0, math.Pi / 2, 1, 2, 3},
			point: r3.Vec{X: 1},
			want:  r3.Vec{X: 1, Y: 3, Z: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := PoseToTransformation(tt.pose)
			got := ApplyTransform(tr, tt.point)
			if !vecClose(got, tt.want, 1e-12) {
				t.Errorf("ApplyTransform() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRotatePoint_IgnoresTranslation(t *testing.T) {
	tr := PoseToTransformation(Pose{0, 0, math.Pi / 2, 10, 20, 30})
	got := RotatePoint(tr, r3.Vec{X: 1})
	if !vecClose(got, r3.Vec{Y: 1}, 1e-12) {
		t.Errorf("RotatePoint() = %+v, want %+v", got, r3.Vec{Y: 1})
	}
}

func TestTransformPoints_SmallAngleMatchesLinearisation(t *testing.T) {
	// For small pose increments the full Euler transform must agree with the
	// first-order model dp = theta x p + t used by the normal equations.
	pose := Pose{1e-4, -2e-4, 1.5e-4, 1e-3, -2e-3, 5e-4}
	theta := r3.Vec{X: pose[0], Y: pose[1], Z: pose[2]}
	trans := r3.Vec{X: pose[3], Y: pose[4], Z: pose[5]}

	tr := PoseToTransformation(pose)
	points := []r3.Vec{
		{X: 1, Y: 0.2, Z: -0.5},
		{X: -0.7, Y: 1.1, Z: 0.3},
	}
	got := TransformPoints(tr, points)

	for i, p := range points {
		want := r3.Add(p, r3.Add(r3.Cross(theta, p), trans))
		if !vecClose(got[i], want, 5e-7) {
			t.Errorf("point %d: got %+v, want %+v", i, got[i], want)
		}
	}
}

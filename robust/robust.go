// Package robust implements robust-loss (M-estimator) weight functions for
// iteratively reweighted least squares.
//
// A Kernel describes a loss family and its parameters. Resolve turns it into a
// pure residual→weight closure specialised for a scalar precision. Resolution
// happens once per optimisation iteration, off the hot path; the returned
// closure is stateless, allocation-free and safe to call concurrently from the
// per-correspondence accumulation loop.
package robust

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/pointalign/pointalign/pkg/errors"
)

// Method enumerates the supported robust-loss kernel families. The set is
// closed: adding a family is a deliberate change here, not a plugin point.
type Method int

const (
	// L2 is plain least squares: every residual keeps full influence.
	L2 Method = iota
	// L1 is absolute-error loss.
	L1
	// Huber is quadratic near zero, linear beyond the scaling parameter.
	Huber
	// Cauchy (Lorentzian) loss.
	Cauchy
	// GemanMcClure loss.
	GemanMcClure
	// Tukey biweight: residuals at or beyond the scaling parameter get
	// zero weight.
	Tukey
	// Generalized is the continuously parameterised Barron loss family,
	// controlled by the shape parameter.
	Generalized
)

var methodNames = map[Method]string{
	L2:           "L2",
	L1:           "L1",
	Huber:        "Huber",
	Cauchy:       "Cauchy",
	GemanMcClure: "GemanMcClure",
	Tukey:        "Tukey",
	Generalized:  "Generalized",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "Method(" + itoa(int(m)) + ")"
}

// ParseMethod converts a method name to its Method value.
func ParseMethod(name string) (Method, error) {
	for m, n := range methodNames {
		if n == name {
			return m, nil
		}
	}
	return 0, errors.NewValidationError("method", "unknown robust kernel method name", name)
}

// MarshalText implements encoding.TextMarshaler, so Method round-trips
// through YAML and JSON configuration by name.
func (m Method) MarshalText() ([]byte, error) {
	name, ok := methodNames[m]
	if !ok {
		return nil, errors.NewUnsupportedKernelError(m.String(), int(m))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Kernel bundles a loss method with its numeric parameters. The value is
// immutable after construction; a new Kernel is resolved for each optimisation
// iteration when parameters follow an adaptive schedule.
type Kernel struct {
	// Method selects the loss family.
	Method Method
	// Scale (sigma) controls the residual magnitude at which down-weighting
	// begins. Required finite and strictly positive for every method but L2.
	Scale float64
	// Shape (alpha) controls the curvature of the Generalized family and is
	// ignored by every other method.
	Shape float64
}

// WeightFunc maps a residual to its IRLS weight. Implementations returned by
// Resolve are pure: same residual, same weight, regardless of call order or
// goroutine.
type WeightFunc[T constraints.Float] func(residual T) T

const (
	// shapeTol is the approximate-equality band used to select the analytic
	// limits of the Generalized family at alpha=2 and alpha=0. Comparing with
	// a tolerance rather than exact float equality keeps values such as
	// alpha=1.9999999 on the stable constant branch.
	shapeTol = 1e-6

	// gaussianShapeCutoff is the hard threshold below which the Generalized
	// family switches to its Gaussian (Welsch) limit. The general formula is
	// still finite just above the cutoff, so the weight is discontinuous in
	// alpha across this seam. Known numerical seam, kept as-is.
	gaussianShapeCutoff = -1e7
)

// Resolve produces the weight function for k, specialised for precision T.
// Parameters are validated and converted to T here, once, so the returned
// closure performs no widening or narrowing per call.
//
// An out-of-enumeration method yields an UnsupportedKernelError; since the
// method set is closed and fixed at the call site, callers should treat that
// error as fatal misconfiguration. Every in-set kernel with valid parameters
// resolves successfully, and the resolved function is total over finite
// residuals, with one documented exception: L1 at residual 0 follows IEEE
// division and returns +Inf.
func Resolve[T constraints.Float](k Kernel) (WeightFunc[T], error) {
	if k.Method != L2 {
		if math.IsNaN(k.Scale) || math.IsInf(k.Scale, 0) || k.Scale <= 0 {
			return nil, errors.NewValidationError("scale", "must be positive and finite", k.Scale)
		}
	}

	switch k.Method {
	case L2:
		return func(residual T) T {
			return 1
		}, nil

	case L1:
		return func(residual T) T {
			return 1 / abs(residual)
		}, nil

	case Huber:
		s := T(k.Scale)
		return func(residual T) T {
			return s / maxOf(abs(residual), s)
		}, nil

	case Cauchy:
		invScale := T(1 / k.Scale)
		return func(residual T) T {
			u := residual * invScale
			return 1 / (1 + u*u)
		}, nil

	case GemanMcClure:
		s := T(k.Scale)
		return func(residual T) T {
			d := s + residual*residual
			return s / (d * d)
		}, nil

	case Tukey:
		invScale := T(1 / k.Scale)
		return func(residual T) T {
			u := minOf(1, abs(residual)*invScale)
			v := 1 - u*u
			return v * v
		}, nil

	case Generalized:
		if math.IsNaN(k.Shape) {
			return nil, errors.NewValidationError("shape", "must not be NaN", k.Shape)
		}
		return generalizedWeight[T](k.Scale, k.Shape), nil

	default:
		return nil, errors.NewUnsupportedKernelError(k.Method.String(), int(k.Method))
	}
}

// generalizedWeight selects among the three analytic limits of the Barron loss
// and its general closed form. Each special case is the exact limit of the
// general expression, which is singular at alpha=2, alpha=0 and divergent as
// alpha → −∞.
func generalizedWeight[T constraints.Float](scale, shape float64) WeightFunc[T] {
	switch {
	case isClose(shape, 2):
		// alpha=2 degenerates to scaled L2: constant weight.
		c := T(1 / (scale * scale))
		return func(residual T) T {
			return c
		}

	case isClose(shape, 0):
		twoSigmaSq := T(2 * scale * scale)
		return func(residual T) T {
			return 2 / (residual*residual + twoSigmaSq)
		}

	case shape < gaussianShapeCutoff:
		// Gaussian/Welsch limit.
		invScale := T(1 / scale)
		invSigmaSq := T(1 / (scale * scale))
		return func(residual T) T {
			u := residual * invScale
			return exp(u*u/-2) * invSigmaSq
		}

	default:
		invScale := T(1 / scale)
		invAbsShapeM2 := T(1 / math.Abs(shape-2))
		exponent := T(shape/2 - 1)
		invSigmaSq := T(1 / (scale * scale))
		return func(residual T) T {
			u := residual * invScale
			return pow(u*u*invAbsShapeM2+1, exponent) * invSigmaSq
		}
	}
}

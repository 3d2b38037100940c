package robust

import (
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
)

// Precision-generic scalar helpers for the weight closures. Comparisons and
// arithmetic stay in T; exp and pow route through the float64 math package,
// which is the narrowing point for float32 kernels (Go has no float32
// transcendentals in the standard library).

func abs[T constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func minOf[T constraints.Float](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func maxOf[T constraints.Float](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func exp[T constraints.Float](x T) T {
	return T(math.Exp(float64(x)))
}

func pow[T constraints.Float](x, y T) T {
	return T(math.Pow(float64(x), float64(y)))
}

// isClose reports approximate equality of two shape-parameter values.
func isClose(a, b float64) bool {
	return math.Abs(a-b) < shapeTol
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

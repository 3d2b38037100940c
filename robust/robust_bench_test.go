package robust

import (
	"math/rand"
	"testing"
)

func benchResiduals(n int) []float64 {
	rng := rand.New(rand.NewSource(42))
	residuals := make([]float64, n)
	for i := range residuals {
		residuals[i] = rng.Float64()*2.0 - 1.0
	}
	return residuals
}

func benchmarkKernel(b *testing.B, k Kernel) {
	residuals := benchResiduals(4096)
	w, err := Resolve[float64](k)
	if err != nil {
		b.Fatalf("Resolve() error = %v", err)
	}

	var sink float64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, r := range residuals {
			sink += w(r)
		}
	}
	_ = sink
}

func BenchmarkWeightHuber(b *testing.B) {
	benchmarkKernel(b, Kernel{Method: Huber, Scale: 0.1})
}

func BenchmarkWeightCauchy(b *testing.B) {
	benchmarkKernel(b, Kernel{Method: Cauchy, Scale: 0.1})
}

func BenchmarkWeightTukey(b *testing.B) {
	benchmarkKernel(b, Kernel{Method: Tukey, Scale: 0.1})
}

func BenchmarkWeightGeneralized(b *testing.B) {
	benchmarkKernel(b, Kernel{Method: Generalized, Scale: 0.1, Shape: -1.0})
}

func BenchmarkWeightGeneralizedGaussianLimit(b *testing.B) {
	benchmarkKernel(b, Kernel{Method: Generalized, Scale: 0.1, Shape: -1e8})
}

// Package pointalign provides robust point-cloud registration primitives for Go,
// designed for iterative pose-estimation pipelines (ICP and friends) in backend
// services and robotics tooling.
//
// The library is organised around two layers:
//
//   - robust: robust-loss (M-estimator) weight functions. A loss method and its
//     parameters are resolved once per optimisation iteration into a pure,
//     precision-specialised residual→weight closure that is safe to call from
//     any number of goroutines inside the hot accumulation loop.
//
//   - registration: weighted Gauss–Newton kernels for point-to-plane pose
//     estimation and SVD-based point-to-point rigid estimation, plus an IRLS
//     driver that composes them with the robust layer.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/pointalign/pointalign/registration"
//	    "github.com/pointalign/pointalign/robust"
//	)
//
//	func main() {
//	    result, err := registration.ICPPointToPlane(source, target, normals,
//	        registration.WithKernel(robust.Kernel{Method: robust.Huber, Scale: 0.05}),
//	        registration.WithMaxIterations(30),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("fitness=%.3f rmse=%.6f\n", result.Fitness, result.InlierRMSE)
//	}
//
// # Error Handling
//
// Configuration mistakes (unknown loss method, non-positive scale) surface as
// structured errors from the pkg/errors package with stack traces attached;
// numerical non-convergence is reported through the warning handler rather than
// as a hard failure.
package pointalign

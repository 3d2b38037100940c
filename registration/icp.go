package registration

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pointalign/pointalign/pkg/errors"
	"github.com/pointalign/pointalign/pkg/log"
	"github.com/pointalign/pointalign/robust"
)

// Result reports the outcome of an ICP run.
type Result struct {
	// Transformation maps source points into the target frame.
	Transformation *mat.Dense
	// Fitness is the fraction of source points with a valid correspondence
	// in the final iteration.
	Fitness float64
	// InlierRMSE is the robust-weighted point-to-plane RMSE over inliers.
	InlierRMSE float64
	// Iterations is the number of Gauss–Newton steps executed.
	Iterations int
	// Converged reports whether the relative change criterion was met
	// before the iteration cap.
	Converged bool
}

type icpConfig struct {
	kernel        robust.Kernel
	maxIterations int
	tolerance     float64
	maxCorresDist float64
	initial       *mat.Dense
}

// Option configures an ICP run.
type Option func(*icpConfig)

// WithKernel sets the robust-loss kernel. Default is plain L2.
func WithKernel(k robust.Kernel) Option {
	return func(c *icpConfig) {
		c.kernel = k
	}
}

// WithMaxIterations caps the number of Gauss–Newton steps.
func WithMaxIterations(n int) Option {
	return func(c *icpConfig) {
		c.maxIterations = n
	}
}

// WithTolerance sets the relative-change convergence threshold applied to
// both fitness and RMSE between consecutive iterations.
func WithTolerance(tol float64) Option {
	return func(c *icpConfig) {
		c.tolerance = tol
	}
}

// WithCorrespondenceDistance sets the pruning radius for the nearest-
// neighbour matching step. Default is unbounded.
func WithCorrespondenceDistance(d float64) Option {
	return func(c *icpConfig) {
		c.maxCorresDist = d
	}
}

// WithInitialTransformation sets the starting alignment (4x4).
func WithInitialTransformation(t *mat.Dense) Option {
	return func(c *icpConfig) {
		c.initial = t
	}
}

// ICPPointToPlane aligns the source cloud to the target cloud with
// iteratively reweighted point-to-plane ICP.
//
// Each iteration matches correspondences under the current alignment,
// resolves the robust weight function once, accumulates and solves the
// weighted normal equations, and left-composes the pose increment onto the
// running transform. Failing to converge within the iteration cap is reported
// through the warning handler, not as an error; the best-effort result is
// still returned.
func ICPPointToPlane(src, tgtPoints, tgtNormals []r3.Vec, opts ...Option) (Result, error) {
	const op = "ICPPointToPlane"

	cfg := icpConfig{
		kernel:        robust.Kernel{Method: robust.L2},
		maxIterations: 30,
		tolerance:     1e-6,
		maxCorresDist: math.Inf(1),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(src) == 0 || len(tgtPoints) == 0 {
		return Result{}, errors.Wrap(errors.ErrEmptyData, op)
	}
	if len(tgtNormals) != len(tgtPoints) {
		return Result{}, errors.NewDimensionError(op, len(tgtPoints), len(tgtNormals), 0)
	}
	if cfg.maxIterations <= 0 {
		return Result{}, errors.NewValidationError("maxIterations", "must be positive", cfg.maxIterations)
	}
	// Reject a bad kernel up front rather than on iteration one.
	if _, err := robust.Resolve[float64](cfg.kernel); err != nil {
		return Result{}, errors.Wrap(err, op)
	}

	transform := Identity()
	if cfg.initial != nil {
		transform.Copy(cfg.initial)
	}

	result := Result{Transformation: transform}
	prevFitness, prevRMSE := 0.0, 0.0

	for iter := 0; iter < cfg.maxIterations; iter++ {
		current := TransformPoints(transform, src)
		corres := MatchClosest(current, tgtPoints, cfg.maxCorresDist)

		pose, stats, err := ComputePosePointToPlane(current, tgtPoints, tgtNormals, corres, cfg.kernel)
		if err != nil {
			return result, errors.Wrapf(err, "%s: iteration %d", op, iter)
		}
		if stats.Inliers < 6 {
			errors.Warn(errors.NewDegenerateGeometryWarning(op, stats.Inliers,
				"fewer inliers than pose degrees of freedom"))
		}

		update := PoseToTransformation(pose)
		var composed mat.Dense
		composed.Mul(update, transform)
		transform.Copy(&composed)

		fitness := float64(stats.Inliers) / float64(len(src))
		rmse := math.Sqrt(stats.WeightedSquaredError / float64(stats.Inliers))

		result.Iterations = iter + 1
		result.Fitness = fitness
		result.InlierRMSE = rmse

		slog.Debug("icp iteration",
			log.OperationKey, log.OperationICP,
			log.KernelMethodKey, cfg.kernel.Method.String(),
			log.IterationKey, iter,
			log.FitnessKey, fitness,
			log.RMSEKey, rmse,
			log.InlierCountKey, stats.Inliers,
		)

		if iter > 0 &&
			math.Abs(fitness-prevFitness) < cfg.tolerance &&
			math.Abs(rmse-prevRMSE) < cfg.tolerance {
			result.Converged = true
			break
		}
		prevFitness, prevRMSE = fitness, rmse
	}

	if !result.Converged {
		errors.Warn(errors.NewConvergenceWarning(op, result.Iterations, ""))
	}
	return result, nil
}

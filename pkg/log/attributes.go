// Standard attribute keys for registration logging.
//
// The keys follow a hierarchical naming convention (e.g. "kernel.method",
// "icp.rmse") so that structured log pipelines can filter on them without
// per-call-site string agreement.

package log

// Kernel configuration context.
const (
	// KernelMethodKey identifies the robust-loss method in use.
	// Examples: "Huber", "Tukey", "Generalized"
	KernelMethodKey = "kernel.method"

	// KernelScaleKey records the scaling parameter (sigma) of the kernel.
	KernelScaleKey = "kernel.scale"

	// KernelShapeKey records the shape parameter (alpha) of the
	// generalized loss family.
	KernelShapeKey = "kernel.shape"
)

// Registration progress and quality.
const (
	// OperationKey specifies the registration operation being performed.
	// Standard values: "icp", "compute_pose", "compute_rt", "match"
	OperationKey = "reg.operation"

	// IterationKey records the current IRLS/ICP iteration.
	IterationKey = "icp.iteration"

	// RMSEKey records the inlier root-mean-square residual.
	RMSEKey = "icp.rmse"

	// FitnessKey records the inlier ratio over the source cloud.
	FitnessKey = "icp.fitness"

	// InlierCountKey records the number of valid correspondences.
	InlierCountKey = "icp.inliers"
)

// Data shape.
const (
	// SourcePointsKey indicates the number of source points.
	SourcePointsKey = "data.source_points"

	// TargetPointsKey indicates the number of target points.
	TargetPointsKey = "data.target_points"
)

// Performance.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Standard operation values.
const (
	OperationICP         = "icp"
	OperationComputePose = "compute_pose"
	OperationComputeRt   = "compute_rt"
	OperationMatch       = "match"
)

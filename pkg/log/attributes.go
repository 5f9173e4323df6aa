// Package log defines standard attribute keys for the training and inference
// pipeline.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples")
// so that training runs and prediction requests can be filtered and compared
// in structured log storage.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "LinearRegression", "StandardScaler", "LabelEncoder"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "fit_transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	// Examples: "training", "inference", "housing"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the pipeline.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey is the number of rows in the data being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// DroppedKey is the number of rows removed by a cleaning or filtering step.
	DroppedKey = "data.dropped"

	// SourceKey is the path of the input dataset.
	SourceKey = "data.source"

	// TrainSamplesKey and TestSamplesKey describe the split sizes.
	TrainSamplesKey = "data.train_samples"
	TestSamplesKey  = "data.test_samples"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// MAEKey records the mean absolute error on the held-out split.
	MAEKey = "metrics.mae"

	// RMSEKey records the root mean squared error on the held-out split.
	RMSEKey = "metrics.rmse"

	// R2ScoreKey records R² coefficient of determination for regression.
	// Range typically [-∞, 1.0], with 1.0 being perfect prediction.
	R2ScoreKey = "metrics.r2_score"
)

// Prediction Context
const (
	// PriceCroreKey records the reported prediction in crores.
	PriceCroreKey = "preds.price_crore"
)

// Artifact Context
const (
	// ArtifactKey names one artifact of the bundle ("model", "scaler", ...).
	ArtifactKey = "artifact.name"

	// ArtifactDirKey is the directory holding the bundle.
	ArtifactDirKey = "artifact.dir"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey is the Go type of the root cause of a logged error.
	// Populated by ErrFmtHandler.
	ErrorTypeKey = "error.type"

	// SuggestionKey provides a remediation hint.
	SuggestionKey = "error.suggestion"
)

// Configuration
const (
	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// TestSizeKey records the held-out fraction.
	TestSizeKey = "config.test_size"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"

	PhaseTraining      = "training"
	PhaseTesting       = "testing"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"

	ErrorArtifactsMissing = "ARTIFACTS_MISSING"
	ErrorFeatureMismatch  = "FEATURE_MISMATCH"
	ErrorComputation      = "COMPUTATION_FAILURE"
	ErrorInvalidInput     = "INVALID_INPUT"
	ErrorGeocoderConfig   = "GEOCODER_NOT_CONFIGURED"
	ErrorGeocoderUpstream = "GEOCODER_UPSTREAM_FAILURE"
)

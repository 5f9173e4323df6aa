// Package training fits the price model: split, scale, fit and evaluate.
package training

import (
	"math"
	"time"

	"github.com/YuminosukeSato/houseprice/housing"
	"github.com/YuminosukeSato/houseprice/linear"
	"github.com/YuminosukeSato/houseprice/metrics"
	"github.com/YuminosukeSato/houseprice/model_selection"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// Options controls the split and the regression.
type Options struct {
	Seed     int64
	TestSize float64
	// Ridge is added to the diagonal only when the normal equation is
	// singular. Zero means linear.DefaultRidge.
	Ridge float64
}

// DefaultOptions is an 80/20 split with seed 42.
func DefaultOptions() Options {
	return Options{Seed: 42, TestSize: 0.2, Ridge: linear.DefaultRidge}
}

// Metrics are computed on the scaled held-out split, in lakhs.
type Metrics struct {
	MAE  float64
	RMSE float64
	R2   float64
}

// Result holds the fitted estimators and their evaluation.
type Result struct {
	Model   *linear.LinearRegression
	Scaler  *preprocessing.StandardScaler
	Metrics Metrics

	TrainSamples int
	TestSamples  int

	// YTest and YPred are the held-out targets and the model's predictions.
	YTest *mat.VecDense
	YPred *mat.VecDense
}

// Train splits fs, fits the scaler on the training rows only, fits a linear
// regression on the scaled training rows and evaluates it on the scaled test rows.
func Train(fs *housing.FeatureSet, opts Options) (*Result, error) {
	if fs == nil || fs.X == nil || fs.Y == nil {
		return nil, errors.NewModelError("training.Train", "empty data", errors.ErrEmptyData)
	}
	logger := log.GetLoggerWithName("training")
	start := time.Now()

	// 非数値は補完せずに致命的エラーとする
	if err := errors.CheckMatrix("training.Train(X)", fs.X); err != nil {
		return nil, err
	}
	if err := errors.CheckMatrix("training.Train(y)", fs.Y); err != nil {
		return nil, err
	}

	n, _ := fs.X.Dims()
	trainIdx, testIdx, err := model_selection.TrainTestSplit(n, opts.TestSize, opts.Seed)
	if err != nil {
		return nil, err
	}
	XTrain, yTrain, err := model_selection.Subset(fs.X, fs.Y, trainIdx)
	if err != nil {
		return nil, err
	}
	XTest, yTest, err := model_selection.Subset(fs.X, fs.Y, testIdx)
	if err != nil {
		return nil, err
	}

	scaler := preprocessing.NewStandardScalerDefault()
	XTrainScaled, err := scaler.FitTransform(XTrain)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fit scaler")
	}
	logger.Debug("scaler fitted on training split",
		log.OperationKey, log.OperationFitTransform,
		log.SamplesKey, len(trainIdx),
	)
	XTestScaled, err := scaler.Transform(XTest)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scale test split")
	}
	logger.Debug("test split scaled",
		log.OperationKey, log.OperationTransform,
		log.SamplesKey, len(testIdx),
	)

	ridge := opts.Ridge
	if ridge <= 0 {
		ridge = linear.DefaultRidge
	}
	model := linear.NewLinearRegression(linear.WithRidge(ridge))
	if err := model.Fit(XTrainScaled, yTrain); err != nil {
		return nil, errors.Wrap(err, "failed to fit model")
	}
	if model.Regularized() {
		logger.Warn("normal equation was singular; fitted with ridge fallback",
			log.PhaseKey, log.PhaseTraining,
			log.ModelNameKey, linear.ModelType)
	}

	predMat, err := model.Predict(XTestScaled)
	if err != nil {
		return nil, errors.Wrap(err, "failed to predict test split")
	}
	yPred := mat.NewVecDense(len(testIdx), mat.Col(nil, 0, predMat))

	m, err := Evaluate(yTest, yPred)
	if err != nil {
		return nil, err
	}

	logger.Info("model trained",
		log.PhaseKey, log.PhaseTesting,
		log.OperationKey, log.OperationScore,
		log.ModelNameKey, linear.ModelType,
		log.TrainSamplesKey, len(trainIdx),
		log.TestSamplesKey, len(testIdx),
		log.MAEKey, m.MAE,
		log.RMSEKey, m.RMSE,
		log.R2ScoreKey, m.R2,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Result{
		Model:        model,
		Scaler:       scaler,
		Metrics:      m,
		TrainSamples: len(trainIdx),
		TestSamples:  len(testIdx),
		YTest:        yTest,
		YPred:        yPred,
	}, nil
}

// Evaluate computes MAE, RMSE and R².
//
// R² is undefined for a constant target. In that case an
// UndefinedMetricWarning is emitted and R² is 1 for a perfect prediction and
// 0 otherwise.
func Evaluate(yTrue, yPred *mat.VecDense) (Metrics, error) {
	var m Metrics
	var err error

	if m.MAE, err = metrics.MAE(yTrue, yPred); err != nil {
		return Metrics{}, err
	}
	if m.RMSE, err = metrics.RMSE(yTrue, yPred); err != nil {
		return Metrics{}, err
	}

	m.R2, err = metrics.R2Score(yTrue, yPred)
	if errors.Is(err, errors.ErrNoVariance) {
		m.R2 = 0
		if m.MAE == 0 {
			m.R2 = 1
		}
		errors.Warn(errors.NewUndefinedMetricWarning("r2_score", "test target has no variance", m.R2))
		err = nil
	}
	if err != nil {
		return Metrics{}, err
	}
	if math.IsNaN(m.R2) {
		return Metrics{}, errors.NewNumericalInstabilityError("training.Evaluate", []float64{m.R2}, 0)
	}
	return m, nil
}

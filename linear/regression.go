// Package linear は正規方程式で解く最小二乗線形回帰を提供する
package linear

import (
	"fmt"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/core/parallel"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// ModelType は重みファイルに記録されるモデル名
	ModelType = "LinearRegression"

	// DefaultRidge は正規方程式が特異なときに対角へ加える値
	DefaultRidge = 1e-10

	defaultParallelThreshold = 1000
)

var _ model.Regressor = (*LinearRegression)(nil)

// LinearRegression は線形回帰モデル
type LinearRegression struct {
	model.BaseEstimator

	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
	NFeatures int           // 特徴量の数

	fitIntercept      bool
	ridge             float64
	parallelThreshold int
	regularized       bool
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		fitIntercept:      true,
		ridge:             DefaultRidge,
		parallelThreshold: defaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習させる
// 正規方程式 w = (X^T * X)^(-1) * X^T * y を使用。
// X^T X が特異な場合は対角に小さなリッジ項を加えて再試行する。
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}
	if err := errors.CheckMatrix("LinearRegression.Fit(X)", X); err != nil {
		return err
	}
	if err := errors.CheckMatrix("LinearRegression.Fit(y)", y); err != nil {
		return err
	}

	// 切片項のために先頭に 1 の列を追加する
	offset := 0
	if lr.fitIntercept {
		offset = 1
	}
	design := mat.NewDense(r, c+offset, nil)
	parallel.ParallelizeWithThreshold(r, lr.parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if offset == 1 {
				design.Set(i, 0, 1.0)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})

	var xtx mat.Dense
	xtx.Mul(design.T(), design)

	lr.regularized = false
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		n, _ := xtx.Dims()
		for i := 0; i < n; i++ {
			xtx.Set(i, i, xtx.At(i, i)+lr.ridge)
		}
		if err := xtxInv.Inverse(&xtx); err != nil {
			return errors.NewModelError("LinearRegression.Fit",
				"matrix inversion failed even with regularization", errors.Wrap(errors.ErrSingularMatrix, err.Error()))
		}
		lr.regularized = true
	}

	var xty mat.Dense
	xty.Mul(design.T(), y)

	var coef mat.Dense
	coef.Mul(&xtxInv, &xty)

	lr.NFeatures = c
	lr.Intercept = 0
	if offset == 1 {
		lr.Intercept = coef.At(0, 0)
	}
	lr.Weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.Weights.SetVec(j, coef.At(j+offset, 0))
	}

	if err := errors.CheckScalar("LinearRegression.Fit(intercept)", lr.Intercept, 0); err != nil {
		return err
	}
	if err := errors.CheckMatrix("LinearRegression.Fit(weights)", lr.Weights); err != nil {
		return err
	}

	lr.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	// y = X * weights + intercept
	predictions := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, lr.parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := lr.Intercept
			for j := 0; j < c; j++ {
				pred += X.At(i, j) * lr.Weights.AtVec(j)
			}
			predictions.Set(i, 0, pred)
		}
	})

	return predictions, nil
}

// GetWeights は学習された重み（係数）を返す
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	return mat.Col(nil, 0, lr.Weights)
}

// GetIntercept は学習された切片を返す
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Regularized は直近のFitでリッジ項による再試行が必要だったかを返す
func (lr *LinearRegression) Regularized() bool {
	return lr.regularized
}

// ExportWeights は学習済みの重みを永続化形式で返す。
// features は係数の列順に対応する特徴量名。
func (lr *LinearRegression) ExportWeights(features []string) (*model.ModelWeights, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "ExportWeights")
	}
	if features != nil && len(features) != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.ExportWeights", lr.NFeatures, len(features), 1)
	}

	return &model.ModelWeights{
		ModelType:    ModelType,
		Version:      model.WeightsFormatVersion,
		Coefficients: lr.GetWeights(),
		Intercept:    lr.Intercept,
		Features:     append([]string(nil), features...),
		Metadata: map[string]interface{}{
			"fit_intercept": lr.fitIntercept,
			"regularized":   lr.regularized,
		},
		IsFitted: true,
	}, nil
}

// ImportWeights は保存済みの重みからモデルを学習済み状態に復元する
func (lr *LinearRegression) ImportWeights(mw *model.ModelWeights) error {
	if mw == nil {
		return errors.NewValueError("LinearRegression.ImportWeights", "weights are nil")
	}
	if mw.ModelType != ModelType {
		return errors.NewValueError("LinearRegression.ImportWeights",
			fmt.Sprintf("model type mismatch: expected %s, got %s", ModelType, mw.ModelType))
	}
	if err := mw.Validate(); err != nil {
		return errors.Wrap(err, "LinearRegression.ImportWeights")
	}

	lr.NFeatures = len(mw.Coefficients)
	lr.Intercept = mw.Intercept
	lr.Weights = mat.NewVecDense(lr.NFeatures, append([]float64(nil), mw.Coefficients...))
	if err := errors.CheckMatrix("LinearRegression.ImportWeights", lr.Weights); err != nil {
		return err
	}
	if err := errors.CheckScalar("LinearRegression.ImportWeights", lr.Intercept, 0); err != nil {
		return err
	}
	if fi, ok := mw.Metadata["fit_intercept"].(bool); ok {
		lr.fitIntercept = fi
	}

	lr.SetFitted()
	return nil
}

// String はモデルの文字列表現を返す
func (lr *LinearRegression) String() string {
	if !lr.IsFitted() {
		return fmt.Sprintf("LinearRegression(fit_intercept=%t)", lr.fitIntercept)
	}
	return fmt.Sprintf("LinearRegression(fit_intercept=%t, n_features=%d)", lr.fitIntercept, lr.NFeatures)
}

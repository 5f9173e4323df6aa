package preprocessing

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// scaleEpsilon 未満の標準偏差は定数列とみなしてスケール1で扱う
const scaleEpsilon = 1e-8

var _ model.FittableTransformer = (*StandardScaler)(nil)

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する（標準偏差は母分散ベース）
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差（定数列は1）
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool
}

// ScalerParams は学習済みStandardScalerの永続化形式
type ScalerParams struct {
	Mean      []float64 `json:"mean"`
	Scale     []float64 `json:"scale"`
	NFeatures int       `json:"n_features"`
	WithMean  bool      `json:"with_mean"`
	WithStd   bool      `json:"with_std"`
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(XTrain)
//	XTestScaled, err := scaler.Transform(XTest)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// NewStandardScalerFromParams は保存済みパラメータから学習済みのスケーラーを復元する
func NewStandardScalerFromParams(p ScalerParams) (*StandardScaler, error) {
	if p.NFeatures <= 0 {
		return nil, errors.NewValidationError("n_features", "must be positive", p.NFeatures)
	}
	if len(p.Mean) != p.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.FromParams", p.NFeatures, len(p.Mean), 1)
	}
	if len(p.Scale) != p.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.FromParams", p.NFeatures, len(p.Scale), 1)
	}
	for j, s := range p.Scale {
		if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, errors.NewValidationError(fmt.Sprintf("scale[%d]", j), "must be finite and non-zero", s)
		}
	}

	s := &StandardScaler{
		Mean:      append([]float64(nil), p.Mean...),
		Scale:     append([]float64(nil), p.Scale...),
		NFeatures: p.NFeatures,
		WithMean:  p.WithMean,
		WithStd:   p.WithStd,
	}
	s.SetFitted()
	return s, nil
}

// Params は学習済みパラメータのコピーを返す
func (s *StandardScaler) Params() (ScalerParams, error) {
	if !s.IsFitted() {
		return ScalerParams{}, errors.NewNotFittedError("StandardScaler", "Params")
	}
	return ScalerParams{
		Mean:      append([]float64(nil), s.Mean...),
		Scale:     append([]float64(nil), s.Scale...),
		NFeatures: s.NFeatures,
		WithMean:  s.WithMean,
		WithStd:   s.WithStd,
	}, nil
}

// Fit は訓練データから統計情報（平均、標準偏差）を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := errors.CheckMatrix("StandardScaler.Fit", X); err != nil {
		return err
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		mean := 0.0
		for i := 0; i < r; i++ {
			mean += X.At(i, j)
		}
		mean /= float64(r)
		if s.WithMean {
			s.Mean[j] = mean
		}

		s.Scale[j] = 1.0
		if !s.WithStd {
			continue
		}

		// 分散は常に列の平均まわりで計算する
		sumSquares := 0.0
		for i := 0; i < r; i++ {
			diff := X.At(i, j) - mean
			sumSquares += diff * diff
		}
		std := math.Sqrt(sumSquares / float64(r))
		if std >= scaleEpsilon {
			s.Scale[j] = std
		}
	}

	s.SetFitted()
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}

	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}

	return result, nil
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}

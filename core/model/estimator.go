// Package model は推定器の共通インターフェースと学習状態、重みのシリアライズ形式を定義する
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor は学習と予測の両方を持つ回帰モデル
type Regressor interface {
	Fitter
	Predictor
}

// Transformer は学習済みパラメータでデータを変換する
type Transformer interface {
	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// FittableTransformer は変換パラメータを学習できる Transformer
type FittableTransformer interface {
	Transformer

	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// BaseEstimator は推定器に埋め込む学習状態。
// 学習後は読み取り専用として扱い、複数ゴルーチンから共有できる。
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}

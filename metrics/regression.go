// Package metrics は回帰モデルの評価指標を提供する
package metrics

import (
	"math"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// checkPair は指標計算に共通する入力検証
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// columnToVec は n×1 行列をVecDenseに変換する
func columnToVec(op string, yTrue, yPred mat.Matrix) (*mat.VecDense, *mat.VecDense, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return nil, nil, errors.NewValueError(op, "empty matrix")
	}
	if rTrue != rPred {
		return nil, nil, errors.NewDimensionError(op, rTrue, rPred, 0)
	}
	if cTrue != 1 || cPred != 1 {
		return nil, nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}

	t := mat.NewVecDense(rTrue, nil)
	p := mat.NewVecDense(rPred, nil)
	for i := 0; i < rTrue; i++ {
		t.SetVec(i, yTrue.At(i, 0))
		p.SetVec(i, yPred.At(i, 0))
	}
	return t, p, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var diff mat.VecDense
	diff.SubVec(yTrue, yPred)
	return mat.Dot(&diff, &diff) / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する。
// yTrue に分散がない場合は ErrNoVariance を返す。扱いは呼び出し側が決める。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		p := yPred.AtVec(i)
		tss += (t - yMean) * (t - yMean)
		rss += (t - p) * (t - p)
	}

	if tss == 0 {
		return 0, errors.Wrap(errors.ErrNoVariance, "R2Score: total sum of squares is zero")
	}

	return 1 - rss/tss, nil
}

// MAPE は平均絶対パーセンテージ誤差を計算する（yTrue が0の要素は除外）
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	valid := 0
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		if t == 0 {
			continue
		}
		sum += math.Abs(t-yPred.AtVec(i)) / math.Abs(t)
		valid++
	}

	if valid == 0 {
		return 0, errors.Newf("MAPE: all yTrue values are zero")
	}
	return sum / float64(valid) * 100, nil
}

// ExplainedVarianceScore は説明分散スコアを計算する
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	trueVals := make([]float64, n)
	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		trueVals[i] = yTrue.AtVec(i)
		residuals[i] = trueVals[i] - yPred.AtVec(i)
	}

	// 母分散で揃える
	_, varTrue := stat.PopMeanVariance(trueVals, nil)
	_, varResidual := stat.PopMeanVariance(residuals, nil)
	if varTrue == 0 {
		return 0, errors.Wrap(errors.ErrNoVariance, "ExplainedVarianceScore")
	}

	return 1 - varResidual/varTrue, nil
}

// MSEMatrix は n×1 行列に対してMSEを計算する
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columnToVec("MSEMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return MSE(t, p)
}

// MAEMatrix は n×1 行列に対してMAEを計算する
func MAEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columnToVec("MAEMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return MAE(t, p)
}

// R2ScoreMatrix は n×1 行列に対してR²を計算する
func R2ScoreMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columnToVec("R2ScoreMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return R2Score(t, p)
}

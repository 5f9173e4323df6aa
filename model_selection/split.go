// Package model_selection はデータ分割のユーティリティを提供する
package model_selection

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// TrainTestSplit は n 行を seed 固定で学習用とテスト用の行番号に分ける。
//
// テスト件数は ceil(testSize*n)。並べ替えた行番号の先頭 nTest 件がテスト、
// 残りが学習用になる。どちらも1件以上でなければエラー。
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int, err error) {
	if n <= 0 {
		return nil, nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if math.IsNaN(testSize) || testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewValidationError("test_size", "must be in the open interval (0, 1)", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, errors.NewValueError("TrainTestSplit",
			"the resulting train or test set would be empty; use more samples or adjust test_size")
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	perm := rng.Perm(n)

	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	return train, test, nil
}

// Subset は idx の行だけを取り出した X と y を返す
func Subset(X mat.Matrix, y mat.Vector, idx []int) (*mat.Dense, *mat.VecDense, error) {
	r, c := X.Dims()
	if y.Len() != r {
		return nil, nil, errors.NewDimensionError("Subset", r, y.Len(), 0)
	}
	if len(idx) == 0 {
		return nil, nil, errors.NewModelError("Subset", "empty index", errors.ErrEmptyData)
	}

	XSub := mat.NewDense(len(idx), c, nil)
	ySub := mat.NewVecDense(len(idx), nil)
	for i, row := range idx {
		if row < 0 || row >= r {
			return nil, nil, errors.NewValueError("Subset", "row index out of range")
		}
		for j := 0; j < c; j++ {
			XSub.Set(i, j, X.At(row, j))
		}
		ySub.SetVec(i, y.AtVec(row))
	}
	return XSub, ySub, nil
}

package linear

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// createBenchmarkData はベンチマーク用のデータを生成する
func createBenchmarkData(rows, cols int) (*mat.Dense, *mat.Dense) {
	// シードを固定して再現性を確保
	rng := rand.New(rand.NewPCG(42, 42))

	// X: rows x cols の行列（ランダムな値を生成）
	X := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			// -1.0 から 1.0 の範囲のランダムな値
			X.Set(i, j, rng.Float64()*2.0-1.0)
		}
	}

	// 真の重みベクトルを生成
	trueWeights := make([]float64, cols)
	for j := 0; j < cols; j++ {
		trueWeights[j] = float64(j+1) * 0.5
	}

	// y: rows x 1 の列ベクトル（y = X * weights + 小さなノイズ）
	y := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		sum := 1.0 // 切片
		for j := 0; j < cols; j++ {
			sum += X.At(i, j) * trueWeights[j]
		}
		// 小さなノイズを追加
		sum += (rng.Float64() - 0.5) * 0.1
		y.Set(i, 0, sum)
	}

	return X, y
}

// BenchmarkLinearRegressionFit はFitメソッドのベンチマークを実行する
func BenchmarkLinearRegressionFit(b *testing.B) {
	// 様々なサイズでベンチマークを実行
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Listings_1000x6", 1000, 6}, // 並列処理の閾値
		{"Listings_5000x6", 5000, 6},
		{"Listings_13000x6", 13000, 6},
		{"Wide_10000x20", 10000, 20},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			X, y := createBenchmarkData(size.rows, size.cols)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				lr := NewLinearRegression()
				if err := lr.Fit(X, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkLinearRegressionFitSequential は並列化を無効にした場合との比較用
func BenchmarkLinearRegressionFitSequential(b *testing.B) {
	X, y := createBenchmarkData(10000, 6)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lr := NewLinearRegression(WithParallelThreshold(1 << 30))
		if err := lr.Fit(X, y); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLinearRegressionPredictSingleRow は推論時の1行予測のベンチマーク
func BenchmarkLinearRegressionPredictSingleRow(b *testing.B) {
	X, y := createBenchmarkData(1000, 6)
	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		b.Fatal(err)
	}
	row := mat.NewDense(1, 6, []float64{0.1, -0.2, 0.3, 0.0, 0.5, 0.0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := lr.Predict(row); err != nil {
			b.Fatal(err)
		}
	}
}

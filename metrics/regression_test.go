package metrics

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func vec(vals ...float64) *mat.VecDense {
	return mat.NewVecDense(len(vals), vals)
}

func TestVectorMetrics(t *testing.T) {
	type metricFunc func(yTrue, yPred *mat.VecDense) (float64, error)

	tests := []struct {
		name    string
		fn      metricFunc
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{"MSE perfect", MSE, vec(1, 2, 3, 4, 5), vec(1, 2, 3, 4, 5), 0, false},
		{"MSE simple", MSE, vec(1, 2, 3, 4), vec(1.5, 2.5, 2.5, 3.5), 0.25, false},
		{"MSE larger errors", MSE, vec(10, 20, 30), vec(12, 18, 33), 17.0 / 3.0, false},
		{"MSE dimension mismatch", MSE, vec(1, 2, 3), vec(1, 2), 0, true},
		{"MSE empty", MSE, &mat.VecDense{}, &mat.VecDense{}, 0, true},

		{"RMSE unit offset", RMSE, vec(0, 0, 0, 0), vec(1, 1, 1, 1), 1, false},
		{"RMSE dimension mismatch", RMSE, vec(1, 2, 3), vec(1, 2), 0, true},

		{"MAE simple", MAE, vec(1, 2, 3, 4), vec(1.5, 2.5, 2.5, 3.5), 0.5, false},
		{"MAE negative differences", MAE, vec(1, 2, 3, 4), vec(2, 1, 4, 3), 1, false},
		{"MAE dimension mismatch", MAE, vec(1, 2, 3), vec(1, 2), 0, true},

		{"R2 perfect", R2Score, vec(1, 2, 3, 4, 5), vec(1, 2, 3, 4, 5), 1, false},
		{"R2 worse than mean", R2Score, vec(1, 2, 3, 4), vec(4, 3, 2, 1), -3, false},
		{"R2 no variance", R2Score, vec(3, 3, 3), vec(2, 3, 4), 0, true},

		{"MAPE skips zeros", MAPE, vec(0, 100, 200), vec(5, 110, 180), 10, false},
		{"MAPE all zeros", MAPE, vec(0, 0), vec(1, 1), 0, true},

		{"explained variance constant bias", ExplainedVarianceScore, vec(1, 2, 3, 4), vec(2, 3, 4, 5), 1, false},
		{"explained variance no variance", ExplainedVarianceScore, vec(2, 2), vec(1, 3), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestR2ScoreNoVarianceSentinel(t *testing.T) {
	_, err := R2Score(vec(150, 150, 150), vec(150, 150, 150))
	if !errors.Is(err, errors.ErrNoVariance) {
		t.Errorf("expected ErrNoVariance, got %v", err)
	}
}

func TestMatrixMetrics(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	yPred := mat.NewDense(4, 1, []float64{1.5, 2.5, 2.5, 3.5})

	mse, err := MSEMatrix(yTrue, yPred)
	if err != nil || math.Abs(mse-0.25) > 1e-10 {
		t.Errorf("MSEMatrix = %v, %v", mse, err)
	}
	mae, err := MAEMatrix(yTrue, yPred)
	if err != nil || math.Abs(mae-0.5) > 1e-10 {
		t.Errorf("MAEMatrix = %v, %v", mae, err)
	}
	r2, err := R2ScoreMatrix(yTrue, yTrue)
	if err != nil || r2 != 1 {
		t.Errorf("R2ScoreMatrix = %v, %v", r2, err)
	}

	wide := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if _, err := MSEMatrix(wide, wide); err == nil {
		t.Error("multiple columns should error")
	}
	if _, err := MAEMatrix(yTrue, mat.NewDense(3, 1, nil)); err == nil {
		t.Error("row mismatch should error")
	}
}

func BenchmarkMSE(b *testing.B) {
	size := 10000
	yTrue := mat.NewVecDense(size, nil)
	yPred := mat.NewVecDense(size, nil)
	for i := 0; i < size; i++ {
		yTrue.SetVec(i, float64(i))
		yPred.SetVec(i, float64(i)+0.1*float64(i%10))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MSE(yTrue, yPred)
	}
}

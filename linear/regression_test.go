package linear

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func TestLinearRegressionRecoversExactLine(t *testing.T) {
	// y = 2*x1 - 3*x2 + 5
	X := mat.NewDense(5, 2, []float64{
		1, 0,
		2, 1,
		3, 1,
		4, 3,
		5, 2,
	})
	y := mat.NewDense(5, 1, nil)
	for i := 0; i < 5; i++ {
		y.Set(i, 0, 2*X.At(i, 0)-3*X.At(i, 1)+5)
	}

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	w := lr.GetWeights()
	if math.Abs(w[0]-2) > 1e-8 || math.Abs(w[1]+3) > 1e-8 {
		t.Errorf("weights = %v, want [2 -3]", w)
	}
	if math.Abs(lr.GetIntercept()-5) > 1e-8 {
		t.Errorf("intercept = %v, want 5", lr.GetIntercept())
	}
	if lr.Regularized() {
		t.Error("well-conditioned fit should not need regularization")
	}

	pred, err := lr.Predict(mat.NewDense(1, 2, []float64{10, 10}))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if math.Abs(pred.At(0, 0)-(-5)) > 1e-6 {
		t.Errorf("prediction = %v, want -5", pred.At(0, 0))
	}
}

func TestLinearRegressionConstantColumnFallsBackToRidge(t *testing.T) {
	// 第2列はすべて0（標準化後の単一ロケーション列と同じ）
	X := mat.NewDense(4, 2, []float64{
		1, 0,
		2, 0,
		3, 0,
		4, 0,
	})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !lr.Regularized() {
		t.Error("expected ridge fallback for singular normal matrix")
	}

	w := lr.GetWeights()
	if math.Abs(w[0]-2) > 1e-6 || math.Abs(w[1]) > 1e-6 {
		t.Errorf("weights = %v, want [2 0]", w)
	}
	if math.Abs(lr.GetIntercept()-1) > 1e-6 {
		t.Errorf("intercept = %v, want 1", lr.GetIntercept())
	}
}

func TestLinearRegressionWithRidge(t *testing.T) {
	singular := mat.NewDense(4, 2, []float64{
		1, 0,
		2, 0,
		3, 0,
		4, 0,
	})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	// (X^T X + I) w = X^T y を解くと切片 0.8, 傾き 2
	lr := NewLinearRegression(WithRidge(1))
	if err := lr.Fit(singular, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !lr.Regularized() {
		t.Fatal("expected ridge fallback")
	}
	if math.Abs(lr.GetIntercept()-0.8) > 1e-9 || math.Abs(lr.GetWeights()[0]-2) > 1e-9 {
		t.Errorf("intercept = %v, weights = %v; want 0.8, [2 0]", lr.GetIntercept(), lr.GetWeights())
	}

	// 正則な場合はリッジ項を使わない
	full := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	lr = NewLinearRegression(WithRidge(1))
	if err := lr.Fit(full, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if lr.Regularized() || math.Abs(lr.GetIntercept()-1) > 1e-9 {
		t.Errorf("ridge applied to a non-singular fit: intercept = %v", lr.GetIntercept())
	}
}

func TestLinearRegressionErrors(t *testing.T) {
	lr := NewLinearRegression()

	if _, err := lr.Predict(mat.NewDense(1, 2, nil)); err == nil {
		t.Error("Predict before Fit should fail")
	}

	tests := []struct {
		name string
		X    mat.Matrix
		y    mat.Matrix
	}{
		{"row mismatch", mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(2, 1, []float64{1, 2})},
		{"y not a column", mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(2, 2, []float64{1, 2, 3, 4})},
		{"NaN in X", mat.NewDense(2, 1, []float64{1, math.NaN()}), mat.NewDense(2, 1, []float64{1, 2})},
		{"Inf in y", mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(2, 1, []float64{1, math.Inf(1)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewLinearRegression().Fit(tt.X, tt.y); err == nil {
				t.Error("expected error")
			}
		})
	}

	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{2, 4, 6})
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	_, err := lr.Predict(mat.NewDense(1, 2, nil))
	var de *errors.DimensionError
	if !errors.As(err, &de) {
		t.Errorf("expected DimensionError, got %v", err)
	}
}

func TestLinearRegressionWeightsRoundTrip(t *testing.T) {
	X, y := createBenchmarkData(200, 3)
	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if _, err := lr.ExportWeights([]string{"a"}); err == nil {
		t.Error("feature count mismatch should fail")
	}

	mw, err := lr.ExportWeights([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("ExportWeights failed: %v", err)
	}
	data, err := mw.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	restored := NewLinearRegression()
	decoded := *mw
	if err := decoded.FromJSON(data); err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if err := restored.ImportWeights(&decoded); err != nil {
		t.Fatalf("ImportWeights failed: %v", err)
	}

	want, _ := lr.Predict(X)
	got, err := restored.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if !mat.Equal(want, got) {
		t.Error("restored model predictions differ")
	}

	decoded.ModelType = "Ridge"
	if err := NewLinearRegression().ImportWeights(&decoded); err == nil {
		t.Error("wrong model type should fail")
	}
}

func TestLinearRegressionWithoutIntercept(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{3, 6, 9})

	lr := NewLinearRegression(WithFitIntercept(false))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if lr.GetIntercept() != 0 || math.Abs(lr.GetWeights()[0]-3) > 1e-10 {
		t.Errorf("got w=%v b=%v, want w=[3] b=0", lr.GetWeights(), lr.GetIntercept())
	}
}

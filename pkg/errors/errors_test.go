package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "houseprice: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "houseprice: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 6, 5, 1)

	want := "houseprice: Predict: dimension mismatch on axis 1 (features). Expected 6, got 5"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("LinearRegression", "Predict")

	want := "houseprice: LinearRegression: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewDataError(t *testing.T) {
	err := NewDataError(17, "total_sqft", "34.46Sq. Meter", "unparsable area")

	want := `houseprice: row 17: column "total_sqft": unparsable area (got: "34.46Sq. Meter")`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dataErr *DataError
	if !As(err, &dataErr) {
		t.Fatal("Error should be castable to *DataError")
	}
	if dataErr.Row != 17 || dataErr.Column != "total_sqft" {
		t.Errorf("unexpected fields: %+v", dataErr)
	}
}

func TestNewArtifactMissingError(t *testing.T) {
	missing := []string{"model", "scaler"}
	err := NewArtifactMissingError("artifacts", missing)
	missing[0] = "mutated"

	msg := err.Error()
	for _, want := range []string{"artifacts", "model, scaler", "run training first"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}

	var missingErr *ArtifactMissingError
	if !As(err, &missingErr) {
		t.Fatal("Error should be castable to *ArtifactMissingError")
	}
	if missingErr.Missing[0] != "model" {
		t.Error("Missing should be copied from the caller slice")
	}
}

func TestNewFeatureMismatchError(t *testing.T) {
	tests := []struct {
		name       string
		missing    []string
		unexpected []string
		wantMsg    string
	}{
		{
			name:    "missing only",
			missing: []string{"sqft"},
			wantMsg: "houseprice: Predict: missing required features: [sqft]",
		},
		{
			name:       "unexpected only",
			unexpected: []string{"zeta", "alpha"},
			wantMsg:    "houseprice: Predict: unexpected features: [alpha, zeta]",
		},
		{
			name:       "both",
			missing:    []string{"bath"},
			unexpected: []string{"baths"},
			wantMsg:    "houseprice: Predict: missing required features: [bath]; unexpected features: [baths]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFeatureMismatchError("Predict", tt.missing, tt.unexpected)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}
			var mismatch *FeatureMismatchError
			if !As(err, &mismatch) {
				t.Error("Error should be castable to *FeatureMismatchError")
			}
		})
	}
}

func TestNewComputationError(t *testing.T) {
	cause := NewDimensionError("StandardScaler.Transform", 6, 5, 1)
	err := NewComputationError("scale", cause)

	if !strings.Contains(err.Error(), "computation failed during scale") {
		t.Errorf("Error() = %v", err.Error())
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("ComputationError should unwrap to its cause")
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrSingularMatrix, "in LinearRegression.Fit")

	if !Is(wrapped, ErrSingularMatrix) {
		t.Error("Expected Is(wrapped, ErrSingularMatrix) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in LinearRegression.Fit") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Predict", 10, 5)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	expectedMsg := "in Predict: expected 10, got 5"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

func TestWarnRouting(t *testing.T) {
	var got []error
	SetZerologWarnFunc(func(w error) { got = append(got, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewUndefinedMetricWarning("r2", "constant target", 0))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	want := "'r2' is ill-defined and being set to 0.000000 due to constant target."
	if got[0].Error() != want {
		t.Errorf("warning = %q, want %q", got[0].Error(), want)
	}
}

func TestCheckMatrix(t *testing.T) {
	clean := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := CheckMatrix("features", clean); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dirty := mat.NewDense(3, 2, []float64{1, 2, 3, 4, math.NaN(), 6})
	err := CheckMatrix("features", dirty)
	var instab *NumericalInstabilityError
	if !As(err, &instab) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if instab.Iteration != 2 {
		t.Errorf("expected row 2, got %d", instab.Iteration)
	}

	if err := CheckScalar("predict", math.Inf(1), 0); err == nil {
		t.Error("expected error for +Inf")
	}
}

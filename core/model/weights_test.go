package model

import (
	"strings"
	"testing"
)

func TestModelWeightsValidate(t *testing.T) {
	valid := func() *ModelWeights {
		return &ModelWeights{
			ModelType:    "LinearRegression",
			Version:      WeightsFormatVersion,
			Coefficients: []float64{1, 2},
			Features:     []string{"bhk", "bath"},
			IsFitted:     true,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ModelWeights)
		wantErr string
	}{
		{"valid", func(*ModelWeights) {}, ""},
		{"missing type", func(mw *ModelWeights) { mw.ModelType = "" }, "model_type"},
		{"wrong version", func(mw *ModelWeights) { mw.Version = "0.1" }, "unsupported weights version"},
		{"not fitted", func(mw *ModelWeights) { mw.IsFitted = false }, "unfitted"},
		{"no coefficients", func(mw *ModelWeights) { mw.Coefficients = nil; mw.Features = nil }, "coefficients"},
		{"length mismatch", func(mw *ModelWeights) { mw.Features = []string{"bhk"} }, "differ in length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := valid()
			tt.mutate(mw)
			err := mw.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestModelWeightsJSON(t *testing.T) {
	mw := &ModelWeights{
		ModelType:    "LinearRegression",
		Version:      WeightsFormatVersion,
		Coefficients: []float64{0.5, -1.25},
		Intercept:    150,
		Features:     []string{"bhk", "bath"},
		IsFitted:     true,
	}

	data, err := mw.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !strings.Contains(string(data), `"model_type": "LinearRegression"`) {
		t.Errorf("unexpected JSON: %s", data)
	}

	var got ModelWeights
	if err := got.FromJSON(data); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Intercept != 150 || got.Coefficients[1] != -1.25 || got.Features[0] != "bhk" {
		t.Errorf("decoded weights differ: %+v", got)
	}
}

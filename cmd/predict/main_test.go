package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/houseprice/artifacts"
	"github.com/YuminosukeSato/houseprice/config"
	"github.com/YuminosukeSato/houseprice/housing"
	"github.com/YuminosukeSato/houseprice/inference"
	"github.com/YuminosukeSato/houseprice/linear"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/preprocessing"
	"gonum.org/v1/gonum/mat"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvArtifactsDir, config.EnvLogLevel, config.EnvTestSize, config.EnvSeed, config.EnvPlotPath} {
		t.Setenv(key, "")
	}
}

func saveBundle(t *testing.T) string {
	t.Helper()
	X := mat.NewDense(8, 6, []float64{
		2, 1056, 2, 12.91, 77.61, 1,
		4, 2600, 5, 12.99, 77.52, 0,
		3, 1440, 2, 12.87, 77.70, 2,
		3, 1521, 3, 13.05, 77.58, 1,
		2, 1200, 2, 12.95, 77.49, 0,
		2, 1170, 2, 12.98, 77.66, 2,
		4, 2732, 4, 12.82, 77.55, 1,
		3, 2475, 4, 13.10, 77.60, 0,
	})
	y := mat.NewDense(8, 1, []float64{39.07, 120, 62, 95, 51, 38, 204, 186})

	scaler := preprocessing.NewStandardScalerDefault()
	Xs, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}
	lr := linear.NewLinearRegression()
	if err := lr.Fit(Xs, y); err != nil {
		t.Fatal(err)
	}
	enc := preprocessing.NewLabelEncoder()
	if err := enc.Fit([]string{"Hebbal", "Unknown", "Whitefield"}); err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), "artifacts")
	b := &artifacts.Bundle{Model: lr, Scaler: scaler, Encoder: enc, FeatureNames: housing.CanonicalFeatures}
	if err := artifacts.Save(artifacts.NewFileStore(dir), b); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRunMissingArtifacts(t *testing.T) {
	clearEnv(t)
	var out bytes.Buffer
	err := run([]string{"-artifacts", t.TempDir(), "-bhk", "3", "-sqft", "1200", "-bath", "2", "-lat", "12.9", "-lng", "77.5"},
		strings.NewReader(""), &out)

	var am *errors.ArtifactMissingError
	if !errors.As(err, &am) {
		t.Fatalf("expected ArtifactMissingError, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be written on failure, got %q", out.String())
	}
}

func TestRunFromJSON(t *testing.T) {
	clearEnv(t)
	dir := saveBundle(t)

	var out bytes.Buffer
	in := `{"bhk": 3, "sqft": 1200, "bath": 2, "lat": 12.97, "lng": 77.59}`
	if err := run([]string{"-artifacts", dir, "-json"}, strings.NewReader(in), &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var got inference.Prediction
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not a prediction: %q", out.String())
	}
	want := inference.FeaturesUsed{BHK: 3, TotalSqft: 1200, Bath: 2, Lat: 12.97, Lng: 77.59}
	if got.FeaturesUsed != want {
		t.Errorf("features_used = %+v, want %+v", got.FeaturesUsed, want)
	}

	direct, err := inference.Predict(dir, map[string]float64{"bhk": 3, "sqft": 1200, "bath": 2, "lat": 12.97, "lng": 77.59})
	if err != nil {
		t.Fatal(err)
	}
	if got.PriceCrore != direct.PriceCrore {
		t.Errorf("price_crore = %v, want %v", got.PriceCrore, direct.PriceCrore)
	}
}

func TestRunMissingFlag(t *testing.T) {
	clearEnv(t)
	dir := saveBundle(t)

	var out bytes.Buffer
	err := run([]string{"-artifacts", dir, "-bhk", "3", "-sqft", "1200", "-bath", "2", "-lat", "12.9"},
		strings.NewReader(""), &out)

	var fm *errors.FeatureMismatchError
	if !errors.As(err, &fm) {
		t.Fatalf("expected FeatureMismatchError, got %v", err)
	}
	if strings.Join(fm.Missing, ",") != "lng" {
		t.Errorf("missing = %v", fm.Missing)
	}
}

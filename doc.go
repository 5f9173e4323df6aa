// Package houseprice trains and serves a house-price model for Bangalore
// listings.
//
// The training pipeline reads a raw listings CSV, cleans it, derives the
// feature vector, removes price outliers, fits a linear regression on
// standardized features and persists the fitted parameters. The inference
// side reloads those artifacts and predicts a price in crores for a single
// listing.
//
// # Quick Start
//
// Train from the command line:
//
//	go run ./cmd/train -data Data/household.csv -artifacts artifacts -plot eval.png
//
// Predict from Go:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/houseprice/inference"
//	)
//
//	func main() {
//	    p, err := inference.Open("artifacts")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    out, err := p.Predict(map[string]float64{
//	        "bhk": 3, "sqft": 1200, "bath": 2, "lat": 12.97, "lng": 77.59,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("price (crore):", out.PriceCrore)
//	}
//
// # Packages
//
//   - housing: CSV loading, cleaning, feature schema and outlier removal
//   - preprocessing: StandardScaler, LabelEncoder
//   - model_selection: seeded train/test split
//   - linear: LinearRegression (normal equation with ridge fallback)
//   - metrics: Evaluation metrics (MAE, MSE, RMSE, R²)
//   - training: the end-to-end training pipeline and evaluation plot
//   - artifacts: persistence of the model, scaler, encoder and feature names
//   - inference: the predictor used by cmd/predict and cmd/server
//   - server: HTTP handlers for /health and /api/predict
//   - core/model: Core interfaces and base types
//   - core/parallel: Parallel processing utilities
//
// # Performance
//
// Design-matrix construction and prediction are parallelized across CPU
// cores for inputs above 1000 rows.
package houseprice

package server

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/houseprice/inference"
)

// 入力値の許容範囲
const (
	MinBHK  = 1
	MaxBHK  = 10
	MinSqft = 100.0
	MaxSqft = 10000.0
	MinBath = 1
	MaxBath = 10
	MinLat  = 10.0
	MaxLat  = 15.0
	MinLng  = 75.0
	MaxLng  = 80.0
)

const (
	msgNotJSON      = "Request body must be JSON"
	msgInvalidTypes = "Invalid field types. BHK and bath must be integers, sqft/lat/lng must be numbers"
	msgBHKRange     = "BHK must be between 1 and 10"
	msgSqftRange    = "Square feet must be between 100 and 10000"
	msgBathRange    = "Bathrooms must be between 1 and 10"
	msgCoordRange   = "Coordinates must be within Bangalore region"
)

// requestError はクライアントに 400 で返す検証エラー
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

// PredictRequest は検証済みの予測リクエスト
type PredictRequest struct {
	BHK  int
	Sqft float64
	Bath int
	Lat  float64
	Lng  float64
}

// Features は inference.Predictor に渡す入力に変換する
func (r PredictRequest) Features() map[string]float64 {
	return map[string]float64{
		inference.InputBHK:  float64(r.BHK),
		inference.InputSqft: r.Sqft,
		inference.InputBath: float64(r.Bath),
		inference.InputLat:  r.Lat,
		inference.InputLng:  r.Lng,
	}
}

// ParsePredictRequest は JSON ボディを検証して PredictRequest を返す。
// 値は JSON の数値か数値を表す文字列を受け付ける。
func ParsePredictRequest(body []byte) (PredictRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return PredictRequest{}, &requestError{msgNotJSON}
	}

	var missing []string
	for _, key := range inference.RequiredInputs {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return PredictRequest{}, &requestError{fmt.Sprintf("Missing required fields: [%s]", strings.Join(missing, ", "))}
	}

	values := make(map[string]float64, len(inference.RequiredInputs))
	for _, key := range inference.RequiredInputs {
		v, ok := number(raw[key])
		if !ok {
			return PredictRequest{}, &requestError{msgInvalidTypes}
		}
		values[key] = v
	}

	bhk, bath := values[inference.InputBHK], values[inference.InputBath]
	if bhk != math.Trunc(bhk) || bath != math.Trunc(bath) {
		return PredictRequest{}, &requestError{msgInvalidTypes}
	}

	req := PredictRequest{
		BHK:  int(bhk),
		Sqft: values[inference.InputSqft],
		Bath: int(bath),
		Lat:  values[inference.InputLat],
		Lng:  values[inference.InputLng],
	}
	return req, req.validate()
}

func (r PredictRequest) validate() error {
	switch {
	case r.BHK < MinBHK || r.BHK > MaxBHK:
		return &requestError{msgBHKRange}
	case r.Sqft < MinSqft || r.Sqft > MaxSqft:
		return &requestError{msgSqftRange}
	case r.Bath < MinBath || r.Bath > MaxBath:
		return &requestError{msgBathRange}
	case r.Lat < MinLat || r.Lat > MaxLat || r.Lng < MinLng || r.Lng > MaxLng:
		return &requestError{msgCoordRange}
	}
	return nil
}

// number は JSON の数値か数値文字列を有限の float64 として読む
func number(raw json.RawMessage) (float64, bool) {
	if strings.TrimSpace(string(raw)) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

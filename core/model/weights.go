package model

import (
	"encoding/json"
	"fmt"
)

// WeightsFormatVersion は ModelWeights の形式バージョン
const WeightsFormatVersion = "1.0"

// ModelWeights は線形モデルの重みを表す構造体（アーティファクト保存用）
type ModelWeights struct {
	// ModelType はモデルの種類（LinearRegression）
	ModelType string `json:"model_type"`

	// Version は形式のバージョン（互換性チェック用）
	Version string `json:"version"`

	// Coefficients は特徴量ごとの重み係数
	Coefficients []float64 `json:"coefficients"`

	// Intercept は切片
	Intercept float64 `json:"intercept"`

	// Features は係数に対応する特徴量名（学習時の列順）
	Features []string `json:"features,omitempty"`

	// Metadata は学習時の統計などの追加情報
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	return json.Unmarshal(data, mw)
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return fmt.Errorf("model_type is required")
	}

	if mw.Version != WeightsFormatVersion {
		return fmt.Errorf("unsupported weights version %q (want %q)", mw.Version, WeightsFormatVersion)
	}

	if !mw.IsFitted {
		return fmt.Errorf("weights of an unfitted model cannot be used")
	}

	if len(mw.Coefficients) == 0 {
		return fmt.Errorf("fitted model must have coefficients")
	}

	if len(mw.Features) > 0 && len(mw.Features) != len(mw.Coefficients) {
		return fmt.Errorf("features (%d) and coefficients (%d) differ in length",
			len(mw.Features), len(mw.Coefficients))
	}

	return nil
}

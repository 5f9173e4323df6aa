// Package inference は保存済みの成果物を読み込み、1件の入力から価格を予測する。
package inference

import (
	"context"
	"math"

	"github.com/YuminosukeSato/houseprice/artifacts"
	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/housing"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// DefaultLocationCode は推論時に location_encoded へ常に入れる値。
// 保存済みのロケーションエンコーダは読み込むが参照しない。
const DefaultLocationCode = 0

// LakhsPerCrore は1クロールあたりのラク数
const LakhsPerCrore = 100

// Predict が受け付ける入力キー
const (
	InputBHK  = "bhk"
	InputSqft = "sqft"
	InputBath = "bath"
	InputLat  = "lat"
	InputLng  = "lng"
)

// RequiredInputs は Predict に必須のキー
var RequiredInputs = []string{InputBHK, InputSqft, InputBath, InputLat, InputLng}

// featureInput は特徴量名から入力キーへの対応
var featureInput = map[string]string{
	housing.FeatureBHK:       InputBHK,
	housing.FeatureTotalSqft: InputSqft,
	housing.FeatureBath:      InputBath,
	housing.FeatureLat:       InputLat,
	housing.FeatureLng:       InputLng,
}

// FeaturesUsed は予測に使った入力値。location_encoded は含めない。
type FeaturesUsed struct {
	BHK       float64 `json:"bhk"`
	TotalSqft float64 `json:"total_sqft"`
	Bath      float64 `json:"bath"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// Prediction は1件の予測結果
type Prediction struct {
	PriceCrore   float64      `json:"price_crore"`
	FeaturesUsed FeaturesUsed `json:"features_used"`
}

// Predictor は作成後に変更されないため、複数ゴルーチンから同時に使える
type Predictor struct {
	schema  *housing.FeatureSchema
	scaler  model.Transformer
	model   model.Predictor
	encoder *preprocessing.LabelEncoder
	logger  log.Logger
}

// New は読み込み済みのバンドルから Predictor を作成する。
// feature_names は学習時の特徴量集合の並べ替えでなければならない。
func New(b *artifacts.Bundle) (*Predictor, error) {
	if b == nil || b.Model == nil || b.Scaler == nil {
		return nil, errors.NewValueError("inference.New", "bundle is incomplete")
	}
	schema, err := housing.NewFeatureSchema(b.FeatureNames)
	if err != nil {
		return nil, errors.Wrap(err, "stored feature_names do not match the expected features")
	}
	p := newPredictor(schema, b.Scaler, b.Model)
	p.encoder = b.Encoder
	return p, nil
}

func newPredictor(schema *housing.FeatureSchema, scaler model.Transformer, m model.Predictor) *Predictor {
	return &Predictor{
		schema: schema,
		scaler: scaler,
		model:  m,
		logger: log.GetLoggerWithName("inference").With(log.PhaseKey, log.PhaseInference),
	}
}

// Open は dir の成果物を読み込んで Predictor を作成する
func Open(dir string) (*Predictor, error) {
	b, err := artifacts.Load(artifacts.NewFileStore(dir))
	if err != nil {
		return nil, err
	}
	return New(b)
}

// FeatureNames は保存済みモデルの列順を返す
func (p *Predictor) FeatureNames() []string {
	return p.schema.Names()
}

// LocationClasses は学習時のロケーション一覧を返す
func (p *Predictor) LocationClasses() []string {
	if p.encoder == nil {
		return nil
	}
	return p.encoder.Classes()
}

// Predict は1件の物件価格をクロール単位で返す。
// 必須キーの欠落は計算前に FeatureMismatchError として返し、余分なキーは無視する。
func (p *Predictor) Predict(features map[string]float64) (out *Prediction, err error) {
	defer errors.Recover(&err, "Predictor.Predict")

	var missing []string
	for _, key := range RequiredInputs {
		if _, ok := features[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewFeatureMismatchError("Predict", missing, nil)
	}

	row := mat.NewDense(1, p.schema.Len(), nil)
	for j, name := range p.schema.Names() {
		if name == housing.FeatureLocationEncoded {
			row.Set(0, j, DefaultLocationCode)
			continue
		}
		row.Set(0, j, features[featureInput[name]])
	}

	scaled, err := p.scaler.Transform(row)
	if err != nil {
		return nil, errors.NewComputationError("scale", err)
	}
	pred, err := p.model.Predict(scaled)
	if err != nil {
		return nil, errors.NewComputationError("predict", err)
	}
	if r, c := pred.Dims(); r != 1 || c != 1 {
		return nil, errors.NewComputationError("predict", errors.NewDimensionError("Predictor.Predict", 1, r*c, 0))
	}

	lakhs := pred.At(0, 0)
	if err := errors.CheckScalar("Predictor.Predict", lakhs, 0); err != nil {
		return nil, errors.NewComputationError("predict", err)
	}

	out = &Prediction{
		PriceCrore: ToCrore(lakhs),
		FeaturesUsed: FeaturesUsed{
			BHK:       features[InputBHK],
			TotalSqft: features[InputSqft],
			Bath:      features[InputBath],
			Lat:       features[InputLat],
			Lng:       features[InputLng],
		},
	}

	if p.logger.Enabled(context.Background(), log.LevelDebug) {
		p.logger.Debug("prediction",
			log.OperationKey, log.OperationPredict,
			log.PriceCroreKey, out.PriceCrore,
		)
	}
	return out, nil
}

// ToCrore はラクをクロールに変換し小数第2位に丸める
func ToCrore(lakhs float64) float64 {
	return math.Round(lakhs/LakhsPerCrore*100) / 100
}

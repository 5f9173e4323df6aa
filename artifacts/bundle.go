package artifacts

import (
	"encoding/json"
	"time"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/linear"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/preprocessing"
)

// Artifact keys. Each is stored as an independent blob.
const (
	KeyModel           = "model"
	KeyScaler          = "scaler"
	KeyLocationEncoder = "location_encoder"
	KeyFeatureNames    = "feature_names"
)

// Keys lists every artifact a usable bundle needs.
var Keys = []string{KeyModel, KeyScaler, KeyLocationEncoder, KeyFeatureNames}

// Bundle is the trained predictor: immutable once loaded.
type Bundle struct {
	Model        *linear.LinearRegression
	Scaler       *preprocessing.StandardScaler
	Encoder      *preprocessing.LabelEncoder
	FeatureNames []string
}

type encoderBlob struct {
	Classes []string `json:"classes"`
}

func (b *Bundle) validate(op string) error {
	if b == nil || b.Model == nil || b.Scaler == nil || b.Encoder == nil {
		return errors.NewValueError(op, "bundle is incomplete")
	}
	if !b.Model.IsFitted() {
		return errors.NewNotFittedError("LinearRegression", op)
	}
	if !b.Scaler.IsFitted() {
		return errors.NewNotFittedError("StandardScaler", op)
	}
	if !b.Encoder.IsFitted() {
		return errors.NewNotFittedError("LabelEncoder", op)
	}
	n := len(b.FeatureNames)
	if n == 0 {
		return errors.NewValueError(op, "feature_names is empty")
	}
	if b.Model.NFeatures != n {
		return errors.NewDimensionError(op+"(model)", n, b.Model.NFeatures, 1)
	}
	if b.Scaler.NFeatures != n {
		return errors.NewDimensionError(op+"(scaler)", n, b.Scaler.NFeatures, 1)
	}
	return nil
}

// Save encodes all four artifacts and writes them to store. Encoding happens
// before the first write, so an invalid bundle leaves the store untouched.
func Save(store Store, b *Bundle) error {
	if err := b.validate("artifacts.Save"); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("artifacts").With(log.ArtifactDirKey, store.Location())

	weights, err := b.Model.ExportWeights(b.FeatureNames)
	if err != nil {
		return err
	}
	weights.Metadata["saved_at"] = time.Now().UTC().Format(time.RFC3339)
	modelBlob, err := weights.ToJSON()
	if err != nil {
		return errors.Wrap(err, "failed to encode model")
	}

	params, err := b.Scaler.Params()
	if err != nil {
		return err
	}
	scalerBlob, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode scaler")
	}

	encBlob, err := json.MarshalIndent(encoderBlob{Classes: b.Encoder.Classes()}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode location encoder")
	}

	namesBlob, err := json.MarshalIndent(b.FeatureNames, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode feature names")
	}

	blobs := []struct {
		key  string
		data []byte
	}{
		{KeyModel, modelBlob},
		{KeyScaler, scalerBlob},
		{KeyLocationEncoder, encBlob},
		{KeyFeatureNames, namesBlob},
	}
	for _, blob := range blobs {
		if err := store.Put(blob.key, blob.data); err != nil {
			return err
		}
		logger.Info("artifact saved", log.ArtifactKey, blob.key, "bytes", len(blob.data))
	}
	return nil
}

// Missing returns the keys absent from store, in Keys order.
func Missing(store Store) ([]string, error) {
	var missing []string
	for _, key := range Keys {
		ok, err := store.Exists(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, key)
		}
	}
	return missing, nil
}

// Load restores a bundle. Presence of all four artifacts is checked before
// anything is decoded; a partial bundle is reported as ArtifactMissingError.
func Load(store Store) (*Bundle, error) {
	missing, err := Missing(store)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, errors.NewArtifactMissingError(store.Location(), missing)
	}

	b := &Bundle{}

	raw, err := store.Get(KeyFeatureNames)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &b.FeatureNames); err != nil {
		return nil, errors.Wrap(err, "failed to decode feature_names")
	}

	raw, err = store.Get(KeyModel)
	if err != nil {
		return nil, err
	}
	var weights model.ModelWeights
	if err := weights.FromJSON(raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode model")
	}
	b.Model = linear.NewLinearRegression()
	if err := b.Model.ImportWeights(&weights); err != nil {
		return nil, err
	}

	raw, err = store.Get(KeyScaler)
	if err != nil {
		return nil, err
	}
	var params preprocessing.ScalerParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, errors.Wrap(err, "failed to decode scaler")
	}
	if b.Scaler, err = preprocessing.NewStandardScalerFromParams(params); err != nil {
		return nil, err
	}

	raw, err = store.Get(KeyLocationEncoder)
	if err != nil {
		return nil, err
	}
	var enc encoderBlob
	if err := json.Unmarshal(raw, &enc); err != nil {
		return nil, errors.Wrap(err, "failed to decode location_encoder")
	}
	if b.Encoder, err = preprocessing.NewLabelEncoderFromClasses(enc.Classes); err != nil {
		return nil, err
	}

	if err := b.validate("artifacts.Load"); err != nil {
		return nil, err
	}
	if len(weights.Features) > 0 {
		for i, name := range weights.Features {
			if name != b.FeatureNames[i] {
				return nil, errors.NewValueError("artifacts.Load",
					"model feature order does not match feature_names")
			}
		}
	}

	log.GetLoggerWithName("artifacts").Debug("bundle loaded",
		log.ArtifactDirKey, store.Location(),
		log.FeaturesKey, len(b.FeatureNames),
	)
	return b, nil
}

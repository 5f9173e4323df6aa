package housing

import (
	"sort"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// 特徴量名
const (
	FeatureBHK             = "bhk"
	FeatureTotalSqft       = "total_sqft"
	FeatureBath            = "bath"
	FeatureLat             = "lat"
	FeatureLng             = "lng"
	FeatureLocationEncoded = "location_encoded"
)

// CanonicalFeatures は学習時の特徴量の列順
var CanonicalFeatures = []string{
	FeatureBHK,
	FeatureTotalSqft,
	FeatureBath,
	FeatureLat,
	FeatureLng,
	FeatureLocationEncoded,
}

// FeatureSchema は学習と推論で共有する特徴量の並び。
// 作成時に名前集合が CanonicalFeatures と一致することを検証するため、
// 並び順だけが保存データに依存する。
type FeatureSchema struct {
	names []string
	index map[string]int
}

// DefaultSchema は CanonicalFeatures の並びのスキーマ
func DefaultSchema() *FeatureSchema {
	s, _ := NewFeatureSchema(CanonicalFeatures)
	return s
}

// NewFeatureSchema は保存済みの特徴量名からスキーマを作成する
func NewFeatureSchema(names []string) (*FeatureSchema, error) {
	if err := ValidateFeatureNames(names); err != nil {
		return nil, err
	}
	s := &FeatureSchema{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		s.index[n] = i
	}
	return s, nil
}

// ValidateFeatureNames は names が CanonicalFeatures と同じ名前集合で重複がないことを検証する
func ValidateFeatureNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return errors.NewValidationError("feature_names", "duplicate feature name", n)
		}
		seen[n] = struct{}{}
	}

	var missing, unexpected []string
	canonical := make(map[string]struct{}, len(CanonicalFeatures))
	for _, n := range CanonicalFeatures {
		canonical[n] = struct{}{}
		if _, ok := seen[n]; !ok {
			missing = append(missing, n)
		}
	}
	for _, n := range names {
		if _, ok := canonical[n]; !ok {
			unexpected = append(unexpected, n)
		}
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		sort.Strings(missing)
		return errors.NewFeatureMismatchError("ValidateFeatureNames", missing, unexpected)
	}
	return nil
}

// Names は列順の特徴量名のコピーを返す
func (s *FeatureSchema) Names() []string {
	return append([]string(nil), s.names...)
}

// Len は特徴量の数
func (s *FeatureSchema) Len() int {
	return len(s.names)
}

// Index は特徴量の列位置を返す
func (s *FeatureSchema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Feature は名前に対応する値を返す
func (l Listing) Feature(name string) (float64, bool) {
	switch name {
	case FeatureBHK:
		return l.BHK, true
	case FeatureTotalSqft:
		return l.TotalSqft, true
	case FeatureBath:
		return l.Bath, true
	case FeatureLat:
		return l.Lat, true
	case FeatureLng:
		return l.Lng, true
	case FeatureLocationEncoded:
		return float64(l.LocationEncoded), true
	default:
		return 0, false
	}
}

// Row はスキーマの列順に並べた特徴量ベクトルを返す
func (s *FeatureSchema) Row(l Listing) []float64 {
	row := make([]float64, len(s.names))
	for j, n := range s.names {
		row[j], _ = l.Feature(n)
	}
	return row
}

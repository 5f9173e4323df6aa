package housing

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// IQRMultiplier は外れ値判定に使うIQRの倍率
const IQRMultiplier = 1.5

// OutlierBounds は目的変数の四分位範囲による許容区間
type OutlierBounds struct {
	Q1    float64
	Q3    float64
	IQR   float64
	Lower float64
	Upper float64
}

// Contains は y が区間 [Lower, Upper] に入るかを返す
func (b OutlierBounds) Contains(y float64) bool {
	return y >= b.Lower && y <= b.Upper
}

// FeatureSet は学習に渡す特徴量行列と目的変数
type FeatureSet struct {
	X *mat.Dense
	Y *mat.VecDense
	// Rows は各行が Table.Listings のどの行から来たか
	Rows   []int
	Names  []string
	Bounds OutlierBounds
}

// Quantile は昇順ソート済みの値の p 分位点を返す。
// 位置 (n-1)p を線形補間する（いわゆる type 7）。
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 || p < 0 || p > 1 || math.IsNaN(p) {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// IQRBounds は y の Q1 - 1.5·IQR から Q3 + 1.5·IQR までの区間を計算する
func IQRBounds(y []float64) (OutlierBounds, error) {
	if len(y) == 0 {
		return OutlierBounds{}, errors.NewModelError("IQRBounds", "empty data", errors.ErrEmptyData)
	}
	sorted := append([]float64(nil), y...)
	sort.Float64s(sorted)

	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	return OutlierBounds{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - IQRMultiplier*iqr,
		Upper: q3 + IQRMultiplier*iqr,
	}, nil
}

// PrepareFeatures はスキーマの列順で X を、price で y を作り、
// price の外れ値を持つ行を X と y の両方から取り除く。
func PrepareFeatures(t *Table, schema *FeatureSchema) (*FeatureSet, error) {
	if t == nil || t.Len() == 0 {
		return nil, errors.NewModelError("PrepareFeatures", "empty data", errors.ErrEmptyData)
	}
	if schema == nil {
		schema = DefaultSchema()
	}

	prices := make([]float64, t.Len())
	for i, l := range t.Listings {
		prices[i] = l.Price
	}
	bounds, err := IQRBounds(prices)
	if err != nil {
		return nil, err
	}

	rows := make([]int, 0, t.Len())
	for i, p := range prices {
		if bounds.Contains(p) {
			rows = append(rows, i)
		}
	}

	if len(rows) == 0 {
		return nil, errors.NewModelError("PrepareFeatures", "no rows left after outlier removal", errors.ErrEmptyData)
	}

	c := schema.Len()
	X := mat.NewDense(len(rows), c, nil)
	y := mat.NewVecDense(len(rows), nil)
	for i, idx := range rows {
		X.SetRow(i, schema.Row(t.Listings[idx]))
		y.SetVec(i, prices[idx])
	}

	log.GetLoggerWithName("housing").Info("features prepared",
		log.SamplesKey, len(rows),
		log.FeaturesKey, c,
		log.DroppedKey, t.Len()-len(rows),
		"price.lower", bounds.Lower,
		"price.upper", bounds.Upper,
	)

	return &FeatureSet{
		X:      X,
		Y:      y,
		Rows:   rows,
		Names:  schema.Names(),
		Bounds: bounds,
	}, nil
}

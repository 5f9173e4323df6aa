package housing

import (
	"context"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/preprocessing"
)

const (
	// CenterLat, CenterLng はバンガロール中心の座標。
	// 実際のジオコーディングの代わりにこの周辺へ合成座標を生成する。
	CenterLat = 12.9716
	CenterLng = 77.5946

	// CoordinateStdDev は合成座標のばらつき（度）
	CoordinateStdDev = 0.1

	// UnknownLocation は location が欠損している行のカテゴリ名
	UnknownLocation = "Unknown"
)

var bhkPattern = regexp.MustCompile(`\d+`)

// missingTokens は欠損として扱う表記
var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#NA": {}, "1.#QNAN": {},
}

func isMissing(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

// Listing はクリーニング済みの1行
type Listing struct {
	// Row は元CSVでの行番号
	Row             int
	Location        string
	BHK             float64
	TotalSqft       float64
	Bath            float64
	Price           float64
	Lat             float64
	Lng             float64
	LocationEncoded int
}

// PrepareStats はクリーニングで捨てた行の内訳
type PrepareStats struct {
	Input           int
	MissingRequired int
	NoBHK           int
	UnparsableSqft  int
	Kept            int
}

// Dropped は捨てた行の合計
func (s PrepareStats) Dropped() int {
	return s.MissingRequired + s.NoBHK + s.UnparsableSqft
}

// Table はクリーニング済みのデータセット
type Table struct {
	Listings []Listing
	Stats    PrepareStats
}

// Len は行数を返す
func (t *Table) Len() int {
	return len(t.Listings)
}

// ExtractBHK は size の最初の整数部分を寝室数として取り出す。
// "3 BHK" -> 3, "4 Bedroom" -> 4。数字を含まなければ ok=false。
func ExtractBHK(size string) (int, bool) {
	m := bhkPattern.FindString(size)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Prepare は生データをクリーニングし、合成座標とロケーションコードを付与する。
//
// 行は次の順で捨てる: price/total_sqft/bath の欠損、size に数字がない、
// total_sqft が解釈できない。捨てた行はDataErrorとしてdebugログに出す。
// 空でないのに数値でない price/bath は学習に混入させず致命的エラーにする。
// 座標は残った行に対し seed 固定の乱数で lat をすべて引いてから lng を引く。
func Prepare(records []RawRecord, seed int64) (*Table, *preprocessing.LabelEncoder, error) {
	logger := log.GetLoggerWithName("housing").With(log.PhaseKey, log.PhasePreprocessing)
	stats := PrepareStats{Input: len(records)}

	drop := func(counter *int, rec RawRecord, column, value, reason string) {
		*counter++
		if logger.Enabled(context.Background(), log.LevelDebug) {
			logger.Debug("row dropped", log.ErrAttr(errors.NewDataError(rec.Row, column, value, reason)))
		}
	}

	listings := make([]Listing, 0, len(records))
	for _, rec := range records {
		switch {
		case isMissing(rec.Price):
			drop(&stats.MissingRequired, rec, ColumnPrice, rec.Price, "missing value")
			continue
		case isMissing(rec.TotalSqft):
			drop(&stats.MissingRequired, rec, ColumnTotalSqft, rec.TotalSqft, "missing value")
			continue
		case isMissing(rec.Bath):
			drop(&stats.MissingRequired, rec, ColumnBath, rec.Bath, "missing value")
			continue
		}

		bhk, ok := ExtractBHK(rec.Size)
		if !ok {
			drop(&stats.NoBHK, rec, ColumnSize, rec.Size, "no bedroom count found")
			continue
		}

		sqft, ok := ParseSqft(rec.TotalSqft).Value()
		if !ok {
			drop(&stats.UnparsableSqft, rec, ColumnTotalSqft, rec.TotalSqft, "not a number or A-B range")
			continue
		}

		price, err := parseNumeric(rec, ColumnPrice, rec.Price)
		if err != nil {
			return nil, nil, err
		}
		bath, err := parseNumeric(rec, ColumnBath, rec.Bath)
		if err != nil {
			return nil, nil, err
		}

		// location は前後の空白も含めてそのままカテゴリとして扱う
		location := rec.Location
		if _, missing := missingTokens[rec.Location]; missing {
			location = UnknownLocation
		}

		listings = append(listings, Listing{
			Row:       rec.Row,
			Location:  location,
			BHK:       float64(bhk),
			TotalSqft: sqft,
			Bath:      bath,
			Price:     price,
		})
	}

	stats.Kept = len(listings)
	if len(listings) == 0 {
		return nil, nil, errors.NewModelError("housing.Prepare", "no rows left after cleaning", errors.ErrEmptyData)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	for i := range listings {
		listings[i].Lat = CenterLat + rng.NormFloat64()*CoordinateStdDev
	}
	for i := range listings {
		listings[i].Lng = CenterLng + rng.NormFloat64()*CoordinateStdDev
	}

	locations := make([]string, len(listings))
	for i, l := range listings {
		locations[i] = l.Location
	}
	encoder := preprocessing.NewLabelEncoder()
	codes, err := encoder.FitTransform(locations)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to encode locations")
	}
	for i, c := range codes {
		listings[i].LocationEncoded = c
	}

	logger.Info("data prepared",
		log.SamplesKey, stats.Kept,
		log.DroppedKey, stats.Dropped(),
		"locations", encoder.NClasses(),
	)

	return &Table{Listings: listings, Stats: stats}, encoder, nil
}

func parseNumeric(rec RawRecord, column, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.NewDataError(rec.Row, column, value, "not numeric")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.NewDataError(rec.Row, column, value, "not finite")
	}
	return v, nil
}

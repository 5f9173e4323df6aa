// Package housing は住宅データの読み込み、クリーニング、特徴量スキーマ、
// 外れ値除去を提供する。
package housing

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// 生データのカラム名
const (
	ColumnLocation  = "location"
	ColumnSize      = "size"
	ColumnTotalSqft = "total_sqft"
	ColumnBath      = "bath"
	ColumnPrice     = "price"
)

// RequiredColumns はCSVヘッダに必須のカラム
var RequiredColumns = []string{ColumnLocation, ColumnSize, ColumnTotalSqft, ColumnBath, ColumnPrice}

// RawRecord はCSVの1行。値は未加工の文字列のまま保持する。
type RawRecord struct {
	// Row はヘッダを1行目とするCSVの行番号
	Row       int
	Location  string
	Size      string
	TotalSqft string
	Bath      string
	Price     string
}

// LoadCSV はファイルパスからRawRecordを読み込む
func LoadCSV(path string) ([]RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset %s", path)
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read dataset %s", path)
	}
	return records, nil
}

// ReadCSV はヘッダ付きCSVをRawRecordに変換する。
// カラムは名前で引くため順序は問わず、余分なカラムは無視する。
func ReadCSV(r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewModelError("ReadCSV", "empty data", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewValidationError("header", "missing required columns "+strings.Join(missing, ", "), header)
	}

	field := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []RawRecord
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read CSV row")
		}
		row, _ := reader.FieldPos(0)
		records = append(records, RawRecord{
			Row:       row,
			Location:  field(fields, ColumnLocation),
			Size:      field(fields, ColumnSize),
			TotalSqft: field(fields, ColumnTotalSqft),
			Bath:      field(fields, ColumnBath),
			Price:     field(fields, ColumnPrice),
		})
	}

	return records, nil
}

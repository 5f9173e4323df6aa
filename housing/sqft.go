package housing

import (
	"math"
	"strconv"
	"strings"
)

// SqftKind は total_sqft の解釈結果の種類
type SqftKind int

const (
	// SqftUnparsable は数値にも範囲にも解釈できない値
	SqftUnparsable SqftKind = iota
	// SqftNumeric は単一の数値
	SqftNumeric
	// SqftRange は "A-B" 形式の範囲
	SqftRange
)

func (k SqftKind) String() string {
	switch k {
	case SqftNumeric:
		return "numeric"
	case SqftRange:
		return "range"
	default:
		return "unparsable"
	}
}

// SqftValue は total_sqft の解析結果
type SqftValue struct {
	Kind SqftKind
	// Low は数値そのもの、または範囲の下限
	Low float64
	// High は範囲の上限（Numericでは Low と同じ）
	High float64
}

// Value は面積を返す。範囲は両端の算術平均、解釈できない値は ok=false。
func (v SqftValue) Value() (float64, bool) {
	switch v.Kind {
	case SqftNumeric:
		return v.Low, true
	case SqftRange:
		return (v.Low + v.High) / 2, true
	case SqftUnparsable:
		return math.NaN(), false
	default:
		return math.NaN(), false
	}
}

// ParseSqft は total_sqft の文字列を解析する。
// '-' を含む文字列は範囲として扱い、分割した先頭2要素を両端とする。
// "34.46Sq. Meter" のような単位付きの値は解釈しない。
func ParseSqft(s string) SqftValue {
	s = strings.TrimSpace(s)
	if s == "" {
		return SqftValue{Kind: SqftUnparsable}
	}

	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		low, okLow := parseFinite(parts[0])
		high, okHigh := parseFinite(parts[1])
		if !okLow || !okHigh {
			return SqftValue{Kind: SqftUnparsable}
		}
		return SqftValue{Kind: SqftRange, Low: low, High: high}
	}

	v, ok := parseFinite(s)
	if !ok {
		return SqftValue{Kind: SqftUnparsable}
	}
	return SqftValue{Kind: SqftNumeric, Low: v, High: v}
}

// parseFinite は前後の空白を除いて有限な浮動小数点数として解釈する
func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

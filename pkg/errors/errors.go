// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 学習パイプラインと推論アダプタの失敗を、診断に必要な情報（行・列・アーティファクト名・特徴量名）
// 付きの構造化エラーとして表現します。
package errors

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("houseprice-warning: %v\n", w)
	}
	// zerologロガー（pkg/log からの循環importを避けるため関数で受け取る）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler は警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します。nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// UndefinedMetricWarning は評価指標が計算できない場合に発生する警告です。
// 例えば、テスト分割の目的変数が定数でR²の分母がゼロになる場合など。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	推定器のエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("houseprice: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("houseprice: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("houseprice: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("houseprice: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError は機械学習モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("houseprice: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("houseprice: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// ===========================================================================
//
//	パイプライン固有のエラー型
//
// ===========================================================================

// DataError は生データの1行に含まれるフィールドが解釈できない場合のエラーです。
// クリーニング中は行を捨てて回復しますが、学習に数値以外が混入する場合は致命的です。
type DataError struct {
	Row    int    // 1始まりのCSV行番号（ヘッダー行を含む）
	Column string // 問題の列名
	Value  string // 元の値
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("houseprice: row %d: column %q: %s (got: %q)", e.Row, e.Column, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DataError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("row", e.Row).
		Str("column", e.Column).
		Str("value", e.Value).
		Str("reason", e.Reason).
		Str("type", "DataError")
}

// NewDataError は新しいDataErrorを作成し、スタックトレースを付与します。
func NewDataError(row int, column, value, reason string) error {
	return errors.WithStack(&DataError{Row: row, Column: column, Value: value, Reason: reason})
}

// ArtifactMissingError は必須アーティファクトの一部または全部が存在しない場合のエラーです。
// 部分的なバンドルは常に使用不可として扱います。
type ArtifactMissingError struct {
	Dir     string
	Missing []string
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("houseprice: model artifacts not found in %s (missing: %s). Please run training first",
		e.Dir, strings.Join(e.Missing, ", "))
}

// NewArtifactMissingError は新しいArtifactMissingErrorを作成し、スタックトレースを付与します。
func NewArtifactMissingError(dir string, missing []string) error {
	m := append([]string(nil), missing...)
	return errors.WithStack(&ArtifactMissingError{Dir: dir, Missing: m})
}

// FeatureMismatchError は特徴量の集合が期待と一致しない場合のエラーです。
// 推論入力のキー不足と、保存された feature_names の破損の両方で使われます。
type FeatureMismatchError struct {
	Op         string
	Missing    []string
	Unexpected []string
}

func (e *FeatureMismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "houseprice: %s: ", e.Op)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "missing required features: [%s]", strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		if len(e.Missing) > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "unexpected features: [%s]", strings.Join(e.Unexpected, ", "))
	}
	return b.String()
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *FeatureMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Strs("missing", e.Missing).
		Strs("unexpected", e.Unexpected).
		Str("type", "FeatureMismatchError")
}

// NewFeatureMismatchError は新しいFeatureMismatchErrorを作成し、スタックトレースを付与します。
func NewFeatureMismatchError(op string, missing, unexpected []string) error {
	m := append([]string(nil), missing...)
	u := append([]string(nil), unexpected...)
	sort.Strings(u)
	return errors.WithStack(&FeatureMismatchError{Op: op, Missing: m, Unexpected: u})
}

// ComputationError はスケーリングやモデル呼び出しの途中で失敗した場合のエラーです。
// リトライもデフォルト値での置き換えも行いません。
type ComputationError struct {
	Stage string // "scale", "predict" など
	Err   error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("houseprice: computation failed during %s: %v", e.Stage, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// NewComputationError は新しいComputationErrorを作成し、スタックトレースを付与します。
func NewComputationError(stage string, err error) error {
	return errors.WithStack(&ComputationError{Stage: stage, Err: err})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	数値計算のエラー型
//
// ===========================================================================

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// 学習行列にNaN、Infが残っている場合に返されます。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "training_features"）
	Values    []float64 // 問題のある値
	Iteration int       // 発生した行番号やイテレーション番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("houseprice: numerical instability detected in %s at index %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")

	// ErrNoVariance は目的変数に分散がなく指標が定義できない場合のエラーです。
	ErrNoVariance = New("no variance in target")
)

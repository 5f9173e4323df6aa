package preprocessing

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// LabelEncoder は文字列ラベルを 0..K-1 の整数コードに変換する。
// コードはクラス名を辞書順に並べた位置で決まる。
type LabelEncoder struct {
	model.BaseEstimator

	classes []string
	index   map[string]int
}

// NewLabelEncoder は未学習のLabelEncoderを作成する
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// NewLabelEncoderFromClasses は保存済みのクラス一覧から学習済みのエンコーダを復元する。
// classes は昇順かつ重複なしでなければならない。
func NewLabelEncoderFromClasses(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, errors.NewModelError("LabelEncoder.FromClasses", "empty data", errors.ErrEmptyData)
	}
	for i := 1; i < len(classes); i++ {
		if classes[i-1] >= classes[i] {
			return nil, errors.NewValidationError("classes", "must be sorted and unique", classes[i])
		}
	}
	le := &LabelEncoder{}
	le.setClasses(append([]string(nil), classes...))
	return le, nil
}

func (le *LabelEncoder) setClasses(classes []string) {
	le.classes = classes
	le.index = make(map[string]int, len(classes))
	for i, c := range classes {
		le.index[c] = i
	}
	le.SetFitted()
}

// Fit はラベル列からクラス一覧を学習する
func (le *LabelEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	sort.Strings(classes)

	le.setClasses(classes)
	return nil
}

// Transform はラベルを整数コードに変換する。学習時に無かったラベルはエラー。
func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	codes := make([]int, len(labels))
	for i, l := range labels {
		code, ok := le.index[l]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform", fmt.Sprintf("y contains previously unseen label %q", l))
		}
		codes[i] = code
	}
	return codes, nil
}

// FitTransform はFitとTransformを同時に実行する
func (le *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	if err := le.Fit(labels); err != nil {
		return nil, err
	}
	return le.Transform(labels)
}

// InverseTransform は整数コードをラベルに戻す
func (le *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	labels := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(le.classes) {
			return nil, errors.NewValueError("LabelEncoder.InverseTransform", fmt.Sprintf("code %d out of range [0, %d)", c, len(le.classes)))
		}
		labels[i] = le.classes[c]
	}
	return labels, nil
}

// Classes は学習済みクラスのコピーを返す
func (le *LabelEncoder) Classes() []string {
	return append([]string(nil), le.classes...)
}

// NClasses はクラス数
func (le *LabelEncoder) NClasses() int {
	return len(le.classes)
}

package inference

import (
	"sync"
	"sync/atomic"
)

// Lazy は最初の利用時に成果物を読み込み、以後は同じ Predictor を返す。
// 読み込みに失敗した場合は結果を保持せず、次の呼び出しで再試行する。
type Lazy struct {
	dir  string
	open func(dir string) (*Predictor, error)

	mu sync.Mutex
	p  atomic.Pointer[Predictor]
}

// NewLazy は dir の成果物を遅延読み込みする Lazy を作成する
func NewLazy(dir string) *Lazy {
	return &Lazy{dir: dir, open: Open}
}

// Dir は成果物ディレクトリを返す
func (l *Lazy) Dir() string {
	return l.dir
}

// Get は読み込み済みの Predictor を返す。並行に呼ばれても読み込みは一度だけ行う。
func (l *Lazy) Get() (*Predictor, error) {
	if p := l.p.Load(); p != nil {
		return p, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if p := l.p.Load(); p != nil {
		return p, nil
	}

	p, err := l.open(l.dir)
	if err != nil {
		return nil, err
	}
	l.p.Store(p)
	return p, nil
}

// Loaded は Predictor が読み込み済みかを返す
func (l *Lazy) Loaded() bool {
	return l.p.Load() != nil
}

// Predict は Get で得た Predictor で予測する
func (l *Lazy) Predict(features map[string]float64) (*Prediction, error) {
	p, err := l.Get()
	if err != nil {
		return nil, err
	}
	return p.Predict(features)
}

// Predict は dir の成果物を読み込んで1件予測する。
// 繰り返し呼ぶ場合は Open か Lazy で Predictor を使い回す。
func Predict(dir string, features map[string]float64) (*Prediction, error) {
	p, err := Open(dir)
	if err != nil {
		return nil, err
	}
	return p.Predict(features)
}

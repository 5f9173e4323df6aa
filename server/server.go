// Package server は予測器を HTTP で公開する。
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/YuminosukeSato/houseprice/inference"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/gorilla/mux"
)

const (
	msgModelUnavailable = "Prediction model not available. Please train the model first."
	msgPredictFailed    = "Prediction failed"
	msgNotFound         = "Endpoint not found"
	msgMethodNotAllowed = "Method not allowed"

	maxBodyBytes = 1 << 20
)

// Predictor は1件の予測を行う
type Predictor interface {
	Predict(features map[string]float64) (*inference.Prediction, error)
}

// Loader は予測器を返す。成果物が無ければエラーを返す。
type Loader func() (Predictor, error)

// FromLazy は inference.Lazy を Loader に変換する
func FromLazy(l *inference.Lazy) Loader {
	return func() (Predictor, error) {
		p, err := l.Get()
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// HealthReport は /health の応答
type HealthReport struct {
	Status               string `json:"status"`
	ModelLoaded          bool   `json:"model_loaded"`
	HereAPIConfigured    bool   `json:"here_api_configured"`
	HereMapsJSConfigured bool   `json:"here_maps_js_configured"`
}

// ErrorResponse はエラー応答
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server は HTTP ハンドラ
type Server struct {
	load      Loader
	geocoder  *Geocoder
	mapsJSKey string
	router    *mux.Router
	logger    log.Logger
}

// Option は Server の設定を変更する
type Option func(*Server)

// WithGeocoder は /api/geocode が使う Geocoder を設定する
func WithGeocoder(g *Geocoder) Option {
	return func(s *Server) { s.geocoder = g }
}

// WithMapsJSKey は地図表示用キーの有無を /health に反映する
func WithMapsJSKey(key string) Option {
	return func(s *Server) { s.mapsJSKey = strings.TrimSpace(key) }
}

// New はルーティング済みの Server を作成する
func New(load Loader, opts ...Option) *Server {
	s := &Server{
		load:     load,
		geocoder: NewGeocoder(""),
		router:   mux.NewRouter(),
		logger:   log.GetLoggerWithName("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router.HandleFunc("/health", s.ReportHealth).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/predict", s.Predict).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/api/geocode", s.Geocode).Methods(http.MethodPost, http.MethodOptions)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		sendError(w, msgNotFound, http.StatusNotFound)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		sendError(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
	})
	s.router.Use(s.logRequests, mux.CORSMethodMiddleware(s.router), allowCORS)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

// ReportHealth はプロセスの状態と予測器を読み込めるかを返す
func (s *Server) ReportHealth(w http.ResponseWriter, req *http.Request) {
	_, err := s.load()
	sendJSON(w, HealthReport{
		Status:               "healthy",
		ModelLoaded:          err == nil,
		HereAPIConfigured:    s.geocoder.Configured(),
		HereMapsJSConfigured: s.mapsJSKey != "",
	}, http.StatusOK)
}

// Predict は JSON の入力を検証して価格を返す
func (s *Server) Predict(w http.ResponseWriter, req *http.Request) {
	p, err := s.load()
	if err != nil {
		s.logger.Error("predictor unavailable",
			log.ErrAttr(err),
			log.ErrorCodeKey, log.ErrorArtifactsMissing,
			log.SuggestionKey, "run cmd/train to create the artifacts",
		)
		sendError(w, msgModelUnavailable, http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		sendError(w, msgNotJSON, http.StatusBadRequest)
		return
	}
	in, err := ParsePredictRequest(body)
	if err != nil {
		s.logger.Debug("invalid request", log.ErrorCodeKey, log.ErrorInvalidInput, "reason", err.Error())
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := p.Predict(in.Features())
	if err != nil {
		var fm *errors.FeatureMismatchError
		if errors.As(err, &fm) {
			s.logger.Debug("invalid request", log.ErrorCodeKey, log.ErrorFeatureMismatch, log.ErrAttr(err))
			sendError(w, fm.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("prediction failed", log.ErrAttr(err), log.ErrorCodeKey, log.ErrorComputation)
		sendError(w, msgPredictFailed, http.StatusInternalServerError)
		return
	}
	sendJSON(w, out, http.StatusOK)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		s.logger.Info("request",
			"http.method", req.Method,
			"http.path", req.URL.Path,
			"http.status", rec.status,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	})
}

// allowCORS は全オリジンを許可し、プリフライトにはここで応答する
func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if req.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func sendError(w http.ResponseWriter, msg string, status int) {
	sendJSON(w, ErrorResponse{Error: msg}, status)
}

func sendJSON(w http.ResponseWriter, object interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(object)
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// DefaultGeocodeURL は HERE Geocoding API のエンドポイント
const DefaultGeocodeURL = "https://geocode.search.hereapi.com/v1/geocode"

const (
	geocodeTimeout      = 10 * time.Second
	maxUpstreamBodySize = 1 << 20

	msgGeocoderNotConfigured = "HERE API key not configured"
	msgMissingQuery          = "Missing required field: q (address query)"
	msgQueryNotString        = "Field q must be a string"
	msgEmptyQuery            = "Address query cannot be empty"
	msgGeocodeFailed         = "Geocoding failed"
	msgGeocoderUnavailable   = "Geocoding service unavailable"
	msgAddressNotFound       = "Address not found"
)

var (
	// ErrGeocoderNotConfigured は API キーが無いときに返る
	ErrGeocoderNotConfigured = errors.New("geocoder: HERE API key not configured")
	// ErrAddressNotFound は候補が0件のときに返る
	ErrAddressNotFound = errors.New("geocoder: address not found")
)

// UpstreamError は HERE API が 2xx 以外を返したことを表す
type UpstreamError struct {
	StatusCode int
	// 応答本文。JSON でなければ {"message": 本文} に包む
	Details json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("geocoder: upstream returned status %d", e.StatusCode)
}

// GeocodeResult は先頭候補の座標と候補そのもの
type GeocodeResult struct {
	Lat float64         `json:"lat"`
	Lng float64         `json:"lng"`
	Raw json.RawMessage `json:"raw"`
}

// GeocodeFailure は上流エラー時の応答
type GeocodeFailure struct {
	Error      string          `json:"error"`
	Details    json.RawMessage `json:"details"`
	StatusCode int             `json:"status_code"`
}

// Geocoder は住所文字列を HERE API で座標に変換する
type Geocoder struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// GeocoderOption は Geocoder の設定を変更する
type GeocoderOption func(*Geocoder)

// WithBaseURL は問い合わせ先を差し替える
func WithBaseURL(u string) GeocoderOption {
	return func(g *Geocoder) { g.baseURL = u }
}

// WithHTTPClient は HTTP クライアントを差し替える
func WithHTTPClient(c *http.Client) GeocoderOption {
	return func(g *Geocoder) { g.client = c }
}

// NewGeocoder は Geocoder を作成する。apiKey が空なら未設定として扱う。
func NewGeocoder(apiKey string, opts ...GeocoderOption) *Geocoder {
	g := &Geocoder{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultGeocodeURL,
		client:  &http.Client{Timeout: geocodeTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Configured は API キーが設定されているかを返す
func (g *Geocoder) Configured() bool {
	return g != nil && g.apiKey != ""
}

// Geocode は query の先頭候補を返す
func (g *Geocoder) Geocode(ctx context.Context, query string) (*GeocodeResult, error) {
	if !g.Configured() {
		return nil, ErrGeocoderNotConfigured
	}

	u, err := url.Parse(g.baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid geocoder URL %q", g.baseURL)
	}
	params := u.Query()
	params.Set("apiKey", g.apiKey)
	params.Set("q", query)
	params.Set("limit", "1")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build geocoding request")
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "geocoding request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read geocoding response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Details: upstreamDetails(body)}
	}

	var payload struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "malformed geocoding response")
	}
	if len(payload.Items) == 0 {
		return nil, ErrAddressNotFound
	}

	var item struct {
		Position *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"position"`
	}
	if err := json.Unmarshal(payload.Items[0], &item); err != nil {
		return nil, errors.Wrap(err, "malformed geocoding item")
	}
	if item.Position == nil {
		return nil, errors.New("geocoding item has no position")
	}
	return &GeocodeResult{Lat: item.Position.Lat, Lng: item.Position.Lng, Raw: payload.Items[0]}, nil
}

func upstreamDetails(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	wrapped, err := json.Marshal(map[string]string{"message": string(body)})
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return wrapped
}

// Geocode は {"q": "..."} を受け取り座標を返す
func (s *Server) Geocode(w http.ResponseWriter, req *http.Request) {
	if !s.geocoder.Configured() {
		s.logger.Error("geocoder unavailable",
			log.ErrorCodeKey, log.ErrorGeocoderConfig,
			log.SuggestionKey, "set the HERE API key",
		)
		sendError(w, msgGeocoderNotConfigured, http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		sendError(w, msgMissingQuery, http.StatusBadRequest)
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		sendError(w, msgMissingQuery, http.StatusBadRequest)
		return
	}
	rawQuery, ok := fields["q"]
	if !ok {
		sendError(w, msgMissingQuery, http.StatusBadRequest)
		return
	}
	var query string
	if err := json.Unmarshal(rawQuery, &query); err != nil {
		sendError(w, msgQueryNotString, http.StatusBadRequest)
		return
	}
	query = strings.TrimSpace(query)
	if query == "" {
		sendError(w, msgEmptyQuery, http.StatusBadRequest)
		return
	}

	result, err := s.geocoder.Geocode(req.Context(), query)
	if err != nil {
		var upstream *UpstreamError
		switch {
		case errors.As(err, &upstream):
			s.logger.Error("geocoding rejected upstream",
				log.ErrorCodeKey, log.ErrorGeocoderUpstream,
				"http.upstream_status", upstream.StatusCode,
				"details", string(upstream.Details),
			)
			sendJSON(w, GeocodeFailure{Error: msgGeocodeFailed, Details: upstream.Details, StatusCode: upstream.StatusCode}, http.StatusServiceUnavailable)
		case errors.Is(err, ErrAddressNotFound):
			sendError(w, msgAddressNotFound, http.StatusNotFound)
		default:
			s.logger.Error("geocoding request failed", log.ErrAttr(err), log.ErrorCodeKey, log.ErrorGeocoderUpstream)
			sendError(w, msgGeocoderUnavailable, http.StatusServiceUnavailable)
		}
		return
	}
	sendJSON(w, result, http.StatusOK)
}

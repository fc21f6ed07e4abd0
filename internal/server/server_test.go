package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/wobble/pkg/cache"
	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/observability"
	"github.com/matzehuels/wobble/pkg/pipeline"
	"github.com/matzehuels/wobble/pkg/poster"
	"github.com/matzehuels/wobble/pkg/render"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(Config{}, pipeline.NewRunner(c, nil, nil), nil)
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
	if _, err := uuid.Parse(rec.Header().Get(headerRequestID)); err != nil {
		t.Errorf("X-Request-ID %q should be a UUID: %v", rec.Header().Get(headerRequestID), err)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestConfig(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/config", nil)

	var cfg poster.Config
	if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg != poster.DefaultConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestPosterPNG(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/poster.png?seed=42&dpi=20", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="poster-42.png"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if seed := rec.Header().Get(headerSeed); seed != "42" {
		t.Errorf("X-Poster-Seed = %q, want 42", seed)
	}
	if rec.Header().Get(headerCache) != "MISS" {
		t.Errorf("first request should miss the cache")
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 140 || cfg.Height != 200 {
		t.Errorf("size = %dx%d, want 140x200", cfg.Width, cfg.Height)
	}

	again := do(t, s, http.MethodGet, "/poster.png?seed=42&dpi=20", nil)
	if again.Header().Get(headerCache) != "HIT" {
		t.Error("second request should hit the cache")
	}
	if !bytes.Equal(rec.Body.Bytes(), again.Body.Bytes()) {
		t.Error("same seed should serve identical bytes")
	}
}

func TestPosterRandomSeed(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/poster.svg", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	seed := rec.Header().Get(headerSeed)
	if seed == "" {
		t.Fatal("X-Poster-Seed should be set for a random seed")
	}
	want := fmt.Sprintf(`attachment; filename="poster-%s.svg"`, seed)
	if cd := rec.Header().Get("Content-Disposition"); cd != want {
		t.Errorf("Content-Disposition = %q, want %q", cd, want)
	}
}

func TestPosterQueryConfig(t *testing.T) {
	s := newTestServer(t)
	q := url.Values{}
	q.Set("seed", "3")
	q.Set("shapes", "2")
	q.Set("palette", "1")
	q.Set("alpha", "0.5,0.5")
	q.Set("center", "0.5,0.5")
	q.Set("wobble", "0")
	q.Set("title", "Hello & Goodbye")
	rec := do(t, s, http.MethodGet, "/poster.json?"+q.Encode(), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var scene struct {
		Config poster.Config `json:"config"`
		Shapes []struct {
			Opacity float64 `json:"opacity"`
		} `json:"shapes"`
		Palette []string `json:"palette"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &scene); err != nil {
		t.Fatal(err)
	}
	if len(scene.Shapes) != 2 || len(scene.Palette) != 1 {
		t.Errorf("got %d shapes and %d colors, want 2 and 1", len(scene.Shapes), len(scene.Palette))
	}
	if scene.Config.Title != "Hello & Goodbye" {
		t.Errorf("title = %q", scene.Config.Title)
	}
	for _, sh := range scene.Shapes {
		if sh.Opacity != 0.5 {
			t.Errorf("opacity = %g, want 0.5", sh.Opacity)
		}
	}
}

func TestPosterPOST(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"seed": 7, "config": {"shape_count": 3}, "dpi": 20}`)
	rec := do(t, s, http.MethodPost, "/poster.json", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(headerSeed) != "7" {
		t.Errorf("X-Poster-Seed = %q, want 7", rec.Header().Get(headerSeed))
	}
	var scene struct {
		Config poster.Config `json:"config"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &scene); err != nil {
		t.Fatal(err)
	}
	if scene.Config.ShapeCount != 3 {
		t.Errorf("shape_count = %d, want 3", scene.Config.ShapeCount)
	}
	if scene.Config.PaletteSize != poster.DefaultPaletteSize {
		t.Errorf("unspecified fields should keep defaults, palette_size = %d", scene.Config.PaletteSize)
	}
}

func TestPosterDefaultDPIRespectsLimit(t *testing.T) {
	s := New(Config{MaxDPI: 50}, pipeline.NewRunner(nil, nil, nil), nil)

	tests := []struct {
		name   string
		method string
		body   []byte
	}{
		{"query", http.MethodGet, nil},
		{"json", http.MethodPost, []byte(`{"seed": 1}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, "/poster.png?seed=1&shapes=1", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			dpi, ok := render.PhysicalDPI(rec.Body.Bytes())
			if !ok {
				t.Fatal("response has no pHYs chunk")
			}
			if dpi < 49.9 || dpi > 50.1 {
				t.Errorf("rendered at %g dpi, want the 50 dpi server limit", dpi)
			}
		})
	}

	if rec := do(t, s, http.MethodGet, "/poster.png?seed=1&dpi=60", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("explicit dpi over the limit: status = %d, want 400", rec.Code)
	}
}

func TestPosterErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   errors.Code
	}{
		{"unknown format", http.MethodGet, "/poster.gif", "", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"zero shapes", http.MethodGet, "/poster.png?shapes=0&dpi=20", "", http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"inverted size", http.MethodGet, "/poster.png?size=0.5,0.1&dpi=20", "", http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"bad pair", http.MethodGet, "/poster.png?alpha=0.5", "", http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"bad seed", http.MethodGet, "/poster.png?seed=-1", "", http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"bad background", http.MethodGet, "/poster.png?background=nope&dpi=20", "", http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"dpi over limit", http.MethodGet, "/poster.png?dpi=1000", "", http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"unknown field", http.MethodPost, "/poster.png", `{"bogus": 1}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"malformed body", http.MethodPost, "/poster.png", `{`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
	}
	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if tt.body != "" {
				body = []byte(tt.body)
			}
			rec := do(t, s, tt.method, tt.target, body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			resp := decodeError(t, rec)
			if resp.Code != string(tt.code) {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.RequestID == "" {
				t.Error("error body should carry the request id")
			}
		})
	}
}

func TestPosterPDFWithoutConverter(t *testing.T) {
	if render.CanConvert() {
		t.Skip("rsvg-convert installed")
	}
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/poster.pdf?seed=1", nil)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidConfig, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{fmt.Errorf("render: %w", errors.New(errors.ErrCodeRenderingFailure, "x")), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type recordingHooks struct {
	mu        sync.Mutex
	requests  []string
	responses []int
}

func (h *recordingHooks) OnRequest(_ context.Context, _, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	s := newTestServer(t)
	do(t, s, http.MethodGet, "/healthz", nil)
	do(t, s, http.MethodGet, "/poster.gif", nil)

	if strings.Join(hooks.requests, ",") != "GET /healthz,GET /poster.gif" {
		t.Errorf("requests = %v", hooks.requests)
	}
	if len(hooks.responses) != 2 || hooks.responses[0] != 200 || hooks.responses[1] != 400 {
		t.Errorf("responses = %v, want [200 400]", hooks.responses)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/wobble/pkg/buildinfo"
	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/heart"
	"github.com/matzehuels/wobble/pkg/pipeline"
	"github.com/matzehuels/wobble/pkg/poster"
	"github.com/matzehuels/wobble/pkg/random"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, poster.DefaultConfig())
}

// handlePosterQuery renders a poster described by query parameters.
func (s *Server) handlePosterQuery(w http.ResponseWriter, r *http.Request) {
	opts, seed, err := optionsFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.servePoster(w, r, opts, seed)
}

// posterRequest is the POST body: pipeline options with an optional seed.
type posterRequest struct {
	pipeline.Options
	Seed *uint64 `json:"seed,omitempty"`
}

// handlePosterJSON renders a poster described by a JSON body. Missing
// config fields keep their defaults.
func (s *Server) handlePosterJSON(w http.ResponseWriter, r *http.Request) {
	req := posterRequest{Options: pipeline.Options{Config: poster.DefaultConfig()}}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidArgument, err, "decode request body"))
		return
	}
	s.servePoster(w, r, req.Options, req.Seed)
}

// servePoster renders the format named in the URL and writes it as an
// attachment keyed by seed.
func (s *Server) servePoster(w http.ResponseWriter, r *http.Request, opts pipeline.Options, seed *uint64) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.DPI == 0 {
		opts.DPI = min(pipeline.DefaultDPI, s.cfg.MaxDPI)
	}
	if opts.DPI > s.cfg.MaxDPI {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidArgument, "dpi %g exceeds the server limit %g", opts.DPI, s.cfg.MaxDPI))
		return
	}

	opts.Formats = []string{format}
	if seed != nil {
		opts.Seed = *seed
	} else {
		opts.Seed = random.NewSeed()
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := res.Artifacts[format]
	h := w.Header()
	h.Set("Content-Type", pipeline.ContentType(format))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename(format)))
	h.Set(headerSeed, strconv.FormatUint(res.Poster.Seed, 10))
	if res.CacheInfo.RenderHit {
		h.Set(headerCache, "HIT")
	} else {
		h.Set(headerCache, "MISS")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("write response", "id", RequestIDFromContext(r.Context()), "error", err)
	}
}

// =============================================================================
// Errors
// =============================================================================

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps error codes to HTTP status.
func statusFor(err error) int {
	if code := errors.GetCode(err); code != "" {
		return code.HTTPStatus()
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	id := RequestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", id, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: id,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Query Parameters
// =============================================================================

// optionsFromQuery builds pipeline options from URL query parameters on
// top of the default configuration. The returned seed is nil when the
// query has none.
func optionsFromQuery(q url.Values) (pipeline.Options, *uint64, error) {
	p := queryParser{q: q}
	cfg := poster.DefaultConfig()
	opts := pipeline.Options{}

	p.text("title", &cfg.Title)
	p.text("subtitle", &cfg.Subtitle)
	p.integer("shapes", &cfg.ShapeCount)
	p.integer("palette", &cfg.PaletteSize)
	p.number("max_wobble", &cfg.MaxWobble)
	p.pair("alpha", &cfg.AlphaRange.Low, &cfg.AlphaRange.High)
	p.pair("size", &cfg.SizeRange.Low, &cfg.SizeRange.High)
	p.text("background", &cfg.Background)
	p.integer("points", &cfg.Points)
	p.number("dpi", &opts.DPI)
	p.integer("thumbnail_size", &opts.ThumbnailSize)
	p.flag("embed_fonts", &opts.EmbedFonts)
	p.flag("refresh", &opts.Refresh)

	if q.Has("center") {
		var c heart.Point
		p.pair("center", &c.X, &c.Y)
		opts.Center = &c
	}
	if q.Has("wobble") {
		var w float64
		p.number("wobble", &w)
		opts.Wobble = &w
	}

	var seed *uint64
	if q.Has("seed") {
		var v uint64
		p.unsigned("seed", &v)
		seed = &v
	}

	if p.err != nil {
		return pipeline.Options{}, nil, p.err
	}
	opts.Config = cfg
	return opts, seed, nil
}

// queryParser collects the first parse error across several parameters.
type queryParser struct {
	q   url.Values
	err error
}

func (p *queryParser) get(name string) (string, bool) {
	if p.err != nil || !p.q.Has(name) {
		return "", false
	}
	return p.q.Get(name), true
}

func (p *queryParser) fail(name, v string, err error) {
	p.err = errors.Wrap(errors.ErrCodeInvalidArgument, err, "query parameter %s=%q", name, v)
}

func (p *queryParser) text(name string, dst *string) {
	if v, ok := p.get(name); ok {
		*dst = v
	}
}

func (p *queryParser) integer(name string, dst *int) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, v, err)
		return
	}
	*dst = n
}

func (p *queryParser) unsigned(name string, dst *uint64) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		p.fail(name, v, err)
		return
	}
	*dst = n
}

func (p *queryParser) number(name string, dst *float64) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(name, v, err)
		return
	}
	*dst = f
}

func (p *queryParser) flag(name string, dst *bool) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	if v == "" {
		*dst = true
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(name, v, err)
		return
	}
	*dst = b
}

func (p *queryParser) pair(name string, a, b *float64) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	first, second, found := strings.Cut(v, ",")
	if !found {
		p.fail(name, v, stderrors.New("expected two comma-separated numbers"))
		return
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
	if err != nil {
		p.fail(name, v, err)
		return
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(second), 64)
	if err != nil {
		p.fail(name, v, err)
		return
	}
	*a, *b = x, y
}

// Package pipeline provides the poster pipeline shared by every entry point.
//
// This package implements the complete validate → compose → render pipeline
// used by the CLI, the TUI and the HTTP server. By centralizing this logic,
// every surface produces byte-identical files for the same seed and
// configuration.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Compose: Draw the palette and shapes from a source seeded with [Options.Seed]
//  2. Render: Encode the poster in each requested format (PNG, SVG, PDF, JSON, thumbnail)
//
// Rendered artifacts are cached by scene and output options, so a second
// request for the same poster is served without drawing.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Config:  poster.DefaultConfig(),
//	    Seed:    42,
//	    Formats: []string{"png", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wobble/pkg/cache"
	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/heart"
	"github.com/matzehuels/wobble/pkg/poster"
	"github.com/matzehuels/wobble/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, TUI, and Server
// =============================================================================

const (
	// DefaultDPI is the nominal export resolution.
	DefaultDPI = render.DefaultDPI

	// DefaultThumbnailSize bounds the longer thumbnail edge in pixels.
	DefaultThumbnailSize = render.DefaultThumbnailSize
)

// Format constants for output formats.
const (
	FormatPNG       = "png"
	FormatSVG       = "svg"
	FormatPDF       = "pdf"
	FormatJSON      = "json"
	FormatThumbnail = "thumbnail"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:       true,
	FormatSVG:       true,
	FormatPDF:       true,
	FormatJSON:      true,
	FormatThumbnail: true,
}

// extensions maps formats to file extensions where they differ.
var extensions = map[string]string{
	FormatThumbnail: "thumb.png",
}

// contentTypes maps formats to MIME types.
var contentTypes = map[string]string{
	FormatPNG:       "image/png",
	FormatSVG:       "image/svg+xml",
	FormatPDF:       "application/pdf",
	FormatJSON:      "application/json",
	FormatThumbnail: "image/png",
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	if ext, ok := extensions[format]; ok {
		return ext
	}
	return format
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one poster run.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Compose options
	Config poster.Config `json:"config"`
	Seed   uint64        `json:"seed"`
	Center *heart.Point  `json:"center,omitempty"` // Forces every shape center
	Wobble *float64      `json:"wobble,omitempty"` // Forces every wobble amplitude

	// Render options
	Formats       []string `json:"formats,omitempty"`
	DPI           float64  `json:"dpi,omitempty"`
	ThumbnailSize int      `json:"thumbnail_size,omitempty"`
	EmbedFonts    bool     `json:"embed_fonts,omitempty"`
	Refresh       bool     `json:"refresh,omitempty"` // Skip cache reads

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Poster is the composed scene.
	Poster *poster.Poster

	// SceneKey identifies the scene in the cache.
	SceneKey string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Filename returns the seed-keyed export name for format.
func (r *Result) Filename(format string) string {
	return poster.Filename(r.Poster.Seed, Extension(format))
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Shapes      int
	ComposeTime time.Duration
	RenderTime  time.Duration
	Bytes       int
}

// CacheInfo tracks cache hits for the render stage.
type CacheInfo struct {
	Cached    []string // Formats served from cache
	RenderHit bool     // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: png, svg, pdf, json, thumbnail)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks and
// dropping duplicates while keeping order.
func ParseFormats(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCompose(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetComposeDefaults fills unset configuration fields.
func (o *Options) SetComposeDefaults() {
	o.Config.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForCompose validates and sets defaults for composition.
func (o *Options) ValidateForCompose() error {
	o.SetComposeDefaults()
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if o.Center != nil {
		if err := errors.ValidateFinite("center.x", o.Center.X); err != nil {
			return err
		}
		if err := errors.ValidateFinite("center.y", o.Center.Y); err != nil {
			return err
		}
	}
	if o.Wobble != nil {
		return errors.ValidateWithin("wobble", *o.Wobble, 0, poster.MaxWobbleLimit)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.ThumbnailSize == 0 && o.HasFormat(FormatThumbnail) {
		o.ThumbnailSize = DefaultThumbnailSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := render.ValidateDPI(o.DPI); err != nil {
		return err
	}
	if o.ThumbnailSize < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "thumbnail size must be positive, got %d", o.ThumbnailSize)
	}
	return nil
}

// HasFormat reports whether format was requested.
func (o *Options) HasFormat(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// ComposeOptions returns the poster options implied by the forced fields.
func (o *Options) ComposeOptions() []poster.Option {
	var opts []poster.Option
	if o.Center != nil {
		opts = append(opts, poster.WithCenter(*o.Center))
	}
	if o.Wobble != nil {
		opts = append(opts, poster.WithWobble(*o.Wobble))
	}
	return opts
}

// sceneInputs is everything besides the seed that changes the scene.
type sceneInputs struct {
	Config poster.Config `json:"config"`
	Center *heart.Point  `json:"center,omitempty"`
	Wobble *float64      `json:"wobble,omitempty"`
}

// SceneKey returns the cache key of the composed poster.
func (o *Options) SceneKey(k cache.Keyer) string {
	return k.SceneKey(o.Seed, sceneInputs{Config: o.Config, Center: o.Center, Wobble: o.Wobble})
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Only options that change the bytes of format are included.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatPNG:
		opts.DPI = o.DPI
	case FormatThumbnail:
		opts.DPI = o.DPI
		opts.Thumbnail = o.ThumbnailSize
	case FormatSVG, FormatPDF:
		opts.EmbedFonts = o.EmbedFonts
	}
	return opts
}

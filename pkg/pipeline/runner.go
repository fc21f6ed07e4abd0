package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wobble/pkg/cache"
	"github.com/matzehuels/wobble/pkg/observability"
	"github.com/matzehuels/wobble/pkg/poster"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, TUI and server all use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete compose → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{SceneKey: opts.SceneKey(r.Keyer)}

	// Stage 1: Compose
	composeStart := time.Now()
	p, err := r.Compose(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	result.Poster = p
	result.Stats.Shapes = len(p.Shapes)
	result.Stats.ComposeTime = time.Since(composeStart)

	r.Logger.Debug("composed poster",
		"seed", p.Seed,
		"shapes", len(p.Shapes),
		"palette", p.Palette.Hex(),
		"duration", result.Stats.ComposeTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, info, err := r.RenderWithCacheInfo(ctx, p, result.SceneKey, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo = info
	result.Stats.RenderTime = time.Since(renderStart)
	for _, data := range artifacts {
		result.Stats.Bytes += len(data)
	}

	r.Logger.Info("rendered poster",
		"seed", p.Seed,
		"formats", opts.Formats,
		"cached", len(info.Cached),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Compose validates the compose options and builds the poster, reporting to
// the registered pipeline hooks.
func (r *Runner) Compose(ctx context.Context, opts Options) (*poster.Poster, error) {
	if err := opts.ValidateForCompose(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnComposeStart(ctx, opts.Seed, opts.Config.ShapeCount)
	start := time.Now()
	p, err := Compose(opts)
	hooks.OnComposeComplete(ctx, opts.Seed, time.Since(start), err)
	return p, err
}

// RenderWithCacheInfo serves each requested format from the cache when
// possible and renders the rest. Cache failures degrade to rendering.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p *poster.Poster, sceneKey string, opts Options) (map[string][]byte, CacheInfo, error) {
	var info CacheInfo
	if err := opts.ValidateForRender(); err != nil {
		return nil, info, err
	}
	r.applyLogger(&opts)

	cacheHooks := observability.Cache()
	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string

	for _, format := range opts.Formats {
		if opts.Refresh {
			missing = append(missing, format)
			continue
		}
		key := r.Keyer.ArtifactKey(sceneKey, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("cache read failed", "format", format, "error", err)
		}
		if err == nil && hit {
			cacheHooks.OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			info.Cached = append(info.Cached, format)
			continue
		}
		cacheHooks.OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		info.RenderHit = true
		return artifacts, info, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := renderFormats(ctx, p, opts, missing, artifacts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, info, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(sceneKey, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
	}

	return artifacts, info, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"sync"
	"testing"

	"github.com/matzehuels/wobble/pkg/cache"
	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/observability"
	"github.com/matzehuels/wobble/pkg/poster"
	"github.com/matzehuels/wobble/pkg/random"
)

func testOptions(seed uint64, formats ...string) Options {
	return Options{
		Config:  poster.DefaultConfig(),
		Seed:    seed,
		Formats: formats,
		DPI:     20,
	}
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), testOptions(42, FormatPNG, FormatSVG, FormatJSON, FormatThumbnail))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, f := range []string{FormatPNG, FormatSVG, FormatJSON, FormatThumbnail} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if res.Poster == nil || res.Poster.Seed != 42 {
		t.Fatal("result should carry the composed poster")
	}
	if res.Stats.Shapes != poster.DefaultShapeCount {
		t.Errorf("Stats.Shapes = %d, want %d", res.Stats.Shapes, poster.DefaultShapeCount)
	}
	if res.Stats.Bytes == 0 {
		t.Error("Stats.Bytes should count artifact sizes")
	}
	if res.Filename(FormatPNG) != "poster-42.png" || res.Filename(FormatThumbnail) != "poster-42.thumb.png" {
		t.Errorf("filenames = %s, %s", res.Filename(FormatPNG), res.Filename(FormatThumbnail))
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(res.Artifacts[FormatThumbnail]))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Height > DefaultThumbnailSize || cfg.Width > DefaultThumbnailSize {
		t.Errorf("thumbnail %dx%d exceeds %d", cfg.Width, cfg.Height, DefaultThumbnailSize)
	}
}

func TestRunnerDeterministic(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	a, err := r.Execute(context.Background(), testOptions(9))
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(context.Background(), testOptions(9))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Artifacts[FormatPNG], b.Artifacts[FormatPNG]) {
		t.Error("same seed and config should produce identical PNG bytes")
	}
}

func TestRunnerCacheHit(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)
	defer r.Close()

	first, err := r.Execute(ctx, testOptions(5, FormatPNG, FormatJSON))
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit || len(first.CacheInfo.Cached) != 0 {
		t.Errorf("first run should miss, got %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, testOptions(5, FormatPNG, FormatJSON))
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit, got %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatPNG], second.Artifacts[FormatPNG]) {
		t.Error("cached PNG should equal the rendered one")
	}

	partial, err := r.Execute(ctx, testOptions(5, FormatPNG, FormatSVG))
	if err != nil {
		t.Fatal(err)
	}
	if partial.CacheInfo.RenderHit || len(partial.CacheInfo.Cached) != 1 {
		t.Errorf("only png should be cached, got %+v", partial.CacheInfo)
	}

	refresh := testOptions(5, FormatPNG)
	refresh.Refresh = true
	again, err := r.Execute(ctx, refresh)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.CacheInfo.Cached) != 0 {
		t.Error("Refresh should bypass cache reads")
	}

	other, err := r.Execute(ctx, testOptions(6, FormatPNG))
	if err != nil {
		t.Fatal(err)
	}
	if other.CacheInfo.RenderHit {
		t.Error("a different seed must not hit the cache")
	}
}

func TestRunnerDPIChangesKey(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)

	if _, err := r.Execute(ctx, testOptions(5, FormatPNG)); err != nil {
		t.Fatal(err)
	}
	opts := testOptions(5, FormatPNG)
	opts.DPI = 30
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("a different DPI must not hit the cache")
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(res.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 210 || cfg.Height != 300 {
		t.Errorf("size = %dx%d, want 210x300", cfg.Width, cfg.Height)
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := testOptions(1)
	opts.Config.ShapeCount = 0
	if _, err := r.Execute(context.Background(), opts); err == nil {
		t.Error("invalid config should fail before drawing")
	}
}

func TestRunnerKeepsExplicitZeros(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	opts := testOptions(1, FormatJSON)
	opts.Config.AlphaRange = poster.Range{}
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() with alpha (0, 0) error = %v", err)
	}
	for i, s := range res.Poster.Shapes {
		if s.Opacity != 0 {
			t.Errorf("shape %d opacity = %g, want 0", i, s.Opacity)
		}
	}

	opts = testOptions(1, FormatJSON)
	opts.Config.MaxWobble = 0
	_, pipeErr := r.Execute(ctx, opts)
	_, composeErr := poster.Compose(opts.Config, random.New(1))
	if !errors.Is(pipeErr, errors.ErrCodeInvalidArgument) {
		t.Errorf("Execute() with max_wobble 0 = %v, want %s", pipeErr, errors.ErrCodeInvalidArgument)
	}
	if errors.GetCode(pipeErr) != errors.GetCode(composeErr) {
		t.Errorf("pipeline code %s differs from Compose code %s", errors.GetCode(pipeErr), errors.GetCode(composeErr))
	}
}

func TestRunnerCanceled(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Execute(ctx, testOptions(1)); err == nil {
		t.Error("canceled context should abort rendering")
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	mu                sync.Mutex
	hits, misses, set int
}

func (h *countingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *countingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set++
}

func TestRunnerCacheHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	r := newFileRunner(t)
	for range 2 {
		if _, err := r.Execute(ctx, testOptions(3, FormatSVG)); err != nil {
			t.Fatal(err)
		}
	}
	if hooks.misses != 1 || hooks.set != 1 || hooks.hits != 1 {
		t.Errorf("hooks = %d misses, %d sets, %d hits; want 1 each", hooks.misses, hooks.set, hooks.hits)
	}
}

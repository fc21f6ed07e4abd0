package poster

import (
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/heart"
	"github.com/matzehuels/wobble/pkg/random"
)

func TestCompose_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	src := random.New(1234)

	a, err := Compose(cfg, src)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	src.Reseed(1234)
	b, err := Compose(cfg, src)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if !reflect.DeepEqual(a.Log(), b.Log()) {
		t.Errorf("shape logs differ:\n%+v\n%+v", a.Log(), b.Log())
	}
	for i := range a.Shapes {
		if !reflect.DeepEqual(a.Shapes[i].Outline, b.Shapes[i].Outline) {
			t.Errorf("shape %d outline differs", i)
		}
	}
	if !reflect.DeepEqual(a.Palette, b.Palette) {
		t.Error("palettes differ")
	}
}

func TestCompose_SeedsDiffer(t *testing.T) {
	a, _ := Compose(DefaultConfig(), random.New(1))
	b, _ := Compose(DefaultConfig(), random.New(2))
	if reflect.DeepEqual(a.Log(), b.Log()) {
		t.Error("different seeds should produce different posters")
	}
}

func TestCompose_Reference(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShapeCount = 1
	cfg.PaletteSize = 1
	cfg.SizeRange = Range{Low: 0.3, High: 0.3}
	cfg.AlphaRange = Range{Low: 0.5, High: 0.5}
	cfg.Points = 5

	p, err := Compose(cfg, random.New(42),
		WithCenter(heart.Point{X: 0.5, Y: 0.5}),
		WithWobble(0),
	)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if len(p.Shapes) != 1 {
		t.Fatalf("len(Shapes) = %d, want 1", len(p.Shapes))
	}

	s := p.Shapes[0]
	want := heart.Outline{
		{X: 0.5, Y: 0.59375},
		{X: 0.8, Y: 0.575},
		{X: 0.5, Y: 0.18125},
		{X: 0.2, Y: 0.575},
		{X: 0.5, Y: 0.59375},
	}
	for i := range want {
		if math.Abs(s.Outline[i].X-want[i].X) > 1e-12 || math.Abs(s.Outline[i].Y-want[i].Y) > 1e-12 {
			t.Errorf("point %d = %+v, want %+v", i, s.Outline[i], want[i])
		}
	}
	if s.Opacity != 0.5 || s.Radius != 0.3 || s.Wobble != 0 {
		t.Errorf("shape = opacity %g radius %g wobble %g", s.Opacity, s.Radius, s.Wobble)
	}
	if s.PaletteIndex != 0 || s.Color != p.Palette[0] {
		t.Errorf("single-color palette should always be chosen, got index %d", s.PaletteIndex)
	}
}

func TestCompose_ReferenceDefaultPoints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShapeCount = 1
	cfg.PaletteSize = 1
	cfg.SizeRange = Range{Low: 0.3, High: 0.3}
	cfg.AlphaRange = Range{Low: 0.5, High: 0.5}

	p, err := Compose(cfg, random.New(42),
		WithCenter(heart.Point{X: 0.5, Y: 0.5}),
		WithWobble(0),
	)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	o := p.Shapes[0].Outline
	if len(o) != 200 {
		t.Fatalf("len(Outline) = %d, want 200", len(o))
	}
	samples := []struct {
		i    int
		want heart.Point
	}{
		{0, heart.Point{X: 0.5, Y: 0.59375}},
		{50, heart.Point{X: 0.7999719630781961, Y: 0.5721857247792986}},
		{100, heart.Point{X: 0.49999881979479854, Y: 0.18132242227394335}},
		{150, heart.Point{X: 0.20025225893774207, Y: 0.5834122721111236}},
		{199, heart.Point{X: 0.5, Y: 0.59375}},
	}
	for _, tt := range samples {
		got := o[tt.i]
		if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
			t.Errorf("point %d = %+v, want %+v", tt.i, got, tt.want)
		}
	}
}

func TestCompose_ForcedCenterKeepsSequence(t *testing.T) {
	cfg := DefaultConfig()
	free, _ := Compose(cfg, random.New(5))
	forced, _ := Compose(cfg, random.New(5), WithCenter(heart.Point{X: 0.5, Y: 0.5}))

	for i := range free.Shapes {
		f, g := free.Shapes[i], forced.Shapes[i]
		if f.Radius != g.Radius || f.Wobble != g.Wobble || f.Opacity != g.Opacity || f.PaletteIndex != g.PaletteIndex {
			t.Errorf("shape %d draws shifted after forcing the center", i)
		}
	}
}

func TestCompose_ShapeParameters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShapeCount = 30
	p, err := Compose(cfg, random.New(99))
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if len(p.Palette) != cfg.PaletteSize {
		t.Errorf("len(Palette) = %d, want %d", len(p.Palette), cfg.PaletteSize)
	}
	for i, s := range p.Shapes {
		if s.Center.X < 0 || s.Center.X >= 1 || s.Center.Y < 0 || s.Center.Y >= 1 {
			t.Errorf("shape %d center %+v outside unit square", i, s.Center)
		}
		if s.Radius < cfg.SizeRange.Low || s.Radius > cfg.SizeRange.High {
			t.Errorf("shape %d radius %g outside %+v", i, s.Radius, cfg.SizeRange)
		}
		if s.Wobble < WobbleFloor || s.Wobble > cfg.MaxWobble {
			t.Errorf("shape %d wobble %g outside [%g, %g]", i, s.Wobble, WobbleFloor, cfg.MaxWobble)
		}
		if s.Opacity < cfg.AlphaRange.Low || s.Opacity > cfg.AlphaRange.High {
			t.Errorf("shape %d opacity %g outside %+v", i, s.Opacity, cfg.AlphaRange)
		}
		if s.Color != p.Palette[s.PaletteIndex] {
			t.Errorf("shape %d color does not match palette index %d", i, s.PaletteIndex)
		}
		if len(s.Outline) != cfg.Points {
			t.Errorf("shape %d has %d points, want %d", i, len(s.Outline), cfg.Points)
		}
	}
}

func TestCompose_Labels(t *testing.T) {
	p, _ := Compose(DefaultConfig(), random.New(1))
	if len(p.Labels) != 2 {
		t.Fatalf("len(Labels) = %d, want 2", len(p.Labels))
	}
	title, sub := p.Labels[0], p.Labels[1]
	if !title.Bold || sub.Bold {
		t.Error("title should be bold, subtitle plain")
	}
	if title.Size <= sub.Size {
		t.Errorf("title size %g should exceed subtitle size %g", title.Size, sub.Size)
	}
	if title.X != TitleX || title.Y != TitleY || sub.X != SubtitleX || sub.Y != SubtitleY {
		t.Error("labels should sit at fixed positions")
	}

	cfg := DefaultConfig()
	cfg.Subtitle = ""
	p, _ = Compose(cfg, random.New(1))
	if len(p.Labels) != 1 {
		t.Errorf("empty subtitle should be skipped, got %d labels", len(p.Labels))
	}
}

func TestCompose_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted size range", func(c *Config) { c.SizeRange = Range{Low: 0.5, High: 0.2} }},
		{"inverted alpha range", func(c *Config) { c.AlphaRange = Range{Low: 0.6, High: 0.2} }},
		{"alpha above one", func(c *Config) { c.AlphaRange = Range{Low: 0.5, High: 1.5} }},
		{"zero shapes", func(c *Config) { c.ShapeCount = 0 }},
		{"zero palette", func(c *Config) { c.PaletteSize = 0 }},
		{"zero size", func(c *Config) { c.SizeRange = Range{Low: 0, High: 0.2} }},
		{"wobble below floor", func(c *Config) { c.MaxWobble = 0.01 }},
		{"wobble too large", func(c *Config) { c.MaxWobble = 3 }},
		{"too few points", func(c *Config) { c.Points = 2 }},
		{"bad background", func(c *Config) { c.Background = "not-a-color" }},
		{"multiline title", func(c *Config) { c.Title = "a\nb" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			p, err := Compose(cfg, random.New(1))
			if !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("Compose() error = %v, want INVALID_ARGUMENT", err)
			}
			if p != nil {
				t.Error("Compose() should not return a partial poster")
			}
		})
	}
}

func TestCompose_NilSource(t *testing.T) {
	if _, err := Compose(DefaultConfig(), nil); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("Compose(nil source) error = %v", err)
	}
}

func TestFilename(t *testing.T) {
	p, _ := Compose(DefaultConfig(), random.New(42))
	if got := p.Filename("png"); got != "poster-42.png" {
		t.Errorf("Filename() = %q, want poster-42.png", got)
	}
}

func TestCompose_WithPoints(t *testing.T) {
	p, err := Compose(DefaultConfig(), random.New(3), WithPoints(12))
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	for i, s := range p.Shapes {
		if len(s.Outline) != 12 {
			t.Errorf("shape %d has %d points, want 12", i, len(s.Outline))
		}
	}
	if p.Config.Points != 12 {
		t.Errorf("Config.Points = %d, want 12", p.Config.Points)
	}

	if _, err := Compose(DefaultConfig(), random.New(3), WithPoints(2)); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("WithPoints(2) error = %v, want INVALID_ARGUMENT", err)
	}
}

package poster

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/heart"
	"github.com/matzehuels/wobble/pkg/palette"
	"github.com/matzehuels/wobble/pkg/random"
)

// Portrait canvas proportions (inches at the nominal export size).
const (
	AspectWidth  = 7.0
	AspectHeight = 10.0
)

// Label positions and sizes in normalized canvas units and points.
const (
	TitleX       = 0.05
	TitleY       = 0.95
	TitleSize    = 18.0
	SubtitleX    = 0.05
	SubtitleY    = 0.91
	SubtitleSize = 11.0
)

// Poster is a composed canvas: a background, filled shapes in draw order and
// two text labels, all in [0, 1]×[0, 1] plotting units with y pointing up.
// Shapes may extend past the unit square; sinks clip them.
type Poster struct {
	Seed       uint64
	Config     Config
	Background colorful.Color
	Palette    palette.Palette
	Shapes     []Shape
	Labels     []Label
}

// Shape is one filled, borderless heart.
type Shape struct {
	Outline      heart.Outline
	Color        colorful.Color
	Opacity      float64
	Center       heart.Point
	Radius       float64
	Wobble       float64
	PaletteIndex int
}

// Label is a single line of text anchored at its baseline-left point.
type Label struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"` // points
	Bold bool    `json:"bold,omitempty"`
}

// ShapeLog is the record of every placement draw made for one shape.
type ShapeLog struct {
	Index        int         `json:"index"`
	Center       heart.Point `json:"center"`
	Radius       float64     `json:"radius"`
	Wobble       float64     `json:"wobble"`
	PaletteIndex int         `json:"palette_index"`
	Color        string      `json:"color"`
	Opacity      float64     `json:"opacity"`
}

// Option adjusts a single Compose call.
type Option func(*composeOptions)

type composeOptions struct {
	center *heart.Point
	wobble *float64
	points int
}

// WithCenter places every shape at p. The center draws are still consumed so
// the rest of the sequence matches an unforced run.
func WithCenter(p heart.Point) Option {
	return func(o *composeOptions) { o.center = &p }
}

// WithWobble forces every shape's wobble amplitude to w, which may be 0 for
// smooth hearts. The amplitude draw is still consumed.
func WithWobble(w float64) Option {
	return func(o *composeOptions) { o.wobble = &w }
}

// WithPoints overrides the configured outline resolution.
func WithPoints(n int) Option {
	return func(o *composeOptions) { o.points = n }
}

// Compose builds a poster from cfg, drawing from src in a fixed order:
// the palette first, then for each shape its center, radius, wobble
// amplitude, per-point multipliers, palette color and opacity.
//
// Reseeding src to the same seed before each call reproduces the same
// poster. cfg is validated up front; nothing is drawn for invalid input.
func Compose(cfg Config, src *random.Source, opts ...Option) (*Poster, error) {
	var o composeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.points != 0 {
		cfg.Points = o.points
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if o.wobble != nil {
		if err := errors.ValidateWithin("wobble", *o.wobble, 0, MaxWobbleLimit); err != nil {
			return nil, err
		}
	}
	if src == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "random source is required")
	}

	bg, err := palette.Parse(cfg.Background)
	if err != nil {
		return nil, err
	}
	pal, err := palette.Random(cfg.PaletteSize, src)
	if err != nil {
		return nil, err
	}

	p := &Poster{
		Seed:       src.Seed(),
		Config:     cfg,
		Background: bg,
		Palette:    pal,
		Shapes:     make([]Shape, 0, cfg.ShapeCount),
	}

	for i := range cfg.ShapeCount {
		s, err := composeShape(cfg, pal, src, &o)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		p.Shapes = append(p.Shapes, s)
	}

	p.Labels = labels(cfg)
	return p, nil
}

func composeShape(cfg Config, pal palette.Palette, src *random.Source, o *composeOptions) (Shape, error) {
	center := heart.Point{X: src.Float64(), Y: src.Float64()}
	if o.center != nil {
		center = *o.center
	}
	r := src.Uniform(cfg.SizeRange.Low, cfg.SizeRange.High)
	w := src.Uniform(WobbleFloor, cfg.MaxWobble)
	if o.wobble != nil {
		w = *o.wobble
	}

	outline, err := heart.Generate(center, r, cfg.Points, w, src.Points())
	if err != nil {
		return Shape{}, err
	}

	idx := src.IntN(len(pal))
	alpha := src.Uniform(cfg.AlphaRange.Low, cfg.AlphaRange.High)

	return Shape{
		Outline:      outline,
		Color:        pal[idx],
		Opacity:      alpha,
		Center:       center,
		Radius:       r,
		Wobble:       w,
		PaletteIndex: idx,
	}, nil
}

func labels(cfg Config) []Label {
	var out []Label
	if cfg.Title != "" {
		out = append(out, Label{Text: cfg.Title, X: TitleX, Y: TitleY, Size: TitleSize, Bold: true})
	}
	if cfg.Subtitle != "" {
		out = append(out, Label{Text: cfg.Subtitle, X: SubtitleX, Y: SubtitleY, Size: SubtitleSize})
	}
	return out
}

// Log returns the per-shape draw record in shape order.
func (p *Poster) Log() []ShapeLog {
	out := make([]ShapeLog, len(p.Shapes))
	for i, s := range p.Shapes {
		out[i] = ShapeLog{
			Index:        i,
			Center:       s.Center,
			Radius:       s.Radius,
			Wobble:       s.Wobble,
			PaletteIndex: s.PaletteIndex,
			Color:        s.Color.Hex(),
			Opacity:      s.Opacity,
		}
	}
	return out
}

// Filename returns the export name for the poster in the given format,
// keyed by seed.
func (p *Poster) Filename(ext string) string {
	return Filename(p.Seed, ext)
}

// Filename returns "poster-<seed>.<ext>".
func Filename(seed uint64, ext string) string {
	return fmt.Sprintf("poster-%d.%s", seed, ext)
}

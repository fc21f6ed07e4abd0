// Package palette samples poster palettes and parses configured colors.
//
// Colors are [colorful.Color] values: RGB triples with each channel in
// [0, 1], which is the representation the composer and every sink share.
package palette

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/wobble/pkg/errors"
)

// Source is the uniform [0, 1) source palettes are drawn from.
type Source interface {
	Float64() float64
}

// Palette is a fixed set of colors sampled once per poster.
type Palette []colorful.Color

// Random draws k independent uniform RGB triples, consuming exactly 3k
// draws from src in R, G, B order. Duplicates are possible.
func Random(k int, src Source) (Palette, error) {
	if err := errors.ValidateMinCount("palette size", k, 1); err != nil {
		return nil, err
	}
	p := make(Palette, k)
	for i := range p {
		r := src.Float64()
		g := src.Float64()
		b := src.Float64()
		p[i] = colorful.Color{R: r, G: g, B: b}
	}
	return p, nil
}

// Hex returns the palette as "#rrggbb" strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.Hex()
	}
	return out
}

// Parse reads a color given as "#rrggbb", "#rgb", or an "r,g,b" triple of
// floats in [0, 1], e.g. "0.98,0.98,0.97".
func Parse(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return colorful.Color{}, errors.New(errors.ErrCodeInvalidArgument, "color cannot be empty")
	}
	if strings.Contains(s, ",") {
		return parseTriple(s)
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, errors.Wrap(errors.ErrCodeInvalidArgument, err, "invalid color %q", s)
	}
	return c, nil
}

func parseTriple(s string) (colorful.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return colorful.Color{}, errors.New(errors.ErrCodeInvalidArgument, "color triple %q must have 3 components", s)
	}
	var ch [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return colorful.Color{}, errors.Wrap(errors.ErrCodeInvalidArgument, err, "invalid color component %q", part)
		}
		if err := errors.ValidateWithin("color component", v, 0, 1); err != nil {
			return colorful.Color{}, err
		}
		ch[i] = v
	}
	return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) colorful.Color {
	c, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("palette: %v", err))
	}
	return c
}

// WithAlpha converts c to a non-premultiplied color with the given opacity.
func WithAlpha(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}

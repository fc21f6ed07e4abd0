package render

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/wobble/pkg/fonts"
	"github.com/matzehuels/wobble/pkg/poster"
)

// svgUnitsPerInch sets the viewBox precision; svgo only takes integers.
const svgUnitsPerInch = 1000

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	embedFonts bool
}

// WithEmbeddedFonts inlines the label fonts as base64 @font-face rules so the
// document renders identically without the Go fonts installed.
func WithEmbeddedFonts() SVGOption {
	return func(r *svgRenderer) { r.embedFonts = true }
}

// RenderSVG writes the poster as a 7in×10in SVG document. Shapes become
// polygons in draw order, clipped to the canvas.
func RenderSVG(p *poster.Poster, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	c := NewCanvas(svgUnitsPerInch)
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.StartviewUnit(int(poster.AspectWidth), int(poster.AspectHeight), "in", 0, 0, c.Width, c.Height)
	canvas.Title(titleOf(p))

	canvas.Def()
	canvas.ClipPath(`id="canvas"`)
	canvas.Rect(0, 0, c.Width, c.Height)
	canvas.ClipEnd()
	if r.embedFonts {
		canvas.Style("text/css", fontFaceCSS())
	}
	canvas.DefEnd()

	canvas.Rect(0, 0, c.Width, c.Height, "fill:"+p.Background.Hex())

	canvas.Group(`clip-path="url(#canvas)"`)
	for _, s := range p.Shapes {
		xs := make([]int, len(s.Outline))
		ys := make([]int, len(s.Outline))
		for i, pt := range s.Outline {
			xs[i] = int(math.Round(c.X(pt.X)))
			ys[i] = int(math.Round(c.Y(pt.Y)))
		}
		canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;fill-opacity:%.4f;stroke:none", s.Color.Hex(), s.Opacity))
	}
	canvas.Gend()

	for _, l := range p.Labels {
		canvas.Text(int(math.Round(c.X(l.X))), int(math.Round(c.Y(l.Y))), l.Text, labelStyle(c, l))
	}

	canvas.End()
	return buf.Bytes()
}

func labelStyle(c Canvas, l poster.Label) string {
	weight := "normal"
	if l.Bold {
		weight = "bold"
	}
	return fmt.Sprintf("font-family:%s;font-size:%.1fpx;font-weight:%s;fill:%s",
		fonts.FallbackFontFamily, c.Points(l.Size), weight, TextColor)
}

func titleOf(p *poster.Poster) string {
	for _, l := range p.Labels {
		if l.Bold {
			return l.Text
		}
	}
	return p.Filename("svg")
}

func fontFaceCSS() string {
	const face = `@font-face { font-family: '%s'; font-weight: %s; src: url(data:font/ttf;base64,%s) format('truetype'); }`
	return fmt.Sprintf(face, fonts.FontFamily, "normal", fonts.RegularBase64()) + "\n" +
		fmt.Sprintf(face, fonts.FontFamily, "bold", fonts.BoldBase64())
}

package render

import (
	"bytes"

	"github.com/fogleman/gg"

	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/fonts"
	"github.com/matzehuels/wobble/pkg/palette"
	"github.com/matzehuels/wobble/pkg/poster"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	dpi float64
}

// WithDPI sets the export resolution (default 300, giving 2100×3000 pixels).
func WithDPI(dpi float64) PNGOption {
	return func(r *pngRenderer) { r.dpi = dpi }
}

// RenderPNG rasterizes the poster: background first, then every shape in
// order with its opacity blended over what is already drawn, then labels.
func RenderPNG(p *poster.Poster, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{dpi: DefaultDPI}
	for _, opt := range opts {
		opt(&r)
	}
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "poster is required")
	}
	if err := ValidateDPI(r.dpi); err != nil {
		return nil, err
	}

	c := NewCanvas(r.dpi)
	dc := gg.NewContext(c.Width, c.Height)
	dc.SetColor(p.Background)
	dc.Clear()

	for _, s := range p.Shapes {
		if len(s.Outline) == 0 {
			continue
		}
		dc.NewSubPath()
		for i, pt := range s.Outline {
			if i == 0 {
				dc.MoveTo(c.X(pt.X), c.Y(pt.Y))
			} else {
				dc.LineTo(c.X(pt.X), c.Y(pt.Y))
			}
		}
		dc.ClosePath()
		dc.SetColor(palette.WithAlpha(s.Color, s.Opacity))
		dc.Fill()
	}

	if err := drawLabels(dc, c, p.Labels); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderingFailure, err, "encode png")
	}
	return withPhysicalSize(buf.Bytes(), r.dpi)
}

func drawLabels(dc *gg.Context, c Canvas, labels []poster.Label) error {
	dc.SetColor(palette.MustParse(TextColor))
	for _, l := range labels {
		face, err := fonts.Face(l.Size, c.DPI, l.Bold)
		if err != nil {
			return errors.Wrap(errors.ErrCodeRenderingFailure, err, "load font")
		}
		dc.SetFontFace(face)
		dc.DrawString(l.Text, c.X(l.X), c.Y(l.Y))
		face.Close()
	}
	return nil
}

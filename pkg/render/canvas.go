package render

import (
	"math"

	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/poster"
)

// Resolution limits for raster export.
const (
	DefaultDPI = 300.0
	MinDPI     = 10.0
	MaxDPI     = 1200.0
)

// TextColor is the label fill.
const TextColor = "#000000"

// Canvas is the pixel geometry of a poster at a given resolution.
type Canvas struct {
	Width  int
	Height int
	DPI    float64
}

// NewCanvas returns the 7:10 portrait canvas for dpi.
func NewCanvas(dpi float64) Canvas {
	return Canvas{
		Width:  int(math.Round(poster.AspectWidth * dpi)),
		Height: int(math.Round(poster.AspectHeight * dpi)),
		DPI:    dpi,
	}
}

// ValidateDPI rejects resolutions outside [MinDPI, MaxDPI].
func ValidateDPI(dpi float64) error {
	if math.IsNaN(dpi) || dpi < MinDPI || dpi > MaxDPI {
		return errors.New(errors.ErrCodeInvalidArgument, "dpi must be within [%g, %g], got %g", MinDPI, MaxDPI, dpi)
	}
	return nil
}

// X maps a normalized x coordinate to pixels.
func (c Canvas) X(x float64) float64 { return x * float64(c.Width) }

// Y maps a normalized y coordinate to pixels, flipping the axis.
func (c Canvas) Y(y float64) float64 { return (1 - y) * float64(c.Height) }

// Points converts a font size in points to pixels.
func (c Canvas) Points(pt float64) float64 { return pt * c.DPI / 72 }

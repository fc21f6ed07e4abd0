package heart

import (
	"math"

	"github.com/matzehuels/wobble/pkg/errors"
)

// MinPoints is the smallest point count that still describes a closed area.
const MinPoints = 3

// DefaultPoints is the point count used when callers don't specify one.
const DefaultPoints = 200

// baseScale is the extent of the raw parametric curve on the x axis.
const baseScale = 16.0

// MaxExtent is the largest distance of a normalized curve point from the
// center, reached at the cusp (t = π) where y = -17/16. x stays within ±1.
const MaxExtent = 17.0 / baseScale

// Rand is the uniform [0, 1) source consumed for wobble multipliers.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// Point is a 2-D coordinate in plotting units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline is an ordered, implicitly closed sequence of points.
type Outline []Point

// Base evaluates the normalized heart curve at parameter t.
// x lies within [-1, 1] and y within [-MaxExtent, 1].
func Base(t float64) Point {
	s := math.Sin(t)
	x := baseScale * s * s * s
	y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
	return Point{X: x / baseScale, Y: y / baseScale}
}

// Multipliers draws n per-point wobble factors uniform in
// [1 - w/2, 1 + w/2). With w == 0 every factor is exactly 1 and rng is
// not consulted.
func Multipliers(n int, w float64, rng Rand) []float64 {
	m := make([]float64, n)
	for i := range m {
		if w == 0 {
			m[i] = 1
			continue
		}
		m[i] = 1 + w*(rng.Float64()-0.5)
	}
	return m
}

// Generate returns n points tracing a heart centered on center and scaled by
// r, with every point's distance from the center jittered by a wobble
// multiplier drawn from rng.
//
// t sweeps [0, 2π] inclusive so the first and last points of a smooth
// (w == 0) heart coincide.
func Generate(center Point, r float64, n int, w float64, rng Rand) (Outline, error) {
	if err := validate(center, r, n, w); err != nil {
		return nil, err
	}
	if w > 0 && rng == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "wobble %g requires a random source", w)
	}

	wobble := Multipliers(n, w, rng)
	step := 2 * math.Pi / float64(n-1)

	out := make(Outline, n)
	for i := range out {
		b := Base(float64(i) * step)
		k := r * wobble[i]
		out[i] = Point{
			X: center.X + b.X*k,
			Y: center.Y + b.Y*k,
		}
	}
	return out, nil
}

func validate(center Point, r float64, n int, w float64) error {
	if err := errors.ValidateFinite("center x", center.X); err != nil {
		return err
	}
	if err := errors.ValidateFinite("center y", center.Y); err != nil {
		return err
	}
	if err := errors.ValidatePositive("radius", r); err != nil {
		return err
	}
	if err := errors.ValidateMinCount("point count", n, MinPoints); err != nil {
		return err
	}
	if err := errors.ValidateFinite("wobble", w); err != nil {
		return err
	}
	if w < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "wobble must not be negative, got %g", w)
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the outline.
// An empty outline yields zero points.
func (o Outline) Bounds() (lo, hi Point) {
	if len(o) == 0 {
		return Point{}, Point{}
	}
	lo, hi = o[0], o[0]
	for _, p := range o[1:] {
		lo.X = min(lo.X, p.X)
		lo.Y = min(lo.Y, p.Y)
		hi.X = max(hi.X, p.X)
		hi.Y = max(hi.Y, p.Y)
	}
	return lo, hi
}

// Closed reports whether the first and last points coincide within tol.
func (o Outline) Closed(tol float64) bool {
	if len(o) < 2 {
		return false
	}
	first, last := o[0], o[len(o)-1]
	return math.Abs(first.X-last.X) <= tol && math.Abs(first.Y-last.Y) <= tol
}

// XY splits the outline into separate coordinate slices.
func (o Outline) XY() (xs, ys []float64) {
	xs = make([]float64, len(o))
	ys = make([]float64, len(o))
	for i, p := range o {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

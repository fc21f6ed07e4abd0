// Package heart generates wobbly heart outlines.
//
// # Curve
//
// The outline is the classic quartic-harmonic heart:
//
//	x(t) = 16·sin³(t)
//	y(t) = 13·cos(t) − 5·cos(2t) − 2·cos(3t) − cos(4t)
//
// Both coordinates are divided by 16, which maps the curve into [-1, 1] on
// the x axis and [-17/16, 1] on the y axis, with the cusp pointing down
// (y up). The cusp is the point farthest from the center, at [MaxExtent].
//
// # Wobble
//
// Each sampled point is pushed toward or away from the center by its own
// multiplier 1 + w·(U − 0.5), the same factor on both axes. The result is an
// organic outline whose distance from the center never exceeds
// r·MaxExtent·(1 + w/2).
//
// # Usage
//
//	rng := rand.New(rand.NewPCG(42, 42^0xdeadbeef))
//	outline, err := heart.Generate(heart.Point{X: 0.5, Y: 0.5}, 0.3, 200, 0.15, rng)
//	if err != nil {
//	    return err
//	}
//	lo, hi := outline.Bounds()
//
// Generate retains no state between calls.
package heart

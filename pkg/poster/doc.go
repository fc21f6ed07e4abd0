// Package poster composes generative posters out of wobbly hearts.
//
// # Overview
//
// A poster is a portrait canvas (7:10) spanning [0, 1]×[0, 1] plotting
// units. [Compose] samples a palette, then places [Config.ShapeCount]
// hearts with random center, size, wobble, palette color and opacity, and
// finally adds a title and subtitle near the top-left corner.
//
// The result is a [Poster]: a scene description in draw order. Turning it
// into pixels or markup is the job of the render sinks.
//
// # Reproducibility
//
// Every random draw comes from an explicit [random.Source]. The draw order
// is fixed (palette, then per shape: center, radius, wobble amplitude,
// per-point multipliers, color, opacity), so
//
//	src := random.New(seed)
//	a, _ := poster.Compose(cfg, src)
//	src.Reseed(seed)
//	b, _ := poster.Compose(cfg, src)
//
// yields identical posters. [Poster.Log] exposes every draw for comparison.
//
// # Configuration
//
// [Config] can be built in code, starting from [DefaultConfig], or loaded
// from TOML with [LoadConfig]:
//
//	title = "Generative Poster"
//	subtitle = "Week 2 • Arts & Advanced Big Data"
//	shape_count = 8
//	palette_size = 6
//	max_wobble = 0.25
//	background = "#fafaf7"
//
//	[alpha_range]
//	low = 0.25
//	high = 0.6
//
//	[size_range]
//	low = 0.15
//	high = 0.45
//
// [Config.Validate] rejects inverted ranges, zero counts and unparsable
// colors with an INVALID_ARGUMENT error before anything is drawn.
package poster

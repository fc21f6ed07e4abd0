// Package random provides the seeded random source shared by palette
// sampling and poster composition.
//
// A [Source] is an explicit value rather than process-wide state: callers
// create one per poster (or [Source.Reseed] an existing one) immediately
// before composing. Two independent PCG streams are derived from the single
// seed:
//
//   - the placement stream feeds palette colors, centers, radii, wobble
//     amplitudes, color choices and opacities
//   - the points stream feeds the per-point wobble multipliers of each
//     outline
//
// Both streams are pure functions of the seed, so the same seed always
// reproduces the same poster.
package random

import "math/rand/v2"

// Stream tags mixed into the second PCG word so that the two streams never
// share state even though they start from the same seed.
const (
	placementTag = 0xdeadbeef
	pointsTag    = 0x9e3779b97f4a7c15
)

// Source is a reseedable pair of random streams.
// A Source is not safe for concurrent use.
type Source struct {
	seed uint64

	placementPCG *rand.PCG
	pointsPCG    *rand.PCG

	placement *rand.Rand
	points    *rand.Rand
}

// New returns a Source seeded with seed.
func New(seed uint64) *Source {
	s := &Source{
		placementPCG: rand.NewPCG(0, 0),
		pointsPCG:    rand.NewPCG(0, 0),
	}
	s.placement = rand.New(s.placementPCG)
	s.points = rand.New(s.pointsPCG)
	s.Reseed(seed)
	return s
}

// Reseed rewinds both streams to the start of the sequence for seed.
func (s *Source) Reseed(seed uint64) {
	s.seed = seed
	s.placementPCG.Seed(seed, seed^placementTag)
	s.pointsPCG.Seed(seed^pointsTag, seed)
}

// Seed returns the seed the source was last (re)seeded with.
func (s *Source) Seed() uint64 { return s.seed }

// Float64 returns a placement draw uniform in [0, 1).
func (s *Source) Float64() float64 { return s.placement.Float64() }

// Uniform returns a placement draw uniform between lo and hi.
// lo > hi is accepted and mirrors the interval.
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.placement.Float64()
}

// IntN returns a placement draw uniform in [0, n). It panics if n <= 0.
func (s *Source) IntN(n int) int { return s.placement.IntN(n) }

// Points returns the per-point wobble stream.
func (s *Source) Points() *rand.Rand { return s.points }

// NewSeed returns a fresh non-deterministic seed for callers that did not
// ask for a specific one.
func NewSeed() uint64 {
	return rand.Uint64()
}

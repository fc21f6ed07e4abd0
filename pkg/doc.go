// Package pkg provides the core libraries for wobble poster generation.
//
// # Overview
//
// Wobble composes portrait posters from randomly placed, colored and wobbled
// heart outlines. The pkg directory is organized into:
//
//  1. [random] - Seeded random source; the same seed gives the same poster
//  2. [heart] - Parametric heart outlines and the wobble perturbation
//  3. [palette] - Color parsing and random palettes
//  4. [poster] - Poster configuration (TOML) and scene composition
//  5. [render] - PNG, SVG, PDF, JSON and thumbnail output
//  6. [pipeline] - Orchestration (compose → render) with artifact caching
//  7. [cache] - File, Redis and null artifact caches
//
// # Architecture
//
// The typical data flow through wobble:
//
//	Config + seed
//	     ↓
//	[poster] package (draw palette and shapes)
//	     ↓
//	[render] package (encode each format)
//	     ↓
//	PNG/SVG/PDF/JSON output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/wobble/pkg/poster"
//	    "github.com/matzehuels/wobble/pkg/random"
//	    "github.com/matzehuels/wobble/pkg/render"
//	)
//
//	p, err := poster.Compose(poster.DefaultConfig(), random.New(42))
//	if err != nil {
//	    return err
//	}
//	png, err := render.RenderPNG(p, render.WithDPI(300))
//
// The CLI, TUI and HTTP server all go through [pipeline.Runner], which adds
// validation, caching and observability hooks.
package pkg

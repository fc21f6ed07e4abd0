// Package render turns a composed [poster.Poster] into output files.
//
// # Overview
//
// A poster is drawn in normalized units (x right, y up, both in [0, 1]).
// Every sink maps those units onto a 7:10 portrait [Canvas] whose pixel size
// depends on the export resolution:
//
//	x_px = x · width
//	y_px = (1 − y) · height
//
// Shapes extending beyond the unit square are clipped to the canvas.
//
// This package provides:
//
//   - PNG: Raster output drawn with fogleman/gg, tagged with its DPI
//   - SVG: Vector output written with ajstarks/svgo
//   - PDF: Print output converted from SVG (requires rsvg-convert)
//   - JSON: The scene description and per-shape draw log
//   - Thumbnail: A downscaled PNG preview via disintegration/imaging
//
// # Usage
//
//	png, err := render.RenderPNG(p, render.WithDPI(300))
//	svg := render.RenderSVG(p)
//	pdf, err := render.RenderPDF(p)
//	thumb, err := render.Thumbnail(png, 256)
//
// PNG output is a pure function of the poster and the DPI: the same seed and
// configuration always encode to the same bytes.
package render

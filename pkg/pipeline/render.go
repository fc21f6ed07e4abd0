package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/poster"
	"github.com/matzehuels/wobble/pkg/random"
	"github.com/matzehuels/wobble/pkg/render"
)

// Compose builds the poster described by opts from a fresh source seeded
// with opts.Seed.
func Compose(opts Options) (*poster.Poster, error) {
	return poster.Compose(opts.Config, random.New(opts.Seed), opts.ComposeOptions()...)
}

// Render generates output artifacts in the requested formats.
// A thumbnail reuses the PNG rendered in the same call when there is one.
func Render(ctx context.Context, p *poster.Poster, opts Options) (map[string][]byte, error) {
	return renderFormats(ctx, p, opts, opts.Formats, nil)
}

// renderFormats renders formats; have holds artifacts already available
// from the cache, used as the thumbnail source.
func renderFormats(ctx context.Context, p *poster.Poster, opts Options, formats []string, have map[string][]byte) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))

	for _, format := range formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		var err error

		switch format {
		case FormatPNG:
			data, err = render.RenderPNG(p, render.WithDPI(opts.DPI))
		case FormatSVG:
			data = render.RenderSVG(p, svgOptions(opts)...)
		case FormatPDF:
			data, err = render.RenderPDF(p, render.WithPDFSVGOptions(svgOptions(opts)...))
		case FormatJSON:
			data, err = render.RenderJSON(p)
		case FormatThumbnail:
			full := artifacts[FormatPNG]
			if full == nil {
				full = have[FormatPNG]
			}
			data, err = renderThumbnail(p, opts, full)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderThumbnail(p *poster.Poster, opts Options, full []byte) ([]byte, error) {
	if full == nil {
		var err error
		if full, err = render.RenderPNG(p, render.WithDPI(opts.DPI)); err != nil {
			return nil, err
		}
	}
	size := opts.ThumbnailSize
	if size == 0 {
		size = DefaultThumbnailSize
	}
	return render.Thumbnail(full, size)
}

func svgOptions(opts Options) []render.SVGOption {
	var svgOpts []render.SVGOption
	if opts.EmbedFonts {
		svgOpts = append(svgOpts, render.WithEmbeddedFonts())
	}
	return svgOpts
}

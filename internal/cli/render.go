package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/pipeline"
)

// stdoutPath selects standard output for a single-format render.
const stdoutPath = "-"

// outputFlags holds the flags shared by render and batch.
type outputFlags struct {
	formats    string
	dpi        float64
	thumbnail  int
	embedFonts bool
	refresh    bool
	output     string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.formats, "format", "f", pipeline.FormatPNG, "output format(s): png, svg, pdf, json, thumbnail (comma-separated)")
	fs.Float64Var(&f.dpi, "dpi", pipeline.DefaultDPI, "raster resolution in dots per inch")
	fs.IntVar(&f.thumbnail, "thumbnail-size", pipeline.DefaultThumbnailSize, "longest thumbnail edge in pixels")
	fs.BoolVar(&f.embedFonts, "embed-fonts", false, "embed the label fonts in SVG and PDF output")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached artifacts")
	fs.StringVarP(&f.output, "output", "o", ".", "output directory (- writes a single format to stdout)")
}

// apply copies the render flags onto opts.
func (f *outputFlags) apply(opts *pipeline.Options) {
	opts.Formats = pipeline.ParseFormats(f.formats)
	opts.DPI = f.dpi
	opts.ThumbnailSize = f.thumbnail
	opts.EmbedFonts = f.embedFonts
	opts.Refresh = f.refresh
}

// renderCommand creates the render command for a single poster.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		pf    = newPosterFlags()
		of    outputFlags
		cache cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one poster",
		Long: `Render one poster to PNG, SVG, PDF, JSON or a PNG thumbnail.

Files are named poster-<seed>.<ext>. Without --seed a random seed is picked
and printed, so any poster can be reproduced later. Configuration comes from
the defaults, then the config file, then explicit flags.

Results are cached locally for faster subsequent runs.`,
		Example: `  wobble render --seed 42
  wobble render --seed 42 -f png,svg,json -o posters/
  wobble render --shapes 20 --palette 3 --alpha 0.4,0.8 --dpi 600
  wobble render --seed 7 -f svg -o - > poster.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd, pf, &of)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, of.output, cache, !cmd.Flags().Changed("seed"))
		},
	}

	pf.registerScene(cmd, true)
	of.register(cmd)
	cache.register(cmd)

	return cmd
}

// buildOptions assembles pipeline options from the poster and output flags.
func buildOptions(cmd *cobra.Command, pf *posterFlags, of *outputFlags) (pipeline.Options, error) {
	cfg, err := pf.config(cmd)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{Config: cfg, Seed: pf.resolveSeed(cmd)}
	opts.Center, opts.Wobble = pf.forced(cmd)
	of.apply(&opts)
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// runRender executes the pipeline once and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, cache cacheFlags, randomSeed bool) error {
	toStdout := output == stdoutPath
	if toStdout && len(opts.Formats) != 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "--output - needs exactly one format, got %d", len(opts.Formats))
	}

	runner, err := c.newRunner(ctx, cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering poster %d...", opts.Seed))
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if toStdout {
		_, err := os.Stdout.Write(res.Artifacts[opts.Formats[0]])
		return err
	}

	paths, err := writeArtifacts(output, res, opts.Formats)
	if err != nil {
		return err
	}

	printSuccess("Poster rendered")
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Poster.Seed, res.Stats.Shapes, res.Stats.Bytes, res.CacheInfo.RenderHit)
	if randomSeed {
		printNewline()
		printNextStep("Reproduce", fmt.Sprintf("%s render --seed %d", appName, res.Poster.Seed))
	}
	return nil
}

// writeArtifacts writes each requested format into dir under its
// seed-keyed name and returns the paths in format order.
func writeArtifacts(dir string, res *pipeline.Result, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := filepath.Join(dir, res.Filename(f))
		if err := os.WriteFile(path, res.Artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

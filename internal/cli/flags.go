package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/heart"
	"github.com/matzehuels/wobble/pkg/poster"
	"github.com/matzehuels/wobble/pkg/random"
)

// maxBatchSeeds bounds a single batch invocation.
const maxBatchSeeds = 10000

// =============================================================================
// Poster Flags
// =============================================================================

// posterFlags binds every poster configuration field to a flag. Values are
// applied on top of the config file only when the flag was set explicitly.
type posterFlags struct {
	configPath string
	cfg        poster.Config
	alpha      rangeValue
	size       rangeValue
	center     pointValue
	wobble     float64
	seed       uint64
}

func newPosterFlags() *posterFlags {
	cfg := poster.DefaultConfig()
	return &posterFlags{
		cfg:   cfg,
		alpha: rangeValue(cfg.AlphaRange),
		size:  rangeValue(cfg.SizeRange),
	}
}

// registerConfig adds the config file and configuration field flags.
func (f *posterFlags) registerConfig(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "poster config file (default: ~/.config/wobble/poster.toml when present)")
	fs.StringVar(&f.cfg.Title, "title", f.cfg.Title, "title label")
	fs.StringVar(&f.cfg.Subtitle, "subtitle", f.cfg.Subtitle, "subtitle label")
	fs.IntVar(&f.cfg.ShapeCount, "shapes", f.cfg.ShapeCount, "number of hearts")
	fs.IntVar(&f.cfg.PaletteSize, "palette", f.cfg.PaletteSize, "number of palette colors")
	fs.Float64Var(&f.cfg.MaxWobble, "max-wobble", f.cfg.MaxWobble, "upper bound of the per-heart wobble amplitude")
	fs.Var(&f.alpha, "alpha", "opacity range as low,high")
	fs.Var(&f.size, "size", "heart radius range as low,high")
	fs.StringVar(&f.cfg.Background, "background", f.cfg.Background, "background color (#rrggbb or r,g,b in [0,1])")
	fs.IntVar(&f.cfg.Points, "points", f.cfg.Points, "outline points per heart")
}

// registerScene adds the configuration flags plus the per-scene overrides.
func (f *posterFlags) registerScene(cmd *cobra.Command, withSeed bool) {
	f.registerConfig(cmd)
	fs := cmd.Flags()
	fs.Var(&f.center, "center", "force every heart center to x,y")
	fs.Float64Var(&f.wobble, "wobble", 0, "force every heart's wobble amplitude")
	if withSeed {
		fs.Uint64Var(&f.seed, "seed", 0, "random seed (default: pick one and print it)")
	}
}

// config resolves the poster configuration: defaults, then the config
// file, then explicitly set flags.
func (f *posterFlags) config(cmd *cobra.Command) (poster.Config, error) {
	cfg, err := loadConfigFile(f.configPath)
	if err != nil {
		return poster.Config{}, err
	}

	fs := cmd.Flags()
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("title", func() { cfg.Title = f.cfg.Title })
	set("subtitle", func() { cfg.Subtitle = f.cfg.Subtitle })
	set("shapes", func() { cfg.ShapeCount = f.cfg.ShapeCount })
	set("palette", func() { cfg.PaletteSize = f.cfg.PaletteSize })
	set("max-wobble", func() { cfg.MaxWobble = f.cfg.MaxWobble })
	set("alpha", func() { cfg.AlphaRange = poster.Range(f.alpha) })
	set("size", func() { cfg.SizeRange = poster.Range(f.size) })
	set("background", func() { cfg.Background = f.cfg.Background })
	set("points", func() { cfg.Points = f.cfg.Points })
	return cfg, nil
}

// forced returns the center and wobble overrides, nil when not set.
func (f *posterFlags) forced(cmd *cobra.Command) (*heart.Point, *float64) {
	var (
		center *heart.Point
		wobble *float64
	)
	if cmd.Flags().Changed("center") {
		p := heart.Point(f.center)
		center = &p
	}
	if cmd.Flags().Changed("wobble") {
		w := f.wobble
		wobble = &w
	}
	return center, wobble
}

// resolveSeed returns the --seed value, or a fresh seed when it was not set.
func (f *posterFlags) resolveSeed(cmd *cobra.Command) uint64 {
	if cmd.Flags().Changed("seed") {
		return f.seed
	}
	return random.NewSeed()
}

// loadConfigFile reads path, or the default config path when path is empty
// and that file exists. Without either it returns the defaults.
func loadConfigFile(path string) (poster.Config, error) {
	if path == "" {
		def, err := defaultConfigPath()
		if err != nil {
			return poster.DefaultConfig(), nil
		}
		if _, err := os.Stat(def); err != nil {
			return poster.DefaultConfig(), nil
		}
		path = def
	}
	return poster.LoadConfig(path)
}

// =============================================================================
// Flag Values
// =============================================================================

// rangeValue parses "low,high".
type rangeValue poster.Range

func (r *rangeValue) String() string {
	return fmt.Sprintf("%g,%g", r.Low, r.High)
}

func (r *rangeValue) Set(s string) error {
	low, high, err := parsePair(s)
	if err != nil {
		return err
	}
	*r = rangeValue{Low: low, High: high}
	return nil
}

func (r *rangeValue) Type() string { return "low,high" }

// pointValue parses "x,y".
type pointValue heart.Point

func (p *pointValue) String() string {
	return fmt.Sprintf("%g,%g", p.X, p.Y)
}

func (p *pointValue) Set(s string) error {
	x, y, err := parsePair(s)
	if err != nil {
		return err
	}
	*p = pointValue{X: x, Y: y}
	return nil
}

func (p *pointValue) Type() string { return "x,y" }

func parsePair(s string) (float64, float64, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidArgument, "expected two comma-separated numbers, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidArgument, err, "parse %q", a)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidArgument, err, "parse %q", b)
	}
	return x, y, nil
}

// =============================================================================
// Seeds
// =============================================================================

// parseSeeds expands "7", "1-20" or "3,9,12-14" into a seed list, keeping
// order and dropping duplicates.
func parseSeeds(s string) ([]uint64, error) {
	var seeds []uint64
	seen := make(map[uint64]bool)
	add := func(v uint64) error {
		if seen[v] {
			return nil
		}
		if len(seeds) == maxBatchSeeds {
			return errors.New(errors.ErrCodeInvalidArgument, "too many seeds (max %d)", maxBatchSeeds)
		}
		seen[v] = true
		seeds = append(seeds, v)
		return nil
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.ParseUint(strings.TrimSpace(lo), 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidArgument, err, "seed %q", part)
		}
		to := from
		if isRange {
			if to, err = strconv.ParseUint(strings.TrimSpace(hi), 10, 64); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidArgument, err, "seed %q", part)
			}
			if to < from {
				return nil, errors.New(errors.ErrCodeInvalidArgument, "seed range %q is reversed", part)
			}
			if to-from >= maxBatchSeeds {
				return nil, errors.New(errors.ErrCodeInvalidArgument, "too many seeds (max %d)", maxBatchSeeds)
			}
		}
		for v := from; ; v++ {
			if err := add(v); err != nil {
				return nil, err
			}
			if v == to {
				break
			}
		}
	}

	if len(seeds) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "no seeds in %q", s)
	}
	return seeds, nil
}

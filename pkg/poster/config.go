package poster

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/heart"
	"github.com/matzehuels/wobble/pkg/palette"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultTitle is the headline label.
	DefaultTitle = "Generative Poster"

	// DefaultSubtitle is the secondary label.
	DefaultSubtitle = "Week 2 • Arts & Advanced Big Data"

	// DefaultShapeCount is the number of hearts per poster.
	DefaultShapeCount = 8

	// DefaultPaletteSize is the number of palette colors.
	DefaultPaletteSize = 6

	// DefaultMaxWobble is the upper bound of the per-shape wobble amplitude.
	DefaultMaxWobble = 0.25

	// DefaultBackground is the canvas fill (0.98, 0.98, 0.97).
	DefaultBackground = "#fafaf7"

	// WobbleFloor is the fixed lower bound of the per-shape wobble draw.
	WobbleFloor = 0.05

	// MaxWobbleLimit keeps the smallest multiplier 1 - w/2 non-negative.
	MaxWobbleLimit = 2.0
)

// Default alpha and size ranges.
var (
	DefaultAlphaRange = Range{Low: 0.25, High: 0.6}
	DefaultSizeRange  = Range{Low: 0.15, High: 0.45}
)

// =============================================================================
// Config
// =============================================================================

// Range is a closed (low, high) interval with low <= high.
type Range struct {
	Low  float64 `toml:"low" json:"low"`
	High float64 `toml:"high" json:"high"`
}

// Config is the flat set of poster parameters supplied by a caller.
// Build one from [DefaultConfig]; only an empty background or point count
// is filled in by [Config.SetDefaults].
type Config struct {
	Title       string  `toml:"title" json:"title"`
	Subtitle    string  `toml:"subtitle" json:"subtitle"`
	ShapeCount  int     `toml:"shape_count" json:"shape_count"`
	PaletteSize int     `toml:"palette_size" json:"palette_size"`
	MaxWobble   float64 `toml:"max_wobble" json:"max_wobble"`
	AlphaRange  Range   `toml:"alpha_range" json:"alpha_range"`
	SizeRange   Range   `toml:"size_range" json:"size_range"`
	Background  string  `toml:"background" json:"background"`
	Points      int     `toml:"points" json:"points"`
}

// DefaultConfig returns the configuration of the classic poster.
func DefaultConfig() Config {
	return Config{
		Title:       DefaultTitle,
		Subtitle:    DefaultSubtitle,
		ShapeCount:  DefaultShapeCount,
		PaletteSize: DefaultPaletteSize,
		MaxWobble:   DefaultMaxWobble,
		AlphaRange:  DefaultAlphaRange,
		SizeRange:   DefaultSizeRange,
		Background:  DefaultBackground,
		Points:      heart.DefaultPoints,
	}
}

// SetDefaults fills the background and the point count when they are
// empty. Every other zero value is the caller's choice and goes to
// [Config.Validate] as given: alpha (0, 0) draws invisible shapes and
// max_wobble 0 is rejected. Start from [DefaultConfig] for the usual
// values.
func (c *Config) SetDefaults() {
	if c.Background == "" {
		c.Background = DefaultBackground
	}
	if c.Points == 0 {
		c.Points = heart.DefaultPoints
	}
}

// Validate rejects malformed configuration before any drawing happens.
// Shape and palette counts are not defaulted, so zero is rejected.
func (c Config) Validate() error {
	if err := errors.ValidateLabel("title", c.Title); err != nil {
		return err
	}
	if err := errors.ValidateLabel("subtitle", c.Subtitle); err != nil {
		return err
	}
	if err := errors.ValidateMinCount("shape_count", c.ShapeCount, 1); err != nil {
		return err
	}
	if err := errors.ValidateMinCount("palette_size", c.PaletteSize, 1); err != nil {
		return err
	}
	if err := errors.ValidateWithin("max_wobble", c.MaxWobble, WobbleFloor, MaxWobbleLimit); err != nil {
		return err
	}
	if err := errors.ValidateRange("alpha_range", c.AlphaRange.Low, c.AlphaRange.High); err != nil {
		return err
	}
	if err := errors.ValidateWithin("alpha_range low", c.AlphaRange.Low, 0, 1); err != nil {
		return err
	}
	if err := errors.ValidateWithin("alpha_range high", c.AlphaRange.High, 0, 1); err != nil {
		return err
	}
	if err := errors.ValidateRange("size_range", c.SizeRange.Low, c.SizeRange.High); err != nil {
		return err
	}
	if err := errors.ValidatePositive("size_range low", c.SizeRange.Low); err != nil {
		return err
	}
	if err := errors.ValidateMinCount("points", c.Points, heart.MinPoints); err != nil {
		return err
	}
	if _, err := palette.Parse(c.Background); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// TOML
// =============================================================================

// LoadConfig reads a TOML poster configuration from path. Fields missing
// from the file keep their [DefaultConfig] values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	return cfg, nil
}

// DecodeConfig reads a TOML poster configuration from r on top of the
// defaults.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	return cfg, nil
}

// WriteConfig encodes cfg as TOML to w.
func WriteConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

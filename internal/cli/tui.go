package cli

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/pipeline"
	"github.com/matzehuels/wobble/pkg/poster"
	"github.com/matzehuels/wobble/pkg/random"
)

const (
	// previewDPI keeps preview renders cheap; the thumbnail is scaled down anyway.
	previewDPI       = 36
	previewThumbSize = 160
	previewCols      = 42
)

// Slider styles
var (
	sliderSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	sliderNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	sliderDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	sliderFillStyle     = lipgloss.NewStyle().Foreground(colorRed)
)

// tuiCommand creates the interactive slider UI.
func (c *CLI) tuiCommand() *cobra.Command {
	var (
		pf     = newPosterFlags()
		cache  cacheFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Tweak a poster interactively",
		Long: `Open an interactive editor with sliders for the poster configuration
and a live preview drawn in the terminal.

Keys: ↑/↓ select a slider, ←/→ adjust it, r new seed, s save PNG, q quit.`,
		Example: `  wobble tui
  wobble tui --seed 42 --title "Be Mine" -o posters/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pf.config(cmd)
			if err != nil {
				return err
			}
			center, wobble := pf.forced(cmd)
			base := pipeline.Options{Config: cfg, Center: center, Wobble: wobble}
			return c.runTUI(cmd.Context(), base, pf.resolveSeed(cmd), output, cache)
		},
	}

	pf.registerScene(cmd, true)
	cache.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", ".", "directory for saved posters")

	return cmd
}

func (c *CLI) runTUI(ctx context.Context, base pipeline.Options, seed uint64, output string, cache cacheFlags) error {
	if err := base.Config.Validate(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.Logger = newLogger(io.Discard, c.Logger.GetLevel())

	m := newTUIModel(ctx, runner, base, seed, output)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(*tuiModel); ok && len(fm.saved) > 0 {
		printSuccess("Saved %d posters", len(fm.saved))
		for _, p := range fm.saved {
			printFile(p)
		}
	}
	return nil
}

// =============================================================================
// Sliders
// =============================================================================

// slider edits one numeric configuration field.
type slider struct {
	name     string
	min, max float64
	step     float64
	integer  bool
	get      func(poster.Config) float64
	set      func(*poster.Config, float64)
}

func (s slider) adjust(cfg *poster.Config, dir int) {
	v := s.get(*cfg) + float64(dir)*s.step
	v = math.Round(v/s.step) * s.step
	v = math.Max(s.min, math.Min(s.max, v))
	s.set(cfg, v)
}

func (s slider) format(cfg poster.Config) string {
	if s.integer {
		return fmt.Sprintf("%d", int(s.get(cfg)))
	}
	return fmt.Sprintf("%.2f", s.get(cfg))
}

// ratio is the slider position in [0, 1].
func (s slider) ratio(cfg poster.Config) float64 {
	r := (s.get(cfg) - s.min) / (s.max - s.min)
	return math.Max(0, math.Min(1, r))
}

// configSliders returns the editable fields. Range ends stay ordered: moving
// one end past the other drags it along.
func configSliders() []slider {
	return []slider{
		{
			name: "shapes", min: 1, max: 30, step: 1, integer: true,
			get: func(c poster.Config) float64 { return float64(c.ShapeCount) },
			set: func(c *poster.Config, v float64) { c.ShapeCount = int(v) },
		},
		{
			name: "palette", min: 1, max: 10, step: 1, integer: true,
			get: func(c poster.Config) float64 { return float64(c.PaletteSize) },
			set: func(c *poster.Config, v float64) { c.PaletteSize = int(v) },
		},
		{
			name: "max wobble", min: poster.WobbleFloor, max: 1, step: 0.05,
			get: func(c poster.Config) float64 { return c.MaxWobble },
			set: func(c *poster.Config, v float64) { c.MaxWobble = v },
		},
		{
			name: "alpha low", min: 0, max: 1, step: 0.05,
			get: func(c poster.Config) float64 { return c.AlphaRange.Low },
			set: func(c *poster.Config, v float64) {
				c.AlphaRange.Low = v
				c.AlphaRange.High = math.Max(c.AlphaRange.High, v)
			},
		},
		{
			name: "alpha high", min: 0, max: 1, step: 0.05,
			get: func(c poster.Config) float64 { return c.AlphaRange.High },
			set: func(c *poster.Config, v float64) {
				c.AlphaRange.High = v
				c.AlphaRange.Low = math.Min(c.AlphaRange.Low, v)
			},
		},
		{
			name: "size low", min: 0.1, max: 1, step: 0.05,
			get: func(c poster.Config) float64 { return c.SizeRange.Low },
			set: func(c *poster.Config, v float64) {
				c.SizeRange.Low = v
				c.SizeRange.High = math.Max(c.SizeRange.High, v)
			},
		},
		{
			name: "size high", min: 0.1, max: 1, step: 0.05,
			get: func(c poster.Config) float64 { return c.SizeRange.High },
			set: func(c *poster.Config, v float64) {
				c.SizeRange.High = v
				c.SizeRange.Low = math.Min(c.SizeRange.Low, v)
			},
		},
	}
}

// =============================================================================
// TUI Model
// =============================================================================

// previewMsg carries a finished preview render. gen identifies the edit it
// belongs to so stale renders can be dropped.
type previewMsg struct {
	gen  int
	img  image.Image
	took string
	err  error
}

// savedMsg reports a finished save.
type savedMsg struct {
	paths []string
	err   error
}

// tuiModel is the bubbletea model for the slider editor.
type tuiModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	base   pipeline.Options
	output string

	cfg     poster.Config
	seed    uint64
	sliders []slider
	cursor  int

	gen     int
	preview string
	status  string
	err     error
	saved   []string
}

func newTUIModel(ctx context.Context, runner *pipeline.Runner, base pipeline.Options, seed uint64, output string) *tuiModel {
	return &tuiModel{
		ctx:     ctx,
		runner:  runner,
		base:    base,
		output:  output,
		cfg:     base.Config,
		seed:    seed,
		sliders: configSliders(),
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return m.renderPreview()
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.sliders)-1 {
				m.cursor++
			}
		case "left", "h":
			m.sliders[m.cursor].adjust(&m.cfg, -1)
			return m, m.renderPreview()
		case "right", "l":
			m.sliders[m.cursor].adjust(&m.cfg, 1)
			return m, m.renderPreview()
		case "r":
			m.seed = random.NewSeed()
			return m, m.renderPreview()
		case "s":
			m.status = "saving…"
			return m, m.save()
		}
	case previewMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.err = msg.err
		if msg.err == nil {
			m.preview = halfBlocks(msg.img, previewCols)
			m.status = "rendered in " + msg.took
		}
	case savedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.saved = append(m.saved, msg.paths...)
			m.status = "saved " + strings.Join(msg.paths, ", ")
		}
	}
	return m, nil
}

// options returns the pipeline options for the current edit.
func (m *tuiModel) options(formats ...string) pipeline.Options {
	opts := m.base
	opts.Config = m.cfg
	opts.Seed = m.seed
	opts.Formats = formats
	return opts
}

// renderPreview starts a thumbnail render for the current state.
func (m *tuiModel) renderPreview() tea.Cmd {
	m.gen++
	gen := m.gen
	opts := m.options(pipeline.FormatThumbnail)
	opts.DPI = previewDPI
	opts.ThumbnailSize = previewThumbSize
	ctx, runner := m.ctx, m.runner

	return func() tea.Msg {
		res, err := runner.Execute(ctx, opts)
		if err != nil {
			return previewMsg{gen: gen, err: err}
		}
		img, err := png.Decode(bytes.NewReader(res.Artifacts[pipeline.FormatThumbnail]))
		if err != nil {
			return previewMsg{gen: gen, err: errors.Wrap(errors.ErrCodeRenderingFailure, err, "decode preview")}
		}
		took := (res.Stats.ComposeTime + res.Stats.RenderTime).Round(time.Millisecond).String()
		return previewMsg{gen: gen, img: img, took: took}
	}
}

// save renders the current poster as a full-resolution PNG.
func (m *tuiModel) save() tea.Cmd {
	opts := m.options(pipeline.FormatPNG)
	ctx, runner, dir := m.ctx, m.runner, m.output

	return func() tea.Msg {
		res, err := runner.Execute(ctx, opts)
		if err != nil {
			return savedMsg{err: err}
		}
		paths, err := writeArtifacts(dir, res, opts.Formats)
		return savedMsg{paths: paths, err: err}
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("wobble"))
	b.WriteString("  ")
	b.WriteString(StyleNumber.Render(fmt.Sprintf("seed %d", m.seed)))
	b.WriteString("\n")
	b.WriteString(sliderDimStyle.Render("↑/↓ select  ←/→ adjust  r reseed  s save  q quit"))
	b.WriteString("\n\n")

	var left strings.Builder
	for i, s := range m.sliders {
		cursor := "  "
		style := sliderNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = sliderSelectedStyle
		}
		left.WriteString(style.Render(fmt.Sprintf("%s%-11s", cursor, s.name)))
		left.WriteString(sliderBar(s.ratio(m.cfg), 16))
		left.WriteString(" ")
		left.WriteString(style.Render(s.format(m.cfg)))
		left.WriteString("\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left.String(), "   ", m.preview))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(StyleError.Render(errors.UserMessage(m.err)))
	case m.status != "":
		b.WriteString(sliderDimStyle.Render(m.status))
	}
	b.WriteString("\n")
	return b.String()
}

// sliderBar draws a bar of width cells filled to ratio.
func sliderBar(ratio float64, width int) string {
	filled := int(math.Round(ratio * float64(width)))
	return sliderFillStyle.Render(strings.Repeat("━", filled)) +
		sliderDimStyle.Render(strings.Repeat("─", width-filled))
}

// =============================================================================
// Preview
// =============================================================================

// halfBlocks draws img cols cells wide using upper half blocks: each cell
// shows two vertically stacked pixels as 24-bit foreground and background.
func halfBlocks(img image.Image, cols int) string {
	small := imaging.Resize(img, cols, 0, imaging.Box)
	bounds := small.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var b strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top := small.NRGBAAt(x, y)
			bottom := top
			if y+1 < h {
				bottom = small.NRGBAAt(x, y+1)
			}
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		b.WriteString("\x1b[0m")
		if y+2 < h {
			b.WriteString("\n")
		}
	}
	return b.String()
}

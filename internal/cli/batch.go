package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/wobble/pkg/pipeline"
)

// batchCommand creates the batch command for rendering a seed range.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		pf        = newPosterFlags()
		of        outputFlags
		cache     cacheFlags
		seedsStr  string
		jobs      int
		keepGoing bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Render posters for a range of seeds",
		Long: `Render one poster per seed with a shared configuration.

Seeds are given as a list of values and ranges, for example 1-20 or
3,9,12-14. Posters are rendered in parallel and written as
poster-<seed>.<ext> into the output directory.`,
		Example: `  wobble batch --seeds 1-20 -o posters/
  wobble batch --seeds 1-100 -f thumbnail --jobs 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := parseSeeds(seedsStr)
			if err != nil {
				return err
			}
			if of.output == stdoutPath {
				return fmt.Errorf("batch cannot write to stdout")
			}
			opts, err := buildOptions(cmd, pf, &of)
			if err != nil {
				return err
			}
			return c.runBatch(cmd.Context(), batchParams{
				opts:      opts,
				seeds:     seeds,
				output:    of.output,
				jobs:      jobs,
				keepGoing: keepGoing,
				cache:     cache,
			})
		},
	}

	pf.registerScene(cmd, false)
	of.register(cmd)
	cache.register(cmd)
	cmd.Flags().StringVarP(&seedsStr, "seeds", "s", "1-10", "seeds to render, e.g. 1-20 or 3,9,12-14")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "posters rendered in parallel")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue after a failed seed")

	return cmd
}

type batchParams struct {
	opts      pipeline.Options
	seeds     []uint64
	output    string
	jobs      int
	keepGoing bool
	cache     cacheFlags
}

// batchItem reports one finished seed.
type batchItem struct {
	seed   uint64
	cached bool
	err    error
}

// batchReporter receives per-seed results from the workers.
type batchReporter interface {
	item(batchItem)
	finish()
}

// runBatch renders every seed with at most jobs posters in flight.
func (c *CLI) runBatch(ctx context.Context, p batchParams) error {
	if p.jobs < 1 {
		p.jobs = 1
	}
	if err := p.opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, p.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var rep batchReporter
	var program *tea.Program
	if isatty.IsTerminal(os.Stderr.Fd()) {
		program = tea.NewProgram(newBatchModel(len(p.seeds), cancel), tea.WithOutput(os.Stderr), tea.WithInput(os.Stdin))
		rep = programReporter{program}
		if c.Logger.GetLevel() > log.DebugLevel {
			runner.Logger = newLogger(os.Stderr, log.WarnLevel)
		}
	} else {
		rep = &logReporter{logger: c.Logger, total: len(p.seeds)}
	}

	prog := newProgress(c.Logger)
	var (
		mu     sync.Mutex
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.jobs)

	done := make(chan error, 1)
	go func() {
		for _, seed := range p.seeds {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				opts := p.opts
				opts.Seed = seed
				res, err := runner.Execute(gctx, opts)
				if err == nil {
					_, err = writeArtifacts(p.output, res, opts.Formats)
				}
				item := batchItem{seed: seed, err: err}
				if res != nil {
					item.cached = res.CacheInfo.RenderHit
				}
				rep.item(item)
				if err == nil {
					return nil
				}
				if p.keepGoing {
					mu.Lock()
					failed = append(failed, fmt.Sprintf("%d", seed))
					mu.Unlock()
					return nil
				}
				return fmt.Errorf("seed %d: %w", seed, err)
			})
		}
		done <- g.Wait()
		rep.finish()
	}()

	if program != nil {
		if _, err := program.Run(); err != nil {
			cancel()
			<-done
			return err
		}
	}
	err = <-done
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	rendered := len(p.seeds) - len(failed)
	prog.done(fmt.Sprintf("Rendered %d posters", rendered))
	printSuccess("Batch complete")
	printDetail("Directory: %s", p.output)
	if len(failed) > 0 {
		printWarning("%d seeds failed: %s", len(failed), strings.Join(failed, ", "))
		return fmt.Errorf("%d of %d seeds failed", len(failed), len(p.seeds))
	}
	return nil
}

// =============================================================================
// Reporters
// =============================================================================

type programReporter struct{ p *tea.Program }

func (r programReporter) item(it batchItem) { r.p.Send(it) }
func (r programReporter) finish()           { r.p.Send(batchDoneMsg{}) }

// logReporter logs each seed; used when stderr is not a terminal.
type logReporter struct {
	logger *log.Logger
	total  int

	mu   sync.Mutex
	done int
}

func (r *logReporter) item(it batchItem) {
	r.mu.Lock()
	r.done++
	n := r.done
	r.mu.Unlock()
	if it.err != nil {
		r.logger.Error("poster failed", "seed", it.seed, "error", it.err)
		return
	}
	r.logger.Debug("poster done", "seed", it.seed, "cached", it.cached, "progress", fmt.Sprintf("%d/%d", n, r.total))
}

func (r *logReporter) finish() {}

// =============================================================================
// Batch Progress Model
// =============================================================================

type batchDoneMsg struct{}

// batchModel shows a progress bar while the workers run.
type batchModel struct {
	progress progressbar.Model
	cancel   context.CancelFunc

	total  int
	done   int
	cached int
	failed int
	last   uint64
	finish bool
}

func newBatchModel(total int, cancel context.CancelFunc) *batchModel {
	return &batchModel{
		progress: progressbar.New(
			progressbar.WithDefaultGradient(),
			progressbar.WithWidth(40),
			progressbar.WithoutPercentage(),
		),
		cancel: cancel,
		total:  total,
	}
}

func (m *batchModel) Init() tea.Cmd { return nil }

func (m *batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = max(10, min(msg.Width-30, 50))
	case batchItem:
		m.done++
		m.last = msg.seed
		if msg.err != nil {
			m.failed++
		} else if msg.cached {
			m.cached++
		}
	case batchDoneMsg:
		m.finish = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *batchModel) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m *batchModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Rendering posters"))
	b.WriteString("\n\n  ")
	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("  ")
	b.WriteString(StyleNumber.Render(fmt.Sprintf("%d/%d", m.done, m.total)))
	b.WriteString("\n  ")

	status := fmt.Sprintf("%d cached", m.cached)
	if m.done > 0 {
		status = fmt.Sprintf("last seed %d · %s", m.last, status)
	}
	b.WriteString(StyleDim.Render(status))
	if m.failed > 0 {
		b.WriteString(StyleDim.Render(" · "))
		b.WriteString(StyleError.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	b.WriteString("\n")
	return b.String()
}

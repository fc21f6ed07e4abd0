package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wobble/internal/server"
	"github.com/matzehuels/wobble/pkg/observability"
)

// serveCommand creates the serve command that exposes posters over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cfg     server.Config
		origins string
		cache   cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve posters over HTTP",
		Long: `Serve posters over HTTP.

GET /poster.<format> renders a poster from query parameters (seed, title,
subtitle, shapes, palette, max_wobble, alpha, size, background, points,
center, wobble, dpi, thumbnail_size, embed_fonts). POST /poster.<format>
accepts the same options as JSON. Responses are attachments named
poster-<seed>.<ext> and carry the seed in X-Poster-Seed.`,
		Example: `  wobble serve --addr :8080
  curl -OJ 'localhost:8080/poster.png?seed=42&shapes=12'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if origins != "" {
				for _, o := range strings.Split(origins, ",") {
					cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSpace(o))
				}
			}
			return c.runServe(cmd.Context(), cfg, cache)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Float64Var(&cfg.MaxDPI, "max-dpi", 600, "highest raster resolution a request may ask for")
	cmd.Flags().StringVar(&origins, "cors-origins", "", "allowed CORS origins, comma-separated (default: any)")
	cache.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg server.Config, cache cacheFlags) error {
	runner, err := c.newRunner(ctx, cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	observability.SetHTTPHooks(httpLogHooks{c})

	printSuccess("Serving posters")
	printKeyValue("Address", StyleLink.Render("http://"+displayAddr(cfg.Addr)))
	printNextStep("Try", fmt.Sprintf("curl -OJ 'http://%s/poster.png?seed=42'", displayAddr(cfg.Addr)))
	printNewline()

	return server.New(cfg, runner, c.Logger).ListenAndServe(ctx)
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// httpLogHooks reports slow requests.
type httpLogHooks struct{ c *CLI }

// slowRequest is the latency above which a request is logged as a warning.
const slowRequest = 5 * time.Second

func (h httpLogHooks) OnRequest(_ context.Context, id, method, path string) {
	h.c.Logger.Debug("request start", "id", id, "method", method, "path", path)
}

func (h httpLogHooks) OnResponse(_ context.Context, id, method, path string, status int, d time.Duration) {
	if d > slowRequest {
		h.c.Logger.Warn("slow request", "id", id, "method", method, "path", path, "status", status, "duration", d)
	}
}

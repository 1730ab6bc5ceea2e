// ABOUTME: Root command for the blog CLI
// ABOUTME: Handles global flags and wires config, transport and session for subcommands

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/GasyCoder/blog-web-nextjs/internal/client"
	"github.com/GasyCoder/blog-web-nextjs/internal/config"
	"github.com/GasyCoder/blog-web-nextjs/internal/logger"
	"github.com/GasyCoder/blog-web-nextjs/internal/session"
)

var (
	apiURL     string
	jsonOutput bool
	configFile string
	perPage    int
	timeout    time.Duration
	logLevel   string
)

// Exit codes shared by every command
const (
	exitOK       = 0
	exitRejected = 1
	exitError    = 2
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "CLI for the blog platform",
	Long: `blog is a command-line client for the blog platform API.

It signs in, browses posts page by page, reads and writes threaded comments,
and moderates comments and posts for writers and administrators.

Environment Variables:
  BLOG_API_URL    API base URL (default: http://localhost:8000/api/v1)
  BLOG_PER_PAGE   Page size for list commands (default: 10)
  BLOG_ALL_PROXY  ssh+socks5://user@host:port?private-key=/path tunnel
  BLOG_LOG_LEVEL  debug, info, warn or error (default: warn)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides BLOG_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/blog/blog.yaml)")
	rootCmd.PersistentFlags().IntVar(&perPage, "per-page", 0, "Items per page for list commands")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// app bundles the collaborators a command works with
type app struct {
	cfg     *config.Config
	client  *client.Client
	session *session.Manager
}

// loadConfig resolves configuration from file, env and the global flags
func loadConfig() (*config.Config, error) {
	return config.Load(rootCmd, configFile)
}

// newApp loads configuration, builds the API client and restores any
// persisted session. The session is bound to the client so that a 401 on
// any request signs the user out.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr))

	opts := []client.Option{client.WithTimeout(cfg.Timeout)}
	if cfg.AllProxy != "" {
		dial, err := client.NewSOCKS5DialContext(cfg.AllProxy)
		if err != nil {
			return nil, fmt.Errorf("failed to configure proxy: %w", err)
		}
		opts = append(opts, client.WithDialContext(dial))
	}

	c := client.New(cfg.APIURL, opts...)
	mgr := session.NewManager(c, session.NewFileStore(cfg.ConfigDir))
	c.BindSession(mgr)
	mgr.RestoreSession(ctx)

	slog.Debug("Client ready", "api_url", cfg.APIURL, "state", mgr.State().String())
	return &app{cfg: cfg, client: c, session: mgr}, nil
}

// exitCodeFor maps an error to an exit code. Rejections the user can fix
// (bad input, wrong credentials, missing rights or resources) exit 1,
// everything else exits 2.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, client.ErrValidation),
		errors.Is(err, client.ErrAuthentication),
		errors.Is(err, client.ErrAuthorization),
		errors.Is(err, client.ErrNotFound):
		return exitRejected
	default:
		return exitError
	}
}

// fail prints err with any per-field messages and returns its exit code
func fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %s\n", client.Message(err, err.Error()))

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		fields := make([]string, 0, len(apiErr.Fields))
		for field := range apiErr.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			for _, msg := range apiErr.Fields[field] {
				fmt.Fprintf(w, "  %s: %s\n", field, msg)
			}
		}
	}
	return exitCodeFor(err)
}

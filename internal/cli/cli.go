package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/buildinfo"
	"github.com/matzehuels/kinship/pkg/cache"
	"github.com/matzehuels/kinship/pkg/config"
	"github.com/matzehuels/kinship/pkg/metrics"
	"github.com/matzehuels/kinship/pkg/observability"
	"github.com/matzehuels/kinship/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "kinship"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath  string
	envFile     string
	verbose     bool
	showMetrics bool
	metrics     *metrics.Registry
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Kinship highlights relationships in laid-out family trees",
		Long: `Kinship computes highlighted relationship paths over a laid-out family tree:
ancestry lines, connections between two people, subtrees and tree-wide
selections. Overlapping highlights are merged per edge, culled to a viewport
and exported as JSON render data, Graphviz DOT or SVG.`,
		Version:            buildinfo.Version,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  func(cmd *cobra.Command, _ []string) error { return c.setup(cmd) },
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error { return c.teardown(cmd) },
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file with KINSHIP_* overrides")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&c.showMetrics, "metrics", false, "print Prometheus metrics to stderr on exit")

	root.AddCommand(c.pathCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads configuration layers, applies the log level and installs
// metrics hooks when requested.
func (c *CLI) setup(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(c.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = LogInfo
	}
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))

	if c.showMetrics {
		c.metrics = metrics.NewRegistry()
		c.metrics.Install()
	}
	return nil
}

func (c *CLI) teardown(cmd *cobra.Command) error {
	if c.metrics == nil {
		return nil
	}
	defer observability.Reset()
	return c.metrics.WriteText(cmd.ErrOrStderr())
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache. Keys
// are scoped to the build so upgraded binaries never reuse stale passes.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache {
		cfg.Kind = config.CacheNone
	}
	switch cfg.Kind {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheFile:
		return cache.NewFileCache(cfg.Dir)
	default:
		return cache.NewMemoryCache(cfg.Entries, cfg.TTL), nil
	}
}

// pipelineOptions returns pass options carrying the configured thresholds.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Thresholds: c.Config.Engine.Thresholds,
		Logger:     c.Logger,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the persistent cache directory.
func (c *CLI) cacheDir() string {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir
	}
	return config.CacheDir()
}

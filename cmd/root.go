package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/tradingpost/config"
	"github.com/s0up4200/tradingpost/filter"
	"github.com/s0up4200/tradingpost/spacetraders"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	presets    *filter.Presets
	jsonOutput bool

	version   = "dev"
	buildTime = "unknown"

	// Command flags
	filterExpr string
	preset     string
)

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tradingpost",
	Short: "A command line client for the SpaceTraders API",
	Long: `tradingpost talks to the SpaceTraders game API on behalf of your account.

Every request is paced by a shared scheduler, reference data (systems, goods,
ship, structure and loan types) is loaded once per run, and ship listings can
be narrowed with filter expressions or presets from the config file.`,
	PersistentPreRunE: initializeApp,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

// SetVersion records build information for the version command
func SetVersion(v, built string) {
	version = v
	buildTime = built
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if jsonOutput {
			printJSON(map[string]string{
				"error": err.Error(),
				"kind":  spacetraders.KindOf(err).String(),
			})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "output in JSON format")

	rootCmd.AddCommand(versionCmd)
}

// initializeApp loads the configuration, logger and filter presets
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd == versionCmd {
		return nil
	}

	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging, os.Stderr)

	presets = filter.NewPresets(nil)
	if err := presets.RegisterAll(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter presets: %w", err)
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig, out *os.File) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	// Console format, colored only on a terminal
	tty := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// newClient builds an API client from the loaded configuration. The caller
// owns Start and Stop.
func newClient() (*spacetraders.Client, error) {
	st := cfg.SpaceTraders
	client, err := spacetraders.NewClient(st.Token, logger,
		spacetraders.WithBaseURL(st.BaseURL),
		spacetraders.WithMinInterval(st.MinInterval),
		spacetraders.WithConcurrency(st.Concurrency),
		spacetraders.WithTimeout(st.Timeout),
		spacetraders.WithSystems(st.Systems...),
		spacetraders.WithUserAgent(userAgent(st.UserAgent)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SpaceTraders client: %w", err)
	}

	client.Subscribe(func(e spacetraders.Event) {
		if e.Name == spacetraders.EventStopped {
			logger.Debug().Msg("Session closed")
		}
	})

	return client, nil
}

func userAgent(configured string) string {
	if configured == "" {
		configured = spacetraders.DefaultUserAgent
	}
	if version == "dev" {
		return configured
	}
	return configured + "/" + version
}

// withSession runs fn against a started client and always stops it
func withSession(cmd *cobra.Command, fn func(ctx context.Context, client *spacetraders.Client) error) error {
	ctx, stop := shutdownContext(cmd.Context())
	defer stop()

	client, err := newClient()
	if err != nil {
		return err
	}
	defer stopClient(client)

	logger.Debug().Strs("systems", cfg.SpaceTraders.Systems).Msg("Loading reference data")
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	return fn(ctx, client)
}

func stopClient(client *spacetraders.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Stop(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Warn().Err(err).Msg("Failed to stop session cleanly")
	}
}

// shutdownContext returns a context that cancels on the first SIGINT/SIGTERM
// and force-exits on the second. stop releases the signal handler.
func shutdownContext(parent context.Context) (ctx context.Context, stop func()) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("Received signal, cancelling pending requests")
			cancel()
		case <-done:
			return
		}

		select {
		case sig := <-sigCh:
			logger.Warn().Str("signal", sig.String()).Msg("Received second signal, forcing exit")
			os.Exit(1)
		case <-done:
			return
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			close(done)
			cancel()
		})
	}
}

// resolveFilter returns the filter selected by --filter or --preset, or nil
func resolveFilter() (*filter.ExprFilter, error) {
	f, err := presets.Resolve(preset, filterExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	if f != nil {
		logger.Debug().Str("filter", f.String()).Msg("Filtering results")
	}
	return f, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			printJSON(map[string]string{"version": version, "buildTime": buildTime})
			return
		}
		fmt.Printf("tradingpost %s (built %s)\n", version, buildTime)
	},
}

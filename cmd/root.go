package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/tmdb-resolver/config"
	"github.com/s0up4200/tmdb-resolver/reference"
	"github.com/s0up4200/tmdb-resolver/resolver"
	"github.com/s0up4200/tmdb-resolver/server"
	"github.com/s0up4200/tmdb-resolver/state"
	"github.com/s0up4200/tmdb-resolver/tmdb"
)

var (
	cfgFile        string
	cfg            *config.Config
	logger         zerolog.Logger
	stateStorage   state.Storage[tmdb.State]
	tmdbClient     *tmdb.Client
	movieResolver  *resolver.Resolver
	metricRegistry *prometheus.Registry
	metrics        *server.Metrics

	appVersion = "dev"
	appBuilt   = "unknown"
)

const sentryFlushTimeout = 2 * time.Second

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tmdb-resolver",
	Short: "Resolve movie links to TMDB movie records",
	Long: `tmdb-resolver turns themoviedb.org and imdb.com links or IDs into movie
records with title, year, rating, cover image and canonical links.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	SilenceUsage:       true,
}

// SetVersion sets the version reported by the version command
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuilt = buildTime
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd == versionCmd || cmd.Name() == "help" {
		return nil
	}

	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging).With().Str("version", cfg.AppVersion).Logger()

	if _, err := setupSentry(cfg.SentryDSN, cfg.AppVersion, logger); err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	metricRegistry = prometheus.NewRegistry()
	metrics = server.NewMetrics(metricRegistry)

	stateStorage = state.NewMemory(tmdb.InitialState())

	// Create TMDB client
	tmdbClient, err = tmdb.NewClient(cfg.TMDB.APIToken, stateStorage, logger,
		tmdb.WithAPIURL(cfg.TMDB.APIURL),
		tmdb.WithWebURL(cfg.TMDB.WebURL),
		tmdb.WithTimeout(cfg.TMDB.Timeout),
		tmdb.WithCoverWidth(cfg.TMDB.CoverWidth),
		tmdb.WithCanonicalCacheSize(cfg.TMDB.CanonicalCacheSize),
		tmdb.WithObserver(metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}

	movieResolver = resolver.New(resolver.Deps{
		API:    tmdbClient,
		Parser: reference.NewParser(logger),
		Logger: logger,
	})

	return nil
}

// shutdownApp flushes pending crash reports and releases the state storage
func shutdownApp(cmd *cobra.Command, args []string) error {
	sentry.Flush(sentryFlushTimeout)

	if stateStorage == nil {
		return nil
	}
	return stateStorage.Close()
}

// setupSentry enables crash reporting when a DSN is configured
func setupSentry(dsn, release string, logger zerolog.Logger) (bool, error) {
	if dsn == "" {
		logger.Warn().Msg("Sentry is disabled")
		return false, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	}); err != nil {
		return false, err
	}

	logger.Info().Str("release", release).Msg("Sentry is enabled")
	return true, nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tmdb-resolver %s (built %s)\n", appVersion, appBuilt)
	},
}

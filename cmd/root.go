package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/agroinsight-cli/internal/config"
	"github.com/KaramelBytes/agroinsight-cli/internal/logging"
)

var (
	// Global flags
	cfgFile         string
	debug           bool
	flagReferences  string
	flagMetricsFile string

	// Loaded configuration
	cfg *cfgpkg.Global

	// Per-invocation metrics registry, exported with --metrics-file.
	registry  *prometheus.Registry
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "agroinsight",
	Short: "AgroInsight CLI: zootechnical dataset analysis and diagnostics",
	Long: `AgroInsight analyzes livestock spreadsheets (CSV, TSV, XLSX, JSON), computes
descriptive statistics per column, recognizes zootechnical indicators and produces
a rule-based diagnostic against EMBRAPA/NRC reference ranges.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.agroinsight/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&debug, "verbose", "v", false, "alias for --debug")
	rootCmd.PersistentFlags().StringVar(&flagReferences, "references", "", "YAML file overriding the zootechnical reference ranges")
	rootCmd.PersistentFlags().StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus metrics of this run to a textfile")
}

func setup(cmd *cobra.Command, args []string) error {
	loadConfig()
	c, err := logging.Init(logging.Options{Verbose: debug, Dir: cfg.LogDir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: file logging disabled: %v\n", err)
		c, _ = logging.Init(logging.Options{Verbose: debug})
	}
	logCloser = c
	registry = prometheus.NewRegistry()
	log.Debug().Str("command", cmd.CommandPath()).Str("user", cfg.UserID).Msg("starting")
	return nil
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	// Apply CLI overrides if provided
	if flagReferences != "" {
		cfg.ReferencesFile = flagReferences
	}
	if flagMetricsFile != "" {
		cfg.MetricsFile = flagMetricsFile
	}
}

func teardown(cmd *cobra.Command, args []string) error {
	defer func() {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}()
	if cfg == nil || cfg.MetricsFile == "" || registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(cfg.MetricsFile, registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	log.Debug().Str("file", cfg.MetricsFile).Msg("metrics written")
	return nil
}

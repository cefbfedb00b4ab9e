package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/vdjstat/internal/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagDelimiter string
	flagSheet     string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Logger for the current invocation; replaced by loadConfig.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "vdjstat",
	Short: "Grouped repertoire statistics for BCR/VDJ tables",
	Long: `vdjstat computes group-wise statistics over tabular BCR/VDJ records:
clone counts and frequencies, richness, diversity indices and per-group
Pearson correlations with p-values. Input is CSV, TSV or XLSX; results print as
Markdown or are written as CSV.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
	_ = logger.Sync()
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.vdjstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "input delimiter: ',' | ';' | 'tab' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSheet, "sheet", "", "worksheet to read from an .xlsx input (default first sheet)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	if rootCmd.PersistentFlags().Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	l, err := newLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		return
	}
	logger = l.With(zap.String("run_id", uuid.NewString()))
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = true
	return zc.Build()
}

// settings returns the loaded configuration, or defaults when loading was skipped.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}

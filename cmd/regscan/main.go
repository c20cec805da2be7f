package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"regscan/internal/config"
	"regscan/internal/rules"
)

const version = "0.3.0"

var (
	// Global flags
	cfgFile string
	verbose bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "regscan",
	Short: "regscan - keyword triage for medical-device registry entries",
	Long: `regscan classifies GMDN registry entries (code + description) as
candidates for software-relevant devices using ordered keyword rules:
exclusion patterns always win, strong patterns include, probable patterns
include only when no simplicity indicator is present.

It writes two artifacts per run: a CSV of included entries and a plain-text
summary with per-tier counts. Run metadata is kept in a local SQLite
history database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		logCfg := zap.NewProductionConfig()
		if verbose {
			logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = logCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the regscan version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("regscan %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", filepath.Join(".regscan", "config.yaml"), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(watchCmd)
}

// loadConfig reads the config file (defaults when absent) and applies
// command-line overrides shared by classify and watch.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if flagInput != "" {
		cfg.Input = flagInput
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if flagRules != "" {
		cfg.RulesPath = flagRules
	}
	if flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	if flagSample > 0 {
		cfg.SampleSize = flagSample
	}
	return cfg, nil
}

// loadRules resolves the active rule set: a YAML override when configured,
// the built-in curated set otherwise.
func loadRules(cfg *config.Config) (*rules.RuleSet, error) {
	if cfg.RulesPath != "" {
		return rules.Load(cfg.RulesPath)
	}
	return rules.Default(), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

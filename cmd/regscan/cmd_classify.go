package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"regscan/internal/pipeline"
	"regscan/internal/store"
)

var (
	flagInput     string
	flagOutputDir string
	flagRules     string
	flagWorkers   int
	flagSample    int
	flagNoHistory bool
)

// classifyCmd runs a single triage pass
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the registry and write the CSV + summary artifacts",
	Long: `Runs one triage pass: loads the registry file, classifies every entry
against the active rule set, writes included.csv and summary.txt to the
output directory, and records the run in the history database.

The two artifacts carry no timestamps; classifying the same input with the
same rules twice yields byte-identical files.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&flagInput, "input", "i", "", "registry file (overrides config)")
	classifyCmd.Flags().StringVarP(&flagOutputDir, "output", "o", "", "output directory (overrides config)")
	classifyCmd.Flags().StringVar(&flagRules, "rules", "", "rules YAML file (overrides config)")
	classifyCmd.Flags().IntVar(&flagWorkers, "workers", 0, "classification worker count (0 = GOMAXPROCS)")
	classifyCmd.Flags().IntVar(&flagSample, "sample", 0, "summary sample size")
	classifyCmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "skip the run-history database")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rs, err := loadRules(cfg)
	if err != nil {
		return err
	}

	var history pipeline.History
	if !flagNoHistory && cfg.DatabasePath != "" {
		st, err := store.New(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()
		history = st
	}

	p := pipeline.New(cfg, rs, history, logger)
	result, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	logger.Info("artifacts written",
		zap.String("csv", result.CSVPath),
		zap.String("summary", result.SummaryPath),
	)

	fmt.Println(result.Report.Render())
	fmt.Printf("run %s: %s, %s\n", result.RunID, result.CSVPath, result.SummaryPath)
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"regscan/internal/pipeline"
	"regscan/internal/store"
	"regscan/internal/watch"
)

// watchCmd reruns classification whenever the input or rules change
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rerun classification whenever the input or rules file changes",
	Long: `Performs an initial classification pass, then watches the registry
input file (and the rules file, when one is configured) and reruns the
pipeline after changes settle. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&flagInput, "input", "i", "", "registry file (overrides config)")
	watchCmd.Flags().StringVarP(&flagOutputDir, "output", "o", "", "output directory (overrides config)")
	watchCmd.Flags().StringVar(&flagRules, "rules", "", "rules YAML file (overrides config)")
	watchCmd.Flags().IntVar(&flagWorkers, "workers", 0, "classification worker count (0 = GOMAXPROCS)")
	watchCmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "skip the run-history database")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
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

	// The rule set is reloaded on every pass so rule edits take effect.
	rerun := func(ctx context.Context) error {
		rs, err := loadRules(cfg)
		if err != nil {
			return err
		}
		p := pipeline.New(cfg, rs, history, logger)
		result, err := p.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Report.Render())
		return nil
	}

	ctx := cmd.Context()
	if err := rerun(ctx); err != nil {
		return err
	}

	files := []string{cfg.Input}
	if cfg.RulesPath != "" {
		files = append(files, cfg.RulesPath)
	}
	w, err := watch.New(files, rerun, logger)
	if err != nil {
		return err
	}
	w.Start(ctx)
	defer w.Stop()

	logger.Info("watching for changes", zap.Strings("files", files))
	fmt.Println("Watching for changes (Ctrl-C to stop)...")

	<-ctx.Done()
	return nil
}

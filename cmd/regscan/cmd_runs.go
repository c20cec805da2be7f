package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"regscan/internal/classify"
	"regscan/internal/store"
)

var flagRunsLimit int

// runsCmd groups run-history subcommands
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect past classification runs",
}

// runsListCmd lists recent runs
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory()
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(flagRunsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  in=%d included=%d excluded=%d rules=%s (%s)\n",
				r.ID,
				r.StartedAt.Local().Format(time.RFC3339),
				r.Total, r.Included, r.Excluded,
				r.RulesHash, r.Duration)
		}
		return nil
	},
}

// runsShowCmd prints one run with its tier breakdown
var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run's metadata and tier breakdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory()
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(args[0])
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no run with id %s", args[0])
		}
		if err != nil {
			return err
		}

		outcomes, err := st.GetDecisions(run.ID)
		if err != nil {
			return err
		}
		byTier := make(map[classify.Tier]int, len(classify.Tiers))
		for _, o := range outcomes {
			byTier[o.Decision.Tier]++
		}

		fmt.Printf("Run:       %s\n", run.ID)
		fmt.Printf("Started:   %s\n", run.StartedAt.Local().Format(time.RFC3339))
		fmt.Printf("Input:     %s\n", run.InputPath)
		fmt.Printf("Rules:     %s\n", run.RulesHash)
		fmt.Printf("Duration:  %s\n", run.Duration)
		fmt.Printf("Total:     %d (included %d, excluded %d)\n\n", run.Total, run.Included, run.Excluded)
		for _, tier := range classify.Tiers {
			fmt.Printf("  %-22s %d\n", tier, byTier[tier])
		}
		return nil
	},
}

// openHistory opens the configured history database.
func openHistory() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("run history is disabled (no database path configured)")
	}
	return store.New(cfg.DatabasePath)
}

func init() {
	runsListCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "maximum runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

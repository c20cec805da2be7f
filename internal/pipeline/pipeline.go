// Package pipeline wires the single-pass run together: load the registry,
// classify every entry, write the two output artifacts, and (optionally)
// persist the run to history. All state lives on the stack of Run; the
// pipeline itself is reusable and safe to invoke repeatedly, which is what
// watch mode does.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"regscan/internal/classify"
	"regscan/internal/config"
	"regscan/internal/registry"
	"regscan/internal/report"
	"regscan/internal/rules"
	"regscan/internal/store"
)

// History is the slice of the store the pipeline needs. Nil disables
// persistence.
type History interface {
	SaveRun(run store.RunRecord, outcomes []classify.Outcome) error
}

// Pipeline runs registry triage end to end.
type Pipeline struct {
	cfg     *config.Config
	rules   *rules.RuleSet
	history History
	logger  *zap.Logger
}

// Result summarizes one completed run.
type Result struct {
	RunID       string
	Report      *report.Report
	CSVPath     string
	SummaryPath string
	Duration    time.Duration
}

// New creates a Pipeline. history may be nil.
func New(cfg *config.Config, rs *rules.RuleSet, history History, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, rules: rs, history: history, logger: logger}
}

// Run executes one load -> classify -> report -> persist pass.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	runID := uuid.NewString()

	records, err := registry.Load(p.cfg.Input)
	if err != nil {
		return nil, err
	}
	p.logger.Info("loaded registry",
		zap.String("run_id", runID),
		zap.String("input", p.cfg.Input),
		zap.Int("records", len(records)),
	)

	classifier := classify.New(p.rules, p.logger, classify.WithWorkers(p.cfg.Workers))
	outcomes, err := classifier.ClassifyAll(ctx, records)
	if err != nil {
		return nil, err
	}

	rep := report.Build(outcomes)

	if err := os.MkdirAll(p.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := rep.WriteFiles(p.cfg.CSVPath(), p.cfg.SummaryPath(), p.cfg.SampleSize); err != nil {
		return nil, err
	}

	duration := time.Since(started)

	if p.history != nil {
		run := store.RunRecord{
			ID:        runID,
			StartedAt: started,
			InputPath: p.cfg.Input,
			RulesHash: p.rules.Hash(),
			Total:     rep.Stats.Total,
			Included:  rep.Stats.Included,
			Excluded:  rep.Stats.Excluded,
			Duration:  duration,
		}
		if err := p.history.SaveRun(run, outcomes); err != nil {
			// History is bookkeeping; a failed insert should not undo a
			// run whose artifacts are already on disk.
			p.logger.Warn("failed to persist run history", zap.String("run_id", runID), zap.Error(err))
		}
	}

	p.logger.Info("run complete",
		zap.String("run_id", runID),
		zap.Int("included", rep.Stats.Included),
		zap.Int("excluded", rep.Stats.Excluded),
		zap.Duration("duration", duration),
	)

	return &Result{
		RunID:       runID,
		Report:      rep,
		CSVPath:     p.cfg.CSVPath(),
		SummaryPath: p.cfg.SummaryPath(),
		Duration:    duration,
	}, nil
}

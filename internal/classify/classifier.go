// Package classify implements the ordered keyword classification of registry
// entries. The decision procedure is fixed:
//
//	1. Any exclusion pattern match   -> excluded (always wins)
//	2. Any strong pattern match      -> included
//	3. Probable pattern match        -> included, but only when no
//	                                    simplicity term appears
//	4. Otherwise                     -> excluded by default
//
// Classification is pure string matching: deterministic, stateless, and
// byte-for-byte repeatable across runs.
package classify

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"regscan/internal/registry"
	"regscan/internal/rules"
)

// Tier indicates which stage of the decision procedure settled an entry.
type Tier string

// Decision tiers.
const (
	TierExcludedByPattern Tier = "excluded_by_pattern"
	TierStrongInclusion   Tier = "strong_inclusion"
	TierProbableInclusion Tier = "probable_inclusion"
	TierExcludedByDefault Tier = "excluded_by_default"
)

// Tiers lists all tiers in decision order. Reports iterate this instead of a
// map so output ordering stays deterministic.
var Tiers = []Tier{
	TierStrongInclusion,
	TierProbableInclusion,
	TierExcludedByPattern,
	TierExcludedByDefault,
}

// Decision is the result of classifying one description: the boolean verdict
// plus a human-readable justification.
type Decision struct {
	// Included reports whether the entry is a triage candidate.
	Included bool

	// Tier records which stage settled the entry.
	Tier Tier

	// Pattern is the first pattern that matched, empty for default
	// exclusions.
	Pattern string

	// Reason is the justification string written to the CSV output.
	Reason string
}

// Outcome pairs a registry record with its decision.
type Outcome struct {
	Record   registry.Record
	Decision Decision
}

// Classifier evaluates descriptions against a rule set.
type Classifier struct {
	rules   *rules.RuleSet
	workers int
	logger  *zap.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithWorkers sets the batch classification worker count. Values below 1 fall
// back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.workers = n
		}
	}
}

// New creates a Classifier over the given rule set. A nil logger is replaced
// with a no-op logger so library callers need not care.
func New(rs *rules.RuleSet, logger *zap.Logger, opts ...Option) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Classifier{
		rules:   rs,
		workers: runtime.GOMAXPROCS(0),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify evaluates a single description. It is pure: same input, same
// rule set, same decision.
func (c *Classifier) Classify(description string) Decision {
	lower := strings.ToLower(description)

	if p, ok := matchAny(lower, c.rules.Exclusions); ok {
		return Decision{
			Included: false,
			Tier:     TierExcludedByPattern,
			Pattern:  p,
			Reason:   fmt.Sprintf("matches exclusion pattern %q", p),
		}
	}

	if p, ok := matchAny(lower, c.rules.Strong); ok {
		return Decision{
			Included: true,
			Tier:     TierStrongInclusion,
			Pattern:  p,
			Reason:   fmt.Sprintf("matches strong inclusion pattern %q", p),
		}
	}

	if term, simple := matchAny(lower, c.rules.SimplicityTerms); simple {
		// Probable-tier matches are suppressed for simple devices, but
		// the justification should say so when one would have fired.
		if p, ok := matchAny(lower, c.rules.Probable); ok {
			return Decision{
				Included: false,
				Tier:     TierExcludedByDefault,
				Reason:   fmt.Sprintf("probable match %q suppressed by simplicity term %q", p, term),
			}
		}
		return Decision{
			Included: false,
			Tier:     TierExcludedByDefault,
			Reason:   "no inclusion pattern matched",
		}
	}

	if p, ok := matchAny(lower, c.rules.Probable); ok {
		return Decision{
			Included: true,
			Tier:     TierProbableInclusion,
			Pattern:  p,
			Reason:   fmt.Sprintf("matches probable inclusion pattern %q", p),
		}
	}

	return Decision{
		Included: false,
		Tier:     TierExcludedByDefault,
		Reason:   "no inclusion pattern matched",
	}
}

// ClassifyAll classifies a batch of records over a bounded worker pool.
// Results are returned in input order regardless of worker scheduling, so
// batch output is as deterministic as the single-entry path.
func (c *Classifier) ClassifyAll(ctx context.Context, records []registry.Record) ([]Outcome, error) {
	outcomes := make([]Outcome, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = Outcome{Record: rec, Decision: c.Classify(rec.Description)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch classification aborted: %w", err)
	}

	c.logger.Debug("classified batch",
		zap.Int("records", len(records)),
		zap.Int("workers", c.workers),
	)
	return outcomes, nil
}

// matchAny returns the first pattern contained in the lowercased description.
func matchAny(lower string, patterns []string) (string, bool) {
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}

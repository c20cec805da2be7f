// Package report partitions classification outcomes into included and
// excluded buckets and writes the two output artifacts: a CSV listing of the
// included entries and a plain-text summary with per-tier counts and a
// sample. Neither artifact embeds timestamps or run identifiers, so the same
// input always produces byte-identical files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"regscan/internal/classify"
)

// DefaultSampleSize is how many included entries the summary lists when the
// caller does not override it.
const DefaultSampleSize = 10

// Report holds the partitioned, sorted outcomes of one classification run.
type Report struct {
	// Included is sorted by code: numeric codes ascending first, then
	// non-numeric codes in lexical order.
	Included []classify.Outcome

	// Excluded keeps input order; it is only consulted for counts.
	Excluded []classify.Outcome

	Stats Stats
}

// Stats are the summary counts for one run.
type Stats struct {
	Total    int
	Included int
	Excluded int
	ByTier   map[classify.Tier]int
}

// Build partitions outcomes and sorts the included bucket.
func Build(outcomes []classify.Outcome) *Report {
	r := &Report{
		Stats: Stats{
			Total:  len(outcomes),
			ByTier: make(map[classify.Tier]int, len(classify.Tiers)),
		},
	}
	for _, o := range outcomes {
		r.Stats.ByTier[o.Decision.Tier]++
		if o.Decision.Included {
			r.Included = append(r.Included, o)
		} else {
			r.Excluded = append(r.Excluded, o)
		}
	}
	r.Stats.Included = len(r.Included)
	r.Stats.Excluded = len(r.Excluded)

	sort.SliceStable(r.Included, func(i, j int) bool {
		return codeLess(r.Included[i].Record.Code, r.Included[j].Record.Code)
	})
	return r
}

// codeLess orders codes numerically when both parse as integers, places
// numeric codes before non-numeric ones, and falls back to lexical order.
func codeLess(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// WriteCSV writes the included bucket as CSV with a header row.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"code", "description", "tier", "pattern", "reason"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, o := range r.Included {
		row := []string{
			o.Record.Code,
			o.Record.Description,
			string(o.Decision.Tier),
			o.Decision.Pattern,
			o.Decision.Reason,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteSummary writes the plain-text summary: totals, per-tier counts in
// fixed tier order, and a sample of the first sampleSize included entries.
func (r *Report) WriteSummary(w io.Writer, sampleSize int) error {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	var sb strings.Builder
	sb.WriteString("Registry triage summary\n")
	sb.WriteString("=======================\n\n")
	fmt.Fprintf(&sb, "Input rows: %d\n", r.Stats.Total)
	fmt.Fprintf(&sb, "Included:   %d\n", r.Stats.Included)
	fmt.Fprintf(&sb, "Excluded:   %d\n\n", r.Stats.Excluded)

	sb.WriteString("By tier:\n")
	for _, tier := range classify.Tiers {
		fmt.Fprintf(&sb, "  %-22s %d\n", tier, r.Stats.ByTier[tier])
	}

	n := sampleSize
	if n > len(r.Included) {
		n = len(r.Included)
	}
	fmt.Fprintf(&sb, "\nSample of included entries (first %d):\n", n)
	for _, o := range r.Included[:n] {
		code := o.Record.Code
		if code == "" {
			code = "-"
		}
		fmt.Fprintf(&sb, "  %-10s %s\n", code, o.Record.Description)
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// WriteFiles writes both artifacts to the given paths.
func (r *Report) WriteFiles(csvPath, summaryPath string, sampleSize int) error {
	cf, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer cf.Close()
	if err := r.WriteCSV(cf); err != nil {
		return err
	}

	sf, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer sf.Close()
	return r.WriteSummary(sf, sampleSize)
}

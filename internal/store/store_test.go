package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regscan/internal/classify"
	"regscan/internal/registry"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleOutcomes() []classify.Outcome {
	return []classify.Outcome{
		{
			Record: registry.Record{Code: "12345", Description: "Magnetic Resonance Imaging System"},
			Decision: classify.Decision{
				Included: true,
				Tier:     classify.TierStrongInclusion,
				Pattern:  "magnetic resonance",
				Reason:   `matches strong inclusion pattern "magnetic resonance"`,
			},
		},
		{
			Record: registry.Record{Code: "99999", Description: "Examination couch"},
			Decision: classify.Decision{
				Included: false,
				Tier:     classify.TierExcludedByDefault,
				Reason:   "no inclusion pattern matched",
			},
		},
	}
}

func TestSaveAndListRuns(t *testing.T) {
	s := newTestStore(t)

	run := RunRecord{
		ID:        "run-1",
		StartedAt: time.Now(),
		InputPath: "gmdn_terms.txt",
		RulesHash: "abc123",
		Total:     2,
		Included:  1,
		Excluded:  1,
		Duration:  42 * time.Millisecond,
	}
	require.NoError(t, s.SaveRun(run, sampleOutcomes()))

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 1, runs[0].Included)
	assert.Equal(t, "abc123", runs[0].RulesHash)
	assert.Equal(t, 42*time.Millisecond, runs[0].Duration)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		run := RunRecord{
			ID:        id,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			InputPath: "in.txt",
			RulesHash: "h",
		}
		require.NoError(t, s.SaveRun(run, nil))
	}

	runs, err := s.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)
}

func TestGetRunAndDecisions(t *testing.T) {
	s := newTestStore(t)

	run := RunRecord{ID: "run-2", StartedAt: time.Now(), InputPath: "in.txt", RulesHash: "h", Total: 2, Included: 1, Excluded: 1}
	require.NoError(t, s.SaveRun(run, sampleOutcomes()))

	got, err := s.GetRun("run-2")
	require.NoError(t, err)
	assert.Equal(t, "in.txt", got.InputPath)

	outcomes, err := s.GetDecisions("run-2")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "12345", outcomes[0].Record.Code)
	assert.True(t, outcomes[0].Decision.Included)
	assert.Equal(t, classify.TierStrongInclusion, outcomes[0].Decision.Tier)
	assert.False(t, outcomes[1].Decision.Included)
}

func TestGetRunUnknownID(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun("nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	s := newTestStore(t)

	run := RunRecord{ID: "dup", StartedAt: time.Now(), InputPath: "in.txt", RulesHash: "h"}
	require.NoError(t, s.SaveRun(run, nil))
	assert.Error(t, s.SaveRun(run, nil))
}

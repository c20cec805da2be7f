package rules

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	rs := Default()
	if err := rs.Validate(); err != nil {
		t.Fatalf("built-in rule set must validate: %v", err)
	}
}

func TestDefaultCarriesCuratedAnchors(t *testing.T) {
	// These four patterns anchor the classifier's documented behavior.
	rs := Default()
	checks := []struct {
		list    []string
		pattern string
	}{
		{rs.Exclusions, "single-use"},
		{rs.Strong, "magnetic resonance"},
		{rs.Probable, "monitor"},
		{rs.SimplicityTerms, "portable"},
	}
	for _, c := range checks {
		found := false
		for _, p := range c.list {
			if p == c.pattern {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected pattern %q in default rule set", c.pattern)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")

	rs := Default()
	if err := rs.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Exclusions) != len(rs.Exclusions) {
		t.Errorf("expected %d exclusions, got %d", len(rs.Exclusions), len(loaded.Exclusions))
	}
	if loaded.Hash() != rs.Hash() {
		t.Errorf("hash changed across round trip: %s != %s", loaded.Hash(), rs.Hash())
	}
}

func TestLoadNormalizesCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	rs := &RuleSet{
		Exclusions:      []string{"  Single-Use "},
		Strong:          []string{"MAGNETIC RESONANCE"},
		Probable:        []string{"Monitor"},
		SimplicityTerms: []string{"Portable"},
	}
	if err := rs.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Exclusions[0] != "single-use" {
		t.Errorf("expected normalized pattern, got %q", loaded.Exclusions[0])
	}
	if loaded.Strong[0] != "magnetic resonance" {
		t.Errorf("expected normalized pattern, got %q", loaded.Strong[0])
	}
}

func TestValidateRejectsBadSets(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RuleSet)
		wantErr string
	}{
		{
			name:    "empty strong list",
			mutate:  func(rs *RuleSet) { rs.Strong = nil },
			wantErr: "strong list is empty",
		},
		{
			name:    "empty pattern",
			mutate:  func(rs *RuleSet) { rs.Probable = append(rs.Probable, "   ") },
			wantErr: "empty pattern",
		},
		{
			name:    "duplicate pattern",
			mutate:  func(rs *RuleSet) { rs.Exclusions = append(rs.Exclusions, "single-use") },
			wantErr: "duplicate pattern",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := Default()
			tt.mutate(rs)
			err := rs.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHashReflectsContent(t *testing.T) {
	a := Default()
	b := Default()
	if a.Hash() != b.Hash() {
		t.Fatal("identical rule sets must hash identically")
	}
	b.Probable = append(b.Probable, "nebulizer")
	if a.Hash() == b.Hash() {
		t.Fatal("different rule sets must hash differently")
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	rs := &RuleSet{Exclusions: []string{"x"}} // missing three lists
	if err := rs.Save(path); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for incomplete rule set")
	}
}

// Package rules defines the keyword rule sets driving registry triage.
// A rule set carries three ordered pattern lists (exclusion, strong
// inclusion, probable inclusion) plus the simplicity indicator words that
// suppress probable-tier matches. Matching is case-insensitive substring
// search; there is no scoring and no learned component.
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSet holds the curated pattern lists. Pattern order within a list is
// preserved so the reported match is always the first hit, which keeps
// justification strings stable across runs.
type RuleSet struct {
	// Exclusions always win: any match here classifies the entry as
	// excluded regardless of what else matches.
	Exclusions []string `yaml:"exclusions"`

	// Strong patterns mark devices that are near-certainly in scope
	// (complex active equipment, imaging systems, anything naming
	// software outright).
	Strong []string `yaml:"strong"`

	// Probable patterns are weaker signals. They only apply when none of
	// the simplicity terms appear in the description.
	Probable []string `yaml:"probable"`

	// SimplicityTerms flag descriptions of simple or passive devices.
	// Their presence suppresses the probable tier entirely.
	SimplicityTerms []string `yaml:"simplicity_terms"`
}

// Default returns the built-in curated rule set for GMDN device
// descriptions. Users can export it with `regscan rules init` and edit the
// YAML instead of patching the binary.
func Default() *RuleSet {
	return &RuleSet{
		Exclusions: []string{
			"single-use",
			"single use",
			"disposable",
			"gauze",
			"dressing",
			"bandage",
			"suture",
			"swab",
			"glove",
			"drape",
			"syringe, manual",
			"catheter",
			"cannula",
			"guidewire",
			"forceps",
			"scalpel",
			"retractor",
			"speculum",
			"splint",
			"walking stick",
			"crutch",
			"wheelchair, manual",
			"spectacles",
			"contact lens",
			"denture",
			"non-powered",
			"non-sterile",
		},
		Strong: []string{
			"magnetic resonance",
			"computed tomography",
			"positron emission",
			"linear accelerator",
			"x-ray system",
			"angiograph",
			"ultrasound imaging",
			"ultrasound system",
			"software",
			"programmable",
			"ventilator",
			"anaesthesia unit",
			"anesthesia unit",
			"defibrillator",
			"pacemaker",
			"infusion pump",
			"syringe pump",
			"dialysis",
			"heart-lung",
			"cochlear implant",
			"gamma camera",
			"robotic",
			"navigation system",
			"telemetry",
		},
		Probable: []string{
			"monitor",
			"monitoring system",
			"analyser",
			"analyzer",
			"imaging",
			"electrocardiograph",
			"electroencephalograph",
			"stimulator",
			"pump",
			"incubator",
			"centrifuge",
			"laser",
			"endoscope, video",
			"flowmeter",
			"oximeter",
			"spirometer",
			"audiometer",
			"tomograph",
			"workstation",
			"control unit",
			"sensor",
		},
		SimplicityTerms: []string{
			"portable",
			"handheld",
			"hand-held",
			"manual",
			"mechanical",
			"pocket",
			"aneroid",
			"clockwork",
		},
	}
}

// Load reads a rule set from a YAML file and normalizes it for matching.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	rs.Normalize()
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return &rs, nil
}

// Save writes the rule set to path as YAML.
func (rs *RuleSet) Save(path string) error {
	data, err := yaml.Marshal(rs)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}
	return nil
}

// Normalize lowercases and trims every pattern. Matching is always done
// against a lowercased description, so this must run before Validate or any
// classification.
func (rs *RuleSet) Normalize() {
	for _, list := range [][]string{rs.Exclusions, rs.Strong, rs.Probable, rs.SimplicityTerms} {
		for i, p := range list {
			list[i] = strings.ToLower(strings.TrimSpace(p))
		}
	}
}

// Validate checks that every tier is present and every pattern is usable.
func (rs *RuleSet) Validate() error {
	lists := []struct {
		name     string
		patterns []string
	}{
		{"exclusions", rs.Exclusions},
		{"strong", rs.Strong},
		{"probable", rs.Probable},
		{"simplicity_terms", rs.SimplicityTerms},
	}
	for _, l := range lists {
		if len(l.patterns) == 0 {
			return fmt.Errorf("%s list is empty", l.name)
		}
		seen := make(map[string]bool, len(l.patterns))
		for _, p := range l.patterns {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%s list contains an empty pattern", l.name)
			}
			if seen[p] {
				return fmt.Errorf("%s list contains duplicate pattern %q", l.name, p)
			}
			seen[p] = true
		}
	}
	return nil
}

// Hash returns a stable fingerprint of the rule set, stored with each run so
// history entries record which rules produced them.
func (rs *RuleSet) Hash() string {
	h := sha256.New()
	for _, list := range [][]string{rs.Exclusions, rs.Strong, rs.Probable, rs.SimplicityTerms} {
		for _, p := range list {
			h.Write([]byte(p))
			h.Write([]byte{0})
		}
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

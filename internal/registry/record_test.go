package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Record
	}{
		{
			name: "code and description",
			line: "12345 - Magnetic Resonance Imaging System",
			want: Record{Code: "12345", Description: "Magnetic Resonance Imaging System"},
		},
		{
			name: "first separator wins",
			line: "12345 - Pump, infusion - ambulatory",
			want: Record{Code: "12345", Description: "Pump, infusion - ambulatory"},
		},
		{
			name: "no separator means whole-line description",
			line: "Portable blood pressure monitor",
			want: Record{Code: "", Description: "Portable blood pressure monitor"},
		},
		{
			name: "hyphen without spaces is not a separator",
			line: "Single-use surgical gauze dressing",
			want: Record{Code: "", Description: "Single-use surgical gauze dressing"},
		},
		{
			name: "surrounding whitespace trimmed",
			line: "  321  -  Ventilator, intensive-care  ",
			want: Record{Code: "321", Description: "Ventilator, intensive-care"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.line)
			if got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestLoadReader(t *testing.T) {
	input := strings.Join([]string{
		"11111 - Ventilator, intensive-care",
		"",
		"   ",
		"22222 - Single-use surgical gauze dressing",
		"no code here",
	}, "\n")

	records, err := LoadReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Code != "11111" {
		t.Errorf("expected code 11111, got %q", records[0].Code)
	}
	if records[2].Code != "" || records[2].Description != "no code here" {
		t.Errorf("separator-less line parsed wrong: %+v", records[2])
	}
}

func TestLoadCSV(t *testing.T) {
	input := strings.Join([]string{
		"Code,Description",
		"11111,Ventilator intensive-care",
		`22222,"Pump, infusion"`,
		"description only",
	}, "\n")

	records, err := LoadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records (header skipped), got %d", len(records))
	}
	if records[1].Description != "Pump, infusion" {
		t.Errorf("quoted field parsed wrong: %+v", records[1])
	}
	if records[2].Code != "" || records[2].Description != "description only" {
		t.Errorf("single-field row parsed wrong: %+v", records[2])
	}
}

func TestLoadPicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()

	txtPath := filepath.Join(dir, "terms.txt")
	if err := os.WriteFile(txtPath, []byte("11111 - Ventilator\n"), 0644); err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(dir, "terms.csv")
	if err := os.WriteFile(csvPath, []byte("code,description\n11111,Ventilator\n"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{txtPath, csvPath} {
		records, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", path, err)
		}
		if len(records) != 1 || records[0].Code != "11111" {
			t.Errorf("Load(%s) = %+v, want one record with code 11111", path, records)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

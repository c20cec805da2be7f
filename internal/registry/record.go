// Package registry loads GMDN registry entries from delimited text or CSV
// files. An entry is a short code paired with a free-text device description;
// the classifier only ever sees these two fields.
package registry

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Separator splits a registry line into code and description. Only the first
// occurrence counts; descriptions may contain further dashes.
const Separator = " - "

// Record is a single registry entry.
type Record struct {
	// Code is the GMDN term code. Usually numeric, but the registry also
	// carries legacy alphanumeric codes, so it stays a string.
	Code string

	// Description is the free-text device description the classifier
	// matches against.
	Description string
}

// ParseLine parses one "code - description" line. A line without the
// separator becomes a record with an empty code and the whole line as its
// description.
func ParseLine(line string) Record {
	idx := strings.Index(line, Separator)
	if idx < 0 {
		return Record{Description: strings.TrimSpace(line)}
	}
	return Record{
		Code:        strings.TrimSpace(line[:idx]),
		Description: strings.TrimSpace(line[idx+len(Separator):]),
	}
}

// Load reads registry entries from path. Files ending in .csv are read as
// two-column CSV (the registry is published both ways); anything else is
// treated as "code - description" lines.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return LoadCSV(f)
	}
	return LoadReader(f)
}

// LoadReader reads "code - description" lines. Blank lines are skipped; each
// non-empty line yields exactly one record.
func LoadReader(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	// Registry descriptions can run long; the default 64K token limit is
	// plenty but the buffer must allow growth.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records = append(records, ParseLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read registry lines: %w", err)
	}
	return records, nil
}

// LoadCSV reads two-column code,description rows. A leading header row whose
// first field is "code" is skipped. Rows with a single field become
// description-only records, matching ParseLine's behavior for lines without a
// separator.
func LoadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // registry exports are ragged
	var records []Record
	for i := 0; ; i++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse registry CSV: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "code") {
			continue
		}
		rec := Record{Code: strings.TrimSpace(row[0])}
		if len(row) > 1 {
			rec.Description = strings.TrimSpace(strings.Join(row[1:], " "))
		} else {
			rec.Code = ""
			rec.Description = strings.TrimSpace(row[0])
		}
		if rec.Code == "" && rec.Description == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

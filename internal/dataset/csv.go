// Package dataset loads listing datasets from CSV and JSON files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Row maps a normalized column name to its cell value.
type Row map[string]string

// LoadCSV reads a CSV file whose first row names the columns.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("csv: %s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV reads rows from r. Header names are trimmed and lower-cased, and
// a leading UTF-8 byte order mark is ignored. Every row must have as many
// cells as the header.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file (no header row)")
	}
	if err != nil {
		return nil, err
	}
	headers, err = normalizeHeaders(headers)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = record[j]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeHeaders(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			return nil, fmt.Errorf("column %d has no name", i+1)
		}
		if seen[h] {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		seen[h] = true
		out[i] = h
	}
	return out, nil
}

// Range selects data rows by 1-based inclusive position. End 0 means "to
// the last row".
type Range struct {
	Start int
	End   int
}

// ParseRange parses "N", "N:M" or "N:" into a Range.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	startStr, endStr, hasColon := strings.Cut(s, ":")

	start, err := strconv.Atoi(startStr)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: start must be a number", s)
	}
	r := Range{Start: start, End: start}
	if hasColon {
		r.End = 0
		if endStr != "" {
			if r.End, err = strconv.Atoi(endStr); err != nil {
				return Range{}, fmt.Errorf("range %q: end must be a number", s)
			}
		}
	}
	return r, r.validate()
}

func (r Range) validate() error {
	if r.Start < 1 {
		return fmt.Errorf("range start must be >= 1, got %d", r.Start)
	}
	if r.End != 0 && r.End < r.Start {
		return fmt.Errorf("range end (%d) must be >= start (%d)", r.End, r.Start)
	}
	return nil
}

// Select returns the items inside r, clamped to what is available, along
// with the 0-based offset of the first returned item.
func Select[T any](items []T, r Range) ([]T, int, error) {
	if err := r.validate(); err != nil {
		return nil, 0, err
	}
	if r.Start > len(items) {
		return []T{}, len(items), nil
	}
	end := r.End
	if end == 0 || end > len(items) {
		end = len(items)
	}
	return items[r.Start-1 : end], r.Start - 1, nil
}

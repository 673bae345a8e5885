package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meshcast/meshcast/internal/payload"
)

// ListSeparator splits multi-valued CSV cells such as tags.
const ListSeparator = "|"

// listColumns are CSV columns holding ListSeparator-joined values.
var listColumns = map[string]bool{
	"tags":       true,
	"categories": true,
}

// Payload decodes a CSV row into a listing payload. Cells are converted
// weakly ("true", "8500"); empty cells keep their defaults. Negative counts
// are rejected as they are for JSON input.
func (r Row) Payload() (payload.Payload, error) {
	doc := make(map[string]any, len(r))
	for k, v := range r {
		key := strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if listColumns[key] {
			doc[key] = splitList(v)
			continue
		}
		doc[key] = v
	}
	p, err := payload.Decode(doc, true)
	if err != nil {
		return payload.Payload{}, err
	}
	if err := p.Validate(); err != nil {
		return payload.Payload{}, err
	}
	return p, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadPayloads reads listing payloads from a CSV, JSON array or JSON Lines
// file, chosen by extension. JSON entries are validated like request
// bodies.
func LoadPayloads(path string) ([]payload.Payload, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSVPayloads(path)
	case ".json":
		return loadJSONPayloads(path)
	case ".jsonl", ".ndjson":
		return loadJSONLPayloads(path)
	default:
		return nil, fmt.Errorf("dataset: unsupported file type %q (want .csv, .json or .jsonl)", filepath.Ext(path))
	}
}

func loadCSVPayloads(path string) ([]payload.Payload, error) {
	rows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]payload.Payload, 0, len(rows))
	for i, row := range rows {
		p, err := row.Payload()
		if err != nil {
			return nil, fmt.Errorf("csv: row %d: %w", i+2, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func loadJSONPayloads(path string) ([]payload.Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("json: open %s: %w", path, err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("json: %s must contain an array of objects: %w", path, err)
	}
	out := make([]payload.Payload, 0, len(items))
	for i, raw := range items {
		p, err := payload.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("json: item %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func loadJSONLPayloads(path string) ([]payload.Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("jsonl: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var out []payload.Payload
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		p, err := payload.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("jsonl: line %d: %w", line, err)
		}
		out = append(out, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: read %s: %w", path, err)
	}
	return out, nil
}

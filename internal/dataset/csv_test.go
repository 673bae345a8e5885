package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadCSV(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		wantRows int
		wantCols int
		wantErr  string
	}{
		{
			name:     "three listings three columns",
			csv:      "uid,description,face_count\nchair-01,Wooden chair,1200\nsword-02,Low poly sword,8500\nship-03,Sci-fi ship,64000\n",
			wantRows: 3,
			wantCols: 3,
		},
		{
			name:     "single row",
			csv:      "uid,tags\nonly-one,game|pbr\n",
			wantRows: 1,
			wantCols: 2,
		},
		{
			name:     "headers only",
			csv:      "uid,description,face_count\n",
			wantRows: 0,
		},
		{
			name:    "no header row",
			csv:     "",
			wantErr: "no header row",
		},
		{
			name:    "mismatched column count",
			csv:     "uid,face_count\nok,fine\nbad\n",
			wantErr: "wrong number of fields",
		},
		{
			name:    "duplicate column",
			csv:     "uid,Face_Count,face_count\na,1,2\n",
			wantErr: `duplicate column "face_count"`,
		},
		{
			name:    "unnamed column",
			csv:     "uid,,face_count\na,1,2\n",
			wantErr: "column 2 has no name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeCSV(t, dir, "test.csv", tt.csv)

			rows, err := LoadCSV(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
			if tt.wantRows > 0 {
				assert.Len(t, rows[0], tt.wantCols)
			}
		})
	}
}

func TestReadCSV_NormalizesHeaders(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("\ufeffUID, Description ,FACE_COUNT\nchair-01, Wooden chair,1200\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, Row{"uid": "chair-01", "description": "Wooden chair", "face_count": "1200"}, rows[0])
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, err := LoadCSV("/nonexistent/path/data.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: open")
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    Range
		wantErr string
	}{
		{in: "3", want: Range{Start: 3, End: 3}},
		{in: "2:5", want: Range{Start: 2, End: 5}},
		{in: "4:", want: Range{Start: 4}},
		{in: " 1:1 ", want: Range{Start: 1, End: 1}},
		{in: "0:2", wantErr: "range start must be >= 1"},
		{in: "5:2", wantErr: "range end (2) must be >= start (5)"},
		{in: "a:2", wantErr: "start must be a number"},
		{in: "1:b", wantErr: "end must be a number"},
		{in: "", wantErr: "start must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelect(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name       string
		r          Range
		want       []string
		wantOffset int
		wantErr    string
	}{
		{name: "range 2-3 of 5", r: Range{Start: 2, End: 3}, want: []string{"b", "c"}, wantOffset: 1},
		{name: "single row", r: Range{Start: 1, End: 1}, want: []string{"a"}},
		{name: "open end", r: Range{Start: 4}, want: []string{"d", "e"}, wantOffset: 3},
		{name: "beyond available clamps", r: Range{Start: 1, End: 100}, want: items},
		{name: "start beyond available", r: Range{Start: 9, End: 10}, want: []string{}, wantOffset: 5},
		{name: "invalid start", r: Range{Start: 0, End: 1}, wantErr: "range start must be >= 1"},
		{name: "end before start", r: Range{Start: 3, End: 1}, wantErr: "range end (1) must be >= start (3)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, offset, err := Select(items, tt.r)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

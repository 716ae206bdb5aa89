package dump

import (
	"strings"
	"testing"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []Field
	}{
		{
			name:   "two columns",
			header: " pid | mode ",
			want: []Field{
				{Name: "pid", Offset: 1, Width: 3},
				{Name: "mode", Offset: 7, Width: 4},
			},
		},
		{
			name:   "three columns of differing widths",
			header: " waiting_pid | other_pid | granted ",
			want: []Field{
				{Name: "waiting_pid", Offset: 1, Width: 11},
				{Name: "other_pid", Offset: 15, Width: 9},
				{Name: "granted", Offset: 27, Width: 7},
			},
		},
		{
			name:   "single column",
			header: " query ",
			want: []Field{
				{Name: "query", Offset: 1, Width: 5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := ParseHeader(tt.header)
			fields := schema.Fields()
			if len(fields) != len(tt.want) {
				t.Fatalf("expected %d fields, got %d", len(tt.want), len(fields))
			}
			for i, want := range tt.want {
				if fields[i] != want {
					t.Errorf("field %d: expected %+v, got %+v", i, want, fields[i])
				}
			}
		})
	}
}

func TestSchemaDecode(t *testing.T) {
	tests := []struct {
		name   string
		header string
		line   string
		want   map[string]string
	}{
		{
			name:   "aligned row",
			header: " pid | mode ",
			line:   "  10 | Lock  ",
			want:   map[string]string{"pid": "10", "mode": "Lock"},
		},
		{
			name:   "short line truncates trailing field",
			header: " pid | mode ",
			line:   "  10 | Lo",
			want:   map[string]string{"pid": "10", "mode": "Lo"},
		},
		{
			name:   "line shorter than a field is empty not fatal",
			header: " pid | mode ",
			line:   "  10 |",
			want:   map[string]string{"pid": "10", "mode": ""},
		},
		{
			name:   "empty line",
			header: " pid | mode ",
			line:   "",
			want:   map[string]string{"pid": "", "mode": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ParseHeader(tt.header).Decode(tt.line)
			for field, want := range tt.want {
				if got := rec[field]; got != want {
					t.Errorf("field %q: expected %q, got %q", field, want, got)
				}
			}
		})
	}
}

// Applying the decoded ranges to a data line padded the same way as the
// header must recover exactly the trimmed column values.
func TestSchemaRoundTrip(t *testing.T) {
	widths := []int{11, 9, 7}
	names := []string{"waiting_pid", "other_pid", "granted"}
	values := []string{"101", "2002", "t"}

	header := alignedLine(widths, names)
	line := alignedLine(widths, values)

	rec := ParseHeader(header).Decode(line)
	for i, name := range names {
		if rec[name] != values[i] {
			t.Errorf("field %q: expected %q, got %q", name, values[i], rec[name])
		}
	}
}

// alignedLine renders cells into the dump's fixed-width shape: one space of
// padding on each side of every separator.
func alignedLine(widths []int, cells []string) string {
	segs := make([]string, len(cells))
	for i, cell := range cells {
		segs[i] = " " + cell + strings.Repeat(" ", widths[i]-len(cell)) + " "
	}
	return strings.Join(segs, "|")
}

package dump

import "strings"

// Constants for the psql dump format
const (
	// fieldSep separates columns in the header and data rows.
	fieldSep = "|"

	// Columns carry one padding character on each side of the separator.
	// The convention is fixed by the tool producing the dump; the decode
	// ranges skip exactly that much and no more.
	padLeft = 1
	padBoth = 2
)

// Field is one column of the dump: its trimmed header label and the
// half-open character range [Offset, Offset+Width) it occupies on a data
// line of the same shape.
type Field struct {
	Name   string
	Offset int
	Width  int
}

// Schema maps the columns of a dump. It is built once from the header row
// and immutable thereafter.
type Schema struct {
	fields []Field
}

// ParseHeader derives a Schema from the header row of a dump. Segment text
// is kept unpadded so the widths reflect the dump's own column layout; a
// reordered or resized dump decodes correctly without code changes.
func ParseHeader(line string) *Schema {
	segments := strings.Split(line, fieldSep)
	fields := make([]Field, 0, len(segments))

	offset := 0
	for _, seg := range segments {
		fields = append(fields, Field{
			Name:   strings.TrimSpace(seg),
			Offset: offset + padLeft,
			Width:  len(seg) - padBoth,
		})
		offset += len(seg) + len(fieldSep)
	}

	return &Schema{fields: fields}
}

// Fields returns the columns in header order.
func (s *Schema) Fields() []Field { return s.fields }

// Decode extracts every field of line into a Record. Lines shorter than a
// field's range yield truncated or empty values rather than an error; dumps
// are allowed to be ragged at the right edge.
func (s *Schema) Decode(line string) Record {
	rec := make(Record, len(s.fields)+2)
	for _, f := range s.fields {
		rec[f.Name] = strings.TrimSpace(slice(line, f.Offset, f.Width))
	}
	return rec
}

// slice returns line[start:start+width] clamped to the line's bounds.
func slice(line string, start, width int) string {
	if start >= len(line) || width <= 0 {
		return ""
	}
	end := start + width
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

// Package reshape turns wide Census table extracts into long fact tables.
//
// Labels are compared after CleanLabel: NFC normalization, whitespace
// collapse and trim.
//
// A source extract has one label column and many composite columns named
// "<State>!!<Category>!!Estimate". The label column mixes section headers,
// group headers (age brackets) and data rows. Build classifies the labels,
// forward-fills the group context per year, unpivots the state axis into
// rows and coerces every metric to its declared numeric kind.
package reshape

import "strings"

// DefaultLabelColumn is the label column of data.census.gov table exports.
const DefaultLabelColumn = "Label (Grouping)"

// Frame is one wide source table. Rows may span several partitions (years).
type Frame struct {
	Source      string
	LabelColumn string
	Columns     []string
	Rows        []RawRow
}

// RawRow is one source record. Cells are aligned with Frame.Columns.
type RawRow struct {
	Partition string
	Cells     []string
}

// ColumnIndex returns the position of the named column, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// labelColumn returns the configured label column, falling back to the
// Census default.
func (f *Frame) labelColumn() string {
	if f.LabelColumn != "" {
		return f.LabelColumn
	}
	return DefaultLabelColumn
}

// cellAt returns the trimmed value at i and whether it is present. Cells past
// the end of a short row and empty cells count as missing.
func cellAt(cells []string, i int) (string, bool) {
	if i < 0 || i >= len(cells) {
		return "", false
	}
	v := strings.TrimSpace(cells[i])
	if v == "" {
		return "", false
	}
	return v, true
}

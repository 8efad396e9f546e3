package reshape

import (
	"github.com/rotisserie/eris"
)

// FactSpec describes how one fact table is cut out of a source extract.
type FactSpec struct {
	Name       string
	Source     string
	Schema     Schema
	Roles      Roles
	Vocabulary Vocabulary

	// SectionHeaders are decorative labels that never carry data.
	SectionHeaders []string
	// GroupHeaders maps a group label to its canonical context value. An
	// empty value keeps the cleaned label.
	GroupHeaders map[string]string
	// Scope restricts the fact to rows under one of these section headers.
	// Empty means the whole extract.
	Scope []string
	// Entities restricts data rows to these labels. Empty means all.
	Entities []string
	// RequireContext drops data rows that precede every group header.
	RequireContext bool
	// Dedupe keeps only the first data row per partition, label and group
	// context.
	Dedupe bool
}

// Validate checks the spec is usable before any data is read.
func (s FactSpec) Validate() error {
	if s.Name == "" {
		return eris.New("reshape: fact has no name")
	}
	if err := s.Schema.Validate(); err != nil {
		return eris.Wrapf(err, "reshape: fact %s", s.Name)
	}
	if len(s.Vocabulary) == 0 {
		return eris.Errorf("reshape: fact %s has an empty vocabulary", s.Name)
	}
	for _, role := range []string{s.Roles.Dimension, s.Roles.Partition, s.Roles.Entity} {
		if role == "" {
			return eris.Errorf("reshape: fact %s is missing a dimension, partition or entity column", s.Name)
		}
		if s.Schema.Index(role) < 0 {
			return eris.Errorf("reshape: fact %s role column %q not in schema", s.Name, role)
		}
	}
	if s.Roles.Context != "" && s.Schema.Index(s.Roles.Context) < 0 {
		return eris.Errorf("reshape: fact %s context column %q not in schema", s.Name, s.Roles.Context)
	}
	_, err := s.canonicalNames()
	return err
}

// GroupLabels returns the group header labels.
func (s FactSpec) GroupLabels() []string {
	out := make([]string, 0, len(s.GroupHeaders))
	for label := range s.GroupHeaders {
		out = append(out, label)
	}
	return out
}

// canonicalNames maps each cleaned group label to its canonical context
// value. It fails when two labels clean to the same text but disagree.
func (s FactSpec) canonicalNames() (map[string]string, error) {
	out := make(map[string]string, len(s.GroupHeaders))
	for raw, canon := range s.GroupHeaders {
		label := CleanLabel(raw)
		if canon == "" {
			canon = label
		}
		if prev, ok := out[label]; ok && prev != canon {
			return nil, eris.Errorf("reshape: fact %s group header %q maps to both %q and %q", s.Name, label, prev, canon)
		}
		out[label] = canon
	}
	return out, nil
}

// BuildStats counts what Build kept and dropped, for audit logging.
type BuildStats struct {
	Rows             int `json:"rows"`
	OutOfScope       int `json:"out_of_scope"`
	HeaderRows       int `json:"header_rows"`
	DataRows         int `json:"data_rows"`
	FilteredRows     int `json:"filtered_rows"`
	CompositeColumns int `json:"composite_columns"`
	MetricColumns    int `json:"metric_columns"`
	Records          int `json:"records"`
}

// ExcludedColumns is the number of composite columns the vocabulary or
// grammar rejected.
func (b BuildStats) ExcludedColumns() int {
	return b.CompositeColumns - b.MetricColumns
}

// Add returns the field-wise sum of b and o.
func (b BuildStats) Add(o BuildStats) BuildStats {
	return BuildStats{
		Rows:             b.Rows + o.Rows,
		OutOfScope:       b.OutOfScope + o.OutOfScope,
		HeaderRows:       b.HeaderRows + o.HeaderRows,
		DataRows:         b.DataRows + o.DataRows,
		FilteredRows:     b.FilteredRows + o.FilteredRows,
		CompositeColumns: b.CompositeColumns + o.CompositeColumns,
		MetricColumns:    b.MetricColumns + o.MetricColumns,
		Records:          b.Records + o.Records,
	}
}

// Build reshapes one frame into the fact table described by spec. It fails
// with ErrNoMetricColumns when no column matches the naming grammar.
func Build(f *Frame, spec FactSpec) (*Table, BuildStats, error) {
	var stats BuildStats

	if err := spec.Validate(); err != nil {
		return nil, stats, err
	}
	canonical, _ := spec.canonicalNames()

	labelIdx := f.ColumnIndex(f.labelColumn())
	if labelIdx < 0 {
		return nil, stats, eris.Errorf("reshape: %s: label column %q not found", f.Source, f.labelColumn())
	}

	for _, c := range f.Columns {
		if isComposite(c) {
			stats.CompositeColumns++
		}
	}
	cols := ParseColumns(f.Columns, spec.Vocabulary)
	stats.MetricColumns = len(cols)
	if len(cols) == 0 {
		return nil, stats, eris.Wrapf(ErrNoMetricColumns, "fact %s, source %s", spec.Name, f.Source)
	}

	classifier := NewClassifier(append(append([]string{}, spec.SectionHeaders...), spec.Scope...), spec.GroupLabels())
	scope := cleanSet(spec.Scope)
	entities := cleanSet(spec.Entities)

	// Classify and apply the section scope before filling context, so group
	// headers outside the scope never leak into it.
	stats.Rows = len(f.Rows)
	section := make(map[string]string)
	var (
		tagged []TaggedRow
		source []int
	)
	for i, row := range f.Rows {
		label := CleanLabel(cellValue(row.Cells, labelIdx))
		tag := classifier.classifyClean(label)

		if tag == SectionHeader {
			section[row.Partition] = label
		}
		if len(scope) > 0 && !scope[section[row.Partition]] {
			stats.OutOfScope++
			continue
		}

		tagged = append(tagged, TaggedRow{Partition: row.Partition, Label: label, Tag: tag})
		source = append(source, i)
	}

	contexts := FillContext(tagged)

	type rowKey struct{ partition, label, context string }
	seen := make(map[rowKey]bool)

	var data []DataRecord
	for j, tr := range tagged {
		if tr.Tag != DataRow {
			stats.HeaderRows++
			continue
		}
		if len(entities) > 0 && !entities[tr.Label] {
			stats.FilteredRows++
			continue
		}
		if spec.RequireContext && !contexts[j].Valid {
			stats.FilteredRows++
			continue
		}
		if spec.Dedupe {
			k := rowKey{tr.Partition, tr.Label, contexts[j].Value}
			if seen[k] {
				stats.FilteredRows++
				continue
			}
			seen[k] = true
		}
		ctx := contexts[j]
		if ctx.Valid {
			ctx.Value = canonical[ctx.Value]
		}
		i := source[j]
		data = append(data, DataRecord{
			ID:        i,
			Partition: f.Rows[i].Partition,
			Entity:    tr.Label,
			Context:   ctx,
			Cells:     f.Rows[i].Cells,
		})
	}
	stats.DataRows = len(data)

	records, err := Unpivot(data, cols)
	if err != nil {
		return nil, stats, eris.Wrapf(err, "fact %s, source %s", spec.Name, f.Source)
	}
	stats.Records = len(records)

	return Assemble(records, spec.Schema, spec.Roles), stats, nil
}

func cleanSet(labels []string) map[string]bool {
	if len(labels) == 0 {
		return nil
	}
	m := make(map[string]bool, len(labels))
	for _, l := range labels {
		m[CleanLabel(l)] = true
	}
	return m
}

// cellValue returns the raw cell at i, or "" past the end of a short row.
func cellValue(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

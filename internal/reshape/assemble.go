package reshape

import "github.com/rotisserie/eris"

// Column is one output column with its declared kind.
type Column struct {
	Name string
	Kind Kind
}

// Schema is the fixed, ordered column layout of an output table. Key lists
// the columns forming its natural unique key. Partition names the column
// whose values a reload replaces; empty means the whole table.
type Schema struct {
	Name      string
	Columns   []Column
	Key       []string
	Partition string
}

// ColumnNames returns the column names in schema order.
func (s Schema) ColumnNames() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks that column names are unique and key columns exist.
func (s Schema) Validate() error {
	if s.Name == "" {
		return eris.New("reshape: schema has no name")
	}
	if len(s.Columns) == 0 {
		return eris.Errorf("reshape: schema %s has no columns", s.Name)
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == "" {
			return eris.Errorf("reshape: schema %s has an unnamed column", s.Name)
		}
		if seen[c.Name] {
			return eris.Errorf("reshape: schema %s repeats column %q", s.Name, c.Name)
		}
		seen[c.Name] = true
	}
	for _, k := range s.Key {
		if !seen[k] {
			return eris.Errorf("reshape: schema %s key column %q not in schema", s.Name, k)
		}
	}
	if s.Partition != "" && !seen[s.Partition] {
		return eris.Errorf("reshape: schema %s partition column %q not in schema", s.Name, s.Partition)
	}
	return nil
}

// Table is an assembled output table. Each row has exactly one value per
// schema column: nil, string, int, int64 or float64.
type Table struct {
	Schema Schema
	Rows   [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Append adds the rows of other, which must share the schema name.
func (t *Table) Append(other *Table) error {
	if other == nil {
		return nil
	}
	if other.Schema.Name != t.Schema.Name {
		return eris.Errorf("reshape: cannot append %s rows to %s", other.Schema.Name, t.Schema.Name)
	}
	t.Rows = append(t.Rows, other.Rows...)
	return nil
}

// Partitions returns the distinct non-null values of column, in first-seen
// order. Sinks use it to replace only the years being loaded.
func (t *Table) Partitions(column string) []any {
	idx := t.Schema.Index(column)
	if idx < 0 {
		return nil
	}
	seen := make(map[any]bool)
	var out []any
	for _, row := range t.Rows {
		v := row[idx]
		if v == nil || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Roles names the schema columns that carry record metadata. Context may be
// empty for facts without a group dimension.
type Roles struct {
	Dimension string
	Partition string
	Entity    string
	Context   string
}

// Assemble lays records out in schema order. Schema columns no record
// provides are null, record fields outside the schema are dropped, the
// partition is coerced to a year and metrics are normalized by kind.
func Assemble(records []FactRecord, schema Schema, roles Roles) *Table {
	t := &Table{Schema: schema, Rows: make([][]any, 0, len(records))}

	for _, rec := range records {
		row := make([]any, len(schema.Columns))
		for i, col := range schema.Columns {
			raw, ok := recordField(rec, roles, col.Name)
			if !ok {
				continue
			}
			row[i] = Normalize(raw, col.Kind)
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}

func recordField(rec FactRecord, roles Roles, name string) (string, bool) {
	switch {
	case name == roles.Dimension:
		return rec.Dimension, true
	case name == roles.Partition:
		return rec.Partition, true
	case name == roles.Entity:
		return rec.Entity, true
	case roles.Context != "" && name == roles.Context:
		return rec.Context.Value, rec.Context.Valid
	}
	v, ok := rec.Metrics[name]
	return v, ok
}

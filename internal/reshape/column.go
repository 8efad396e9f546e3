package reshape

import "strings"

const (
	// ColumnDelimiter separates the parts of a composite column name.
	ColumnDelimiter = "!!"
	// EstimateMarker is the literal trailing part of every metric column.
	EstimateMarker = "Estimate"
)

// Vocabulary maps a normalized category ("percent male") to an output
// field name ("male_percent"). Build one with NewVocabulary so keys are
// normalized the same way column categories are.
type Vocabulary map[string]string

// NewVocabulary normalizes the keys of m.
func NewVocabulary(m map[string]string) Vocabulary {
	v := make(Vocabulary, len(m))
	for k, field := range m {
		v[NormalizeCategory(k)] = field
	}
	return v
}

// Fields returns the distinct output field names.
func (v Vocabulary) Fields() []string {
	seen := make(map[string]bool, len(v))
	var out []string
	for _, f := range v {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// NormalizeCategory lower-cases, collapses whitespace and trims.
func NormalizeCategory(s string) string {
	return strings.ToLower(CleanLabel(s))
}

// ColumnKey is a parsed composite column: the dimension value (state) and
// the metric field it feeds.
type ColumnKey struct {
	Dimension string
	Metric    string
}

// ParseColumn parses "<Dimension>!!<Category>!!Estimate". It reports false
// when the name has fewer than three parts, does not end in the Estimate
// marker, or its category is not in the vocabulary.
func ParseColumn(name string, vocab Vocabulary) (ColumnKey, bool) {
	parts := strings.Split(name, ColumnDelimiter)
	if len(parts) < 3 || parts[len(parts)-1] != EstimateMarker {
		return ColumnKey{}, false
	}

	// A category may itself contain the delimiter.
	category := NormalizeCategory(strings.Join(parts[1:len(parts)-1], ColumnDelimiter))
	metric, ok := vocab[category]
	if !ok {
		return ColumnKey{}, false
	}

	return ColumnKey{
		Dimension: strings.TrimSpace(parts[0]),
		Metric:    metric,
	}, true
}

// ParsedColumn is a source column that survived ParseColumn.
type ParsedColumn struct {
	Index int
	Name  string
	Key   ColumnKey
}

// ParseColumns keeps the columns that parse under vocab, in source order.
func ParseColumns(columns []string, vocab Vocabulary) []ParsedColumn {
	var out []ParsedColumn
	for i, name := range columns {
		key, ok := ParseColumn(name, vocab)
		if !ok {
			continue
		}
		out = append(out, ParsedColumn{Index: i, Name: name, Key: key})
	}
	return out
}

// isComposite reports whether a column uses the composite naming at all.
func isComposite(name string) bool {
	return strings.Contains(name, ColumnDelimiter)
}

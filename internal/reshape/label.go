package reshape

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// LabelTag classifies a row by its label text.
type LabelTag int

const (
	Noise LabelTag = iota
	SectionHeader
	GroupHeader
	DataRow
)

// String returns the tag name.
func (t LabelTag) String() string {
	switch t {
	case Noise:
		return "noise"
	case SectionHeader:
		return "section_header"
	case GroupHeader:
		return "group_header"
	case DataRow:
		return "data_row"
	default:
		return "unknown"
	}
}

// CleanLabel collapses every run of whitespace (non-breaking spaces included)
// to a single ASCII space and trims the result. The label is NFC-normalized
// first, so a decomposed "é" from a spreadsheet export equals the composed
// one in the header tables.
func CleanLabel(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Classifier tags labels against fixed section-header and group-header sets.
// Matching is exact and case-sensitive on the cleaned label.
type Classifier struct {
	sections map[string]struct{}
	groups   map[string]struct{}
}

// NewClassifier builds a Classifier. Header strings are cleaned before use.
func NewClassifier(sectionHeaders, groupHeaders []string) *Classifier {
	c := &Classifier{
		sections: make(map[string]struct{}, len(sectionHeaders)),
		groups:   make(map[string]struct{}, len(groupHeaders)),
	}
	for _, h := range sectionHeaders {
		c.sections[CleanLabel(h)] = struct{}{}
	}
	for _, h := range groupHeaders {
		c.groups[CleanLabel(h)] = struct{}{}
	}
	return c
}

// Classify returns the tag for a raw label.
func (c *Classifier) Classify(raw string) LabelTag {
	return c.classifyClean(CleanLabel(raw))
}

func (c *Classifier) classifyClean(label string) LabelTag {
	if label == "" {
		return Noise
	}
	if _, ok := c.sections[label]; ok {
		return SectionHeader
	}
	if _, ok := c.groups[label]; ok {
		return GroupHeader
	}
	return DataRow
}

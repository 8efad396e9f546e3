// Package dims builds the dimension tables that accompany the fact tables.
package dims

import (
	"regexp"
	"sort"

	"github.com/sells-group/census-tidy/internal/reshape"
	"github.com/sells-group/census-tidy/internal/transform"
)

// Table names.
const (
	StateTable     = "dim_state"
	EducationTable = "dim_education"
	AgeTable       = "dim_age"
	YearTable      = "dim_year"
)

// educationPattern keeps labels that name an education level.
var educationPattern = regexp.MustCompile(`(?i)(graduate|diploma|college|associate|bachelor|professional|degree|9th|12th)`)

// IsEducationLevel reports whether a label names an education level.
func IsEducationLevel(label string) bool {
	return educationPattern.MatchString(label)
}

var (
	stateSchema = reshape.Schema{
		Name: StateTable,
		Columns: []reshape.Column{
			{Name: "state_id", Kind: reshape.KindCount},
			{Name: "state_name", Kind: reshape.KindText},
			{Name: "fips", Kind: reshape.KindText},
		},
		Key: []string{"state_id"},
	}
	educationSchema = reshape.Schema{
		Name: EducationTable,
		Columns: []reshape.Column{
			{Name: "education_level_id", Kind: reshape.KindCount},
			{Name: "education_level_name", Kind: reshape.KindText},
		},
		Key: []string{"education_level_id"},
	}
	ageSchema = reshape.Schema{
		Name: AgeTable,
		Columns: []reshape.Column{
			{Name: "age_group_id", Kind: reshape.KindCount},
			{Name: "age_group_name", Kind: reshape.KindText},
		},
		Key: []string{"age_group_id"},
	}
	yearSchema = reshape.Schema{
		Name: YearTable,
		Columns: []reshape.Column{
			{Name: "id", Kind: reshape.KindCount},
			{Name: "year", Kind: reshape.KindYear},
		},
		Key: []string{"id"},
	}
)

// State numbers the sorted distinct state names from 1.
func State(names []string) *reshape.Table {
	t := &reshape.Table{Schema: stateSchema}
	for i, name := range sortedUnique(names) {
		var fips any
		if code := transform.StateFIPS(name); code != "" {
			fips = code
		}
		t.Rows = append(t.Rows, []any{int64(i + 1), name, fips})
	}
	return t
}

// Education numbers the sorted distinct education levels from 1. Labels that
// do not name a level are ignored.
func Education(labels []string) *reshape.Table {
	var levels []string
	for _, l := range labels {
		if IsEducationLevel(l) {
			levels = append(levels, l)
		}
	}

	t := &reshape.Table{Schema: educationSchema}
	for i, l := range sortedUnique(levels) {
		t.Rows = append(t.Rows, []any{int64(i + 1), l})
	}
	return t
}

// Age numbers a fixed age group list in the order given.
func Age(groups []string) *reshape.Table {
	t := &reshape.Table{Schema: ageSchema}
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		t.Rows = append(t.Rows, []any{int64(len(t.Rows) + 1), g})
	}
	return t
}

// Year numbers the sorted distinct years from 1.
func Year(years []int) *reshape.Table {
	seen := make(map[int]bool, len(years))
	var uniq []int
	for _, y := range years {
		if !seen[y] {
			seen[y] = true
			uniq = append(uniq, y)
		}
	}
	sort.Ints(uniq)

	t := &reshape.Table{Schema: yearSchema}
	for i, y := range uniq {
		t.Rows = append(t.Rows, []any{int64(i + 1), y})
	}
	return t
}

func sortedUnique(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

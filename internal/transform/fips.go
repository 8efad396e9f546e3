// Package transform normalizes geographic codes found in Census extracts.
package transform

import (
	"fmt"
	"strings"
)

type state struct {
	name   string
	postal string
	fips   int
}

var states = []state{
	{"United States", "US", 0},
	{"Alabama", "AL", 1},
	{"Alaska", "AK", 2},
	{"Arizona", "AZ", 4},
	{"Arkansas", "AR", 5},
	{"California", "CA", 6},
	{"Colorado", "CO", 8},
	{"Connecticut", "CT", 9},
	{"Delaware", "DE", 10},
	{"District of Columbia", "DC", 11},
	{"Florida", "FL", 12},
	{"Georgia", "GA", 13},
	{"Hawaii", "HI", 15},
	{"Idaho", "ID", 16},
	{"Illinois", "IL", 17},
	{"Indiana", "IN", 18},
	{"Iowa", "IA", 19},
	{"Kansas", "KS", 20},
	{"Kentucky", "KY", 21},
	{"Louisiana", "LA", 22},
	{"Maine", "ME", 23},
	{"Maryland", "MD", 24},
	{"Massachusetts", "MA", 25},
	{"Michigan", "MI", 26},
	{"Minnesota", "MN", 27},
	{"Mississippi", "MS", 28},
	{"Missouri", "MO", 29},
	{"Montana", "MT", 30},
	{"Nebraska", "NE", 31},
	{"Nevada", "NV", 32},
	{"New Hampshire", "NH", 33},
	{"New Jersey", "NJ", 34},
	{"New Mexico", "NM", 35},
	{"New York", "NY", 36},
	{"North Carolina", "NC", 37},
	{"North Dakota", "ND", 38},
	{"Ohio", "OH", 39},
	{"Oklahoma", "OK", 40},
	{"Oregon", "OR", 41},
	{"Pennsylvania", "PA", 42},
	{"Rhode Island", "RI", 44},
	{"South Carolina", "SC", 45},
	{"South Dakota", "SD", 46},
	{"Tennessee", "TN", 47},
	{"Texas", "TX", 48},
	{"Utah", "UT", 49},
	{"Vermont", "VT", 50},
	{"Virginia", "VA", 51},
	{"Washington", "WA", 53},
	{"West Virginia", "WV", 54},
	{"Wisconsin", "WI", 55},
	{"Wyoming", "WY", 56},
	{"Puerto Rico", "PR", 72},
}

var byKey = func() map[string]int {
	m := make(map[string]int, 2*len(states))
	for _, s := range states {
		m[stateKey(s.name)] = s.fips
		m[stateKey(s.postal)] = s.fips
	}
	return m
}()

func stateKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// StateFIPS returns the 2-digit FIPS code for a state name or postal
// abbreviation, or "" when the name is not a state.
func StateFIPS(name string) string {
	code, ok := byKey[stateKey(name)]
	if !ok {
		return ""
	}
	return FormatFIPS(code, 2)
}

// FormatFIPS formats a numeric FIPS code with proper zero-padding.
func FormatFIPS(code int, digits int) string {
	return fmt.Sprintf("%0*d", digits, code)
}

package reshape

import (
	"math"
	"strconv"
	"strings"
)

// NotApplicable is the Census marker for a cell that does not apply.
const NotApplicable = "(X)"

// Kind is the declared type of a schema column.
type Kind int

const (
	KindText Kind = iota
	KindYear
	KindCount
	KindPercent
	KindAmount
)

// String returns the kind name used in catalog files.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindYear:
		return "year"
	case KindCount:
		return "count"
	case KindPercent:
		return "percent"
	case KindAmount:
		return "amount"
	default:
		return "unknown"
	}
}

// Normalize converts a raw cell to the Go value stored for kind: nil,
// string, int, int64 or float64. It never fails; bad input becomes nil.
func Normalize(value string, kind Kind) any {
	switch kind {
	case KindYear:
		if y := ParseYear(value); y != nil {
			return *y
		}
	case KindCount:
		if n := NormalizeCount(value); n != nil {
			return *n
		}
	case KindPercent:
		if p := NormalizePercent(value); p != nil {
			return *p
		}
	case KindAmount:
		if a := NormalizeAmount(value); a != nil {
			return *a
		}
	default:
		if value != "" {
			return value
		}
	}
	return nil
}

// NormalizeCount strips thousands separators and parses an integer count.
// Integral decimals ("12.0") are accepted.
func NormalizeCount(value string) *int64 {
	s, ok := stripSentinel(value)
	if !ok {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	f, ok := parseFinite(s)
	if !ok || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return nil
	}
	n := int64(f)
	return &n
}

// NormalizePercent parses "42.3%" as the fraction 0.423.
func NormalizePercent(value string) *float64 {
	s, ok := stripSentinel(value)
	if !ok {
		return nil
	}
	s = strings.TrimSuffix(strings.ReplaceAll(s, ",", ""), "%")
	f, ok := parseFinite(s)
	if !ok {
		return nil
	}
	f /= 100
	return &f
}

// NormalizeAmount parses dollar figures and shares as-is ("$52,300" → 52300).
func NormalizeAmount(value string) *float64 {
	s, ok := stripSentinel(value)
	if !ok {
		return nil
	}
	s = strings.NewReplacer(",", "", "$", "").Replace(s)
	s = strings.TrimSuffix(s, "%")
	f, ok := parseFinite(s)
	if !ok {
		return nil
	}
	return &f
}

// ParseYear parses a partition key as an integer year.
func ParseYear(value string) *int {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &y
}

// stripSentinel trims the value and reports false for empty or (X) cells.
func stripSentinel(value string) (string, bool) {
	s := strings.TrimSpace(value)
	if s == "" || s == NotApplicable {
		return "", false
	}
	return s, true
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

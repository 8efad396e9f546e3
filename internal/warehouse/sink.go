// Package warehouse persists assembled tables to Postgres, SQLite or a
// directory of CSV files.
package warehouse

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/census-tidy/internal/reshape"
)

// Schema is the Postgres schema holding every warehouse table.
const Schema = "acs"

// Sink receives assembled tables.
type Sink interface {
	// WriteTable stores t and returns the number of rows written. Rows of the
	// partitions present in t replace what the sink held for them.
	WriteTable(ctx context.Context, t *reshape.Table) (int64, error)
	Close() error
}

// Mode selects how the Postgres sink merges rows.
type Mode string

// Write modes.
const (
	ModeReplace Mode = "replace"
	ModeUpsert  Mode = "upsert"
)

// ParseMode parses a write mode. Empty means replace.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeReplace:
		return ModeReplace, nil
	case ModeUpsert:
		return ModeUpsert, nil
	}
	return "", eris.Errorf("warehouse: unknown mode %q (want replace or upsert)", s)
}

// partitionYears returns the distinct years in t's partition column and
// whether any row has a null year.
func partitionYears(t *reshape.Table) ([]int, bool) {
	idx := t.Schema.Index(t.Schema.Partition)
	if idx < 0 {
		return nil, false
	}
	var (
		years   []int
		hasNull bool
	)
	for _, v := range t.Partitions(t.Schema.Partition) {
		if y, ok := v.(int); ok {
			years = append(years, y)
		}
	}
	for _, row := range t.Rows {
		if row[idx] == nil {
			hasNull = true
			break
		}
	}
	return years, hasNull
}

// formatValue renders a table cell as text. nil is the empty string.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

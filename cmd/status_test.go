package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/census-tidy/internal/warehouse"
)

func TestFormatStatusEntries_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatStatusEntries(&buf, nil)

	output := buf.String()
	// Should still have the header even if entries is nil.
	assert.Contains(t, output, "FACT")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "STARTED")
}

func TestFormatStatusEntries_SingleEntry(t *testing.T) {
	started := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	completed := started.Add(5 * time.Minute)

	var buf bytes.Buffer
	formatStatusEntries(&buf, []warehouse.LoadEntry{{
		ID:          1,
		Fact:        "age_by_education",
		Status:      warehouse.StatusComplete,
		StartedAt:   started,
		CompletedAt: &completed,
		RowsLoaded:  5200,
	}})

	output := buf.String()
	assert.Contains(t, output, "age_by_education")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "2025-01-15 10:30")
	assert.Contains(t, output, "5m0s")
	assert.Contains(t, output, "5200")
}

func TestFormatStatusEntries_Running(t *testing.T) {
	started := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	formatStatusEntries(&buf, []warehouse.LoadEntry{{
		ID:        2,
		Fact:      "population_by_age",
		Status:    warehouse.StatusRunning,
		StartedAt: started,
	}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], " - ")
}

func TestFormatStatusEntries_LongError(t *testing.T) {
	var buf bytes.Buffer
	formatStatusEntries(&buf, []warehouse.LoadEntry{{
		ID:     3,
		Fact:   "income_distribution",
		Status: warehouse.StatusFailed,
		Error:  strings.Repeat("x", 100),
	}})

	assert.Contains(t, buf.String(), strings.Repeat("x", 57)+"...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 58))
}

func TestFormatLastSuccess(t *testing.T) {
	var buf bytes.Buffer
	formatLastSuccess(&buf, "income_distribution", nil)
	assert.Equal(t, "income_distribution: never loaded\n", buf.String())

	buf.Reset()
	at := time.Date(2025, 3, 2, 8, 5, 0, 0, time.UTC)
	formatLastSuccess(&buf, "income_distribution", &at)
	assert.Equal(t, "income_distribution: last loaded 2025-03-02 08:05\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

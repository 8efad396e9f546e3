package dims

import (
	"sync"

	"github.com/sells-group/census-tidy/internal/reshape"
)

// Collector gathers dimension values from assembled fact tables. It is safe
// for concurrent use.
type Collector struct {
	mu        sync.Mutex
	states    []string
	education []string
	years     []int
}

// Add records the state, education and year values of a fact table.
// Columns the table lacks are skipped.
func (c *Collector) Add(t *reshape.Table) {
	if t == nil {
		return
	}
	stateIdx := t.Schema.Index("state")
	eduIdx := t.Schema.Index("education")
	yearIdx := t.Schema.Index("year")

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range t.Rows {
		if s, ok := cell[string](row, stateIdx); ok {
			c.states = append(c.states, s)
		}
		if e, ok := cell[string](row, eduIdx); ok {
			c.education = append(c.education, e)
		}
		if y, ok := cell[int](row, yearIdx); ok {
			c.years = append(c.years, y)
		}
	}
}

// Tables builds every dimension table. ages is the fixed age list.
func (c *Collector) Tables(ages []string) []*reshape.Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	return []*reshape.Table{
		State(c.states),
		Education(c.education),
		Age(ages),
		Year(c.years),
	}
}

func cell[T any](row []any, idx int) (T, bool) {
	var zero T
	if idx < 0 || idx >= len(row) {
		return zero, false
	}
	v, ok := row[idx].(T)
	return v, ok
}

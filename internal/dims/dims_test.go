package dims

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/census-tidy/internal/reshape"
)

func TestState(t *testing.T) {
	tbl := State([]string{"New York", "California", "", "New York", "Atlantis"})
	require.NoError(t, tbl.Schema.Validate())
	assert.Equal(t, [][]any{
		{int64(1), "Atlantis", nil},
		{int64(2), "California", "06"},
		{int64(3), "New York", "36"},
	}, tbl.Rows)
}

func TestEducation(t *testing.T) {
	tbl := Education([]string{
		"Bachelor's degree",
		"Total",
		"9th to 12th grade, no diploma",
		"Less than 9th grade",
		"Bachelor's degree",
		"Some college, no degree",
		"White alone",
	})
	assert.Equal(t, [][]any{
		{int64(1), "9th to 12th grade, no diploma"},
		{int64(2), "Bachelor's degree"},
		{int64(3), "Less than 9th grade"},
		{int64(4), "Some college, no degree"},
	}, tbl.Rows)
}

func TestIsEducationLevel(t *testing.T) {
	assert.True(t, IsEducationLevel("High school GRADUATE (includes equivalency)"))
	assert.True(t, IsEducationLevel("Associate's degree"))
	assert.False(t, IsEducationLevel("Population 25 years and over"))
}

func TestAge(t *testing.T) {
	tbl := Age([]string{"Under 5 years", "5 to 17 years", "Under 5 years", ""})
	assert.Equal(t, [][]any{
		{int64(1), "Under 5 years"},
		{int64(2), "5 to 17 years"},
	}, tbl.Rows)
}

func TestYear(t *testing.T) {
	tbl := Year([]int{2023, 2021, 2023, 2022})
	assert.Equal(t, [][]any{
		{int64(1), 2021},
		{int64(2), 2022},
		{int64(3), 2023},
	}, tbl.Rows)
	assert.Equal(t, YearTable, tbl.Schema.Name)
}

func TestCollector(t *testing.T) {
	schema := reshape.Schema{
		Name: "age_by_education",
		Columns: []reshape.Column{
			{Name: "state"}, {Name: "year", Kind: reshape.KindYear}, {Name: "education"},
		},
	}
	income := reshape.Schema{
		Name:    "income_distribution",
		Columns: []reshape.Column{{Name: "state"}, {Name: "year", Kind: reshape.KindYear}, {Name: "indicator"}},
	}

	var c Collector
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.Add(&reshape.Table{Schema: schema, Rows: [][]any{
			{"Ohio", 2023, "Bachelor's degree"},
			{"Iowa", nil, nil},
		}})
	}()
	go func() {
		defer wg.Done()
		c.Add(&reshape.Table{Schema: income, Rows: [][]any{{"Utah", 2022, "Total"}}})
	}()
	wg.Wait()
	c.Add(nil)

	tables := c.Tables([]string{"18 to 24 years"})
	require.Len(t, tables, 4)

	assert.Equal(t, StateTable, tables[0].Schema.Name)
	assert.Equal(t, 3, tables[0].Len())
	assert.Equal(t, [][]any{{int64(1), "Bachelor's degree"}}, tables[1].Rows)
	assert.Equal(t, [][]any{{int64(1), "18 to 24 years"}}, tables[2].Rows)
	assert.Equal(t, [][]any{{int64(1), 2022}, {int64(2), 2023}}, tables[3].Rows)
}

func TestSchemasAreValid(t *testing.T) {
	for _, s := range []reshape.Schema{stateSchema, educationSchema, ageSchema, yearSchema} {
		assert.NoError(t, s.Validate(), s.Name)
	}
}

package reshape

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpivot_MultipleDimensions(t *testing.T) {
	cols := ParseColumns([]string{
		"Label (Grouping)",
		"CA!!Total!!Estimate",
		"CA!!Percent!!Estimate",
		"NY!!Total!!Estimate",
		"NY!!Percent!!Estimate",
	}, testVocabulary())
	rows := []DataRecord{{
		ID:        3,
		Partition: "2023",
		Entity:    "Bachelor's degree",
		Context:   Context{Value: "25 to 34 years", Valid: true},
		Cells:     []string{"Bachelor's degree", "100", "10%", "200", "20%"},
	}}

	got, err := Unpivot(rows, cols)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, FactRecord{
		RowID:     3,
		Dimension: "CA",
		Partition: "2023",
		Entity:    "Bachelor's degree",
		Context:   Context{Value: "25 to 34 years", Valid: true},
		Metrics:   map[string]string{"total_estimate": "100", "total_percent": "10%"},
	}, got[0])
	assert.Equal(t, "NY", got[1].Dimension)
	assert.Equal(t, map[string]string{"total_estimate": "200", "total_percent": "20%"}, got[1].Metrics)
}

func TestUnpivot_MissingMetricStaysAbsent(t *testing.T) {
	cols := ParseColumns([]string{
		"Label (Grouping)",
		"CA!!Total!!Estimate",
		"CA!!Male!!Estimate",
		"NY!!Total!!Estimate",
	}, testVocabulary())
	rows := []DataRecord{{ID: 0, Partition: "2022", Entity: "x", Cells: []string{"x", "1", "2", "3"}}}

	got, err := Unpivot(rows, cols)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, map[string]string{"total_estimate": "1", "male_estimate": "2"}, got[0].Metrics)
	assert.Equal(t, map[string]string{"total_estimate": "3"}, got[1].Metrics)
	_, ok := got[1].Metrics["male_estimate"]
	assert.False(t, ok)
}

func TestUnpivot_EmptyCellsSkipped(t *testing.T) {
	cols := ParseColumns([]string{
		"Label (Grouping)",
		"CA!!Total!!Estimate",
		"NY!!Total!!Estimate",
	}, testVocabulary())
	rows := []DataRecord{
		{ID: 0, Partition: "2023", Entity: "a", Cells: []string{"a", "  ", "5"}},
		{ID: 1, Partition: "2023", Entity: "b", Cells: []string{"b"}},
		{ID: 2, Partition: "2023", Entity: "c", Cells: []string{"c", "(X)", ""}},
	}

	got, err := Unpivot(rows, cols)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "NY", got[0].Dimension)
	assert.Equal(t, 0, got[0].RowID)
	assert.Equal(t, "CA", got[1].Dimension)
	assert.Equal(t, "(X)", got[1].Metrics["total_estimate"])
}

func TestUnpivot_OrderIsRowThenDimension(t *testing.T) {
	cols := ParseColumns([]string{
		"NY!!Total!!Estimate",
		"CA!!Total!!Estimate",
		"NY!!Percent!!Estimate",
	}, testVocabulary())
	rows := []DataRecord{
		{ID: 0, Entity: "r0", Cells: []string{"1", "2", "3"}},
		{ID: 1, Entity: "r1", Cells: []string{"4", "5", "6"}},
	}

	got, err := Unpivot(rows, cols)
	require.NoError(t, err)

	var order []string
	for _, r := range got {
		order = append(order, r.Entity+"/"+r.Dimension)
	}
	assert.Equal(t, []string{"r0/NY", "r0/CA", "r1/NY", "r1/CA"}, order)
	assert.Equal(t, map[string]string{"total_estimate": "1", "total_percent": "3"}, got[0].Metrics)
}

func TestUnpivot_NoColumns(t *testing.T) {
	_, err := Unpivot([]DataRecord{{Cells: []string{"a"}}}, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoMetricColumns))
}

func TestUnpivot_NoRows(t *testing.T) {
	cols := ParseColumns([]string{"CA!!Total!!Estimate"}, testVocabulary())
	got, err := Unpivot(nil, cols)
	require.NoError(t, err)
	assert.Empty(t, got)
}

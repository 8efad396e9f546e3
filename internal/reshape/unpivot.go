package reshape

import "github.com/rotisserie/eris"

// ErrNoMetricColumns means no source column matched the composite naming
// grammar and vocabulary. The whole extract is in an unexpected format.
var ErrNoMetricColumns = eris.New("reshape: no metric columns found in <Dimension>!!<Category>!!Estimate format")

// DataRecord is a data row that survived classification, with its metadata.
type DataRecord struct {
	ID        int
	Partition string
	Entity    string
	Context   Context
	Cells     []string
}

// FactRecord is one long-format observation: a source row seen through one
// dimension value. Metrics hold raw cell text keyed by output field.
type FactRecord struct {
	RowID     int
	Dimension string
	Partition string
	Entity    string
	Context   Context
	Metrics   map[string]string
}

// Unpivot emits one FactRecord per (row, dimension value) that has at least
// one present metric cell. Metrics a dimension does not expose stay absent.
// Records come out in row order, then in first-appearance dimension order.
func Unpivot(rows []DataRecord, cols []ParsedColumn) ([]FactRecord, error) {
	if len(cols) == 0 {
		return nil, ErrNoMetricColumns
	}

	// Group columns by dimension once; every row shares the layout.
	var dims []string
	byDim := make(map[string][]ParsedColumn)
	for _, c := range cols {
		if _, ok := byDim[c.Key.Dimension]; !ok {
			dims = append(dims, c.Key.Dimension)
		}
		byDim[c.Key.Dimension] = append(byDim[c.Key.Dimension], c)
	}

	var out []FactRecord
	for _, row := range rows {
		for _, dim := range dims {
			var metrics map[string]string
			for _, c := range byDim[dim] {
				v, ok := cellAt(row.Cells, c.Index)
				if !ok {
					continue
				}
				if metrics == nil {
					metrics = make(map[string]string, len(byDim[dim]))
				}
				metrics[c.Key.Metric] = v
			}
			if metrics == nil {
				continue
			}
			out = append(out, FactRecord{
				RowID:     row.ID,
				Dimension: dim,
				Partition: row.Partition,
				Entity:    row.Entity,
				Context:   row.Context,
				Metrics:   metrics,
			})
		}
	}

	return out, nil
}

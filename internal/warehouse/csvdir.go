package warehouse

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/census-tidy/internal/reshape"
)

// CSVDir writes each table to <dir>/<table>.csv, overwriting earlier output.
type CSVDir struct {
	dir string
}

// NewCSVDir creates dir if needed.
func NewCSVDir(dir string) (*CSVDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "csvdir: create %s", dir)
	}
	return &CSVDir{dir: dir}, nil
}

// Path returns the file a table is written to.
func (c *CSVDir) Path(table string) string {
	return filepath.Join(c.dir, table+".csv")
}

// WriteTable writes the header and every row. Nulls become empty cells.
func (c *CSVDir) WriteTable(ctx context.Context, t *reshape.Table) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, eris.Wrap(err, "csvdir: context cancelled")
	}

	path := c.Path(t.Schema.Name)
	f, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "csvdir: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	n, err := WriteCSV(f, t)
	if err != nil {
		return n, eris.Wrapf(err, "csvdir: write %s", path)
	}
	return n, f.Close()
}

// Close is a no-op.
func (c *CSVDir) Close() error { return nil }

// WriteCSV writes t as CSV with a header row.
func WriteCSV(w io.Writer, t *reshape.Table) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Schema.ColumnNames()); err != nil {
		return 0, err
	}

	record := make([]string, len(t.Schema.Columns))
	var n int64
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return n, err
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

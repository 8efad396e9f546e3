// Package ingest reads yearly Census extract files into reshape frames.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/census-tidy/internal/fetcher"
	"github.com/sells-group/census-tidy/internal/reshape"
)

// Supported file extensions, in preference order.
var Extensions = []string{".csv", ".xlsx", ".zip"}

// YearFromPath returns the numeric suffix after the last "_" of the base
// name ("education_2023.csv" → "2023"). It returns "" when the suffix is
// not a number.
func YearFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	i := strings.LastIndex(base, "_")
	if i < 0 {
		return ""
	}
	suffix := base[i+1:]
	if _, err := strconv.Atoi(suffix); err != nil {
		return ""
	}
	return suffix
}

// ReadFrame reads one extract file. The first row is the header; every data
// row is tagged with year as its partition.
func ReadFrame(ctx context.Context, path, labelColumn, year string) (*reshape.Frame, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSVFile(ctx, path)
	case ".xlsx":
		records, err = fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	case ".zip":
		records, err = readZIP(ctx, path)
	default:
		return nil, eris.Errorf("ingest: unsupported file type %s", filepath.Base(path))
	}
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", filepath.Base(path))
	}

	return FrameFromRecords(filepath.Base(path), labelColumn, year, records)
}

// FrameFromRecords builds a frame from parsed records whose first row is the
// header.
func FrameFromRecords(source, labelColumn, year string, records [][]string) (*reshape.Frame, error) {
	if len(records) == 0 {
		return nil, eris.Errorf("ingest: %s is empty", source)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	f := &reshape.Frame{
		Source:      source,
		LabelColumn: labelColumn,
		Columns:     header,
		Rows:        make([]reshape.RawRow, 0, len(records)-1),
	}
	for _, rec := range records[1:] {
		f.Rows = append(f.Rows, reshape.RawRow{Partition: year, Cells: rec})
	}
	return f, nil
}

func readCSVFile(ctx context.Context, path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open")
	}
	defer file.Close() //nolint:errcheck

	return fetcher.ReadCSV(ctx, file, fetcher.CSVOptions{
		LazyQuotes: true,
		StripBOM:   true,
	})
}

// readZIP reads the data table of a data.census.gov download: the first
// "*-Data.csv" entry, else the first ".csv" entry.
func readZIP(ctx context.Context, path string) ([][]string, error) {
	dir, err := os.MkdirTemp("", "census-zip-*")
	if err != nil {
		return nil, eris.Wrap(err, "temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	entry, err := fetcher.ExtractZIPMatch(path, dir, func(name string) bool {
		return strings.HasSuffix(name, "-Data.csv")
	})
	if err != nil {
		entry, err = fetcher.ExtractZIPMatch(path, dir, func(name string) bool {
			return strings.EqualFold(filepath.Ext(name), ".csv")
		})
	}
	if err != nil {
		return nil, err
	}
	return readCSVFile(ctx, entry)
}

package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.zip")
	out, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(out)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())
	return path
}

func TestExtractZIP(t *testing.T) {
	path := createTestZIP(t, map[string]string{
		"ACSST1Y2023.S1501-Data.csv":   "data",
		"ACSST1Y2023.S1501-Column.csv": "meta",
	})
	dest := t.TempDir()

	files, err := ExtractZIP(path, dest)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	data, err := os.ReadFile(filepath.Join(dest, "ACSST1Y2023.S1501-Data.csv"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestExtractZIP_ZipSlip(t *testing.T) {
	path := createTestZIP(t, map[string]string{"../evil.csv": "x"})
	_, err := ExtractZIP(path, t.TempDir())
	assert.ErrorContains(t, err, "zip slip")
}

func TestExtractZIPMatch(t *testing.T) {
	path := createTestZIP(t, map[string]string{
		"b/ACSST1Y2023.S1501-Data.csv":   "second",
		"a/ACSST1Y2023.S1501-Data.csv":   "first",
		"ACSST1Y2023.S1501-Column.csv":   "meta",
		"ACSST1Y2023.S1501-Table-Notes": "notes",
	})
	dest := t.TempDir()

	got, err := ExtractZIPMatch(path, dest, func(name string) bool {
		return strings.HasSuffix(name, "-Data.csv")
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "a", "ACSST1Y2023.S1501-Data.csv"), got)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestExtractZIPMatch_NoMatch(t *testing.T) {
	path := createTestZIP(t, map[string]string{"readme.txt": "x"})
	_, err := ExtractZIPMatch(path, t.TempDir(), func(string) bool { return false })
	assert.ErrorContains(t, err, "no matching entry")
}

func TestExtractZIP_BadArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
	_, err := ExtractZIP(path, t.TempDir())
	assert.ErrorContains(t, err, "zip: open archive")
}

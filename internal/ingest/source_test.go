package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFiles_OrderAndPreference(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"education_2023.csv",
		"education_2021.csv",
		"education_2021.zip",
		"education_latest.csv",
		"education_2022.xlsx",
		"total_income_2023.csv",
	} {
		writeFile(t, dir, name, "x")
	}

	files, err := FindFiles(dir, "education_*")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{
		"education_2021.csv",
		"education_2022.xlsx",
		"education_2023.csv",
		"education_latest.csv",
	}, names)
}

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "education_2023.csv", sampleCSV)
	writeFile(t, dir, "education_2022.csv", sampleCSV)
	writeFile(t, dir, "education_2021.csv", "")

	frames, err := LoadSource(context.Background(), dir, "education_*", LoadOptions{Workers: 2})
	require.NoError(t, err)
	require.Len(t, frames, 2)

	assert.Equal(t, "education_2022.csv", frames[0].Source)
	assert.Equal(t, "2022", frames[0].Rows[0].Partition)
	assert.Equal(t, "education_2023.csv", frames[1].Source)
}

func TestLoadSource_NoFiles(t *testing.T) {
	_, err := LoadSource(context.Background(), t.TempDir(), "education_*", LoadOptions{})
	assert.ErrorContains(t, err, "no files match")
}

func TestLoadSource_NothingReadable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "education_2021.csv", "")

	_, err := LoadSource(context.Background(), dir, "education_*", LoadOptions{})
	assert.ErrorContains(t, err, "could be read")
}

func TestLoadSource_NullYear(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "education_latest.csv", sampleCSV)

	frames, err := LoadSource(context.Background(), dir, "education_*", LoadOptions{})
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "", frames[0].Rows[0].Partition)
}

package rawio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"DSC1.ARW.tif", "DSC1.tiff"},
		{"/scans/roll3/DSC1.tif", "DSC1.tiff"},
		{"frame07.TIFF", "frame07.tiff"},
		{"noext", "noext.tiff"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputName(tt.in), tt.in)
	}
}

func TestFindJobsSingleFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "DSC1.ARW.tif")
	require.NoError(t, os.WriteFile(in, nil, 0644))

	jobs, err := FindJobs(in, "", "")
	require.NoError(t, err)
	assert.Equal(t, []Job{{in, filepath.Join(dir, "DSC1.tiff")}}, jobs)

	jobs, err = FindJobs(in, "/elsewhere/out.tiff", "")
	require.NoError(t, err)
	assert.Equal(t, []Job{{in, "/elsewhere/out.tiff"}}, jobs)
}

func TestFindJobsDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.ARW.tif", "b.tiff", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	jobs, err := FindJobs(dir, "", "")
	require.NoError(t, err)
	outDir := filepath.Join(dir, DefaultOutputDir)
	assert.Equal(t, []Job{
		{filepath.Join(dir, "a.ARW.tif"), filepath.Join(outDir, "a.tiff")},
		{filepath.Join(dir, "b.tiff"), filepath.Join(outDir, "b.tiff")},
	}, jobs)

	item, err := os.Stat(outDir)
	require.NoError(t, err)
	assert.True(t, item.IsDir())

	custom := filepath.Join(t.TempDir(), "nested", "out")
	jobs, err = FindJobs(dir, custom, "TIFF")
	require.NoError(t, err)
	assert.Equal(t, []Job{{filepath.Join(dir, "b.tiff"), filepath.Join(custom, "b.tiff")}}, jobs)
}

func TestFindJobsErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := FindJobs(filepath.Join(dir, "missing.tif"), "", "")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = FindJobs(dir, "", "")
	assert.ErrorContains(t, err, "no input files")
}

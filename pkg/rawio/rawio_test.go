package rawio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/positif/pkg/positive"
	"github.com/abworrall/positif/pkg/raster"
)

func gradient(w, h, bps int) *raster.PixelBuffer {
	pb := raster.NewPixelBuffer(w, h, bps)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pb.Set(x, y, 0, uint16(x*10))
			pb.Set(x, y, 1, uint16(y*10))
			pb.Set(x, y, 2, uint16(x+y))
		}
	}
	return pb
}

func writeTemp(t *testing.T, pb *raster.PixelBuffer) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "neg.tiff")
	require.NoError(t, WriteTIFF(filename, pb))
	return filename
}

func TestTIFFRoundTrip(t *testing.T) {
	for _, bps := range []int{8, 16} {
		pb := gradient(6, 4, bps)
		pb2, md, err := LoadTIFF(writeTemp(t, pb), LoadOptions{BitsPerSample: bps})
		require.NoError(t, err)
		assert.Equal(t, pb.Pix, pb2.Pix, "bps=%d", bps)
		assert.Equal(t, "(no exif)", md.String())
	}
}

func TestLoadRegionAndFlip(t *testing.T) {
	pb := gradient(6, 4, 16)
	filename := writeTemp(t, pb)

	pb2, _, err := LoadTIFF(filename, LoadOptions{BitsPerSample: 16, Region: []int{1, 2, 3, 5}})
	require.NoError(t, err)
	assert.Equal(t, 3, pb2.Width)
	assert.Equal(t, 2, pb2.Height)
	assert.Equal(t, uint16(20), pb2.Sample(0, 0, 0))
	assert.Equal(t, uint16(10), pb2.Sample(0, 0, 1))

	pb3, _, err := LoadTIFF(filename, LoadOptions{BitsPerSample: 16, Flip: true})
	require.NoError(t, err)
	assert.Equal(t, uint16(50), pb3.Sample(0, 0, 0))
	assert.Equal(t, uint16(0), pb3.Sample(5, 0, 0))

	_, _, err = LoadTIFF(filename, LoadOptions{BitsPerSample: 16, Region: []int{10, 10, 20, 20}})
	assert.Error(t, err)
}

func TestLoadDownsample(t *testing.T) {
	pb := raster.NewPixelBuffer(8, 6, 16)
	for i := range pb.Pix {
		pb.Pix[i] = 1000
	}
	pb2, _, err := LoadTIFF(writeTemp(t, pb), LoadOptions{BitsPerSample: 16, Downsample: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, pb2.Width)
	assert.Equal(t, 3, pb2.Height)
	for _, v := range pb2.Pix {
		assert.InDelta(t, 1000, int(v), 1)
	}
}

func TestUserWhiteBalance(t *testing.T) {
	pb := raster.NewPixelBuffer(1, 1, 16)
	pb.Pix[0], pb.Pix[1], pb.Pix[2] = 1000, 1000, 60000

	pb2, _, err := LoadTIFF(writeTemp(t, pb), LoadOptions{BitsPerSample: 16, UserWhiteBalance: []float64{2, 1, 4, 1}})
	require.NoError(t, err)
	assert.Equal(t, []uint16{2000, 1000, 65535}, pb2.Pix)
}

func TestLoadErrors(t *testing.T) {
	_, _, err := LoadTIFF("/no/such/file.tiff", LoadOptions{BitsPerSample: 16})
	var de DecodeError
	require.True(t, errors.As(err, &de))
	assert.ErrorIs(t, err, os.ErrNotExist)

	junk := filepath.Join(t.TempDir(), "junk.tiff")
	require.NoError(t, os.WriteFile(junk, []byte("not a tiff"), 0644))
	_, _, err = LoadTIFF(junk, LoadOptions{BitsPerSample: 16})
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, junk, de.Filename)

	err = WriteTIFF("/no/such/dir/out.tiff", gradient(2, 2, 16))
	var we WriteError
	assert.True(t, errors.As(err, &we))
}

func TestWriteHDR(t *testing.T) {
	pos := positive.NewPositive(4, 3)
	for i := range pos.Pix {
		pos.Pix[i] = float64(i) / float64(len(pos.Pix))
	}

	filename := filepath.Join(t.TempDir(), "pos.hdr")
	require.NoError(t, WriteHDR(filename, pos))
	contents, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "RADIANCE")

	err = WriteHDR("/no/such/dir/pos.hdr", pos)
	var we WriteError
	assert.True(t, errors.As(err, &we))
}

func TestFindInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.TIF", "b.tiff", "c.tif", "d.jpg", "e.NEF"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.tif"), 0755))

	files, err := FindInputs(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = FindInputs(dir, ".nef")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "e.NEF")}, files)

	files, err = FindInputs(dir, "TIF")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.TIF"), filepath.Join(dir, "c.tif")}, files)

	_, err = FindInputs(filepath.Join(dir, "nope"), "")
	assert.Error(t, err)
}

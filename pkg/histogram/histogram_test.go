package histogram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/positif/pkg/raster"
)

// plateau fills every channel with values cycling evenly through [a,b].
func plateau(w, h, bps, a, b int) *raster.PixelBuffer {
	pb := raster.NewPixelBuffer(w, h, bps)
	span := b - a + 1
	for i := range pb.Pix {
		pb.Pix[i] = uint16(a + (i/3)%span)
	}
	return pb
}

func TestFirstLastAboveFallback(t *testing.T) {
	assert.Equal(t, 0, FirstAbove([]int{0, 0, 0}, 0))
	assert.Equal(t, 2, LastAbove([]int{0, 0, 0}, 0))
	assert.Equal(t, 0, FirstAbove(nil, 0))

	assert.Equal(t, 1, FirstAbove([]int{0, 5, 5, 0}, 1))
	assert.Equal(t, 2, LastAbove([]int{0, 5, 5, 0}, 1))

	// Not strictly greater than the threshold, so not found
	assert.Equal(t, 0, FirstAbove([]int{0, 1, 1}, 1))
	assert.Equal(t, 2, LastAbove([]int{1, 1, 0}, 1))
}

func TestBoundsDegenerate(t *testing.T) {
	h := New(8, 16)
	require.Len(t, h.Counts, 15)

	lower, upper := h.Bounds(0.01)
	assert.Equal(t, 1, lower)
	assert.Equal(t, 14, upper)
}

func TestHistogramEdges(t *testing.T) {
	h := New(8, 16)
	h.Add(0)
	h.Add(15)
	h.Add(16)
	h.Add(239)
	h.Add(240) // the last edge, closes the last bin
	h.Add(241) // past the last edge, dropped
	h.Add(255)

	assert.Equal(t, 2, h.Counts[0])
	assert.Equal(t, 1, h.Counts[1])
	assert.Equal(t, 2, h.Counts[14])
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	assert.Equal(t, 5, total)
}

func TestLevelRangePlateau(t *testing.T) {
	pb := plateau(500, 200, 16, 4000, 11999)
	pb.Pix[0] = 60000 // a lone hot pixel is below the threshold

	r, err := LevelRange(pb, DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 4000, r.Lower, 16)
	assert.InDelta(t, 11999, r.Upper, 16)
}

func TestMidLevelPlateau(t *testing.T) {
	pb := plateau(500, 200, 16, 4000, 11999)

	mid, err := MidLevel(pb, DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, (4000+11999)/2.0, mid, 16)
}

func TestMidLevelIgnoresBorder(t *testing.T) {
	pb := plateau(100, 100, 16, 20000, 29999)

	// Paint the left 10% of the frame bright; the default border trims 20%
	for y := 0; y < pb.Height; y++ {
		for x := 0; x < 10; x++ {
			for c := 0; c < 3; c++ {
				pb.Set(x, y, c, 65000)
			}
		}
	}

	mid, err := MidLevel(pb, DefaultConfig())
	require.NoError(t, err)
	assert.Less(t, mid, 30000.0)

	noBorder := DefaultConfig()
	noBorder.BorderWidth, noBorder.BorderHeight = 0, 0
	mid2, err := MidLevel(pb, noBorder)
	require.NoError(t, err)
	assert.Greater(t, mid2, 30000.0)
}

func TestMidLevelSmallImageNoTrim(t *testing.T) {
	pb := raster.NewPixelBuffer(4, 4, 8)
	for i := range pb.Pix {
		pb.Pix[i] = 128
	}

	mid, err := MidLevel(pb, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 128.0, mid)
}

func TestDensityRangeScaleInvariance(t *testing.T) {
	pb := plateau(256, 64, 16, 1024, 2047)
	scaled := pb.CopyEmpty()
	for i, v := range pb.Pix {
		scaled.Pix[i] = 4 * v
	}

	r1, err := DensityRange(pb, DefaultConfig())
	require.NoError(t, err)
	r2, err := DensityRange(scaled, DefaultConfig())
	require.NoError(t, err)

	// Both bounds sit on bin edges, so the upper one moves by a whole bin less
	assert.InDelta(t, math.Log10(4), r2.Lower-r1.Lower, 1e-9)
	assert.InDelta(t, math.Log10(8176.0/2032.0), r2.Upper-r1.Upper, 1e-9)
	assert.Less(t, r1.Upper, 0.0)
}

func TestDensityRangeFlatImageTerminates(t *testing.T) {
	pb := raster.NewPixelBuffer(8, 8, 16)

	r, err := DensityRange(pb, DefaultConfig())
	require.NoError(t, err)
	assert.False(t, math.IsNaN(r.Lower))
	assert.False(t, math.IsInf(r.Lower, 0))
	assert.False(t, math.IsInf(r.Upper, 0))
	assert.Equal(t, r.Lower, r.Upper)
}

func TestLevelRangeUsesBinStartEdges(t *testing.T) {
	pb := plateau(40, 40, 8, 50, 170)

	r, err := LevelRange(pb, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Range{Lower: 3 * 16, Upper: 10 * 16}, r)

	// Same edges the mid-level estimate uses
	noBorder := DefaultConfig()
	noBorder.BorderWidth, noBorder.BorderHeight = 0, 0
	mid, err := MidLevel(pb, noBorder)
	require.NoError(t, err)
	assert.Equal(t, 0.5*(r.Lower+r.Upper), mid)
}

func TestShapeErrors(t *testing.T) {
	pb := raster.NewPixelBuffer(8, 8, 16)
	pb.Channels = 1
	_, err := MidLevel(pb, DefaultConfig())
	assert.ErrorAs(t, err, &raster.ShapeError{})
	_, err = DensityRange(pb, DefaultConfig())
	assert.ErrorAs(t, err, &raster.ShapeError{})
}

func TestSummarize(t *testing.T) {
	pb := plateau(100, 100, 16, 1000, 1999)
	s, err := Summarize(pb)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), s.Count)
	assert.InDelta(t, 1000, s.Min, 2)
	assert.InDelta(t, 1999, s.Max, 2)
	assert.InDelta(t, 1500, s.P50, 10)

	assert.Equal(t, 65535, s.MaxLevel)
	chart := s.ASCII(64)
	assert.Contains(t, chart, "n= 30000")
	assert.Contains(t, chart, "50%ile=")

	assert.Equal(t, "<nil>", Stats{}.ASCII(64))
}

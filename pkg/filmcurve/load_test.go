package filmcurve

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/positif/pkg/spline"
)

// tckSegment renders a spline the way FITPACK's splrep returns it: knots,
// then coeffs padded with zeros to the same length.
func tckSegment(t *testing.T, s *spline.Spline) []float64 {
	knots, coeffs := s.Knots(), s.Coeffs()
	require.Len(t, knots, len(coeffs)+s.Degree()+1)
	padded := append(coeffs, make([]float64, s.Degree()+1)...)
	return append(knots, padded...)
}

func floatBytes(vals []float64) []byte {
	b := bytes.Buffer{}
	binary.Write(&b, binary.LittleEndian, vals)
	return b.Bytes()
}

func testSplines(t *testing.T, lo, hi float64) [3]*spline.Spline {
	ret := [3]*spline.Spline{}
	for i := range ret {
		s, err := spline.Line(lo, hi, 0.1*float64(i+1), 0.9, 3)
		require.NoError(t, err)
		ret[i] = s
	}
	return ret
}

func writeDir(t *testing.T, dir string, splines [3]*spline.Spline) {
	for i, name := range ChannelNames {
		fn := filepath.Join(dir, name+".bin")
		require.NoError(t, os.WriteFile(fn, floatBytes(tckSegment(t, splines[i])), 0o644))
	}
}

func packedBytes(t *testing.T, lo, hi float64, splines [3]*spline.Spline) []byte {
	segs := [3][]float64{}
	for i := range segs {
		segs[i] = tckSegment(t, splines[i])
	}
	b := bytes.Buffer{}
	hdr := packedHeader{
		Degree: 3,
		NRed:   int32(len(segs[0])), NGreen: int32(len(segs[1])), NBlue: int32(len(segs[2])),
		DomainLower: lo, DomainUpper: hi,
	}
	require.NoError(t, binary.Write(&b, binary.LittleEndian, hdr))
	for _, seg := range segs {
		b.Write(floatBytes(seg))
	}
	return b.Bytes()
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	splines := testSplines(t, 0, 255)
	writeDir(t, dir, splines)

	fcs, err := Load(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, RawLevel, fcs.Kind)
	assert.Equal(t, filepath.Base(dir), fcs.Name)

	for i, c := range fcs.Curves {
		assert.Equal(t, ChannelNames[i], c.Channel)
		assert.Equal(t, splines[i].Coeffs(), c.Coeffs(), "padding should be dropped")
		assert.InDelta(t, splines[i].Eval(100), c.Eval(100), 1e-12)
	}
}

func TestLoadDirMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeDir(t, dir, testSplines(t, 0, 255))
	require.NoError(t, os.Remove(filepath.Join(dir, "green.bin")))

	_, err := LoadDir(dir, 3)
	var cle CurveLoadError
	require.True(t, errors.As(err, &cle))
	assert.Contains(t, cle.Source, "green.bin")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadDirOddLength(t *testing.T) {
	dir := t.TempDir()
	writeDir(t, dir, testSplines(t, 0, 255))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blue.bin"), floatBytes([]float64{1, 2, 3}), 0o644))

	_, err := LoadDir(dir, 3)
	assert.True(t, errors.As(err, &CurveLoadError{}))
}

func TestLoadPacked(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "portra160.bin")
	splines := testSplines(t, -2.5, 0)
	require.NoError(t, os.WriteFile(fn, packedBytes(t, -2.5, 0, splines), 0o644))

	fcs, err := Load(fn, 0)
	require.NoError(t, err)
	assert.Equal(t, "portra160", fcs.Name)
	assert.Equal(t, Domain{Kind: LogDensity, Lower: -2.5, Upper: 0}, fcs.Domain)
	for i, c := range fcs.Curves {
		assert.InDelta(t, splines[i].Eval(-1), c.Eval(-1), 1e-12)
	}
}

func TestLoadPackedSizeMismatch(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "bad.bin")
	b := packedBytes(t, -2.5, 0, testSplines(t, -2.5, 0))

	for _, contents := range [][]byte{b[:len(b)-8], append(b, floatBytes([]float64{0})...), b[:10]} {
		require.NoError(t, os.WriteFile(fn, contents, 0o644))
		_, err := LoadPacked(fn)
		assert.True(t, errors.As(err, &CurveLoadError{}))
	}
}

func TestWithContrast(t *testing.T) {
	d := Domain{Kind: LogDensity, Lower: -2, Upper: 0}
	w := d.WithContrast(1)

	cc := math.Log10(2)
	assert.InDelta(t, -2-cc/2, w.Lower, 1e-12)
	assert.InDelta(t, cc/2, w.Upper, 1e-12)
	assert.Equal(t, Domain{Kind: LogDensity, Lower: -2, Upper: 0}, d, "receiver must not change")

	raw := Domain{Kind: RawLevel}
	assert.Equal(t, raw, raw.WithContrast(2))
}

package filmcurve

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/abworrall/positif/pkg/spline"
)

// DefaultDegree is used for three-file curve sets, which don't record it.
const DefaultDegree = 3

// A CurveLoadError means curve data was missing or malformed.
type CurveLoadError struct {
	Source string
	Err    error
}

func (e CurveLoadError) Error() string { return fmt.Sprintf("load curves %s: %v", e.Source, e.Err) }
func (e CurveLoadError) Unwrap() error { return e.Err }

// packedHeader is the fixed header at the start of a packed curve file.
type packedHeader struct {
	Degree                   int32
	NRed, NGreen, NBlue      int32
	DomainLower, DomainUpper float64
}

var packedHeaderSize = binary.Size(packedHeader{})

// Load figures out the layout from the path: a directory holds three
// per-channel files, anything else is a packed file. `degree` only
// applies to directories; packed files carry their own.
func Load(path string, degree int) (*FilmCurveSet, error) {
	item, err := os.Stat(path)
	if err != nil {
		return nil, CurveLoadError{Source: path, Err: err}
	}
	if item.IsDir() {
		return LoadDir(path, degree)
	}
	return LoadPacked(path)
}

// LoadDir reads red.bin, green.bin and blue.bin from dir. Each is a flat
// little-endian float64 array: the knot vector, then the coefficient
// vector, of equal length.
func LoadDir(dir string, degree int) (*FilmCurveSet, error) {
	if degree <= 0 {
		degree = DefaultDegree
	}

	splines := [3]*spline.Spline{}
	for i, name := range ChannelNames {
		filename := filepath.Join(dir, name+".bin")
		vals, err := readFloats(filename)
		if err != nil {
			return nil, CurveLoadError{Source: filename, Err: err}
		}
		if splines[i], err = splitKnotsAndCoeffs(vals, degree); err != nil {
			return nil, CurveLoadError{Source: filename, Err: err}
		}
	}

	return NewFilmCurveSet(filepath.Base(dir), splines[0], splines[1], splines[2], Domain{Kind: RawLevel}), nil
}

// LoadPacked reads a single file holding a header, and then each
// channel's knots+coeffs in red, green, blue order.
func LoadPacked(filename string) (*FilmCurveSet, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, CurveLoadError{Source: filename, Err: err}
	}

	fcs, err := decodePacked(bytes.NewReader(contents), len(contents))
	if err != nil {
		return nil, CurveLoadError{Source: filename, Err: err}
	}
	fcs.Name = trimExt(filepath.Base(filename))
	return fcs, nil
}

func decodePacked(r io.Reader, size int) (*FilmCurveSet, error) {
	hdr := packedHeader{}
	if size < packedHeaderSize {
		return nil, fmt.Errorf("file is %d bytes, too short for %d byte header", size, packedHeaderSize)
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	counts := []int{int(hdr.NRed), int(hdr.NGreen), int(hdr.NBlue)}
	total := 0
	for i, n := range counts {
		if n <= 0 || n%2 != 0 {
			return nil, fmt.Errorf("%s count %d must be positive and even", ChannelNames[i], n)
		}
		total += n
	}
	if want := packedHeaderSize + 8*total; size != want {
		return nil, fmt.Errorf("file is %d bytes, header counts %v need %d", size, counts, want)
	}
	if math.IsNaN(hdr.DomainLower) || math.IsNaN(hdr.DomainUpper) || hdr.DomainLower >= hdr.DomainUpper {
		return nil, fmt.Errorf("bad domain [%f, %f]", hdr.DomainLower, hdr.DomainUpper)
	}

	payload := make([]float64, total)
	if err := binary.Read(r, binary.LittleEndian, payload); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}

	splines := [3]*spline.Spline{}
	for i, n := range counts {
		var err error
		if splines[i], err = splitKnotsAndCoeffs(payload[:n], int(hdr.Degree)); err != nil {
			return nil, fmt.Errorf("%s curve: %w", ChannelNames[i], err)
		}
		payload = payload[n:]
	}

	dom := Domain{Kind: LogDensity, Lower: hdr.DomainLower, Upper: hdr.DomainUpper}
	return NewFilmCurveSet("", splines[0], splines[1], splines[2], dom), nil
}

// splitKnotsAndCoeffs splits a segment in half. Fitters that emit equal
// length knot and coeff vectors pad the coeffs with degree+1 trailing
// entries, which we drop.
func splitKnotsAndCoeffs(vals []float64, degree int) (*spline.Spline, error) {
	if len(vals) == 0 || len(vals)%2 != 0 {
		return nil, fmt.Errorf("%d values, want a positive even number", len(vals))
	}
	n := len(vals) / 2
	if n <= degree+1 {
		return nil, fmt.Errorf("%d knots too few for degree %d", n, degree)
	}
	knots := vals[:n]
	coeffs := vals[n : 2*n-degree-1]
	return spline.New(knots, coeffs, degree)
}

func readFloats(filename string) ([]float64, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if len(contents)%8 != 0 {
		return nil, fmt.Errorf("size %d is not a multiple of 8", len(contents))
	}
	vals := make([]float64, len(contents)/8)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(contents[8*i:]))
	}
	return vals, nil
}

func trimExt(name string) string { return name[:len(name)-len(filepath.Ext(name))] }

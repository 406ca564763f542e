// Package positive turns a scanned colour negative into a positive image,
// by mapping each channel through a film stock's response curve.
package positive

import (
	"fmt"

	"github.com/kovidgoyal/go-parallel"
	"gonum.org/v1/gonum/floats"

	"github.com/abworrall/positif/pkg/emath"
	"github.com/abworrall/positif/pkg/filmcurve"
	"github.com/abworrall/positif/pkg/histogram"
	"github.com/abworrall/positif/pkg/raster"
)

// Corrections are the user's adjustments. Range checks happen where the
// values come in (see pkg/config); this package trusts them.
type Corrections struct {
	Contrast     float64     // Stops; widens the log-density curve domain. Unused for raw-level curves.
	Offsets      emath.Vec3  // Per-channel red, green, blue shifts
	WhiteBalance *emath.Vec3 // Per-channel gains, or nil
	MiddleLevel  float64     // Fraction of max level to centre on (raw-level only); 0 means estimate it
}

// Result is a converted image plus the numbers that went into it.
type Result struct {
	Image  *raster.PixelBuffer // Quantized positive, same shape and depth as the input
	Linear *Positive           // Normalized positive, prior to scaling and quantization
	LUT    *LUT
	Kind   filmcurve.DomainKind

	MidLevel float64 // Raw-level: the centre, as a fraction of max level

	Negative histogram.Range  // Log-density: the negative's density span
	Curve    filmcurve.Domain // Log-density: the curve domain after contrast

	Normalization float64 // If > 1, every output value was divided by this
}

func (r *Result) String() string {
	if r.Kind == filmcurve.LogDensity {
		return fmt.Sprintf("negative%s curve[%.3f, %.3f]", r.Negative, r.Curve.Lower, r.Curve.Upper)
	}
	return fmt.Sprintf("%.3f", r.MidLevel)
}

// Convert builds a LUT for this image and applies it. The input is not modified.
func Convert(pb *raster.PixelBuffer, curves *filmcurve.FilmCurveSet, corr Corrections, hcfg histogram.Config) (*Result, error) {
	if err := pb.Validate(); err != nil {
		return nil, err
	}
	if err := raster.CheckBitDepth(pb.BitsPerSample); err != nil {
		return nil, err
	}

	maxLevel := float64(pb.MaxLevel())
	res := Result{Kind: curves.Kind}
	params := LUTParams{
		BitsPerSample: pb.BitsPerSample,
		Offsets:       corr.Offsets,
		Gains:         corr.WhiteBalance,
	}

	switch curves.Kind {
	case filmcurve.RawLevel:
		if corr.MiddleLevel > 0 {
			params.Center = corr.MiddleLevel * maxLevel
		} else {
			mid, err := histogram.MidLevel(pb, hcfg)
			if err != nil {
				return nil, fmt.Errorf("mid level: %w", err)
			}
			params.Center = mid
		}
		res.MidLevel = params.Center / maxLevel

	case filmcurve.LogDensity:
		neg, err := histogram.DensityRange(pb, hcfg)
		if err != nil {
			return nil, fmt.Errorf("density range: %w", err)
		}
		params.Negative = neg
		params.CurveDomain = curves.Domain.WithContrast(corr.Contrast)
		res.Negative = neg
		res.Curve = params.CurveDomain
	}

	lut, err := BuildLUT(curves, params)
	if err != nil {
		return nil, err
	}
	res.LUT = lut

	res.Linear, res.Normalization = Apply(pb, lut)
	res.Image = res.Linear.Quantize(pb.BitsPerSample)

	return &res, nil
}

// Apply looks up every sample in its channel's LUT. If any value comes out
// above 1.0, the whole image is divided by the largest value, so highlights
// keep their colour rather than clipping channel by channel. The divisor
// (or 1) is returned alongside.
func Apply(pb *raster.PixelBuffer, lut *LUT) (*Positive, float64) {
	pos := NewPositive(pb.Width, pb.Height)
	maxIdx := uint16(lut.MaxLevel())
	stride := pb.Width * 3

	f := func(start, limit int) {
		for y := start; y < limit; y++ {
			in := pb.Pix[y*stride : (y+1)*stride]
			out := pos.Pix[y*stride : (y+1)*stride]
			for i, v := range in {
				if v > maxIdx {
					v = maxIdx
				}
				out[i] = lut.Channels[i%3][v]
			}
		}
	}
	if err := parallel.Run_in_parallel_over_range(0, f, 0, pb.Height); err != nil {
		panic(err) // f can't fail, other than by a bug
	}

	norm := 1.0
	if dstMax := floats.Max(pos.Pix); dstMax > 1.0 {
		norm = dstMax
		// Divide, so the max lands on exactly 1.0
		for i := range pos.Pix {
			pos.Pix[i] /= dstMax
		}
	}

	return pos, norm
}

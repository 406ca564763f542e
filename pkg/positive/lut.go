package positive

import (
	"fmt"
	"math"

	"github.com/abworrall/positif/pkg/emath"
	"github.com/abworrall/positif/pkg/filmcurve"
	"github.com/abworrall/positif/pkg/histogram"
	"github.com/abworrall/positif/pkg/raster"
)

// ZeroLevelValue is what raw sample 0 maps to in log-density LUTs; it has
// no finite density, so it's treated as clipped.
const ZeroLevelValue = 1.0

// A LUT holds, per channel, the output intensity (nominally [0,1], before
// scaling to the output depth) for every possible raw sample value.
type LUT struct {
	BitsPerSample int
	Channels      [3][]float64
}

func (l *LUT) MaxLevel() int { return raster.MaxLevel(l.BitsPerSample) }

func (l *LUT) String() string {
	return fmt.Sprintf("LUT[%d bps; r(0)=%.4f r(max)=%.4f]",
		l.BitsPerSample, l.Channels[0][0], l.Channels[0][l.MaxLevel()])
}

// LUTParams are everything, apart from the curves, that a LUT depends on.
type LUTParams struct {
	BitsPerSample int
	Offsets       emath.Vec3  // Per-channel corrections (fraction of max level, or log density)
	Gains         *emath.Vec3 // White balance multipliers; nil means none

	// For raw-level curves: the raw level that lands on curve x=0.
	Center float64

	// For log-density curves: the (contrast adjusted) curve domain, and the
	// density span observed in the negative, which is stretched onto it.
	CurveDomain filmcurve.Domain
	Negative    histogram.Range
}

// BuildLUT evaluates each channel's curve at the curve-domain position of
// every raw sample value. How a raw value maps to a position depends on
// the kind of domain the curves were fitted over.
func BuildLUT(curves *filmcurve.FilmCurveSet, p LUTParams) (*LUT, error) {
	if err := raster.CheckBitDepth(p.BitsPerSample); err != nil {
		return nil, err
	}

	maxLevel := raster.MaxLevel(p.BitsPerSample)
	position, err := positionFunc(curves.Kind, maxLevel, p)
	if err != nil {
		return nil, err
	}

	lut := LUT{BitsPerSample: p.BitsPerSample}
	xs := make([]float64, maxLevel+1)
	for ch := 0; ch < 3; ch++ {
		for x := range xs {
			xs[x] = position(ch, x)
		}
		vals := curves.Curves[ch].EvalAll(xs)

		if p.Gains != nil {
			for i := range vals {
				vals[i] *= p.Gains[ch]
			}
		}
		if curves.Kind == filmcurve.LogDensity {
			vals[0] = ZeroLevelValue
		}
		lut.Channels[ch] = vals
	}

	return &lut, nil
}

func positionFunc(kind filmcurve.DomainKind, maxLevel int, p LUTParams) (func(ch, x int) float64, error) {
	max := float64(maxLevel)

	switch kind {
	case filmcurve.RawLevel:
		return func(ch, x int) float64 {
			return float64(x) - (p.Center + p.Offsets[ch]*max)
		}, nil

	case filmcurve.LogDensity:
		lower := p.CurveDomain.Lower
		ratio := 1.0
		if dn := p.Negative.Width(); dn > 0 {
			ratio = p.CurveDomain.Width() / dn
		}
		logMax := math.Log10(max)
		return func(ch, x int) float64 {
			if x == 0 {
				return lower // overwritten with ZeroLevelValue
			}
			y := math.Log10(float64(x)) - logMax
			return lower + ratio*(y-p.Offsets[ch]-p.Negative.Lower)
		}, nil
	}

	return nil, fmt.Errorf("no LUT mapping for curve domain %s", kind)
}

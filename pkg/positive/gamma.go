package positive

import (
	"github.com/abworrall/positif/pkg/emath"
	"github.com/abworrall/positif/pkg/raster"
)

// ApplyGamma returns a copy of a linear-light buffer with the BT.709
// transfer function applied, for display.
func ApplyGamma(pb *raster.PixelBuffer) (*raster.PixelBuffer, error) {
	if err := pb.Validate(); err != nil {
		return nil, err
	}
	if err := raster.CheckBitDepth(pb.BitsPerSample); err != nil {
		return nil, err
	}

	out := pb.CopyEmpty()
	max := float64(pb.MaxLevel())
	for i, v := range pb.Pix {
		y := emath.GammaEncodeBT709(float64(v) / max)
		out.Pix[i] = uint16(emath.Clamp(y*max, 0, max))
	}
	return out, nil
}

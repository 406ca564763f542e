package positive

import (
	"image"
	"image/color"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/positif/pkg/emath"
	"github.com/abworrall/positif/pkg/raster"
)

// Positive is the floating point output of LUT application, interleaved RGB.
// Implements image.Image and hdr.Image, so it can be written as a Radiance file.
type Positive struct {
	Width, Height int
	Pix           []float64
}

func NewPositive(w, h int) *Positive {
	return &Positive{Width: w, Height: h, Pix: make([]float64, w*h*3)}
}

// Implement image.Image
func (p *Positive) ColorModel() color.Model { return hdrcolor.RGBModel }
func (p *Positive) Bounds() image.Rectangle { return image.Rect(0, 0, p.Width, p.Height) }
func (p *Positive) At(x, y int) color.Color { return p.HDRAt(x, y) }

// Implement hdr.Image
func (p *Positive) HDRAt(x, y int) hdrcolor.Color {
	i := (y*p.Width + x) * 3
	return hdrcolor.RGB{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2]}
}
func (p *Positive) Size() int { return p.Width * p.Height }

// Quantize scales to the max level of the bit depth, clips, and truncates
// to integers.
func (p *Positive) Quantize(bitsPerSample int) *raster.PixelBuffer {
	out := raster.NewPixelBuffer(p.Width, p.Height, bitsPerSample)
	max := float64(out.MaxLevel())
	for i, v := range p.Pix {
		out.Pix[i] = uint16(emath.Clamp(v*max, 0, max))
	}
	return out
}

// Package report draws the diagnostics that help tune a film stock: a plot
// of the LUT that was built, and the overall colour cast of an image.
package report

import (
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/positif/pkg/positive"
	"github.com/abworrall/positif/pkg/raster"
)

const (
	plotSize   = 512
	plotMargin = 40
)

var channelColors = [3]color.RGBA{
	{0xff, 0x40, 0x40, 0xff},
	{0x40, 0xff, 0x40, 0xff},
	{0x60, 0x80, 0xff, 0xff},
}

// PlotLUT renders the three channel curves of a LUT into a PNG. The x axis is
// the raw negative level, the y axis is the output intensity; values outside
// [0,1] are drawn clipped at the frame.
func PlotLUT(filename string, lut *positive.LUT, title string) error {
	dc := gg.NewContext(plotSize, plotSize)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	span := float64(plotSize - 2*plotMargin)
	px := func(x float64) float64 { return plotMargin + x*span }
	py := func(y float64) float64 { return plotSize - plotMargin - y*span }

	dc.SetRGB(0.5, 0.5, 0.5)
	dc.SetLineWidth(1)
	dc.DrawRectangle(px(0), py(1), span, span)
	dc.Stroke()

	max := lut.MaxLevel()
	step := max / plotSize
	if step < 1 {
		step = 1
	}

	for c, vals := range lut.Channels {
		dc.SetColor(channelColors[c])
		dc.SetLineWidth(1.5)
		for i := 0; i <= max; i += step {
			x, y := px(float64(i)/float64(max)), py(clip(vals[i]))
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}

	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, plotMargin, plotMargin/2)
	dc.DrawString(fmt.Sprintf("0 .. %d", max), plotMargin, plotSize-plotMargin/3)

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("plot %s: %w", filename, err)
	}
	return nil
}

func clip(f float64) float64 {
	if f < 0 {
		return 0
	} else if f > 1 {
		return 1
	}
	return f
}

// MeanColor is the average colour of the buffer. If linear is set, the
// samples are treated as linear light and converted to sRGB.
func MeanColor(pb *raster.PixelBuffer, linear bool) colorful.Color {
	var sum [3]float64
	for i, v := range pb.Pix {
		sum[i%3] += float64(v)
	}
	n := float64(pb.NumPixels()) * float64(pb.MaxLevel())
	if n == 0 {
		return colorful.Color{}
	}

	r, g, b := sum[0]/n, sum[1]/n, sum[2]/n
	if linear {
		return colorful.LinearRgb(r, g, b)
	}
	return colorful.Color{R: r, G: g, B: b}
}

// Cast describes a colour the way you'd want to read it when chasing a colour
// cast: its hex value, plus hue and chroma.
func Cast(c colorful.Color) string {
	h, chroma, l := c.Hcl()
	return fmt.Sprintf("%s (hue %.0f, chroma %.3f, lightness %.3f)", c.Clamped().Hex(), h, chroma, l)
}

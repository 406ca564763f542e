package raster

import (
	"fmt"
	"image"
	"image/color"
)

// A PixelBuffer is a rectangular grid of unsigned integer samples,
// interleaved by channel and stored row-major. Samples are stored in
// uint16 regardless of BitsPerSample; for 8-bit buffers only the low
// byte is used.
type PixelBuffer struct {
	Width         int
	Height        int
	Channels      int
	BitsPerSample int
	Pix           []uint16
}

// NewPixelBuffer allocates a zeroed 3-channel buffer.
func NewPixelBuffer(w, h, bitsPerSample int) *PixelBuffer {
	return &PixelBuffer{
		Width:         w,
		Height:        h,
		Channels:      3,
		BitsPerSample: bitsPerSample,
		Pix:           make([]uint16, w*h*3),
	}
}

func (pb *PixelBuffer) String() string {
	return fmt.Sprintf("PixelBuffer[%dx%dx%d, %d bps]", pb.Width, pb.Height, pb.Channels, pb.BitsPerSample)
}

// MaxLevel is the largest sample value representable at the buffer's bit depth.
func (pb *PixelBuffer) MaxLevel() int { return MaxLevel(pb.BitsPerSample) }

func (pb *PixelBuffer) Offset(x, y int) int       { return (y*pb.Width + x) * pb.Channels }
func (pb *PixelBuffer) Sample(x, y, c int) uint16 { return pb.Pix[pb.Offset(x, y)+c] }
func (pb *PixelBuffer) Set(x, y, c int, v uint16) { pb.Pix[pb.Offset(x, y)+c] = v }
func (pb *PixelBuffer) Row(y int) []uint16        { return pb.Pix[pb.Offset(0, y):pb.Offset(0, y+1)] }
func (pb *PixelBuffer) NumPixels() int            { return pb.Width * pb.Height }

// CopyEmpty returns a zeroed buffer with the same shape and depth.
func (pb *PixelBuffer) CopyEmpty() *PixelBuffer {
	return &PixelBuffer{
		Width:         pb.Width,
		Height:        pb.Height,
		Channels:      pb.Channels,
		BitsPerSample: pb.BitsPerSample,
		Pix:           make([]uint16, len(pb.Pix)),
	}
}

// Validate checks the buffer is a non-empty rectangular RGB grid.
func (pb *PixelBuffer) Validate() error {
	if pb == nil {
		return ShapeError{Reason: "nil buffer"}
	}
	if pb.Channels != 3 {
		return ShapeError{Width: pb.Width, Height: pb.Height, Channels: pb.Channels, Reason: "need exactly 3 channels"}
	}
	if pb.Width <= 0 || pb.Height <= 0 {
		return ShapeError{Width: pb.Width, Height: pb.Height, Channels: pb.Channels, Reason: "empty buffer"}
	}
	if len(pb.Pix) != pb.Width*pb.Height*pb.Channels {
		return ShapeError{Width: pb.Width, Height: pb.Height, Channels: pb.Channels,
			Reason: fmt.Sprintf("have %d samples, not rectangular", len(pb.Pix))}
	}
	return nil
}

// Implement image.Image, so a buffer can be handed straight to encoders.
func (pb *PixelBuffer) ColorModel() color.Model { return color.RGBA64Model }
func (pb *PixelBuffer) Bounds() image.Rectangle { return image.Rect(0, 0, pb.Width, pb.Height) }
func (pb *PixelBuffer) At(x, y int) color.Color {
	i := pb.Offset(x, y)
	shift := uint(16 - pb.BitsPerSample)
	up := func(v uint16) uint16 {
		if shift == 8 {
			return v<<8 | v
		}
		return v << shift
	}
	return color.RGBA64{up(pb.Pix[i]), up(pb.Pix[i+1]), up(pb.Pix[i+2]), 0xffff}
}

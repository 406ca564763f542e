package raster

import "fmt"

// SupportedBitDepths are the output integer widths we can quantize to.
var SupportedBitDepths = []int{8, 16}

// A ShapeError means a buffer is not a rectangular 3-channel grid.
type ShapeError struct {
	Width, Height, Channels int
	Reason                  string
}

func (e ShapeError) Error() string {
	return fmt.Sprintf("bad buffer shape %dx%dx%d: %s", e.Width, e.Height, e.Channels, e.Reason)
}

// An UnsupportedBitDepthError means the bits per sample is not one of SupportedBitDepths.
type UnsupportedBitDepthError struct {
	BitsPerSample int
}

func (e UnsupportedBitDepthError) Error() string {
	return fmt.Sprintf("unsupported bits per sample %d, want one of %v", e.BitsPerSample, SupportedBitDepths)
}

// CheckBitDepth returns an UnsupportedBitDepthError if bps can't be used for output.
func CheckBitDepth(bps int) error {
	for _, b := range SupportedBitDepths {
		if b == bps {
			return nil
		}
	}
	return UnsupportedBitDepthError{BitsPerSample: bps}
}

func MaxLevel(bps int) int { return (1 << uint(bps)) - 1 }

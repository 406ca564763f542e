package rawio

import (
	"fmt"
	"os"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"golang.org/x/image/tiff"

	"github.com/abworrall/positif/pkg/raster"
)

// A WriteError means an output file couldn't be written.
type WriteError struct {
	Filename string
	Err      error
}

func (e WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Filename, e.Err) }
func (e WriteError) Unwrap() error { return e.Err }

// WriteTIFF writes the buffer as a deflate-compressed TIFF at its own bit depth.
func WriteTIFF(filename string, pb *raster.PixelBuffer) error {
	writer, err := os.Create(filename)
	if err != nil {
		return WriteError{filename, err}
	}

	if err := tiff.Encode(writer, ToImage(pb), &tiff.Options{Compression: tiff.Deflate}); err != nil {
		writer.Close()
		return WriteError{filename, err}
	}
	if err := writer.Close(); err != nil {
		return WriteError{filename, err}
	}
	return nil
}

// WriteHDR outputs a Radiance HDR image. You can load this into photoshop or other HDR tools.
func WriteHDR(filename string, img hdr.Image) error {
	writer, err := os.Create(filename)
	if err != nil {
		return WriteError{filename, err}
	}

	if err := rgbe.Encode(writer, img); err != nil {
		writer.Close()
		return WriteError{filename, err}
	}
	if err := writer.Close(); err != nil {
		return WriteError{filename, err}
	}
	return nil
}

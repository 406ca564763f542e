// Package rawio sits at the edges of the converter: it reads the linear
// TIFFs an external RAW developer produces, and writes the results.
package rawio

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/abworrall/positif/pkg/emath"
	"github.com/abworrall/positif/pkg/raster"
)

// A DecodeError means the input image couldn't be read. It is never an
// engine error; batch runs report it and move on.
type DecodeError struct {
	Filename string
	Err      error
}

func (e DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Filename, e.Err) }
func (e DecodeError) Unwrap() error { return e.Err }

// LoadOptions are the geometric and colour tweaks applied while loading.
type LoadOptions struct {
	BitsPerSample    int
	Region           []int     // y0 x0 y1 x1, in the original image; nil for all of it
	Flip             bool      // Mirror horizontally (scans made through the base side)
	Downsample       int       // Shrink by this factor; 0 or 1 for none
	UserWhiteBalance []float64 // R G B G multipliers, applied relative to green; nil for none
}

// Metadata is the bit of EXIF we report on. Developed TIFFs don't always
// carry EXIF, so it may be empty.
type Metadata struct {
	Make, Model string
	ISO         string
}

func (m Metadata) String() string {
	if m.Make == "" && m.Model == "" {
		return "(no exif)"
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s ISO%s", m.Make, m.Model, m.ISO))
}

// LoadTIFF reads a developed linear TIFF into a PixelBuffer.
func LoadTIFF(filename string, opts LoadOptions) (*raster.PixelBuffer, Metadata, error) {
	md := loadMetadata(filename)

	reader, err := os.Open(filename)
	if err != nil {
		return nil, md, DecodeError{filename, err}
	}
	defer reader.Close()

	img, err := tiff.Decode(reader)
	if err != nil {
		return nil, md, DecodeError{filename, fmt.Errorf("tiff loading: %w", err)}
	}

	bounds := img.Bounds()
	if opts.Region != nil {
		r := opts.Region
		bounds = image.Rect(bounds.Min.X+r[1], bounds.Min.Y+r[0], bounds.Min.X+r[3], bounds.Min.Y+r[2]).Intersect(bounds)
		if bounds.Empty() {
			return nil, md, DecodeError{filename, fmt.Errorf("region %v is outside the %s image", r, img.Bounds())}
		}
	}

	pb := FromImage(img, bounds, opts.BitsPerSample)
	if opts.UserWhiteBalance != nil {
		applyUserWhiteBalance(pb, opts.UserWhiteBalance)
	}
	if opts.Flip {
		FlipHorizontal(pb)
	}
	if opts.Downsample > 1 {
		pb = Downsample(pb, opts.Downsample)
	}

	return pb, md, nil
}

func loadMetadata(filename string) Metadata {
	md := Metadata{}

	reader, err := os.Open(filename)
	if err != nil {
		return md
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return md
	}

	str := func(name exif.FieldName) string {
		if tag, err := ex.Get(name); err == nil {
			if s, err := tag.StringVal(); err == nil {
				return strings.TrimSpace(s)
			}
			return tag.String()
		}
		return ""
	}
	md.Make = str(exif.Make)
	md.Model = str(exif.Model)
	md.ISO = str(exif.ISOSpeedRatings)

	return md
}

// FromImage copies the pixels inside `bounds` into a PixelBuffer at the
// given depth. 16-bit sources are read directly; anything else goes via
// color.Color.
func FromImage(img image.Image, bounds image.Rectangle, bitsPerSample int) *raster.PixelBuffer {
	pb := raster.NewPixelBuffer(bounds.Dx(), bounds.Dy(), bitsPerSample)
	shift := uint(16 - bitsPerSample)

	set := func(x, y int, r, g, b uint32) {
		i := pb.Offset(x-bounds.Min.X, y-bounds.Min.Y)
		pb.Pix[i] = uint16(r >> shift)
		pb.Pix[i+1] = uint16(g >> shift)
		pb.Pix[i+2] = uint16(b >> shift)
	}

	switch src := img.(type) {
	case *image.RGBA64:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				s := src.Pix[src.PixOffset(x, y):]
				set(x, y, uint32(s[0])<<8|uint32(s[1]), uint32(s[2])<<8|uint32(s[3]), uint32(s[4])<<8|uint32(s[5]))
			}
		}
	case *image.NRGBA64:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				s := src.Pix[src.PixOffset(x, y):]
				set(x, y, uint32(s[0])<<8|uint32(s[1]), uint32(s[2])<<8|uint32(s[3]), uint32(s[4])<<8|uint32(s[5]))
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
				set(x, y, uint32(c.R), uint32(c.G), uint32(c.B))
			}
		}
	}

	return pb
}

// ToImage copies a buffer into a stdlib image: *image.RGBA64 for 16-bit,
// *image.RGBA for 8-bit.
func ToImage(pb *raster.PixelBuffer) image.Image {
	bounds := pb.Bounds()
	if pb.BitsPerSample == 8 {
		img := image.NewRGBA(bounds)
		for y := 0; y < pb.Height; y++ {
			for x := 0; x < pb.Width; x++ {
				i := pb.Offset(x, y)
				img.SetRGBA(x, y, color.RGBA{uint8(pb.Pix[i]), uint8(pb.Pix[i+1]), uint8(pb.Pix[i+2]), 0xff})
			}
		}
		return img
	}

	img := image.NewRGBA64(bounds)
	for y := 0; y < pb.Height; y++ {
		for x := 0; x < pb.Width; x++ {
			img.SetRGBA64(x, y, pb.At(x, y).(color.RGBA64))
		}
	}
	return img
}

// FlipHorizontal mirrors the buffer in place.
func FlipHorizontal(pb *raster.PixelBuffer) {
	for y := 0; y < pb.Height; y++ {
		for l, r := 0, pb.Width-1; l < r; l, r = l+1, r-1 {
			li, ri := pb.Offset(l, y), pb.Offset(r, y)
			for c := 0; c < pb.Channels; c++ {
				pb.Pix[li+c], pb.Pix[ri+c] = pb.Pix[ri+c], pb.Pix[li+c]
			}
		}
	}
}

// Downsample shrinks the buffer by an integer factor, with Catmull-Rom
// filtering.
func Downsample(pb *raster.PixelBuffer, factor int) *raster.PixelBuffer {
	w, h := pb.Width/factor, pb.Height/factor
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA64(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), ToImage(pb), pb.Bounds(), draw.Src, nil)
	return FromImage(dst, dst.Bounds(), pb.BitsPerSample)
}

// applyUserWhiteBalance scales R and B relative to the mean of the two
// green multipliers, clipping at the max level.
func applyUserWhiteBalance(pb *raster.PixelBuffer, rgbg []float64) {
	green := (rgbg[1] + rgbg[3]) / 2
	mult := emath.Vec3{rgbg[0], rgbg[1], rgbg[2]}.Scale(1 / green)
	max := float64(pb.MaxLevel())
	for i, v := range pb.Pix {
		f := float64(v) * mult[i%3]
		if f > max {
			f = max
		}
		pb.Pix[i] = uint16(f)
	}
}

// FindInputs lists the files in dir whose extension matches format (case
// insensitive, with or without a leading dot). An empty format matches
// .tif and .tiff.
func FindInputs(dir, format string) ([]string, error) {
	contents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", dir, err)
	}

	exts := []string{"." + strings.ToLower(strings.TrimPrefix(format, "."))}
	if format == "" {
		exts = []string{".tif", ".tiff"}
	}

	ret := []string{}
	for _, item := range contents {
		if item.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(item.Name()))
		for _, e := range exts {
			if ext == e {
				ret = append(ret, filepath.Join(dir, item.Name()))
			}
		}
	}
	return ret, nil
}

// Package histogram estimates the populated signal range of a scanned
// negative, ignoring sparse tails.
package histogram

import (
	"fmt"
	"math"

	"github.com/abworrall/positif/pkg/raster"
)

// Config controls range estimation. It is passed by value and never
// modified; callers override fields per call.
type Config struct {
	BinWidth     int     `yaml:"binwidth"`     // In raw levels
	Threshold    float64 `yaml:"threshold"`    // Fraction of the tallest bin a bin must exceed to count
	BorderHeight float64 `yaml:"borderheight"` // Fraction of height trimmed from top and bottom (mid-level only)
	BorderWidth  float64 `yaml:"borderwidth"`  // Fraction of width trimmed from left and right (mid-level only)
}

func DefaultConfig() Config {
	return Config{
		BinWidth:     16,
		Threshold:    0.01,
		BorderHeight: 0.15,
		BorderWidth:  0.20,
	}
}

func (c Config) Validate() error {
	if c.BinWidth < 1 {
		return fmt.Errorf("histogram bin width %d, want >= 1", c.BinWidth)
	}
	if c.Threshold < 0 || c.Threshold >= 1 {
		return fmt.Errorf("histogram threshold %f, want [0,1)", c.Threshold)
	}
	if c.BorderHeight < 0 || c.BorderHeight >= 0.5 || c.BorderWidth < 0 || c.BorderWidth >= 0.5 {
		return fmt.Errorf("histogram borders (%f,%f), want [0,0.5)", c.BorderHeight, c.BorderWidth)
	}
	return nil
}

// A Range is a (lower, upper) span, either in raw levels or log10 density.
type Range struct {
	Lower float64
	Upper float64
}

func (r Range) Width() float64 { return r.Upper - r.Lower }
func (r Range) String() string { return fmt.Sprintf("[%.3f, %.3f]", r.Lower, r.Upper) }

// A Histogram counts samples in fixed width bins. The bin edges run
// 0, w, 2w, ... up to the last edge below 2^bps; the final bin is closed
// on the right, and samples above the last edge are not counted.
type Histogram struct {
	BinWidth int
	Counts   []int
	lastEdge int
}

func New(bitsPerSample, binWidth int) *Histogram {
	numEdges := ((1 << uint(bitsPerSample)) + binWidth - 1) / binWidth
	if numEdges < 2 {
		numEdges = 2
	}
	return &Histogram{
		BinWidth: binWidth,
		Counts:   make([]int, numEdges-1),
		lastEdge: (numEdges - 1) * binWidth,
	}
}

func (h *Histogram) Add(v uint16) {
	switch i := int(v); {
	case i < h.lastEdge:
		h.Counts[i/h.BinWidth]++
	case i == h.lastEdge:
		h.Counts[len(h.Counts)-1]++
	}
}

func (h *Histogram) Max() int {
	max := 0
	for _, c := range h.Counts {
		if c > max {
			max = c
		}
	}
	return max
}

// Bounds returns the lowest and highest bins whose count exceeds
// threshold * the tallest bin. Bin 0 holds clipped/black pixels and is
// skipped by the low end search.
func (h *Histogram) Bounds(threshold float64) (lower, upper int) {
	th := threshold * float64(h.Max())
	lower = 1 + FirstAbove(h.Counts[1:], th)
	upper = LastAbove(h.Counts, th)
	return
}

// FirstAbove returns the index of the first count > th, or 0 if none are.
func FirstAbove(counts []int, th float64) int {
	for i, c := range counts {
		if float64(c) > th {
			return i
		}
	}
	return 0
}

// LastAbove returns the index of the last count > th, or the last index if none are.
func LastAbove(counts []int, th float64) int {
	for i := len(counts) - 1; i >= 0; i-- {
		if float64(counts[i]) > th {
			return i
		}
	}
	return len(counts) - 1
}

// MidLevel estimates the raw level at the middle of the populated
// histogram, pooling all three channels. A border is trimmed from each
// edge first, to avoid vignetting and the film rebate.
func MidLevel(pb *raster.PixelBuffer, cfg Config) (float64, error) {
	if err := pb.Validate(); err != nil {
		return 0, err
	}

	bh := int(cfg.BorderHeight * float64(pb.Height))
	bw := int(cfg.BorderWidth * float64(pb.Width))
	if 2*bh >= pb.Height || 2*bw >= pb.Width {
		return 0, raster.ShapeError{Width: pb.Width, Height: pb.Height, Channels: pb.Channels,
			Reason: fmt.Sprintf("nothing left after trimming border %dx%d", bw, bh)}
	}

	h := New(pb.BitsPerSample, cfg.BinWidth)
	for y := bh; y < pb.Height-bh; y++ {
		row := pb.Row(y)
		for _, v := range row[bw*pb.Channels : (pb.Width-bw)*pb.Channels] {
			h.Add(v)
		}
	}

	lower, upper := h.Bounds(cfg.Threshold)
	return 0.5 * float64(lower+upper) * float64(cfg.BinWidth), nil
}

// DensityRange returns the log10 density span of the negative, relative
// to full scale. Each channel is histogrammed over the whole frame; the
// result spans the lowest lower bound and highest upper bound.
func DensityRange(pb *raster.PixelBuffer, cfg Config) (Range, error) {
	levels, err := LevelRange(pb, cfg)
	if err != nil {
		return Range{}, err
	}
	maxLevel := float64(pb.MaxLevel())
	return Range{
		Lower: math.Log10(levels.Lower) - math.Log10(maxLevel),
		Upper: math.Log10(levels.Upper) - math.Log10(maxLevel),
	}, nil
}

// LevelRange is DensityRange in raw levels. Both bounds are the starting
// edge of the boundary bin, as for MidLevel. The upper bound is never
// below the lower, even when only bin 0 is populated.
func LevelRange(pb *raster.PixelBuffer, cfg Config) (Range, error) {
	if err := pb.Validate(); err != nil {
		return Range{}, err
	}

	hists := [3]*Histogram{}
	for c := range hists {
		hists[c] = New(pb.BitsPerSample, cfg.BinWidth)
	}
	for i := 0; i < len(pb.Pix); i += 3 {
		hists[0].Add(pb.Pix[i])
		hists[1].Add(pb.Pix[i+1])
		hists[2].Add(pb.Pix[i+2])
	}

	lo, hi := math.MaxInt, 0
	for _, h := range hists {
		l, u := h.Bounds(cfg.Threshold)
		if l < lo {
			lo = l
		}
		if u > hi {
			hi = u
		}
	}

	if hi < lo {
		hi = lo
	}
	return Range{Lower: float64(lo * cfg.BinWidth), Upper: float64(hi * cfg.BinWidth)}, nil
}

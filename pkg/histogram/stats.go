package histogram

import (
	"fmt"

	"github.com/codahale/hdrhistogram"
	skyhist "github.com/skypies/util/histogram"

	"github.com/abworrall/positif/pkg/raster"
)

// Stats is a rough summary of the raw levels in an image, for logging.
type Stats struct {
	Count        int64
	Min, Max     int64
	P1, P50, P99 int64
	Mean         float64

	MaxLevel int
	Hist     *hdrhistogram.Histogram
}

func (s Stats) String() string {
	return fmt.Sprintf("n=%d min=%d p1=%d p50=%d p99=%d max=%d mean=%.1f",
		s.Count, s.Min, s.P1, s.P50, s.P99, s.Max, s.Mean)
}

// ASCII draws the distribution as a bar of numChars characters spanning
// [0, max level].
func (s Stats) ASCII(numChars int) string {
	return skyhist.HDR2ASCII(s.Hist, numChars, 0, s.MaxLevel)
}

// Summarize records every sample of every channel.
func Summarize(pb *raster.PixelBuffer) (Stats, error) {
	if err := pb.Validate(); err != nil {
		return Stats{}, err
	}

	h := hdrhistogram.New(0, int64(pb.MaxLevel()), 3)
	for _, v := range pb.Pix {
		if err := h.RecordValue(int64(v)); err != nil {
			return Stats{}, fmt.Errorf("summarize %s: %w", pb, err)
		}
	}

	return Stats{
		Count:    h.TotalCount(),
		Min:      h.Min(),
		Max:      h.Max(),
		P1:       h.ValueAtQuantile(1),
		P50:      h.ValueAtQuantile(50),
		P99:      h.ValueAtQuantile(99),
		Mean:     h.Mean(),
		MaxLevel: pb.MaxLevel(),
		Hist:     h,
	}, nil
}

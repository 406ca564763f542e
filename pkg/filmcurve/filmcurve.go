// Package filmcurve holds a film stock's per-channel response curves, and
// the density domain they were fitted over.
package filmcurve

import (
	"fmt"
	"math"

	"github.com/abworrall/positif/pkg/spline"
)

// A DomainKind says what the x axis of the response curves means.
type DomainKind int

const (
	// RawLevel curves are indexed by raw sample value, offset by the image's mid level.
	RawLevel DomainKind = iota
	// LogDensity curves are indexed by log10 density, with 0 at the full scale sample value.
	LogDensity
)

func (k DomainKind) String() string {
	switch k {
	case RawLevel:
		return "raw-level"
	case LogDensity:
		return "log-density"
	}
	return fmt.Sprintf("DomainKind(%d)", int(k))
}

// A Domain is the x range the curves were fitted over. For RawLevel
// domains the bounds are not used.
type Domain struct {
	Kind  DomainKind
	Lower float64
	Upper float64
}

func (d Domain) Width() float64 { return d.Upper - d.Lower }

func (d Domain) String() string {
	if d.Kind == RawLevel {
		return d.Kind.String()
	}
	return fmt.Sprintf("%s[%.3f, %.3f]", d.Kind, d.Lower, d.Upper)
}

// WithContrast returns the domain widened symmetrically by `stops` of
// contrast (narrowed, if negative). The receiver is not modified.
func (d Domain) WithContrast(stops float64) Domain {
	if d.Kind != LogDensity || stops == 0 {
		return d
	}
	cc := stops * math.Log10(2)
	return Domain{Kind: d.Kind, Lower: d.Lower - cc/2, Upper: d.Upper + cc/2}
}

// Channel indices, in the order the curves are stored.
const (
	Red = iota
	Green
	Blue
)

var ChannelNames = [3]string{"red", "green", "blue"}

// A ResponseCurve is one channel's characteristic curve.
type ResponseCurve struct {
	Channel string
	*spline.Spline
}

// A FilmCurveSet is the three response curves for a film stock. It is
// never mutated after loading, so can be shared freely.
type FilmCurveSet struct {
	Name   string
	Curves [3]ResponseCurve
	Domain
}

func NewFilmCurveSet(name string, r, g, b *spline.Spline, dom Domain) *FilmCurveSet {
	fcs := FilmCurveSet{Name: name, Domain: dom}
	for i, s := range []*spline.Spline{r, g, b} {
		fcs.Curves[i] = ResponseCurve{Channel: ChannelNames[i], Spline: s}
	}
	return &fcs
}

func (fcs *FilmCurveSet) String() string {
	str := fmt.Sprintf("FilmCurveSet %q %s [\n", fcs.Name, fcs.Domain)
	for _, c := range fcs.Curves {
		str += fmt.Sprintf("  %-5s: %s\n", c.Channel, c.Spline)
	}
	return str + "]\n"
}

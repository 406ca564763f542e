// Package spline evaluates B-spline curves given as (knots, coefficients,
// degree), the same representation produced by FITPACK-style fitters.
package spline

import (
	"fmt"

	"github.com/kovidgoyal/go-parallel"
)

// Below this many query points, EvalAll doesn't bother going parallel.
const parallelThreshold = 4096

// A Spline is an immutable B-spline. len(knots) == len(coeffs) + degree + 1.
type Spline struct {
	knots  []float64
	coeffs []float64
	degree int
}

// New validates and copies the spline parameters.
func New(knots, coeffs []float64, degree int) (*Spline, error) {
	if degree < 1 {
		return nil, fmt.Errorf("spline degree %d, want >= 1", degree)
	}
	if len(coeffs) < degree+1 {
		return nil, fmt.Errorf("spline has %d coeffs, need at least %d for degree %d", len(coeffs), degree+1, degree)
	}
	if len(knots) != len(coeffs)+degree+1 {
		return nil, fmt.Errorf("spline has %d knots and %d coeffs, inconsistent with degree %d",
			len(knots), len(coeffs), degree)
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] {
			return nil, fmt.Errorf("spline knots decrease at index %d (%f < %f)", i, knots[i], knots[i-1])
		}
	}
	if knots[degree] >= knots[len(coeffs)] {
		return nil, fmt.Errorf("spline has empty domain [%f, %f]", knots[degree], knots[len(coeffs)])
	}

	s := Spline{
		knots:  append([]float64(nil), knots...),
		coeffs: append([]float64(nil), coeffs...),
		degree: degree,
	}
	return &s, nil
}

// Line returns a spline of the given degree that is the straight line
// through (lo,y0) and (hi,y1). Handy for identity curves.
func Line(lo, hi, y0, y1 float64, degree int) (*Spline, error) {
	knots := make([]float64, 0, 2*(degree+1))
	coeffs := make([]float64, degree+1)
	for i := 0; i <= degree; i++ {
		knots = append(knots, lo)
	}
	for i := 0; i <= degree; i++ {
		knots = append(knots, hi)
	}
	// On a clamped single-segment knot vector, a line's control points sit at
	// the evenly spaced Greville abscissae.
	for i := range coeffs {
		coeffs[i] = y0 + (y1-y0)*float64(i)/float64(degree)
	}
	return New(knots, coeffs, degree)
}

// Identity is y=x over [lo,hi].
func Identity(lo, hi float64, degree int) (*Spline, error) { return Line(lo, hi, lo, hi, degree) }

func (s *Spline) Degree() int       { return s.degree }
func (s *Spline) Knots() []float64  { return append([]float64(nil), s.knots...) }
func (s *Spline) Coeffs() []float64 { return append([]float64(nil), s.coeffs...) }
func (s *Spline) Domain() (lo, hi float64) {
	return s.knots[s.degree], s.knots[len(s.coeffs)]
}

func (s *Spline) String() string {
	lo, hi := s.Domain()
	return fmt.Sprintf("spline[deg %d, %d coeffs, domain [%g, %g]]", s.degree, len(s.coeffs), lo, hi)
}

// Eval evaluates the spline at x. Outside the domain the value at the
// nearest domain boundary is returned; there is no polynomial extrapolation.
func (s *Spline) Eval(x float64) float64 {
	lo, hi := s.Domain()
	if x < lo {
		x = lo
	} else if x > hi {
		x = hi
	}
	return s.deBoor(s.span(x), x)
}

// EvalAll evaluates the spline at each element of xs.
func (s *Spline) EvalAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	f := func(start, limit int) {
		for i := start; i < limit; i++ {
			out[i] = s.Eval(xs[i])
		}
	}

	if len(xs) < parallelThreshold {
		f(0, len(xs))
	} else if err := parallel.Run_in_parallel_over_range(0, f, 0, len(xs)); err != nil {
		// f only fails by panicking, which is a bug in this package
		panic(err)
	}
	return out
}

// span finds l in [degree, n-1] with knots[l] <= x < knots[l+1], where n is
// the number of coeffs. At the right edge of the domain it picks the last
// non-empty span.
func (s *Spline) span(x float64) int {
	k, n := s.degree, len(s.coeffs)
	lo, hi := k, n-1
	if x >= s.knots[n] {
		l := n - 1
		for l > k && s.knots[l] == s.knots[l+1] {
			l--
		}
		return l
	}
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.knots[mid] <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (s *Spline) deBoor(l int, x float64) float64 {
	k := s.degree
	t := s.knots
	d := make([]float64, k+1)
	for j := 0; j <= k; j++ {
		d[j] = s.coeffs[j+l-k]
	}

	for r := 1; r <= k; r++ {
		for j := k; j >= r; j-- {
			denom := t[j+1+l-r] - t[j+l-k]
			alpha := 0.0
			if denom != 0 {
				alpha = (x - t[j+l-k]) / denom
			}
			d[j] = (1.0-alpha)*d[j-1] + alpha*d[j]
		}
	}

	return d[k]
}

// Package whitebalance turns a colour temperature into per-channel gains,
// by interpolating a measured correction table.
package whitebalance

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/abworrall/positif/pkg/emath"
)

// A Row of the correction table.
type Row struct {
	Temperature float64 // Kelvin
	Gains       emath.Vec3
}

// A Corrector maps temperatures to gains. It is immutable once built.
type Corrector struct {
	rows    []Row
	columns [3]interp.PiecewiseLinear
}

// New builds a corrector from table rows, in any order. Temperatures must be distinct.
func New(rows []Row) (*Corrector, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("white balance table has %d rows, need at least 2", len(rows))
	}

	sorted := append([]Row(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Temperature < sorted[j].Temperature })

	temps := make([]float64, len(sorted))
	for i, r := range sorted {
		if i > 0 && r.Temperature == sorted[i-1].Temperature {
			return nil, fmt.Errorf("white balance table repeats temperature %.1f", r.Temperature)
		}
		temps[i] = r.Temperature
	}

	c := Corrector{rows: sorted}
	for ch := 0; ch < 3; ch++ {
		gains := make([]float64, len(sorted))
		for i, r := range sorted {
			gains[i] = r.Gains[ch]
		}
		if err := c.columns[ch].Fit(temps, gains); err != nil {
			return nil, fmt.Errorf("white balance table, channel %d: %w", ch, err)
		}
	}

	return &c, nil
}

// LoadTable reads a flat little-endian float64 file of (temperature, r, g, b) rows.
func LoadTable(filename string) (*Corrector, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("white balance table %s: %w", filename, err)
	}
	if len(contents)%(4*8) != 0 {
		return nil, fmt.Errorf("white balance table %s: size %d is not a whole number of 4 x float64 rows",
			filename, len(contents))
	}

	rows := make([]Row, len(contents)/32)
	for i := range rows {
		f := func(j int) float64 {
			return math.Float64frombits(binary.LittleEndian.Uint64(contents[32*i+8*j:]))
		}
		rows[i] = Row{Temperature: f(0), Gains: emath.Vec3{f(1), f(2), f(3)}}
	}

	c, err := New(rows)
	if err != nil {
		return nil, fmt.Errorf("white balance table %s: %w", filename, err)
	}
	return c, nil
}

// Range is the span of temperatures in the table. Outside it, gains are
// held at the nearest end.
func (c *Corrector) Range() (lo, hi float64) {
	return c.rows[0].Temperature, c.rows[len(c.rows)-1].Temperature
}

// Gains returns the multipliers for the temperature. If the temperature
// isn't set (<= 0), it returns identity gains and false; the caller should
// skip the correction.
func (c *Corrector) Gains(kelvin float64) (emath.Vec3, bool) {
	if c == nil || kelvin <= 0 {
		return emath.Ones(), false
	}
	return emath.Vec3{
		c.columns[0].Predict(kelvin),
		c.columns[1].Predict(kelvin),
		c.columns[2].Predict(kelvin),
	}, true
}

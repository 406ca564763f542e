package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Overridable names the per-run values a film's defaults can supply. When
// the user gives one of them explicitly, it wins over the film default.
var Overridable = []string{"contrast", "red", "green", "blue", "temperature"}

// Explicit picks out the overridable names from those the user set, in
// the form ApplyDefaults wants.
func Explicit(set []string) map[string]bool {
	explicit := map[string]bool{}
	for _, name := range set {
		for _, o := range Overridable {
			if name == o {
				explicit[name] = true
			}
		}
	}
	return explicit
}

// ParseList reads comma separated numbers, as given to -region and -wb.
func ParseList(s string) ([]float64, error) {
	ret := []float64{}
	for _, field := range strings.Split(s, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("parse list %q: %w", s, err)
		}
		ret = append(ret, f)
	}
	return ret, nil
}

// SetRegion parses "y0,x0,y1,x1". Bounds are checked by Validate.
func (c *Config) SetRegion(s string) error {
	vals, err := ParseList(s)
	if err != nil {
		return err
	}
	c.Region = make([]int, len(vals))
	for i, v := range vals {
		if v != float64(int(v)) {
			return fmt.Errorf("region %q: %v is not a whole number", s, v)
		}
		c.Region[i] = int(v)
	}
	return nil
}

// SetUserWhiteBalance parses "r,g,b,g" multipliers. Bounds are checked by Validate.
func (c *Config) SetUserWhiteBalance(s string) error {
	vals, err := ParseList(s)
	if err != nil {
		return err
	}
	c.UserWhiteBalance = vals
	return nil
}

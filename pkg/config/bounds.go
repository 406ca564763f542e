package config

import (
	"fmt"

	"github.com/abworrall/positif/pkg/raster"
)

// Bounds on user supplied values, inclusive.
const (
	ContrastLower    = -2.0
	ContrastUpper    = 2.0
	ChannelLower     = -0.5
	ChannelUpper     = 0.5
	TemperatureLower = 1000.0
	TemperatureUpper = 40000.0
	MidLevelLower    = 0.1
	MidLevelUpper    = 0.9
)

var DownsampleFactors = []int{1, 2, 3, 4, 5, 6, 8, 10, 16}

// A ParameterRangeError means a user value was outside its documented bounds.
type ParameterRangeError struct {
	Name         string
	Value        float64
	Lower, Upper float64
	Reason       string // If set, used instead of the bounds
}

func (e ParameterRangeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("%s %g must be between %.2f and %.2f (inclusive)", e.Name, e.Value, e.Lower, e.Upper)
}

func checkRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return ParameterRangeError{Name: name, Value: v, Lower: lo, Upper: hi}
	}
	return nil
}

// Validate checks every per-run value. Temperature and mid level may be 0,
// meaning unset.
func (c Config) Validate() error {
	if err := checkRange("contrast", c.Contrast, ContrastLower, ContrastUpper); err != nil {
		return err
	}
	for _, ch := range []struct {
		name string
		v    float64
	}{{"red", c.Red}, {"green", c.Green}, {"blue", c.Blue}} {
		if err := checkRange(ch.name, ch.v, ChannelLower, ChannelUpper); err != nil {
			return err
		}
	}
	if c.Temperature != 0 {
		if err := checkRange("temperature", c.Temperature, TemperatureLower, TemperatureUpper); err != nil {
			return err
		}
	}
	if c.MidLevel != 0 {
		if err := checkRange("mid-level", c.MidLevel, MidLevelLower, MidLevelUpper); err != nil {
			return err
		}
	}

	if !containsInt(DownsampleFactors, c.Downsample) {
		return ParameterRangeError{Name: "downsample", Value: float64(c.Downsample),
			Reason: fmt.Sprintf("%d is not one of %v", c.Downsample, DownsampleFactors)}
	}
	if c.Region != nil {
		if len(c.Region) != 4 {
			return ParameterRangeError{Name: "region", Reason: fmt.Sprintf("want 4 values y0 x0 y1 x1, have %d", len(c.Region))}
		}
		if c.Region[0] < 0 || c.Region[1] < 0 || c.Region[2] <= c.Region[0] || c.Region[3] <= c.Region[1] {
			return ParameterRangeError{Name: "region", Reason: fmt.Sprintf("%v is not a valid y0 x0 y1 x1 box", c.Region)}
		}
	}
	if c.UserWhiteBalance != nil {
		if len(c.UserWhiteBalance) != 4 {
			return ParameterRangeError{Name: "user-white-balance",
				Reason: fmt.Sprintf("camera white balance should contain 4 values, have %d", len(c.UserWhiteBalance))}
		}
		for _, v := range c.UserWhiteBalance {
			if v <= 0 {
				return ParameterRangeError{Name: "user-white-balance", Value: v, Reason: "values must be positive"}
			}
		}
	}

	if err := raster.CheckBitDepth(c.BitsPerSample); err != nil {
		return err
	}
	if err := c.Histogram.Validate(); err != nil {
		return ParameterRangeError{Name: "histogram", Reason: err.Error()}
	}
	return nil
}

func containsInt(vals []int, v int) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}

package emath

import (
	"fmt"

	"golang.org/x/image/math/f64" // Will be "image/math/f64" at some point
)

// A Vec3 holds one value per color channel, in R,G,B order. We use it for
// per-channel gains (white balance) and per-channel corrections.
type Vec3 f64.Vec3

func Ones() Vec3 { return Vec3{1, 1, 1} }

func (v Vec3) String() string {
	return fmt.Sprintf("[%12.10f, %12.10f, %12.10f]", v[0], v[1], v[2])
}

// Scale returns a copy with every channel multiplied by f
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}

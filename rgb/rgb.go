// Package rgb is a linear RGB color with float channels.  Channels are
// nominally in [0, 1] but intermediate shading results may exceed that.
package rgb

import "math"

type T [3]float64

var (
	Black = T{0, 0, 0}
	White = T{1, 1, 1}
)

func Add(a, b T) T {
	return T{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func Sub(a, b T) T {
	return T{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func Scale(a T, s float64) T {
	return T{a[0] * s, a[1] * s, a[2] * s}
}

// Mul is the channel-wise (Hadamard) product.
func Mul(a, b T) T {
	return T{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Lerp blends from a (at 0) to b (at 1).
func Lerp(t float64, a, b T) T {
	return Add(a, Scale(Sub(b, a), t))
}

func Clamp(c T) T {
	for i := range c {
		c[i] = math.Max(0, math.Min(1, c[i]))
	}
	return c
}

// Byte maps a channel value to 0..255 after clamping.
func Byte(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * 255))
}

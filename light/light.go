// Package light holds the light sources a scene can be lit by.
package light

import (
	"whitted/rgb"
	"whitted/vmath/vec3"
)

// Point is a light with no size, radiating Intensity equally in every
// direction from Position.
type Point struct {
	Position  vec3.T
	Intensity rgb.T
}

func NewPoint(position vec3.T, intensity rgb.T) Point {
	return Point{Position: position, Intensity: intensity}
}

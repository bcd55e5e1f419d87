package ray

import (
	"whitted/affinetransform"
	"whitted/vmath/vec3"
)

// Ray is a half-line Origin + t*Direction.
//
// Direction is not required to be unit length.  Transform keeps it
// unnormalized so that a t found in an object's local space names the same
// point as that t in world space.
type Ray struct {
	Origin    vec3.T
	Direction vec3.T
}

func New(origin, direction vec3.T) Ray {
	return Ray{Origin: origin, Direction: direction}
}

func (r Ray) Position(t float64) vec3.T {
	return vec3.T{
		r.Origin[0] + t*r.Direction[0],
		r.Origin[1] + t*r.Direction[1],
		r.Origin[2] + t*r.Direction[2],
	}
}

func (r Ray) Transform(a affinetransform.AffineTransform) Ray {
	return Ray{
		Origin:    affinetransform.TransformPoint(a, r.Origin),
		Direction: affinetransform.TransformVector(a, r.Direction),
	}
}

package geometry

import (
	"math"

	"whitted/ray"
)

func planeIntersect(dst []float64, r ray.Ray) []float64 {
	// Parallel and coplanar rays both miss.
	if math.Abs(r.Direction[1]) < Epsilon*r.Direction.Norm() {
		return dst
	}
	return append(dst, -r.Origin[1]/r.Direction[1])
}

package geometry

import (
	"whitted/ray"
	"whitted/vmath/vec3"
)

func sphereIntersect(dst []float64, r ray.Ray) []float64 {
	a := vec3.IProd(r.Direction, r.Direction)
	b := 2 * vec3.IProd(r.Direction, r.Origin)
	c := vec3.IProd(r.Origin, r.Origin) - 1

	t0, t1, ok := solveQuadratic(a, b, c, a)
	if !ok {
		return dst
	}
	return append(dst, t0, t1)
}

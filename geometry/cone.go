package geometry

import (
	"math"

	"whitted/ray"
	"whitted/vmath/vec3"
)

func coneIntersect(dst []float64, g Geometry, r ray.Ray) []float64 {
	o, d := r.Origin, r.Direction

	a := d[0]*d[0] - d[1]*d[1] + d[2]*d[2]
	b := 2 * (o[0]*d[0] - o[1]*d[1] + o[2]*d[2])
	c := o[0]*o[0] - o[1]*o[1] + o[2]*o[2]
	dd := vec3.IProd(d, d)

	switch {
	case math.Abs(a) > Epsilon*dd:
		if t0, t1, ok := solveQuadratic(a, b, c, dd); ok {
			dst = appendWithinBounds(dst, g, r, t0)
			dst = appendWithinBounds(dst, g, r, t1)
		}
	case math.Abs(b) > Epsilon*d.Norm()*o.Norm():
		// The ray is parallel to one of the cone's halves, so it crosses the
		// other half exactly once.
		dst = appendWithinBounds(dst, g, r, -c/(2*b))
	default:
		// The ray runs along the surface through the apex.
	}

	return appendCaps(dst, g, r, g.Min*g.Min, g.Max*g.Max)
}

func coneNormal(g Geometry, p vec3.T) vec3.T {
	dist := p[0]*p[0] + p[2]*p[2]
	if g.Closed && dist < g.Max*g.Max && p[1] >= g.Max-Epsilon {
		return vec3.T{0, 1, 0}
	}
	if g.Closed && dist < g.Min*g.Min && p[1] <= g.Min+Epsilon {
		return vec3.T{0, -1, 0}
	}

	y := math.Sqrt(dist)
	if p[1] > 0 {
		y = -y
	}
	return vec3.T{p[0], y, p[2]}
}

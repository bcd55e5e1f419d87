package geometry

import (
	"math"

	"whitted/ray"
	"whitted/vmath/vec3"
)

// checkAxis returns the t range over which r lies between the two faces
// perpendicular to one axis.  length is the length of the whole direction.
func checkAxis(origin, direction, length float64) (float64, float64) {
	tminNumerator := -1 - origin
	tmaxNumerator := 1 - origin

	var tmin, tmax float64
	if math.Abs(direction) >= Epsilon*length {
		tmin = tminNumerator / direction
		tmax = tmaxNumerator / direction
	} else {
		tmin = math.Copysign(math.Inf(1), tminNumerator)
		tmax = math.Copysign(math.Inf(1), tmaxNumerator)
	}

	if tmin > tmax {
		tmin, tmax = tmax, tmin
	}
	return tmin, tmax
}

func cubeIntersect(dst []float64, r ray.Ray) []float64 {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)
	length := r.Direction.Norm()
	for i := 0; i < 3; i++ {
		lo, hi := checkAxis(r.Origin[i], r.Direction[i], length)
		tmin = math.Max(tmin, lo)
		tmax = math.Min(tmax, hi)
	}

	if tmin > tmax {
		return dst
	}
	return append(dst, tmin, tmax)
}

// cubeNormal picks the face whose axis has the largest magnitude.  Ties at
// edges and corners go to x, then y.
func cubeNormal(p vec3.T) vec3.T {
	ax, ay, az := math.Abs(p[0]), math.Abs(p[1]), math.Abs(p[2])

	switch {
	case ax >= ay && ax >= az:
		return vec3.T{p[0], 0, 0}
	case ay >= az:
		return vec3.T{0, p[1], 0}
	default:
		return vec3.T{0, 0, p[2]}
	}
}

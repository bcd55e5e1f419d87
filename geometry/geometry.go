// Package geometry holds the primitive shapes, each defined in its own local
// space: centered on the origin and unit sized.
//
// A Geometry is a closed set of variants selected by Kind.  Callers
// transform rays into local space before calling Intersect, and carry the
// local normal from NormalAt back out themselves.
package geometry

import (
	"fmt"
	"math"

	"whitted/ray"
	"whitted/vmath/vec3"
)

// Epsilon guards divisions by near-zero direction components and snaps
// near-zero discriminants to zero.  Every such test is made relative to the
// length of the ray direction, which is not unit length in the local space
// of a scaled object.
const Epsilon = 1e-5

type Kind int

const (
	KindPlane Kind = iota
	KindSphere
	KindCube
	KindCylinder
	KindCone
)

func (k Kind) String() string {
	switch k {
	case KindPlane:
		return "plane"
	case KindSphere:
		return "sphere"
	case KindCube:
		return "cube"
	case KindCylinder:
		return "cylinder"
	case KindCone:
		return "cone"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindPlane; k <= KindCone; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", s)
}

// Geometry is one primitive.  Min, Max, and Closed only mean something for
// cylinders and cones, which extend infinitely along y unless truncated.
type Geometry struct {
	Kind Kind

	Min    float64
	Max    float64
	Closed bool
}

// Plane is the xz plane.
func Plane() Geometry {
	return Geometry{Kind: KindPlane}
}

// Sphere is the unit sphere.
func Sphere() Geometry {
	return Geometry{Kind: KindSphere}
}

// Cube spans [-1, 1] on every axis.
func Cube() Geometry {
	return Geometry{Kind: KindCube}
}

// Cylinder is the infinite, open cylinder of radius 1 around the y axis.
func Cylinder() Geometry {
	return Geometry{Kind: KindCylinder, Min: math.Inf(-1), Max: math.Inf(1)}
}

// Cone is the infinite, open double cone x²+z² = y² with its apex at the
// origin.
func Cone() Geometry {
	return Geometry{Kind: KindCone, Min: math.Inf(-1), Max: math.Inf(1)}
}

// Truncated bounds a cylinder or cone to min < y < max, capping the ends if
// closed is set.
func (g Geometry) Truncated(min, max float64, closed bool) Geometry {
	g.Min = min
	g.Max = max
	g.Closed = closed
	return g
}

// Intersect returns the t of every point where r crosses the surface of g.
// The order is unspecified; callers that need the nearest hit sort.
func (g Geometry) Intersect(r ray.Ray) []float64 {
	return g.AppendIntersections(nil, r)
}

// AppendIntersections is Intersect, appending into dst.
func (g Geometry) AppendIntersections(dst []float64, r ray.Ray) []float64 {
	switch g.Kind {
	case KindPlane:
		return planeIntersect(dst, r)
	case KindSphere:
		return sphereIntersect(dst, r)
	case KindCube:
		return cubeIntersect(dst, r)
	case KindCylinder:
		return cylinderIntersect(dst, g, r)
	case KindCone:
		return coneIntersect(dst, g, r)
	}
	panic(fmt.Sprintf("geometry: unhandled kind %v", g.Kind))
}

// NormalAt returns the outward normal at a point on the surface of g, in
// local space.  It is not necessarily unit length; the cone's normal in
// particular is left unnormalized, and is zero at the apex.
func (g Geometry) NormalAt(p vec3.T) vec3.T {
	switch g.Kind {
	case KindPlane:
		return vec3.T{0, 1, 0}
	case KindSphere:
		return p
	case KindCube:
		return cubeNormal(p)
	case KindCylinder:
		return cylinderNormal(g, p)
	case KindCone:
		return coneNormal(g, p)
	}
	panic(fmt.Sprintf("geometry: unhandled kind %v", g.Kind))
}

// solveQuadratic returns the real roots of a*t² + b*t + c in ascending order
// (for a > 0).  dd is the squared length of the ray direction; a
// discriminant within Epsilon*dd of zero is treated as a double root.
func solveQuadratic(a, b, c, dd float64) (float64, float64, bool) {
	disc := b*b - 4*a*c
	if math.Abs(disc) < Epsilon*dd {
		disc = 0
	}
	if disc < 0 {
		return 0, 0, false
	}

	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}

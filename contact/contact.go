// Package contact records where rays meet objects, and derives from a hit
// what shading needs to know about it.
package contact

import (
	"math"
	"sort"

	"whitted/ray"
	"whitted/vmath/vec3"
)

// SurfaceEpsilon is how far OverPoint and UnderPoint sit from the true hit
// point.  Rays spawned from a surface start there so they do not
// re-intersect it through rounding error.
const SurfaceEpsilon = 1e-4

// ObjectID names an object in a scene.  IDs are dense, starting at zero, in
// insertion order.
type ObjectID int

// Contact is a single crossing of a ray with the surface of an object.
type Contact struct {
	T      float64
	Object ObjectID
}

// List holds every contact of one ray with a scene.
type List []Contact

// Sort orders l by ascending T.  Contacts with equal T keep their relative
// order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].T < l[j].T })
}

// HitIndex returns the index of the contact with the smallest non-negative
// T, or -1 if every contact is behind the ray origin.  l need not be sorted.
func (l List) HitIndex() int {
	best := -1
	for i, c := range l {
		if c.T < 0 {
			continue
		}
		if best == -1 || c.T < l[best].T {
			best = i
		}
	}
	return best
}

// Hit returns the contact with the smallest non-negative T.
func (l List) Hit() (Contact, bool) {
	i := l.HitIndex()
	if i == -1 {
		return Contact{}, false
	}
	return l[i], true
}

// RefractiveIndices finds the refractive indices on either side of the
// boundary crossed at l[target].  n1 is the medium the ray is leaving and n2
// the one it is entering.  l must be sorted.
//
// It walks l keeping a stack of the objects the ray is inside, so nested and
// overlapping transparent objects resolve to whichever was entered last.
// indexOf maps an object to its material's refractive index; empty space has
// index 1.
func RefractiveIndices(l List, target int, indexOf func(ObjectID) float64) (n1, n2 float64) {
	var containers []ObjectID

	top := func() float64 {
		if len(containers) == 0 {
			return 1.0
		}
		return indexOf(containers[len(containers)-1])
	}

	for i, c := range l {
		if i == target {
			n1 = top()
		}

		exited := false
		for j, id := range containers {
			if id == c.Object {
				containers = append(containers[:j], containers[j+1:]...)
				exited = true
				break
			}
		}
		if !exited {
			containers = append(containers, c.Object)
		}

		if i == target {
			n2 = top()
			return n1, n2
		}
	}

	return 1.0, 1.0
}

// Shading is a hit together with the geometry shading needs, all in world
// space.
type Shading struct {
	Contact

	Point vec3.T

	// OverPoint is Point lifted off the surface along Normal, for shadow and
	// reflection rays.  UnderPoint is pushed below it, for refraction rays.
	OverPoint  vec3.T
	UnderPoint vec3.T

	// Eye is the unit vector pointing back along the incoming ray.
	Eye vec3.T

	// Normal is the unit surface normal, flipped if needed to face Eye.
	Normal vec3.T

	// Reflect is the incoming direction mirrored about Normal.
	Reflect vec3.T

	// Inside is set when the ray struck the surface from within the object.
	Inside bool

	// N1 and N2 are the refractive indices of the media being left and
	// entered.
	N1, N2 float64
}

// NewShading derives the shading geometry of c, where r is the world-space
// ray and normal the unit world-space outward normal at the hit.  N1 and N2
// are left at 1.
func NewShading(c Contact, r ray.Ray, normal vec3.T) Shading {
	s := Shading{
		Contact: c,
		Point:   r.Position(c.T),
		Eye:     vec3.Normalize(vec3.Neg(r.Direction)),
		Normal:  normal,
		N1:      1,
		N2:      1,
	}

	if vec3.IProd(s.Normal, s.Eye) < 0 {
		s.Inside = true
		s.Normal = vec3.Neg(s.Normal)
	}

	s.OverPoint = vec3.AddVV(s.Point, vec3.MulVS(s.Normal, SurfaceEpsilon))
	s.UnderPoint = vec3.SubVV(s.Point, vec3.MulVS(s.Normal, SurfaceEpsilon))
	s.Reflect = vec3.Reflect(r.Direction, s.Normal)
	return s
}

// Schlick approximates the Fresnel reflectance at the boundary described by
// s: the fraction of light reflected rather than refracted.
func Schlick(s Shading) float64 {
	cos := vec3.IProd(s.Eye, s.Normal)

	if s.N1 > s.N2 {
		n := s.N1 / s.N2
		sin2t := n * n * (1 - cos*cos)
		if sin2t > 1 {
			// Total internal reflection.
			return 1.0
		}
		cos = math.Sqrt(1 - sin2t)
	}

	r0 := (s.N1 - s.N2) / (s.N1 + s.N2)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cos, 5)
}

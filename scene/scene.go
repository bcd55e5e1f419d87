// Package scene holds the objects and lights of a world, and shades rays
// cast into it.
//
// Objects are stored by value and addressed by the ObjectID returned from
// AddObject.  When an object is inserted its world-to-model transform and
// normal matrix are computed once, so tracing never inverts a matrix.
package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"whitted/affinetransform"
	"whitted/contact"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/ray"
	"whitted/rgb"
	"whitted/vmath/mat33"
	"whitted/vmath/vec3"
)

// DefaultMaxDepth bounds the number of reflection and refraction bounces
// followed from a camera ray.
const DefaultMaxDepth = 5

type ObjectID = contact.ObjectID

// ErrUnknownObject is returned when an ObjectID does not name an object in
// the scene.
var ErrUnknownObject = errors.New("unknown object")

// Object is a shape placed in the world and given a surface.
type Object struct {
	Geometry geometry.Geometry

	// Transform takes model space to world space.
	Transform affinetransform.AffineTransform

	Material material.Material
}

// NewObject returns g at the origin with the default material.
func NewObject(g geometry.Geometry) Object {
	return Object{
		Geometry:  g,
		Transform: affinetransform.Identity(),
		Material:  material.Default(),
	}
}

func (o Object) WithTransform(t affinetransform.AffineTransform) Object {
	o.Transform = t
	return o
}

func (o Object) WithMaterial(m material.Material) Object {
	o.Material = m
	return o
}

type crushedObject struct {
	Object

	// The transform that takes a ray from world space to model space.
	WorldToModel affinetransform.AffineTransform

	// The linear map that takes normal vectors from model space to world space.
	ModelToWorldNormals mat33.T
}

func crush(o Object) (crushedObject, error) {
	inv, err := o.Transform.Invert()
	if err != nil {
		return crushedObject{}, err
	}
	return crushedObject{
		Object:              o,
		WorldToModel:        inv,
		ModelToWorldNormals: o.Transform.NormalTransformMat(),
	}, nil
}

type Scene struct {
	// MaxDepth is a bounce count: the number of reflection or refraction
	// rays followed from each camera ray.  It does not count the camera ray
	// itself, so zero still shades the surface first hit, and the default
	// of 5 follows five bounces.
	MaxDepth int

	// Background is the color of rays that hit nothing.
	Background rgb.T

	objects []crushedObject
	lights  []light.Point
}

func New() *Scene {
	return &Scene{
		MaxDepth:   DefaultMaxDepth,
		Background: rgb.Black,
	}
}

// AddObject inserts o and returns its ID.  An object whose transform cannot
// be inverted is rejected and the scene is left unchanged.
func (s *Scene) AddObject(o Object) (ObjectID, error) {
	c, err := crush(o)
	if err != nil {
		return 0, fmt.Errorf("while adding %v: %w", o.Geometry.Kind, err)
	}
	s.objects = append(s.objects, c)
	return ObjectID(len(s.objects) - 1), nil
}

func (s *Scene) AddLight(l light.Point) {
	s.lights = append(s.lights, l)
}

// Lights returns the scene's lights in insertion order.
func (s *Scene) Lights() []light.Point {
	return append([]light.Point(nil), s.lights...)
}

// Len returns the number of objects in the scene.
func (s *Scene) Len() int {
	return len(s.objects)
}

// Object returns the object with the given ID.
func (s *Scene) Object(id ObjectID) (Object, error) {
	if err := s.checkID(id); err != nil {
		return Object{}, err
	}
	return s.objects[id].Object, nil
}

// SetTransform replaces the transform of an existing object.  As with
// AddObject, a non-invertible transform is rejected without modifying the
// scene.
func (s *Scene) SetTransform(id ObjectID, t affinetransform.AffineTransform) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	o := s.objects[id].Object
	o.Transform = t
	c, err := crush(o)
	if err != nil {
		return fmt.Errorf("while setting transform of object %d: %w", id, err)
	}
	s.objects[id] = c
	return nil
}

func (s *Scene) SetMaterial(id ObjectID, m material.Material) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	s.objects[id].Material = m
	return nil
}

func (s *Scene) checkID(id ObjectID) error {
	if id < 0 || int(id) >= len(s.objects) {
		return fmt.Errorf("object %d: %w", id, ErrUnknownObject)
	}
	return nil
}

func (s *Scene) appendContacts(dst contact.List, r ray.Ray) contact.List {
	var ts []float64
	for i := range s.objects {
		o := &s.objects[i]
		ts = o.Geometry.AppendIntersections(ts[:0], r.Transform(o.WorldToModel))
		for _, t := range ts {
			dst = append(dst, contact.Contact{T: t, Object: ObjectID(i)})
		}
	}
	return dst
}

// Intersect returns every crossing of r with every object, sorted by
// distance.  Crossings behind the ray origin are included.
func (s *Scene) Intersect(r ray.Ray) contact.List {
	xs := s.appendContacts(nil, r)
	xs.Sort()
	return xs
}

// Hit returns the nearest crossing of r in front of its origin.
func (s *Scene) Hit(r ray.Ray) (contact.Contact, bool) {
	return s.appendContacts(nil, r).Hit()
}

// NormalAt returns the unit world-space outward normal of an object at a
// world-space point on its surface.  It is the zero vector where the surface
// has no defined normal, such as the apex of a cone.
func (s *Scene) NormalAt(id ObjectID, worldPoint vec3.T) vec3.T {
	o := &s.objects[id]
	modelPoint := affinetransform.TransformPoint(o.WorldToModel, worldPoint)
	modelNormal := o.Geometry.NormalAt(modelPoint)
	return vec3.Normalize(mat33.MulMV(o.ModelToWorldNormals, modelNormal))
}

// Prepare computes the shading geometry of xs[idx], which must be a crossing
// of r.  xs must be the full sorted list from Intersect, since the media on
// either side of the surface depend on every object the ray passed through.
func (s *Scene) Prepare(xs contact.List, idx int, r ray.Ray) contact.Shading {
	c := xs[idx]
	normal := s.NormalAt(c.Object, r.Position(c.T))
	if normal == (vec3.T{}) {
		normal = vec3.Normalize(vec3.Neg(r.Direction))
	}

	sh := contact.NewShading(c, r, normal)
	sh.N1, sh.N2 = contact.RefractiveIndices(xs, idx, s.refractiveIndex)
	return sh
}

func (s *Scene) refractiveIndex(id ObjectID) float64 {
	return s.objects[id].Material.RefractiveIndex
}

// ColorAt shades a camera ray, following up to MaxDepth bounces, and clamps
// the result to displayable range.
//
// rng feeds noise textures; it may be nil, in which case they render flat.
func (s *Scene) ColorAt(r ray.Ray, rng *rand.Rand) rgb.T {
	return rgb.Clamp(s.ColorAtDepth(r, s.MaxDepth, rng))
}

// ColorAtDepth shades r with remaining bounces left.  The result is not
// clamped.
func (s *Scene) ColorAtDepth(r ray.Ray, remaining int, rng *rand.Rand) rgb.T {
	xs := s.Intersect(r)
	idx := xs.HitIndex()
	if idx == -1 {
		return s.Background
	}
	return s.ShadeHit(s.Prepare(xs, idx, r), remaining, rng)
}

// ShadeHit combines the lit surface color at sh with whatever is seen by
// reflection and refraction from it.
func (s *Scene) ShadeHit(sh contact.Shading, remaining int, rng *rand.Rand) rgb.T {
	o := &s.objects[sh.Object]
	m := o.Material

	surface := m.SurfaceColor(affinetransform.TransformPoint(o.WorldToModel, sh.Point), rng)

	var lit rgb.T
	for _, l := range s.lights {
		shadowed := s.IsShadowed(sh.OverPoint, l)
		lit = rgb.Add(lit, m.Lighting(surface, l, sh.Point, sh.Eye, sh.Normal, shadowed))
	}

	reflected := s.ReflectedColor(sh, remaining, rng)
	refracted := s.RefractedColor(sh, remaining, rng)

	if m.Reflective > 0 && m.Transparency > 0 {
		reflectance := contact.Schlick(sh)
		return rgb.Add(lit, rgb.Add(
			rgb.Scale(reflected, reflectance),
			rgb.Scale(refracted, 1-reflectance),
		))
	}
	return rgb.Add(lit, rgb.Add(reflected, refracted))
}

// IsShadowed reports whether any object lies between point and l.
func (s *Scene) IsShadowed(point vec3.T, l light.Point) bool {
	v := vec3.SubVV(l.Position, point)
	distance := v.Norm()

	h, ok := s.Hit(ray.New(point, vec3.Normalize(v)))
	return ok && h.T < distance
}

// ReflectedColor is the color seen in the mirror direction at sh, scaled by
// the material's reflectivity.  It is black once no bounces remain.
func (s *Scene) ReflectedColor(sh contact.Shading, remaining int, rng *rand.Rand) rgb.T {
	m := s.objects[sh.Object].Material
	if remaining <= 0 || m.Reflective == 0 {
		return rgb.Black
	}

	reflected := s.ColorAtDepth(ray.New(sh.OverPoint, sh.Reflect), remaining-1, rng)
	return rgb.Scale(reflected, m.Reflective)
}

// RefractedColor is the color seen through the surface at sh, bent by
// Snell's law and scaled by the material's transparency.  It is black once no
// bounces remain and under total internal reflection.
func (s *Scene) RefractedColor(sh contact.Shading, remaining int, rng *rand.Rand) rgb.T {
	m := s.objects[sh.Object].Material
	if remaining <= 0 || m.Transparency == 0 {
		return rgb.Black
	}

	nRatio := sh.N1 / sh.N2
	cosI := vec3.IProd(sh.Eye, sh.Normal)
	sin2T := nRatio * nRatio * (1 - cosI*cosI)
	if sin2T > 1 {
		return rgb.Black
	}

	cosT := math.Sqrt(1 - sin2T)
	direction := vec3.SubVV(
		vec3.MulVS(sh.Normal, nRatio*cosI-cosT),
		vec3.MulVS(sh.Eye, nRatio),
	)

	refracted := s.ColorAtDepth(ray.New(sh.UnderPoint, direction), remaining-1, rng)
	return rgb.Scale(refracted, m.Transparency)
}

// Package material describes how a surface responds to light.
package material

import (
	"math"
	"math/rand"

	"whitted/light"
	"whitted/rgb"
	"whitted/texture"
	"whitted/vmath/vec3"
)

// Material is a Phong surface, optionally reflective and transparent.  It is
// a value; the With* methods return modified copies.
type Material struct {
	// Color is the surface color where no Texture is set.
	Color rgb.T

	Ambient   float64
	Diffuse   float64
	Specular  float64
	Shininess float64

	// Reflective scales the contribution of the mirror reflection.
	Reflective float64

	// Transparency scales the contribution of light refracted through the
	// surface.  RefractiveIndex is the index of the medium behind the
	// surface.
	Transparency    float64
	RefractiveIndex float64

	Texture *texture.Texture
}

func Default() Material {
	return Material{
		Color:           rgb.White,
		Ambient:         0.1,
		Diffuse:         0.9,
		Specular:        0.9,
		Shininess:       200,
		Reflective:      0,
		Transparency:    0,
		RefractiveIndex: 1,
	}
}

// Glass is the default material made fully transparent with the refractive
// index of typical glass.
func Glass() Material {
	return Default().WithTransparency(1).WithRefractiveIndex(1.5)
}

func (m Material) WithColor(c rgb.T) Material {
	m.Color = c
	return m
}

func (m Material) WithAmbient(v float64) Material {
	m.Ambient = v
	return m
}

func (m Material) WithDiffuse(v float64) Material {
	m.Diffuse = v
	return m
}

func (m Material) WithSpecular(v float64) Material {
	m.Specular = v
	return m
}

func (m Material) WithShininess(v float64) Material {
	m.Shininess = v
	return m
}

func (m Material) WithReflective(v float64) Material {
	m.Reflective = v
	return m
}

func (m Material) WithTransparency(v float64) Material {
	m.Transparency = v
	return m
}

func (m Material) WithRefractiveIndex(v float64) Material {
	m.RefractiveIndex = v
	return m
}

func (m Material) WithTexture(t texture.Texture) Material {
	m.Texture = &t
	return m
}

// SurfaceColor is the unlit color at a point given in the space of the object
// wearing m.
func (m Material) SurfaceColor(objectPoint vec3.T, rng *rand.Rand) rgb.T {
	if m.Texture == nil {
		return m.Color
	}
	return m.Texture.Evaluate(objectPoint, rng)
}

// Lighting computes the Phong color of a surface point lit by l.
//
// surface is the unshaded color at the point, normally from SurfaceColor.
// eye and normal must be unit vectors.  A shadowed point only receives the
// ambient term.
func (m Material) Lighting(surface rgb.T, l light.Point, point, eye, normal vec3.T, inShadow bool) rgb.T {
	effective := rgb.Mul(surface, l.Intensity)
	ambient := rgb.Scale(effective, m.Ambient)
	if inShadow {
		return ambient
	}

	toLight := vec3.Normalize(vec3.SubVV(l.Position, point))
	lightDotNormal := vec3.IProd(toLight, normal)
	if lightDotNormal < 0 {
		// The light is behind the surface.
		return ambient
	}
	diffuse := rgb.Scale(effective, m.Diffuse*lightDotNormal)

	var specular rgb.T
	reflectDotEye := vec3.IProd(vec3.Reflect(vec3.Neg(toLight), normal), eye)
	if reflectDotEye >= 0 {
		specular = rgb.Scale(l.Intensity, m.Specular*math.Pow(reflectDotEye, m.Shininess))
	}

	return rgb.Add(ambient, rgb.Add(diffuse, specular))
}

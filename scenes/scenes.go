// Package scenes holds the scenes built into the renderer.
package scenes

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"whitted/affinetransform"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/rgb"
	"whitted/scene"
	"whitted/scenefile"
	"whitted/texture"
	"whitted/vmath/vec3"
)

var ErrUnknownScene = errors.New("unknown scene")

var registry = map[string]func(b *builder) scenefile.View{
	"default":    buildDefault,
	"reflection": buildReflection,
	"room":       buildRoom,
	"shapes":     buildShapes,
	"textures":   buildTextures,
}

// Names lists the built-in scenes in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds a fresh copy of the named scene.
func Lookup(name string) (*scenefile.Loaded, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q; have %v", ErrUnknownScene, name, Names())
	}

	b := &builder{s: scene.New()}
	view := build(b)
	if b.err != nil {
		return nil, fmt.Errorf("while building scene %q: %w", name, b.err)
	}
	return &scenefile.Loaded{Scene: b.s, View: view}, nil
}

// builder keeps the first error hit while assembling a scene, so scene
// definitions read as straight-line code.
type builder struct {
	s   *scene.Scene
	err error
}

func (b *builder) light(pos vec3.T, intensity rgb.T) {
	b.s.AddLight(light.NewPoint(pos, intensity))
}

func (b *builder) add(g geometry.Geometry, tf affinetransform.AffineTransform, m material.Material) {
	if b.err != nil {
		return
	}
	o := scene.NewObject(g).WithTransform(tf).WithMaterial(m)
	if _, err := b.s.AddObject(o); err != nil {
		b.err = err
	}
}

func (b *builder) texture(kind texture.Kind, a, c rgb.T, tf affinetransform.AffineTransform) texture.Texture {
	tex, err := texture.New(kind, a, c).WithTransform(tf)
	if err != nil && b.err == nil {
		b.err = err
	}
	return tex
}

func view(width, height int, from, to vec3.T) scenefile.View {
	return scenefile.View{
		Width:       width,
		Height:      height,
		FieldOfView: math.Pi / 3,
		From:        from,
		To:          to,
		Up:          vec3.T{0, 1, 0},
	}
}

func identity() affinetransform.AffineTransform {
	return affinetransform.Identity()
}

// buildDefault is two concentric spheres lit from above and to the left.
func buildDefault(b *builder) scenefile.View {
	b.light(vec3.T{-10, 10, -10}, rgb.White)
	b.add(geometry.Sphere(), identity(),
		material.Default().WithColor(rgb.T{0.8, 1.0, 0.6}).WithDiffuse(0.7).WithSpecular(0.2))
	b.add(geometry.Sphere(), affinetransform.UniformScale(0.5), material.Default())
	return view(300, 300, vec3.T{0, 0, -5}, vec3.T{0, 0, 0})
}

// buildReflection is a cluster of glassy and mirrored spheres in front of a
// checkered corner.
func buildReflection(b *builder) scenefile.View {
	b.light(vec3.T{-10, 10, -10}, rgb.White)

	floor := material.Default().WithSpecular(0).WithTexture(
		b.texture(texture.KindCheckerboard2D, rgb.White, rgb.Black, affinetransform.UniformScale(0.05)))
	slab := vec3.T{10, 0.01, 10}

	b.add(geometry.Cube(), affinetransform.Scale(slab), floor)
	for _, turn := range []float64{-math.Pi / 4, math.Pi / 4} {
		b.add(geometry.Cube(), identity().
			WithTranslate(vec3.T{0, 0, 5}).
			WithRotateY(turn).
			WithRotateX(math.Pi/2).
			WithScale(slab), floor)
	}

	b.add(geometry.Sphere(), affinetransform.Translate(vec3.T{0.5, 1, -1.1}),
		material.Default().
			WithColor(rgb.T{0.5, 0.5, 0.5}).
			WithDiffuse(0.3).
			WithSpecular(1).
			WithShininess(400).
			WithReflective(0.9).
			WithTransparency(0.9).
			WithRefractiveIndex(1.5))

	b.add(geometry.Sphere(), identity().WithTranslate(vec3.T{1.2, 1.5, -0.75}).WithScale(vec3.T{0.5, 0.5, 0.5}),
		material.Default().
			WithColor(rgb.T{0.5, 1, 0.1}).
			WithDiffuse(0.7).
			WithSpecular(0.3).
			WithReflective(0.1))

	b.add(geometry.Sphere(), identity().WithTranslate(vec3.T{-0.9, 0.33, -1.25}).WithScale(vec3.T{0.25, 0.25, 0.25}),
		material.Default().
			WithColor(rgb.T{0.5, 0, 0}).
			WithAmbient(0.7).
			WithDiffuse(0.9).
			WithShininess(300).
			WithSpecular(0.9).
			WithReflective(1).
			WithTransparency(0.05).
			WithRefractiveIndex(1.5))

	blue := material.Default().
		WithColor(rgb.T{0.2, 0.1, 1}).
		WithDiffuse(0.7).
		WithSpecular(0.3).
		WithReflective(0.2)
	for _, at := range []vec3.T{{-0.3, 1.73, -1.95}, {0.5, 0.73, 0.15}} {
		b.add(geometry.Sphere(), identity().WithTranslate(at).WithScale(vec3.T{0.35, 0.35, 0.35}), blue)
	}

	return view(1000, 500, vec3.T{0, 1.5, -5}, vec3.T{0, 1, 0})
}

// buildRoom is a table with a block on it, seen from a high corner of a
// room.  The room is the inside of two cubes.
func buildRoom(b *builder) scenefile.View {
	b.light(vec3.T{-5, 4.5, -2}, rgb.T{1.8, 1.8, 1.8})

	b.add(geometry.Cube(), identity().WithTranslate(vec3.T{0, 0.5, 0}).WithScale(vec3.T{10, 10, 10}),
		material.Default().
			WithTexture(b.texture(texture.KindCheckerboard3D, rgb.White, rgb.Black, affinetransform.Scale(vec3.T{0.1, 1, 0.1}))).
			WithDiffuse(0.4).
			WithSpecular(0.8).
			WithShininess(30).
			WithReflective(0.2))

	b.add(geometry.Cube(), affinetransform.Scale(vec3.T{9, 20, 9}),
		material.Default().
			WithTexture(b.texture(texture.KindRing, rgb.T{1, 0, 0}, rgb.T{0.7, 0.8, 0.9},
				identity().WithRotateZ(math.Pi/6).WithScale(vec3.T{0.01, 0.01, 0.01}))).
			WithDiffuse(0.3).
			WithSpecular(0.3).
			WithShininess(100).
			WithReflective(0.1))

	table := material.Default().
		WithTexture(b.texture(texture.KindStripe, rgb.T{0.8, 0.5, 0.1}, rgb.T{0.75, 0.45, 0.08},
			identity().WithRotateY(5.3).WithScale(vec3.T{0.05, 0.05, 0.05}))).
		WithDiffuse(0.3).
		WithSpecular(0.3).
		WithShininess(100).
		WithReflective(0.02)
	b.add(geometry.Cube(), identity().WithTranslate(vec3.T{0, -5, 0}).WithScale(vec3.T{3, 0.3, 2}), table)
	for _, leg := range []vec3.T{{-2.8, -7.5, -1.8}, {2.8, -7.5, -1.8}, {-2.8, -7.5, 1.8}, {2.8, -7.5, 1.8}} {
		b.add(geometry.Cube(), identity().WithTranslate(leg).WithScale(vec3.T{0.2, 2.7, 0.2}), table)
	}

	b.add(geometry.Cube(), identity().WithTranslate(vec3.T{0.5, -4.5, 0}).WithRotateY(3).WithScale(vec3.T{0.3, 0.5, 0.3}),
		material.Default().
			WithColor(rgb.T{0.5, 1, 0.1}).
			WithDiffuse(0.7).
			WithSpecular(0.3).
			WithReflective(0.1))

	return view(1000, 500, vec3.T{-4.8, 0.8, -4.8}, vec3.T{-2, -3, -2})
}

// buildShapes shows every kind of geometry on a mirrored checkered floor.
func buildShapes(b *builder) scenefile.View {
	b.light(vec3.T{-8, 10, -10}, rgb.T{0.9, 0.9, 0.9})
	b.light(vec3.T{6, 4, -8}, rgb.T{0.2, 0.2, 0.25})

	b.add(geometry.Plane(), identity(),
		material.Default().
			WithTexture(b.texture(texture.KindCheckerboard2D, rgb.T{0.9, 0.9, 0.9}, rgb.T{0.2, 0.2, 0.2}, identity())).
			WithSpecular(0).
			WithReflective(0.15))

	b.add(geometry.Cylinder().Truncated(0, 1.5, true),
		identity().WithTranslate(vec3.T{-2, 0, 0.5}).WithScale(vec3.T{0.6, 1, 0.6}),
		material.Glass().WithColor(rgb.T{0.1, 0.15, 0.1}).WithDiffuse(0.1).WithReflective(0.8).WithShininess(300))

	b.add(geometry.Cylinder().Truncated(0, 0.4, false),
		identity().WithTranslate(vec3.T{-0.6, 0, -1.2}).WithScale(vec3.T{0.4, 1, 0.4}),
		material.Default().WithColor(rgb.T{0.9, 0.6, 0.1}).WithSpecular(0.4))

	b.add(geometry.Cone().Truncated(-1, 0, true),
		identity().WithTranslate(vec3.T{0.4, 1.2, 0.6}).WithScale(vec3.T{0.7, 1.2, 0.7}),
		material.Default().WithColor(rgb.T{0.2, 0.4, 0.9}).WithDiffuse(0.8).WithSpecular(0.5).WithReflective(0.1))

	b.add(geometry.Cube(),
		identity().WithTranslate(vec3.T{2.1, 0.5, 0.2}).WithRotateY(math.Pi/5).WithScale(vec3.T{0.5, 0.5, 0.5}),
		material.Default().WithColor(rgb.T{0.8, 0.1, 0.15}).WithDiffuse(0.7).WithReflective(0.3))

	b.add(geometry.Sphere(),
		identity().WithTranslate(vec3.T{1.1, 0.35, -1.4}).WithScale(vec3.T{0.35, 0.35, 0.35}),
		material.Default().WithColor(rgb.T{0.05, 0.05, 0.05}).WithReflective(0.95).WithSpecular(1).WithShininess(400))

	return view(800, 400, vec3.T{0, 2.5, -7}, vec3.T{0, 0.7, 0})
}

// buildTextures is a small hexagonal room with a sphere for each texture.
func buildTextures(b *builder) scenefile.View {
	b.light(vec3.T{-0.5, 2.7, -1.3}, rgb.White)

	b.add(geometry.Plane(), identity(),
		material.Default().
			WithTexture(b.texture(texture.KindCheckerboard2D, rgb.White, rgb.Black, affinetransform.UniformScale(0.2))).
			WithSpecular(0.1))

	wall := material.Default().
		WithTexture(b.texture(texture.KindRing, rgb.White, rgb.T{0.1, 0.1, 0.9}, affinetransform.UniformScale(0.2))).
		WithSpecular(0.2)
	for _, w := range []struct {
		z, turn, tilt float64
	}{
		{1.5, 0, math.Pi / 2},
		{-1.5, 0, -math.Pi / 2},
		{2.2, -math.Pi / 4, math.Pi / 2},
		{-2.2, math.Pi / 4, -math.Pi / 2},
		{2.2, math.Pi / 4, math.Pi / 2},
		{-2.2, -math.Pi / 4, -math.Pi / 2},
	} {
		b.add(geometry.Plane(), identity().WithTranslate(vec3.T{0, 0, w.z}).WithRotateY(w.turn).WithRotateX(w.tilt), wall)
	}

	b.add(geometry.Sphere(),
		identity().WithScale(vec3.T{0.8, 0.8, 0.8}).WithTranslate(vec3.T{-0.5, 1, 0.5}).WithRotateZ(math.Pi/2),
		material.Default().
			WithTexture(b.texture(texture.KindCheckerboard3D, rgb.T{0.1, 1, 0.5}, rgb.White, affinetransform.UniformScale(0.5))).
			WithDiffuse(0.7).
			WithSpecular(0.3))

	b.add(geometry.Sphere(),
		identity().WithTranslate(vec3.T{1.2, 0.5, 0}).WithScale(vec3.T{0.5, 0.5, 0.5}).WithRotateY(2).WithRotateZ(1.35),
		material.Default().
			WithTexture(b.texture(texture.KindLinearGradient, rgb.T{1, 0.1, 0.2}, rgb.T{0.1, 0.4, 0.9}, identity())).
			WithDiffuse(0.7).
			WithSpecular(0.3))

	b.add(geometry.Sphere(),
		identity().WithScale(vec3.T{1, 2.5, 1}).WithTranslate(vec3.T{0.4, 0.33, -0.45}).WithScale(vec3.T{0.33, 0.33, 0.33}),
		material.Default().
			WithTexture(b.texture(texture.KindWhiteNoise, rgb.Black, rgb.White,
				identity().WithScale(vec3.T{0.2, 1, 1}).WithRotateY(math.Pi/4))).
			WithDiffuse(0.7).
			WithSpecular(0.3))

	// A row of small spheres for the remaining kinds.
	small := []texture.Texture{
		b.texture(texture.KindStripe, rgb.T{0.9, 0.9, 0.2}, rgb.T{0.2, 0.5, 0.2}, affinetransform.UniformScale(0.25)),
		b.texture(texture.KindRadialGradient, rgb.T{0.9, 0.1, 0.6}, rgb.T{0.1, 0.1, 0.3}, affinetransform.UniformScale(0.5)),
		b.texture(texture.KindTestPattern, rgb.Black, rgb.White, identity()),
		b.texture(texture.KindPerlin, rgb.T{0.1, 0.2, 0.4}, rgb.T{0.9, 0.9, 1}, affinetransform.UniformScale(0.3)),
		b.texture(texture.KindConstant, rgb.T{0.6, 0.3, 0.1}, rgb.T{0.6, 0.3, 0.1}, identity()),
	}
	for i, tex := range small {
		x := -0.6 + 0.3*float64(i)
		b.add(geometry.Sphere(),
			identity().WithTranslate(vec3.T{x, 0.12, 1.1}).WithScale(vec3.T{0.12, 0.12, 0.12}),
			material.Default().WithTexture(tex).WithDiffuse(0.8).WithSpecular(0.3))
	}

	return view(1000, 500, vec3.T{-0.2, 2.8, -1.4}, vec3.T{0.3, 0, 1})
}

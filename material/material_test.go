package material

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/light"
	"whitted/rgb"
	"whitted/texture"
	"whitted/vmath/vec3"
)

func TestDefault(t *testing.T) {
	want := Material{
		Color:           rgb.T{1, 1, 1},
		Ambient:         0.1,
		Diffuse:         0.9,
		Specular:        0.9,
		Shininess:       200,
		Reflective:      0,
		Transparency:    0,
		RefractiveIndex: 1,
	}
	if diff := cmp.Diff(Default(), want); diff != "" {
		t.Errorf("Wrong default material; diff (-got +want)\n%s", diff)
	}
}

func TestWithDoesNotAlias(t *testing.T) {
	base := Default()
	shiny := base.WithReflective(0.5).WithShininess(10)

	if base.Reflective != 0 || base.Shininess != 200 {
		t.Errorf("With* modified the receiver: %+v", base)
	}
	if shiny.Reflective != 0.5 || shiny.Shininess != 10 {
		t.Errorf("With* did not apply: %+v", shiny)
	}

	tex := texture.Constant(rgb.Black)
	textured := base.WithTexture(tex)
	tex.A = rgb.White
	if got := textured.SurfaceColor(vec3.T{}, nil); got != rgb.Black {
		t.Errorf("Texture aliased the caller's value; surface color %v, want %v", got, rgb.Black)
	}
}

func TestLighting(t *testing.T) {
	s2 := math.Sqrt2 / 2

	testCases := []struct {
		name     string
		eye      vec3.T
		light    light.Point
		inShadow bool
		want     rgb.T
	}{
		{
			name:  "eye between light and surface",
			eye:   vec3.T{0, 0, -1},
			light: light.NewPoint(vec3.T{0, 0, -10}, rgb.White),
			want:  rgb.T{1.9, 1.9, 1.9},
		},
		{
			name:  "eye offset 45 degrees",
			eye:   vec3.T{0, s2, -s2},
			light: light.NewPoint(vec3.T{0, 0, -10}, rgb.White),
			want:  rgb.T{1.0, 1.0, 1.0},
		},
		{
			name:  "light offset 45 degrees",
			eye:   vec3.T{0, 0, -1},
			light: light.NewPoint(vec3.T{0, 10, -10}, rgb.White),
			want:  rgb.T{0.7364, 0.7364, 0.7364},
		},
		{
			name:  "eye in the path of the reflection",
			eye:   vec3.T{0, -s2, -s2},
			light: light.NewPoint(vec3.T{0, 10, -10}, rgb.White),
			want:  rgb.T{1.6364, 1.6364, 1.6364},
		},
		{
			name:  "light behind the surface",
			eye:   vec3.T{0, 0, -1},
			light: light.NewPoint(vec3.T{0, 0, 10}, rgb.White),
			want:  rgb.T{0.1, 0.1, 0.1},
		},
		{
			name:     "surface in shadow",
			eye:      vec3.T{0, 0, -1},
			light:    light.NewPoint(vec3.T{0, 0, -10}, rgb.White),
			inShadow: true,
			want:     rgb.T{0.1, 0.1, 0.1},
		},
	}

	m := Default()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := m.Lighting(m.Color, tc.light, vec3.T{0, 0, 0}, tc.eye, vec3.T{0, 0, -1}, tc.inShadow)
			if diff := cmp.Diff(got, tc.want, cmpopts.EquateApprox(0, 1e-4)); diff != "" {
				t.Errorf("Wrong lighting; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestLightingWithTexture(t *testing.T) {
	m := Default().
		WithTexture(texture.New(texture.KindStripe, rgb.White, rgb.Black)).
		WithAmbient(1).
		WithDiffuse(0).
		WithSpecular(0)
	l := light.NewPoint(vec3.T{0, 0, -10}, rgb.White)
	eye := vec3.T{0, 0, -1}
	normal := vec3.T{0, 0, -1}

	for _, tc := range []struct {
		point vec3.T
		want  rgb.T
	}{
		{vec3.T{0.9, 0, 0}, rgb.White},
		{vec3.T{1.1, 0, 0}, rgb.Black},
	} {
		got := m.Lighting(m.SurfaceColor(tc.point, nil), l, tc.point, eye, normal, false)
		if diff := cmp.Diff(got, tc.want); diff != "" {
			t.Errorf("Wrong color at %v; diff (-got +want)\n%s", tc.point, diff)
		}
	}
}

package camera

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/affinetransform"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/ray"
	"whitted/rgb"
	"whitted/scene"
	"whitted/vmath/vec3"
)

func mustNew(t *testing.T, hsize, vsize int, fov float64) *Camera {
	t.Helper()
	c, err := New(hsize, vsize, fov)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	c := mustNew(t, 160, 120, math.Pi/2)
	if c.HSize != 160 || c.VSize != 120 || c.FieldOfView != math.Pi/2 {
		t.Errorf("Got %dx%d fov %v, want 160x120 fov %v", c.HSize, c.VSize, c.FieldOfView, math.Pi/2)
	}
	if diff := cmp.Diff(c.Transform(), affinetransform.Identity()); diff != "" {
		t.Errorf("Wrong default transform; diff (-got +want)\n%s", diff)
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	testCases := []struct {
		hsize, vsize int
		fov          float64
	}{
		{0, 10, math.Pi / 2},
		{10, -1, math.Pi / 2},
		{10, 10, 0},
		{10, 10, math.Pi},
		{10, 10, math.NaN()},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			if _, err := New(tc.hsize, tc.vsize, tc.fov); !errors.Is(err, ErrInvalidCamera) {
				t.Errorf("New(%d, %d, %v) error = %v, want ErrInvalidCamera", tc.hsize, tc.vsize, tc.fov, err)
			}
		})
	}
}

func TestPixelSize(t *testing.T) {
	testCases := []struct {
		name         string
		hsize, vsize int
	}{
		{"horizontal", 200, 125},
		{"vertical", 125, 200},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := mustNew(t, tc.hsize, tc.vsize, math.Pi/2)
			if math.Abs(c.PixelSize-0.01) > 1e-12 {
				t.Errorf("PixelSize = %v, want 0.01", c.PixelSize)
			}
		})
	}
}

func TestRay(t *testing.T) {
	s2 := math.Sqrt2 / 2

	testCases := []struct {
		name      string
		transform affinetransform.AffineTransform
		x, y      int
		want      ray.Ray
	}{
		{
			name:      "center of the canvas",
			transform: affinetransform.Identity(),
			x:         100,
			y:         50,
			want:      ray.New(vec3.T{0, 0, 0}, vec3.T{0, 0, -1}),
		},
		{
			name:      "corner of the canvas",
			transform: affinetransform.Identity(),
			x:         0,
			y:         0,
			want:      ray.New(vec3.T{0, 0, 0}, vec3.T{0.66519, 0.33259, -0.66851}),
		},
		{
			name:      "transformed camera",
			transform: affinetransform.Identity().WithRotateY(math.Pi / 4).WithTranslate(vec3.T{0, -2, 5}),
			x:         100,
			y:         50,
			want:      ray.New(vec3.T{0, 2, -5}, vec3.T{s2, 0, -s2}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := mustNew(t, 201, 101, math.Pi/2)
			if err := c.SetTransform(tc.transform); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			got := c.Ray(tc.x, tc.y)
			if diff := cmp.Diff(got, tc.want, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
				t.Errorf("Wrong ray; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestRayThroughPixelCorner(t *testing.T) {
	c := mustNew(t, 201, 101, math.Pi/2)

	got := c.RayThrough(100.5, 50.5)
	want := c.Ray(100, 50)
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Wrong ray; diff (-got +want)\n%s", diff)
	}
}

func TestSetTransformRejectsSingular(t *testing.T) {
	c := mustNew(t, 10, 10, math.Pi/2)
	view := affinetransform.Translate(vec3.T{1, 2, 3})
	if err := c.SetTransform(view); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	err := c.SetTransform(affinetransform.Scale(vec3.T{1, 1, 0}))
	var singular *affinetransform.SingularError
	if !errors.As(err, &singular) {
		t.Fatalf("SetTransform() error = %v, want a *SingularError", err)
	}
	if diff := cmp.Diff(c.Transform(), view); diff != "" {
		t.Errorf("Transform changed by rejected SetTransform; diff (-got +want)\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	w := scene.New()
	w.AddLight(light.NewPoint(vec3.T{-10, 10, -10}, rgb.White))
	objects := []scene.Object{
		scene.NewObject(geometry.Sphere()).WithMaterial(
			material.Default().WithColor(rgb.T{0.8, 1.0, 0.6}).WithDiffuse(0.7).WithSpecular(0.2),
		),
		scene.NewObject(geometry.Sphere()).WithTransform(affinetransform.UniformScale(0.5)),
	}
	for _, o := range objects {
		if _, err := w.AddObject(o); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	c := mustNew(t, 11, 11, math.Pi/2)
	view := affinetransform.ViewTransform(vec3.T{0, 0, -5}, vec3.T{0, 0, 0}, vec3.T{0, 1, 0})
	if err := c.SetTransform(view); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	im := c.Render(w)
	if im.Width != 11 || im.Height != 11 {
		t.Fatalf("Rendered %dx%d, want 11x11", im.Width, im.Height)
	}
	if diff := cmp.Diff(im.Get(5, 5), rgb.T{0.38066, 0.47583, 0.2855}, cmpopts.EquateApprox(0, 1e-4)); diff != "" {
		t.Errorf("Wrong center pixel; diff (-got +want)\n%s", diff)
	}
}

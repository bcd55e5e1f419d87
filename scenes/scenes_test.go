package scenes

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/rgb"
)

func TestNames(t *testing.T) {
	want := []string{"default", "reflection", "room", "shapes", "textures"}
	if diff := cmp.Diff(Names(), want); diff != "" {
		t.Errorf("Wrong names; diff (-got +want)\n%s", diff)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("teapot")
	if !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Lookup() error = %v, want ErrUnknownScene", err)
	}
}

func TestEverySceneRenders(t *testing.T) {
	wantObjects := map[string]int{
		"default":    2,
		"reflection": 8,
		"room":       8,
		"shapes":     6,
		"textures":   15,
	}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			l, err := Lookup(name)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := l.Scene.Len(); got != wantObjects[name] {
				t.Errorf("Len() = %d, want %d", got, wantObjects[name])
			}
			if len(l.Scene.Lights()) == 0 {
				t.Errorf("Scene has no lights")
			}

			v := l.View
			v.Width, v.Height = 8, 4
			cam, err := v.Camera()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			im := cam.Render(l.Scene)
			lit := false
			for i, px := range im.Pix {
				for _, c := range px {
					if math.IsNaN(c) || c < 0 || c > 1 {
						t.Fatalf("Pix[%d] = %v is out of range", i, px)
					}
				}
				if px != rgb.Black {
					lit = true
				}
			}
			if !lit {
				t.Errorf("Every pixel is black")
			}
		})
	}
}

func TestLookupBuildsFreshScenes(t *testing.T) {
	a, err := Lookup("default")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	a.Scene.MaxDepth = 0

	b, err := Lookup("default")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.Scene.MaxDepth == 0 {
		t.Errorf("Changing one looked-up scene changed another")
	}
}

func TestDefaultSceneCenter(t *testing.T) {
	l, err := Lookup("default")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v := l.View
	v.Width, v.Height = 11, 11
	v.FieldOfView = math.Pi / 2
	cam, err := v.Camera()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := cam.Render(l.Scene).Get(5, 5)
	if diff := cmp.Diff(got, rgb.T{0.38066, 0.47583, 0.2855}, cmpopts.EquateApprox(0, 1e-4)); diff != "" {
		t.Errorf("Wrong center pixel; diff (-got +want)\n%s", diff)
	}
}

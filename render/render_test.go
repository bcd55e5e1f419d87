package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"whitted/affinetransform"
	"whitted/camera"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/rgb"
	"whitted/rowcache"
	"whitted/scene"
	"whitted/texture"
	"whitted/vmath/vec3"
)

// testScene is a noisy floor under a glass ball, so that every shading path
// and the per-row random sources are exercised.
func testScene(t *testing.T) (*camera.Camera, *scene.Scene) {
	t.Helper()

	w := scene.New()
	w.AddLight(light.NewPoint(vec3.T{-10, 10, -10}, rgb.White))

	objects := []scene.Object{
		scene.NewObject(geometry.Plane()).WithMaterial(material.Default().
			WithReflective(0.2).
			WithTexture(texture.New(texture.KindWhiteNoise, rgb.T{0.2, 0.2, 0.2}, rgb.T{0.9, 0.8, 0.7}))),
		scene.NewObject(geometry.Sphere()).
			WithTransform(affinetransform.Translate(vec3.T{0, 1, 0})).
			WithMaterial(material.Glass().WithReflective(0.9).WithColor(rgb.T{0.1, 0.1, 0.2})),
		scene.NewObject(geometry.Cube()).
			WithTransform(affinetransform.Identity().WithTranslate(vec3.T{2, 0.5, 1}).WithScale(vec3.T{0.5, 0.5, 0.5})).
			WithMaterial(material.Default().WithColor(rgb.T{0.8, 0.1, 0.1})),
	}
	for _, o := range objects {
		if _, err := w.AddObject(o); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	cam, err := camera.New(23, 17, math.Pi/3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	view := affinetransform.ViewTransform(vec3.T{0, 1.5, -5}, vec3.T{0, 1, 0}, vec3.T{0, 1, 0})
	if err := cam.SetTransform(view); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return cam, w
}

func TestFrameMatchesSequentialRender(t *testing.T) {
	cam, w := testScene(t)
	want := cam.Render(w)

	testCases := []Options{
		{Workers: 1},
		{Workers: 1, ChunkRows: 1},
		{Workers: 4, ChunkRows: 3},
		{Workers: 16, ChunkRows: 100},
		{},
	}

	for i, opts := range testCases {
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			got, err := Frame(context.Background(), cam, w, opts)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if diff := cmp.Diff(got, want); diff != "" {
				t.Errorf("Frame differs from sequential render; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestFrameSupersampledIsDeterministic(t *testing.T) {
	cam, w := testScene(t)

	one, err := Frame(context.Background(), cam, w, Options{Workers: 1, Samples: 3, Seed: 9})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	many, err := Frame(context.Background(), cam, w, Options{Workers: 8, ChunkRows: 2, Samples: 3, Seed: 9})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(many, one); diff != "" {
		t.Errorf("Supersampled frame depends on worker count; diff (-got +want)\n%s", diff)
	}

	for i, px := range one.Pix {
		for _, c := range px {
			if c < 0 || c > 1 {
				t.Fatalf("Pix[%d] = %v is out of range", i, px)
			}
		}
	}
}

func TestFrameProgress(t *testing.T) {
	cam, w := testScene(t)

	var calls []int
	total := -1
	opts := Options{
		Workers:   3,
		ChunkRows: 2,
		Progress: func(cur, tot int) {
			calls = append(calls, cur)
			total = tot
		},
	}
	if _, err := Frame(context.Background(), cam, w, opts); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if total != cam.VSize {
		t.Errorf("Progress total = %d, want %d", total, cam.VSize)
	}
	for i, cur := range calls {
		if cur != i+1 {
			t.Fatalf("Progress calls = %v, want 1..%d in order", calls, cam.VSize)
		}
	}
	if len(calls) != cam.VSize {
		t.Errorf("Got %d progress calls, want %d", len(calls), cam.VSize)
	}
}

func TestFrameCancelled(t *testing.T) {
	cam, w := testScene(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Frame(ctx, cam, w, Options{Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Frame() error = %v, want context.Canceled", err)
	}
}

func TestFrameRejectsBadOptions(t *testing.T) {
	cam, w := testScene(t)

	for i, opts := range []Options{
		{Workers: -1},
		{Samples: -2},
		{Cache: &mapCache{}},
	} {
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			if _, err := Frame(context.Background(), cam, w, opts); err == nil {
				t.Errorf("Frame() succeeded, want error")
			}
		})
	}
}

type mapCache struct {
	mu   sync.Mutex
	rows map[string][]rgb.T
	puts int
}

func (c *mapCache) key(frameKey string, y int) string {
	return fmt.Sprintf("%s/%d", frameKey, y)
}

func (c *mapCache) GetRow(frameKey string, y int, dst []rgb.T) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows[c.key(frameKey, y)]
	if !ok {
		return false, nil
	}
	copy(dst, row)
	return true, nil
}

func (c *mapCache) PutRow(frameKey string, y int, row []rgb.T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rows == nil {
		c.rows = map[string][]rgb.T{}
	}
	c.rows[c.key(frameKey, y)] = append([]rgb.T(nil), row...)
	c.puts++
	return nil
}

func TestFrameUsesCachedRows(t *testing.T) {
	cam, w := testScene(t)

	cache := &mapCache{}
	marker := make([]rgb.T, cam.HSize)
	for i := range marker {
		marker[i] = rgb.T{0.25, 0.5, 0.75}
	}
	if err := cache.PutRow("frame", 4, marker); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := Frame(context.Background(), cam, w, Options{Workers: 2, Cache: cache, CacheKey: "frame"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if diff := cmp.Diff(got.Row(4), marker); diff != "" {
		t.Errorf("Cached row was not used; diff (-got +want)\n%s", diff)
	}
	if cache.puts != cam.VSize {
		t.Errorf("Stored %d rows, want %d (every traced row plus the seeded one)", cache.puts, cam.VSize)
	}
}

func TestFrameResumesFromRowCache(t *testing.T) {
	cam, w := testScene(t)

	cache, err := rowcache.Open(t.TempDir(), false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer cache.Close()

	opts := Options{Workers: 3, ChunkRows: 4, Cache: cache, CacheKey: "test-frame"}

	first, err := Frame(context.Background(), cam, w, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rows, err := cache.CachedRows("test-frame")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != cam.VSize {
		t.Fatalf("Cached %d rows, want %d", len(rows), cam.VSize)
	}

	second, err := Frame(context.Background(), cam, w, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(second, first); diff != "" {
		t.Errorf("Resumed frame differs; diff (-got +want)\n%s", diff)
	}
}

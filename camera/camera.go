// Package camera maps image pixels to world-space rays.
package camera

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"whitted/affinetransform"
	"whitted/canvas"
	"whitted/ray"
	"whitted/scene"
	"whitted/vmath/vec3"
)

var ErrInvalidCamera = errors.New("invalid camera")

// Camera is a pinhole camera at the origin of its own space, looking down
// -z at an image plane one unit away.
type Camera struct {
	HSize, VSize int
	FieldOfView  float64

	// HalfWidth and HalfHeight are the extents of the image plane.
	HalfWidth  float64
	HalfHeight float64

	// PixelSize is the side of one (square) pixel on the image plane.
	PixelSize float64

	// transform takes world space to camera space; inverse is its inverse.
	transform affinetransform.AffineTransform
	inverse   affinetransform.AffineTransform
}

// New returns a camera producing hsize x vsize images with a horizontal or
// vertical field of view of fov radians, whichever axis is longer.
func New(hsize, vsize int, fov float64) (*Camera, error) {
	if hsize <= 0 || vsize <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidCamera, hsize, vsize)
	}
	if !(fov > 0 && fov < math.Pi) {
		return nil, fmt.Errorf("%w: field of view %v not in (0, pi)", ErrInvalidCamera, fov)
	}

	c := &Camera{
		HSize:       hsize,
		VSize:       vsize,
		FieldOfView: fov,
		transform:   affinetransform.Identity(),
		inverse:     affinetransform.Identity(),
	}

	halfView := math.Tan(fov / 2)
	aspect := float64(hsize) / float64(vsize)
	if aspect >= 1 {
		c.HalfWidth = halfView
		c.HalfHeight = halfView / aspect
	} else {
		c.HalfWidth = halfView * aspect
		c.HalfHeight = halfView
	}
	c.PixelSize = c.HalfWidth * 2 / float64(hsize)

	return c, nil
}

// SetTransform sets the view transform, which takes world space to camera
// space.  It fails, leaving c unchanged, if view cannot be inverted.
func (c *Camera) SetTransform(view affinetransform.AffineTransform) error {
	inv, err := view.Invert()
	if err != nil {
		return fmt.Errorf("while setting camera transform: %w", err)
	}
	c.transform = view
	c.inverse = inv
	return nil
}

func (c *Camera) Transform() affinetransform.AffineTransform {
	return c.transform
}

// Ray returns the ray through the center of pixel (x, y).
func (c *Camera) Ray(x, y int) ray.Ray {
	return c.RayThrough(float64(x)+0.5, float64(y)+0.5)
}

// RayThrough returns the ray through a point on the image given in pixel
// units, with (0, 0) at the top left corner of the top left pixel.
func (c *Camera) RayThrough(px, py float64) ray.Ray {
	// The camera looks toward -z, so +x is to the left.
	worldX := c.HalfWidth - px*c.PixelSize
	worldY := c.HalfHeight - py*c.PixelSize

	pixel := affinetransform.TransformPoint(c.inverse, vec3.T{worldX, worldY, -1})
	origin := affinetransform.TransformPoint(c.inverse, vec3.T{0, 0, 0})
	return ray.New(origin, vec3.Normalize(vec3.SubVV(pixel, origin)))
}

// RowRand returns the random source used for noise textures on row y of a
// frame rendered with the given seed.  Seeding per row keeps noise identical
// however the rows of a frame are split up.
func RowRand(seed int64, y int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(y)))
}

// Render traces one ray through the center of every pixel, one pixel at a
// time.  It is equivalent to a parallel render with seed 0 and one sample
// per pixel.
func (c *Camera) Render(w *scene.Scene) *canvas.Canvas {
	im := canvas.New(c.HSize, c.VSize)
	for y := 0; y < c.VSize; y++ {
		rng := RowRand(0, y)
		for x := 0; x < c.HSize; x++ {
			im.Set(x, y, w.ColorAt(c.Ray(x, y), rng))
		}
	}
	return im
}

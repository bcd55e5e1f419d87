// Package texture holds procedural color patterns.
//
// A texture lives in its own space, placed relative to the object that wears
// it by a transform.  Patterns repeat with period 1 in texture space; scale
// the texture to change that.
package texture

import (
	"fmt"
	"math"
	"math/rand"

	"whitted/affinetransform"
	"whitted/rgb"
	"whitted/vmath/vec3"
)

type Kind int

const (
	KindConstant Kind = iota
	KindStripe
	KindLinearGradient
	KindRadialGradient
	KindRing
	KindCheckerboard2D
	KindCheckerboard3D
	KindTestPattern
	KindWhiteNoise
	KindPerlin
)

var kindNames = map[Kind]string{
	KindConstant:       "constant",
	KindStripe:         "stripe",
	KindLinearGradient: "linear_gradient",
	KindRadialGradient: "radial_gradient",
	KindRing:           "ring",
	KindCheckerboard2D: "checkerboard_2d",
	KindCheckerboard3D: "checkerboard_3d",
	KindTestPattern:    "test_pattern",
	KindWhiteNoise:     "white_noise",
	KindPerlin:         "perlin",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown texture type %q", s)
}

// Texture is an immutable value.  Build one with New and place it with
// WithTransform; the zero value is not usable.
type Texture struct {
	Kind Kind
	A, B rgb.T

	transform affinetransform.AffineTransform
	inverse   affinetransform.AffineTransform
}

func New(kind Kind, a, b rgb.T) Texture {
	return Texture{
		Kind:      kind,
		A:         a,
		B:         b,
		transform: affinetransform.Identity(),
		inverse:   affinetransform.Identity(),
	}
}

func Constant(c rgb.T) Texture {
	return New(KindConstant, c, c)
}

func TestPattern() Texture {
	return New(KindTestPattern, rgb.Black, rgb.White)
}

// WithTransform returns a copy of t placed by tf, which maps texture space
// into object space.
func (t Texture) WithTransform(tf affinetransform.AffineTransform) (Texture, error) {
	inv, err := tf.Invert()
	if err != nil {
		return Texture{}, fmt.Errorf("while setting %v texture transform: %w", t.Kind, err)
	}
	t.transform = tf
	t.inverse = inv
	return t, nil
}

func (t Texture) Transform() affinetransform.AffineTransform {
	return t.transform
}

// Evaluate returns the color at a point given in the space of the object
// wearing the texture.  rng feeds the noise textures; with a nil rng they
// return A.
func (t Texture) Evaluate(objectPoint vec3.T, rng *rand.Rand) rgb.T {
	return t.EvaluateLocal(affinetransform.TransformPoint(t.inverse, objectPoint), rng)
}

// EvaluateLocal returns the color at a point in texture space.
func (t Texture) EvaluateLocal(p vec3.T, rng *rand.Rand) rgb.T {
	switch t.Kind {
	case KindConstant:
		return t.A
	case KindStripe:
		return t.pick(isEven(math.Floor(p[0])))
	case KindLinearGradient:
		return rgb.Lerp(fract(p[0]), t.A, t.B)
	case KindRadialGradient:
		return rgb.Lerp(fract(math.Hypot(p[0], p[2])), t.A, t.B)
	case KindRing:
		return t.pick(isEven(math.Floor(math.Hypot(p[0], p[2]))))
	case KindCheckerboard2D:
		return t.pick(isEven(math.Floor(p[0]) + math.Floor(p[2])))
	case KindCheckerboard3D:
		// The nudge keeps faces of unit cubes from flickering between cells.
		c := math.Floor(p[0]+1e-5) + math.Floor(p[1]+1e-5) + math.Floor(p[2]+1e-5)
		return t.pick(isEven(c))
	case KindTestPattern:
		return rgb.T{p[0], p[1], p[2]}
	case KindWhiteNoise:
		if rng == nil {
			return t.A
		}
		return rgb.Lerp(rng.Float64(), t.A, t.B)
	case KindPerlin:
		return rgb.Lerp(math.Max(0, math.Min(1, 0.5*(perlin(p)+1))), t.A, t.B)
	}
	panic(fmt.Sprintf("texture: unhandled kind %v", t.Kind))
}

func (t Texture) pick(even bool) rgb.T {
	if even {
		return t.A
	}
	return t.B
}

func isEven(f float64) bool {
	return math.Mod(f, 2) == 0
}

func fract(x float64) float64 {
	return x - math.Floor(x)
}

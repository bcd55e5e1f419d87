// Package affinetransform builds and inverts the affine maps that place
// objects, textures, and cameras in the world.
//
// The With* methods post-multiply: t.WithTranslate(v).WithScale(s) scales a
// point first and then translates it, so a chain reads outermost-first.
package affinetransform

import (
	"fmt"
	"math"

	"golang.org/x/xerrors"

	"whitted/vmath/mat33"
	"whitted/vmath/mat44"
	"whitted/vmath/vec3"
)

// SingularThreshold is the smallest |det| of the linear part that Invert
// accepts, as a fraction of the product of the linear part's row lengths.
// The ratio does not change when t is uniformly scaled.
const SingularThreshold = 1e-12

type AffineTransform struct {
	Linear mat33.T
	Offset vec3.T
}

func Identity() AffineTransform {
	return AffineTransform{
		Linear: mat33.Identity(),
		Offset: vec3.T{0.0, 0.0, 0.0},
	}
}

func Scale(s vec3.T) AffineTransform {
	return AffineTransform{
		Linear: mat33.T{s[0], 0.0, 0.0, 0.0, s[1], 0.0, 0.0, 0.0, s[2]},
	}
}

func UniformScale(s float64) AffineTransform {
	return Scale(vec3.T{s, s, s})
}

func Translate(x vec3.T) AffineTransform {
	result := Identity()
	result.Offset = x
	return result
}

func RotateX(rad float64) AffineTransform {
	s, c := math.Sincos(rad)
	return AffineTransform{
		Linear: mat33.T{
			1, 0, 0,
			0, c, -s,
			0, s, c,
		},
	}
}

func RotateY(rad float64) AffineTransform {
	s, c := math.Sincos(rad)
	return AffineTransform{
		Linear: mat33.T{
			c, 0, s,
			0, 1, 0,
			-s, 0, c,
		},
	}
}

func RotateZ(rad float64) AffineTransform {
	s, c := math.Sincos(rad)
	return AffineTransform{
		Linear: mat33.T{
			c, -s, 0,
			s, c, 0,
			0, 0, 1,
		},
	}
}

// Shear moves each coordinate in proportion to the other two; xy is the
// amount x moves in proportion to y, and so on.
func Shear(xy, xz, yx, yz, zx, zy float64) AffineTransform {
	return AffineTransform{
		Linear: mat33.T{
			1, xy, xz,
			yx, 1, yz,
			zx, zy, 1,
		},
	}
}

// ViewTransform orients the world as seen by an eye at from looking toward
// to.  The eye looks down -z with up along +y in the resulting space.
func ViewTransform(from, to, up vec3.T) AffineTransform {
	forward := vec3.Normalize(vec3.SubVV(to, from))
	left := vec3.CProd(forward, vec3.Normalize(up))
	trueUp := vec3.CProd(left, forward)

	orientation := AffineTransform{
		Linear: mat33.T{
			left[0], left[1], left[2],
			trueUp[0], trueUp[1], trueUp[2],
			-forward[0], -forward[1], -forward[2],
		},
	}
	return Compose(orientation, Translate(vec3.Neg(from)))
}

// Compose returns the transform that applies b, then a.
func Compose(a, b AffineTransform) AffineTransform {
	return AffineTransform{
		Linear: mat33.MulMM(a.Linear, b.Linear),
		Offset: vec3.AddVV(a.Offset, mat33.MulMV(a.Linear, b.Offset)),
	}
}

func (t AffineTransform) WithTranslate(v vec3.T) AffineTransform {
	return Compose(t, Translate(v))
}

func (t AffineTransform) WithScale(v vec3.T) AffineTransform {
	return Compose(t, Scale(v))
}

func (t AffineTransform) WithRotateX(rad float64) AffineTransform {
	return Compose(t, RotateX(rad))
}

func (t AffineTransform) WithRotateY(rad float64) AffineTransform {
	return Compose(t, RotateY(rad))
}

func (t AffineTransform) WithRotateZ(rad float64) AffineTransform {
	return Compose(t, RotateZ(rad))
}

func (t AffineTransform) WithShear(xy, xz, yx, yz, zx, zy float64) AffineTransform {
	return Compose(t, Shear(xy, xz, yx, yz, zx, zy))
}

// Matrix returns the homogeneous 4x4 form of t.
func (t AffineTransform) Matrix() mat44.T {
	return mat44.T{
		t.Linear[0], t.Linear[1], t.Linear[2], t.Offset[0],
		t.Linear[3], t.Linear[4], t.Linear[5], t.Offset[1],
		t.Linear[6], t.Linear[7], t.Linear[8], t.Offset[2],
		0, 0, 0, 1,
	}
}

// Invert returns the inverse of t, or a *SingularError if the linear part
// collapses space onto a plane, line, or point.
func (t AffineTransform) Invert() (AffineTransform, error) {
	if det := mat33.Det(t.Linear); math.Abs(det) <= SingularThreshold*rowLengthProduct(t.Linear) || math.IsNaN(det) {
		return AffineTransform{}, NewSingularError(det)
	}

	inv, det := mat44.Inverse(t.Matrix())
	if det == 0 {
		return AffineTransform{}, NewSingularError(det)
	}

	return AffineTransform{
		Linear: mat33.T{
			inv[0], inv[1], inv[2],
			inv[4], inv[5], inv[6],
			inv[8], inv[9], inv[10],
		},
		Offset: vec3.T{inv[3], inv[7], inv[11]},
	}, nil
}

// rowLengthProduct bounds |det(m)| from above.
func rowLengthProduct(m mat33.T) float64 {
	p := 1.0
	for i := 0; i < 3; i++ {
		p *= vec3.T{m[3*i], m[3*i+1], m[3*i+2]}.Norm()
	}
	return p
}

// NormalTransformMat is the transpose inverse of the linear part, which
// carries surface normals through t.
func (t AffineTransform) NormalTransformMat() mat33.T {
	return mat33.Transpose(mat33.Inverse(t.Linear))
}

func TransformPoint(a AffineTransform, b vec3.T) vec3.T {
	return vec3.AddVV(mat33.MulMV(a.Linear, b), a.Offset)
}

func TransformVector(a AffineTransform, b vec3.T) vec3.T {
	return mat33.MulMV(a.Linear, b)
}

// SingularError reports a transform that cannot be inverted.
type SingularError struct {
	Det float64

	frame xerrors.Frame
}

func NewSingularError(det float64) *SingularError {
	return &SingularError{
		Det:   det,
		frame: xerrors.Caller(1),
	}
}

func (e *SingularError) Error() string {
	return fmt.Sprintf("transform is not invertible (determinant %g)", e.Det)
}

func (e *SingularError) Format(f fmt.State, c rune) { // implements fmt.Formatter
	xerrors.FormatError(e, f, c)
}

func (e *SingularError) FormatError(p xerrors.Printer) error { // implements xerrors.Formatter
	p.Print(e.Error())
	if p.Detail() {
		e.frame.Format(p)
	}
	return nil
}

// Package scenefile loads scenes described in YAML.
//
// A scene file looks like:
//
//	camera:
//	  width: 400
//	  height: 200
//	  fov: 1.0471975512
//	  from: [0, 1.5, -5]
//	  to: [0, 1, 0]
//	  up: [0, 1, 0]
//	max_depth: 5
//	background: [0, 0, 0]
//	lights:
//	  - position: [-10, 10, -10]
//	    intensity: [1, 1, 1]
//	objects:
//	  - shape: cylinder
//	    min: 0
//	    max: 2
//	    closed: true
//	    transform:
//	      - scale: [0.5, 1, 0.5]
//	      - rotate_z: 0.3
//	      - translate: [1, 0, 0]
//	    material:
//	      preset: glass
//	      reflective: 0.9
//	      texture:
//	        type: stripe
//	        a: [1, 1, 1]
//	        b: [0, 0, 0]
//	        transform:
//	          - scale: 0.25
//
// Transform operations apply to the object in the order listed.  Angles are
// in radians.  Unset material fields keep the value of the preset, which is
// "default" unless given.
package scenefile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"whitted/affinetransform"
	"whitted/camera"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/objstore"
	"whitted/rgb"
	"whitted/scene"
	"whitted/texture"
	"whitted/vmath/vec3"
)

// View holds everything needed to build the camera of a scene.  It is kept
// apart from the camera itself so callers can change the image size first.
type View struct {
	Width       int
	Height      int
	FieldOfView float64

	From vec3.T
	To   vec3.T
	Up   vec3.T
}

// DefaultView is used for any camera field a scene file leaves unset.
func DefaultView() View {
	return View{
		Width:       400,
		Height:      200,
		FieldOfView: math.Pi / 3,
		From:        vec3.T{0, 1.5, -5},
		To:          vec3.T{0, 1, 0},
		Up:          vec3.T{0, 1, 0},
	}
}

// Camera builds the camera described by v.
func (v View) Camera() (*camera.Camera, error) {
	cam, err := camera.New(v.Width, v.Height, v.FieldOfView)
	if err != nil {
		return nil, err
	}
	if err := cam.SetTransform(affinetransform.ViewTransform(v.From, v.To, v.Up)); err != nil {
		return nil, err
	}
	return cam, nil
}

// Loaded is a scene together with the view it is meant to be seen from.
type Loaded struct {
	Scene *scene.Scene
	View  View
}

type fileScene struct {
	Camera     *fileCamera  `yaml:"camera"`
	MaxDepth   *int         `yaml:"max_depth"`
	Background []float64    `yaml:"background"`
	Lights     []fileLight  `yaml:"lights"`
	Objects    []fileObject `yaml:"objects"`
}

type fileCamera struct {
	Width  int       `yaml:"width"`
	Height int       `yaml:"height"`
	FOV    float64   `yaml:"fov"`
	From   []float64 `yaml:"from"`
	To     []float64 `yaml:"to"`
	Up     []float64 `yaml:"up"`
}

type fileLight struct {
	Position  []float64 `yaml:"position"`
	Intensity []float64 `yaml:"intensity"`
}

type fileObject struct {
	Shape     string        `yaml:"shape"`
	Min       *float64      `yaml:"min"`
	Max       *float64      `yaml:"max"`
	Closed    bool          `yaml:"closed"`
	Transform []fileOp      `yaml:"transform"`
	Material  *fileMaterial `yaml:"material"`
}

// fileOp is one step of a transform.  Exactly one field is set.
type fileOp struct {
	Translate []float64 `yaml:"translate"`
	Scale     scaleArg  `yaml:"scale"`
	RotateX   *float64  `yaml:"rotate_x"`
	RotateY   *float64  `yaml:"rotate_y"`
	RotateZ   *float64  `yaml:"rotate_z"`
	Shear     []float64 `yaml:"shear"`
}

// scaleArg is either a single uniform factor or one factor per axis.
type scaleArg []float64

func (s *scaleArg) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var f float64
		if err := value.Decode(&f); err != nil {
			return err
		}
		*s = scaleArg{f}
		return nil
	}
	var fs []float64
	if err := value.Decode(&fs); err != nil {
		return err
	}
	*s = fs
	return nil
}

type fileMaterial struct {
	Preset          string       `yaml:"preset"`
	Color           []float64    `yaml:"color"`
	Ambient         *float64     `yaml:"ambient"`
	Diffuse         *float64     `yaml:"diffuse"`
	Specular        *float64     `yaml:"specular"`
	Shininess       *float64     `yaml:"shininess"`
	Reflective      *float64     `yaml:"reflective"`
	Transparency    *float64     `yaml:"transparency"`
	RefractiveIndex *float64     `yaml:"refractive_index"`
	Texture         *fileTexture `yaml:"texture"`
}

type fileTexture struct {
	Type      string    `yaml:"type"`
	A         []float64 `yaml:"a"`
	B         []float64 `yaml:"b"`
	Transform []fileOp  `yaml:"transform"`
}

// Parse decodes a scene file.  Unknown keys are an error.
func Parse(data []byte) (*Loaded, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	f := fileScene{}
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scene file")
		}
		return nil, fmt.Errorf("while decoding scene file: %w", err)
	}

	l := &Loaded{
		Scene: scene.New(),
		View:  DefaultView(),
	}

	if f.Camera != nil {
		if err := convertCamera(f.Camera, &l.View); err != nil {
			return nil, fmt.Errorf("while parsing camera: %w", err)
		}
	}

	if f.MaxDepth != nil {
		if *f.MaxDepth < 0 {
			return nil, fmt.Errorf("negative max_depth %d", *f.MaxDepth)
		}
		l.Scene.MaxDepth = *f.MaxDepth
	}

	if f.Background != nil {
		bg, err := convertTriple("background", f.Background)
		if err != nil {
			return nil, err
		}
		l.Scene.Background = rgb.T(bg)
	}

	for i, fl := range f.Lights {
		pos, err := convertTriple("position", fl.Position)
		if err != nil {
			return nil, fmt.Errorf("while parsing light %d: %w", i, err)
		}
		intensity, err := convertTriple("intensity", fl.Intensity)
		if err != nil {
			return nil, fmt.Errorf("while parsing light %d: %w", i, err)
		}
		l.Scene.AddLight(light.NewPoint(pos, rgb.T(intensity)))
	}

	for i, fo := range f.Objects {
		o, err := convertObject(&fo)
		if err != nil {
			return nil, fmt.Errorf("while parsing object %d: %w", i, err)
		}
		if _, err := l.Scene.AddObject(o); err != nil {
			return nil, fmt.Errorf("while parsing object %d: %w", i, err)
		}
	}

	return l, nil
}

// Load reads and parses the scene file at url, which may be a local path or
// a gs:// URL.
func Load(ctx context.Context, store *objstore.Store, url string) (*Loaded, error) {
	data, err := store.ReadAll(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("while reading scene file: %w", err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("while parsing %s: %w", url, err)
	}
	return l, nil
}

func convertCamera(in *fileCamera, v *View) error {
	if in.Width != 0 {
		v.Width = in.Width
	}
	if in.Height != 0 {
		v.Height = in.Height
	}
	if in.FOV != 0 {
		v.FieldOfView = in.FOV
	}

	for _, p := range []struct {
		name string
		in   []float64
		out  *vec3.T
	}{
		{"from", in.From, &v.From},
		{"to", in.To, &v.To},
		{"up", in.Up, &v.Up},
	} {
		if p.in == nil {
			continue
		}
		t, err := convertTriple(p.name, p.in)
		if err != nil {
			return err
		}
		*p.out = t
	}

	// Reject a bad camera here rather than at render time.
	if _, err := v.Camera(); err != nil {
		return err
	}
	return nil
}

func convertObject(in *fileObject) (scene.Object, error) {
	kind, err := geometry.ParseKind(in.Shape)
	if err != nil {
		return scene.Object{}, err
	}

	var g geometry.Geometry
	switch kind {
	case geometry.KindPlane:
		g = geometry.Plane()
	case geometry.KindSphere:
		g = geometry.Sphere()
	case geometry.KindCube:
		g = geometry.Cube()
	case geometry.KindCylinder:
		g = geometry.Cylinder()
	case geometry.KindCone:
		g = geometry.Cone()
	}

	if in.Min != nil || in.Max != nil || in.Closed {
		if kind != geometry.KindCylinder && kind != geometry.KindCone {
			return scene.Object{}, fmt.Errorf("min, max, and closed only apply to cylinders and cones, not %v", kind)
		}
		lo, hi := g.Min, g.Max
		if in.Min != nil {
			lo = *in.Min
		}
		if in.Max != nil {
			hi = *in.Max
		}
		if lo > hi {
			return scene.Object{}, fmt.Errorf("min %v is above max %v", lo, hi)
		}
		g = g.Truncated(lo, hi, in.Closed)
	}

	o := scene.NewObject(g)

	tf, err := convertTransform(in.Transform)
	if err != nil {
		return scene.Object{}, fmt.Errorf("while parsing transform: %w", err)
	}
	o = o.WithTransform(tf)

	if in.Material != nil {
		m, err := convertMaterial(in.Material)
		if err != nil {
			return scene.Object{}, fmt.Errorf("while parsing material: %w", err)
		}
		o = o.WithMaterial(m)
	}

	return o, nil
}

// convertTransform composes ops so that the first listed is applied first.
func convertTransform(ops []fileOp) (affinetransform.AffineTransform, error) {
	t := affinetransform.Identity()
	for i, op := range ops {
		step, err := convertOp(&op)
		if err != nil {
			return affinetransform.AffineTransform{}, fmt.Errorf("step %d: %w", i, err)
		}
		t = affinetransform.Compose(step, t)
	}
	return t, nil
}

func convertOp(op *fileOp) (affinetransform.AffineTransform, error) {
	set := 0
	for _, present := range []bool{
		op.Translate != nil,
		op.Scale != nil,
		op.RotateX != nil,
		op.RotateY != nil,
		op.RotateZ != nil,
		op.Shear != nil,
	} {
		if present {
			set++
		}
	}
	if set != 1 {
		return affinetransform.AffineTransform{}, fmt.Errorf("want exactly one operation, got %d", set)
	}

	switch {
	case op.Translate != nil:
		v, err := convertTriple("translate", op.Translate)
		if err != nil {
			return affinetransform.AffineTransform{}, err
		}
		return affinetransform.Translate(v), nil
	case op.Scale != nil:
		if len(op.Scale) == 1 {
			return affinetransform.UniformScale(op.Scale[0]), nil
		}
		v, err := convertTriple("scale", op.Scale)
		if err != nil {
			return affinetransform.AffineTransform{}, err
		}
		return affinetransform.Scale(v), nil
	case op.RotateX != nil:
		return affinetransform.RotateX(*op.RotateX), nil
	case op.RotateY != nil:
		return affinetransform.RotateY(*op.RotateY), nil
	case op.RotateZ != nil:
		return affinetransform.RotateZ(*op.RotateZ), nil
	default:
		s := op.Shear
		if len(s) != 6 {
			return affinetransform.AffineTransform{}, fmt.Errorf("shear wants 6 values [xy, xz, yx, yz, zx, zy], got %d", len(s))
		}
		return affinetransform.Shear(s[0], s[1], s[2], s[3], s[4], s[5]), nil
	}
}

func convertMaterial(in *fileMaterial) (material.Material, error) {
	var m material.Material
	switch in.Preset {
	case "", "default":
		m = material.Default()
	case "glass":
		m = material.Glass()
	default:
		return material.Material{}, fmt.Errorf("unknown preset %q", in.Preset)
	}

	if in.Color != nil {
		c, err := convertTriple("color", in.Color)
		if err != nil {
			return material.Material{}, err
		}
		m = m.WithColor(rgb.T(c))
	}

	for _, f := range []struct {
		name string
		in   *float64
		set  func(material.Material, float64) material.Material
	}{
		{"ambient", in.Ambient, material.Material.WithAmbient},
		{"diffuse", in.Diffuse, material.Material.WithDiffuse},
		{"specular", in.Specular, material.Material.WithSpecular},
		{"shininess", in.Shininess, material.Material.WithShininess},
		{"reflective", in.Reflective, material.Material.WithReflective},
		{"transparency", in.Transparency, material.Material.WithTransparency},
		{"refractive_index", in.RefractiveIndex, material.Material.WithRefractiveIndex},
	} {
		if f.in == nil {
			continue
		}
		if *f.in < 0 {
			return material.Material{}, fmt.Errorf("negative %s %v", f.name, *f.in)
		}
		m = f.set(m, *f.in)
	}

	if in.Texture != nil {
		tex, err := convertTexture(in.Texture)
		if err != nil {
			return material.Material{}, fmt.Errorf("while parsing texture: %w", err)
		}
		m = m.WithTexture(tex)
	}

	return m, nil
}

func convertTexture(in *fileTexture) (texture.Texture, error) {
	kind, err := texture.ParseKind(in.Type)
	if err != nil {
		return texture.Texture{}, err
	}

	a, b := rgb.White, rgb.Black
	if in.A != nil {
		v, err := convertTriple("a", in.A)
		if err != nil {
			return texture.Texture{}, err
		}
		a = rgb.T(v)
	}
	if in.B != nil {
		v, err := convertTriple("b", in.B)
		if err != nil {
			return texture.Texture{}, err
		}
		b = rgb.T(v)
	}

	var tex texture.Texture
	switch kind {
	case texture.KindConstant:
		tex = texture.Constant(a)
	case texture.KindTestPattern:
		tex = texture.TestPattern()
	default:
		tex = texture.New(kind, a, b)
	}

	if in.Transform == nil {
		return tex, nil
	}
	tf, err := convertTransform(in.Transform)
	if err != nil {
		return texture.Texture{}, fmt.Errorf("while parsing transform: %w", err)
	}
	return tex.WithTransform(tf)
}

func convertTriple(name string, in []float64) (vec3.T, error) {
	if len(in) != 3 {
		return vec3.T{}, fmt.Errorf("%s wants 3 values, got %d", name, len(in))
	}
	return vec3.T{in[0], in[1], in[2]}, nil
}

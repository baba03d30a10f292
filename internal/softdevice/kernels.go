package softdevice

import (
	"fmt"
	"math"

	"MirrorShade/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// kernel is the CPU rendition of a fragment shader. It returns false where
// the shader discards.
type kernel func(d *Device, p *program, uv mgl32.Vec2) (mgl32.Vec4, bool)

type program struct {
	name     string
	kernel   kernel
	declared map[string]any // active uniforms and the Go type each accepts
	values   map[string]any
}

var (
	samplerUniform = int32(0)
	intUniform     = int32(0)
	floatUniform   = float32(0)
	vec3Uniform    = mgl32.Vec3{}
	mat4Uniform    = mgl32.Mat4{}
)

func newProgram(name string) (*program, error) {
	p := &program{name: name, values: make(map[string]any)}
	switch name {
	case renderer.ProgramAmbient:
		p.kernel = ambientKernel
		p.declared = map[string]any{
			"colorMap":       samplerUniform,
			"lightColor":     vec3Uniform,
			"lightIntensity": floatUniform,
		}
	case renderer.ProgramSpot:
		p.kernel = spotKernel
		p.declared = map[string]any{
			"positionMap":           samplerUniform,
			"normalMap":             samplerUniform,
			"colorMap":              samplerUniform,
			"shadowMap":             samplerUniform,
			"inverseViewProjection": mat4Uniform,
			"lightColor":            vec3Uniform,
			"lightIntensity":        floatUniform,
			"lightPosition":         vec3Uniform,
			"lightDirection":        vec3Uniform,
			"cutoff":                floatUniform,
			"attenuationConstant":   floatUniform,
			"attenuationLinear":     floatUniform,
			"attenuationExp":        floatUniform,
			"shadowsEnabled":        intUniform,
			"shadowViewProjection":  mat4Uniform,
			"shadowBias":            floatUniform,
		}
	case renderer.ProgramMirror:
		p.kernel = mirrorKernel
		p.declared = map[string]any{
			"colorMap":     samplerUniform,
			"reflectivity": floatUniform,
		}
	case renderer.ProgramMaterial:
		// Geometry is rasterized through Fill; the program only holds uniforms.
		p.declared = map[string]any{
			"model":             mat4Uniform,
			"viewProjection":    mat4Uniform,
			"diffuseColor":      vec3Uniform,
			"diffuseIntensity":  floatUniform,
			"specularIntensity": floatUniform,
			"specularPower":     floatUniform,
		}
	default:
		return nil, fmt.Errorf("no software implementation of program %q", name)
	}
	return p, nil
}

func (p *program) integer(name string) int32 {
	v, _ := p.values[name].(int32)
	return v
}

func (p *program) scalar(name string) float32 {
	v, _ := p.values[name].(float32)
	return v
}

func (p *program) vec3(name string) mgl32.Vec3 {
	v, _ := p.values[name].(mgl32.Vec3)
	return v
}

func (p *program) mat4(name string) mgl32.Mat4 {
	v, _ := p.values[name].(mgl32.Mat4)
	return v
}

func ambientKernel(d *Device, p *program, uv mgl32.Vec2) (mgl32.Vec4, bool) {
	diffuse := d.sample(p.integer("colorMap"), uv)
	light := p.vec3("lightColor").Mul(p.scalar("lightIntensity"))
	rgb := mulVec3(light, diffuse.Vec3())
	return rgb.Vec4(diffuse.W()), true
}

func spotKernel(d *Device, p *program, uv mgl32.Vec2) (mgl32.Vec4, bool) {
	color := d.sample(p.integer("colorMap"), uv)
	if color.W() == 0 {
		return mgl32.Vec4{}, false
	}
	position := d.sample(p.integer("positionMap"), uv)
	normal := d.sample(p.integer("normalMap"), uv)
	point := position.Vec3()
	n := normal.Vec3().Normalize()

	toLight := p.vec3("lightPosition").Sub(point)
	dist := toLight.Len()
	l := toLight.Mul(1 / dist)
	cosTheta := l.Mul(-1).Dot(p.vec3("lightDirection").Normalize())
	cutoff := p.scalar("cutoff")
	if cosTheta <= cutoff {
		return mgl32.Vec4{}, false
	}
	spot := 1 - (1-cosTheta)/(1-cutoff)

	ndc := mgl32.Vec2{uv.X()*2 - 1, uv.Y()*2 - 1}
	inv := p.mat4("inverseViewProjection")
	near := inv.Mul4x1(mgl32.Vec4{ndc.X(), ndc.Y(), -1, 1})
	far := inv.Mul4x1(mgl32.Vec4{ndc.X(), ndc.Y(), 1, 1})
	toEye := near.Vec3().Mul(1 / near.W()).Sub(far.Vec3().Mul(1 / far.W())).Normalize()

	diffuse := max32(n.Dot(l), 0)
	var specular float32
	if diffuse > 0 {
		r := reflectAbout(l.Mul(-1), n)
		specular = normal.W() * float32(math.Pow(float64(max32(toEye.Dot(r), 0)), float64(position.W())))
	}

	visibility := float32(1)
	if p.integer("shadowsEnabled") == 1 {
		visibility = shadowVisibility(d, p, point)
	}

	attenuation := p.scalar("attenuationConstant") + p.scalar("attenuationLinear")*dist + p.scalar("attenuationExp")*dist*dist
	lit := color.Vec3().Mul(diffuse).Add(mgl32.Vec3{specular, specular, specular})
	scale := p.scalar("lightIntensity") * spot * visibility / attenuation
	result := mulVec3(p.vec3("lightColor"), lit).Mul(scale)
	return result.Vec4(0), true
}

func shadowVisibility(d *Device, p *program, point mgl32.Vec3) float32 {
	clip := p.mat4("shadowViewProjection").Mul4x1(point.Vec4(1))
	coord := clip.Vec3().Mul(1 / clip.W()).Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5})
	if coord.X() < 0 || coord.X() > 1 || coord.Y() < 0 || coord.Y() > 1 || coord.Z() > 1 {
		return 1
	}
	stored := d.sample(p.integer("shadowMap"), coord.Vec2()).X()
	if stored < coord.Z()-p.scalar("shadowBias") {
		return 0
	}
	return 1
}

func mirrorKernel(d *Device, p *program, uv mgl32.Vec2) (mgl32.Vec4, bool) {
	reflected := d.sample(p.integer("colorMap"), mgl32.Vec2{1 - uv.X(), uv.Y()})
	return reflected.Vec3().Vec4(reflected.W() * p.scalar("reflectivity")), true
}

func mulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// reflectAbout mirrors incident i about normal n, as GLSL's reflect.
func reflectAbout(i, n mgl32.Vec3) mgl32.Vec3 {
	return i.Sub(n.Mul(2 * n.Dot(i)))
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

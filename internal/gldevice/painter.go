package gldevice

import (
	"MirrorShade/internal/logger"
	"MirrorShade/internal/mesh"
	"MirrorShade/internal/renderer"
	"MirrorShade/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

type glMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

// Painter draws scene objects with the material program. Meshes are uploaded
// on first use and shared by every object referencing the same mesh.Data.
type Painter struct {
	dev     *Device
	program renderer.Program
	meshes  map[*mesh.Data]*glMesh
	failed  map[string]bool // uniforms already reported
}

var _ scene.Painter = (*Painter)(nil)

func NewPainter(dev *Device) (*Painter, error) {
	program, err := dev.CreateProgram(renderer.MaterialProgramSource())
	if err != nil {
		return nil, err
	}
	return &Painter{
		dev:     dev,
		program: program,
		meshes:  make(map[*mesh.Data]*glMesh),
		failed:  make(map[string]bool),
	}, nil
}

func (p *Painter) upload(data *mesh.Data) *glMesh {
	if m, ok := p.meshes[data]; ok {
		return m
	}
	m := &glMesh{count: int32(len(data.Indices))}
	interleaved := data.Interleaved()

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(interleaved)*4, gl.Ptr(interleaved), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)

	stride := int32(mesh.FloatsPerVertex * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	p.meshes[data] = m

	logger.Log.Debug("Mesh uploaded",
		zap.String("name", data.Name),
		zap.Int("vertices", len(data.Positions)),
		zap.Int("triangles", data.TriangleCount()))
	return m
}

func (p *Painter) Paint(object *scene.Object, camera *renderer.Camera) {
	m := p.upload(object.Mesh)
	material := object.Material

	p.dev.UseProgram(p.program)
	uniforms := []struct {
		name  string
		value any
	}{
		{"model", object.ModelMatrix},
		{"viewProjection", camera.GetViewProjection()},
		{"diffuseColor", material.DiffuseColor},
		{"diffuseIntensity", material.DiffuseIntensity},
		{"specularIntensity", material.SpecularIntensity},
		{"specularPower", material.SpecularPower},
	}
	for _, u := range uniforms {
		if err := p.dev.SetUniform(p.program, u.name, u.value); err != nil && !p.failed[u.name] {
			p.failed[u.name] = true
			logger.Log.Error("Material uniform rejected", zap.String("object", object.Name), zap.Error(err))
		}
	}

	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (p *Painter) Destroy() {
	for data, m := range p.meshes {
		gl.DeleteVertexArrays(1, &m.vao)
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
		delete(p.meshes, data)
	}
	p.dev.DeleteProgram(p.program)
}

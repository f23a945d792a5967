package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"terrastream/internal/mesh"
)

// meshSlot owns the GL objects for one terrain chunk: a VAO with separate
// position/normal/uv buffers and an index buffer. GL objects are created on
// first upload and reused across rebinds.
type meshSlot struct {
	vao       uint32
	posVBO    uint32
	normalVBO uint32
	uvVBO     uint32
	ebo       uint32

	indexCount int32
	transform  mgl32.Mat4
	bound      bool
	visible    bool
}

// MeshPool keeps chunk geometry on the GPU, addressed by slot index. It
// implements the terrain system's render backend. All methods must run on
// the GL thread.
type MeshPool struct {
	slots []meshSlot
}

func NewMeshPool() *MeshPool {
	return &MeshPool{}
}

// Upload stores geometry in the slot, creating GL objects the first time the
// slot is touched.
func (p *MeshPool) Upload(slot int, g *mesh.Geometry, transform mgl32.Mat4) {
	for len(p.slots) <= slot {
		p.slots = append(p.slots, meshSlot{})
	}
	s := &p.slots[slot]
	if s.vao == 0 {
		gl.GenVertexArrays(1, &s.vao)
		gl.GenBuffers(1, &s.posVBO)
		gl.GenBuffers(1, &s.normalVBO)
		gl.GenBuffers(1, &s.uvVBO)
		gl.GenBuffers(1, &s.ebo)

		gl.BindVertexArray(s.vao)
		gl.BindBuffer(gl.ARRAY_BUFFER, s.posVBO)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
		gl.BindBuffer(gl.ARRAY_BUFFER, s.normalVBO)
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 3*4, 0)
		gl.BindBuffer(gl.ARRAY_BUFFER, s.uvVBO)
		gl.EnableVertexAttribArray(2)
		gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, 2*4, 0)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, s.ebo)
	} else {
		gl.BindVertexArray(s.vao)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, s.posVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(g.Positions)*4, gl.Ptr(g.Positions), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.normalVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(g.Normals)*4, gl.Ptr(g.Normals), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.uvVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(g.UVs)*4, gl.Ptr(g.UVs), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, s.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, gl.Ptr(g.Indices), gl.DYNAMIC_DRAW)

	s.indexCount = int32(len(g.Indices))
	s.transform = transform
	s.bound = true
	s.visible = true
}

// SetVisible toggles drawing for a bound slot without touching its buffers.
func (p *MeshPool) SetVisible(slot int, visible bool) {
	if slot < 0 || slot >= len(p.slots) {
		return
	}
	p.slots[slot].visible = visible
}

// Release detaches the slot's geometry. GL buffers stay allocated for reuse;
// Destroy frees them.
func (p *MeshPool) Release(slot int) {
	if slot < 0 || slot >= len(p.slots) {
		return
	}
	s := &p.slots[slot]
	s.bound = false
	s.visible = false
	s.indexCount = 0
}

// Draw renders every bound, visible slot with the currently active shader.
// The model matrix is set per slot; all other uniforms are the caller's.
func (p *MeshPool) Draw(shader *Shader) (drawn int) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.bound || !s.visible || s.indexCount == 0 {
			continue
		}
		shader.SetMatrix4("model", &s.transform[0])
		gl.BindVertexArray(s.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, s.indexCount, gl.UNSIGNED_INT, 0)
		drawn++
	}
	return drawn
}

// Destroy frees all GL objects. The pool must not be used afterwards.
func (p *MeshPool) Destroy() {
	for i := range p.slots {
		s := &p.slots[i]
		if s.vao == 0 {
			continue
		}
		gl.DeleteBuffers(1, &s.posVBO)
		gl.DeleteBuffers(1, &s.normalVBO)
		gl.DeleteBuffers(1, &s.uvVBO)
		gl.DeleteBuffers(1, &s.ebo)
		gl.DeleteVertexArrays(1, &s.vao)
	}
	p.slots = nil
}

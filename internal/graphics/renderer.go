package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	skyColor   = mgl32.Vec3{0.53, 0.71, 0.92}
	lowColor   = mgl32.Vec3{0.22, 0.42, 0.18}
	highColor  = mgl32.Vec3{0.78, 0.76, 0.72}
	sunDir     = mgl32.Vec3{-0.4, -1.0, -0.3}
	fogStart   = float32(400.0)
	fogEndPush = float32(100.0) // fog fully closes this far before the view limit
)

// Renderer owns the GL state for the terrain viewer: the terrain shader, the
// camera and the chunk mesh pool.
type Renderer struct {
	terrainShader *Shader
	camera        *Camera
	pool          *MeshPool

	heightSpan      float32
	maxViewDistance float32
}

// NewRenderer initializes GL and compiles the terrain program. Must be called
// on the GL thread with a current context.
func NewRenderer(width, height int, heightSpan, maxViewDistance float32) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	// mesh building emits CCW front faces seen from above
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.ClearColor(skyColor.X(), skyColor.Y(), skyColor.Z(), 1.0)

	terrainShader, err := NewShader(terrainVertShader, terrainFragShader)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		terrainShader:   terrainShader,
		camera:          NewCamera(width, height),
		pool:            NewMeshPool(),
		heightSpan:      heightSpan,
		maxViewDistance: maxViewDistance,
	}, nil
}

// Camera returns the renderer's camera for input handling and culling.
func (r *Renderer) Camera() *Camera {
	return r.camera
}

// MeshPool returns the chunk slot backend.
func (r *Renderer) MeshPool() *MeshPool {
	return r.pool
}

// Resize updates the viewport and the projection aspect ratio.
func (r *Renderer) Resize(width, height int) {
	if height == 0 {
		return
	}
	gl.Viewport(0, 0, int32(width), int32(height))
	r.camera.AspectRatio = float32(width) / float32(height)
}

// Render draws one frame and returns the number of chunks drawn.
func (r *Renderer) Render() int {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view := r.camera.GetViewMatrix()
	projection := r.camera.GetProjectionMatrix()

	r.terrainShader.Use()
	r.terrainShader.SetMatrix4("proj", &projection[0])
	r.terrainShader.SetMatrix4("view", &view[0])
	r.terrainShader.SetVector3("lightDir", sunDir.X(), sunDir.Y(), sunDir.Z())
	r.terrainShader.SetVector3("lowColor", lowColor.X(), lowColor.Y(), lowColor.Z())
	r.terrainShader.SetVector3("highColor", highColor.X(), highColor.Y(), highColor.Z())
	r.terrainShader.SetVector3("fogColor", skyColor.X(), skyColor.Y(), skyColor.Z())
	r.terrainShader.SetFloat("fogStart", fogStart)
	r.terrainShader.SetFloat("fogEnd", max(r.maxViewDistance-fogEndPush, fogStart+1))
	r.terrainShader.SetFloat("heightSpan", r.heightSpan)
	pos := r.camera.Position
	r.terrainShader.SetVector3("cameraPos", pos.X(), pos.Y(), pos.Z())

	return r.pool.Draw(r.terrainShader)
}

// Destroy releases the pool's GL objects.
func (r *Renderer) Destroy() {
	r.pool.Destroy()
}

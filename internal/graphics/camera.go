package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying viewer: a world position plus yaw/pitch in degrees.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float64
	Pitch    float64

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		Position:    mgl32.Vec3{0, 80, 0},
		Yaw:         -90.0, // looking down -Z
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    4000.0,
	}
}

// Front returns the unit view direction for the current yaw and pitch.
func (c *Camera) Front() mgl32.Vec3 {
	y := mgl32.DegToRad(float32(c.Yaw))
	pt := mgl32.DegToRad(float32(c.Pitch))
	fx := float32(math.Cos(float64(y)) * math.Cos(float64(pt)))
	fy := float32(math.Sin(float64(pt)))
	fz := float32(math.Sin(float64(y)) * math.Cos(float64(pt)))
	return mgl32.Vec3{fx, fy, fz}.Normalize()
}

// Right returns the unit vector pointing to the camera's right, planar.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Rotate applies a mouse delta, clamping pitch short of the poles.
func (c *Camera) Rotate(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch += dPitch
	if c.Pitch > 89.0 {
		c.Pitch = 89.0
	}
	if c.Pitch < -89.0 {
		c.Pitch = -89.0
	}
}

// Move translates the camera by dir scaled with distance.
func (c *Camera) Move(dir mgl32.Vec3, distance float32) {
	c.Position = c.Position.Add(dir.Mul(distance))
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

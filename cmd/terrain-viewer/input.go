package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"terrastream/internal/graphics"
)

const mouseSensitivity = 0.1

// mouseState tracks the previous cursor position between callbacks.
type mouseState struct {
	lastX, lastY float64
	initialized  bool
}

func setupInputHandlers(window *glfw.Window, cam *graphics.Camera) {
	mouse := &mouseState{}

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !mouse.initialized {
			mouse.lastX, mouse.lastY = xpos, ypos
			mouse.initialized = true
			return
		}
		dx := xpos - mouse.lastX
		dy := mouse.lastY - ypos // screen y grows downward
		mouse.lastX, mouse.lastY = xpos, ypos
		cam.Rotate(dx*mouseSensitivity, dy*mouseSensitivity)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
}

// applyMovement reads held keys and flies the camera. Speed is in world units
// per second; holding left control quadruples it.
func applyMovement(window *glfw.Window, cam *graphics.Camera, dt float64) {
	speed := float32(60.0 * dt)
	if window.GetKey(glfw.KeyLeftControl) == glfw.Press {
		speed *= 4
	}

	front := cam.Front()
	right := cam.Right()
	up := mgl32.Vec3{0, 1, 0}

	if window.GetKey(glfw.KeyW) == glfw.Press {
		cam.Move(front, speed)
	}
	if window.GetKey(glfw.KeyS) == glfw.Press {
		cam.Move(front, -speed)
	}
	if window.GetKey(glfw.KeyD) == glfw.Press {
		cam.Move(right, speed)
	}
	if window.GetKey(glfw.KeyA) == glfw.Press {
		cam.Move(right, -speed)
	}
	if window.GetKey(glfw.KeySpace) == glfw.Press {
		cam.Move(up, speed)
	}
	if window.GetKey(glfw.KeyLeftShift) == glfw.Press {
		cam.Move(up, -speed)
	}
}

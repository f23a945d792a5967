package terrain

import (
	"io"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"terrastream/internal/mesh"
)

// recordingBackend captures slot events so tests can assert on the sequence
// the allocator emits.
type recordingBackend struct {
	uploads  map[int]*mesh.Geometry
	visible  map[int]bool
	released []int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		uploads: make(map[int]*mesh.Geometry),
		visible: make(map[int]bool),
	}
}

func (b *recordingBackend) Upload(slot int, g *mesh.Geometry, _ mgl32.Mat4) {
	b.uploads[slot] = g
}

func (b *recordingBackend) SetVisible(slot int, visible bool) {
	b.visible[slot] = visible
}

func (b *recordingBackend) Release(slot int) {
	delete(b.uploads, slot)
	delete(b.visible, slot)
	b.released = append(b.released, slot)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Package mesh owns GPU vertex/index buffers and their draw call.
package mesh

import (
	"errors"
	"fmt"
)

// Vertex layout shared by every mesh: position (3), texture coordinate (2),
// normal (3), interleaved.
const (
	PositionSize   = 3
	TexCoordSize   = 2
	NormalSize     = 3
	Stride         = PositionSize + TexCoordSize + NormalSize
	TexCoordOffset = PositionSize
	NormalOffset   = PositionSize + TexCoordSize
)

// ErrAllocation is returned when the backend fails to produce a GPU handle.
var ErrAllocation = errors.New("GPU handle allocation failed")

// DrawMode is the primitive a mesh's indices describe.
type DrawMode uint8

const (
	Triangles DrawMode = iota
	Lines
)

func (m DrawMode) String() string {
	switch m {
	case Triangles:
		return "triangles"
	case Lines:
		return "lines"
	}
	return fmt.Sprintf("DrawMode(%d)", uint8(m))
}

// Backend is the graphics API a [Resource] issues its calls through.
// Generation methods return 0 on failure.
type Backend interface {
	GenVertexArray() uint32
	GenBuffer() uint32
	// Upload copies vertices and indices into static GPU memory and declares
	// the vertex layout on vao.
	Upload(vao, vbo, ibo uint32, vertices []float32, indices []uint32) error
	Draw(vao, ibo uint32, mode DrawMode, count int32)
	DeleteBuffer(id uint32)
	DeleteVertexArray(id uint32)
}

// Resource is a vertex-array, vertex-buffer and index-buffer triple. Either
// all handles are non-zero and the index count positive, or all are zero.
// A Resource exclusively owns its handles and must not be copied after Upload.
type Resource struct {
	backend    Backend
	vao        uint32
	vbo        uint32
	ibo        uint32
	indexCount int32
	mode       DrawMode
}

// Upload copies vertices and indices to the GPU. vertices must follow the
// [Stride] layout and every index must reference a vertex. Buffers
// previously held by r are released first. On error r is left cleared.
func (r *Resource) Upload(b Backend, vertices []float32, indices []uint32) error {
	r.Release()
	if b == nil {
		return errors.New("nil mesh backend")
	} else if len(vertices) == 0 || len(indices) == 0 {
		return errors.New("empty mesh")
	} else if len(vertices)%Stride != 0 {
		return fmt.Errorf("vertex data length %d not a multiple of stride %d", len(vertices), Stride)
	} else if len(indices) > 1<<31-1 {
		return errors.New("too many indices")
	}
	nverts := uint32(len(vertices) / Stride)
	for i, idx := range indices {
		if idx >= nverts {
			return fmt.Errorf("index %d at position %d out of range for %d vertices", idx, i, nverts)
		}
	}

	vao := b.GenVertexArray()
	ibo := b.GenBuffer()
	vbo := b.GenBuffer()
	if vao == 0 || ibo == 0 || vbo == 0 {
		free(b, vao, vbo, ibo)
		return ErrAllocation
	}
	err := b.Upload(vao, vbo, ibo, vertices, indices)
	if err != nil {
		free(b, vao, vbo, ibo)
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	r.backend = b
	r.vao, r.vbo, r.ibo = vao, vbo, ibo
	r.indexCount = int32(len(indices))
	return nil
}

// Render issues an indexed draw of the whole mesh. It is a no-op on a
// cleared resource.
func (r *Resource) Render() {
	if !r.Valid() {
		return
	}
	r.backend.Draw(r.vao, r.ibo, r.mode, r.indexCount)
}

// Release deletes the GPU handles and clears r. Safe to call any number of times.
func (r *Resource) Release() {
	if r.backend != nil {
		free(r.backend, r.vao, r.vbo, r.ibo)
	}
	mode := r.mode
	*r = Resource{mode: mode}
}

// SetDrawMode sets the primitive type used by Render.
func (r *Resource) SetDrawMode(mode DrawMode) { r.mode = mode }

func (r *Resource) DrawMode() DrawMode { return r.mode }

// Valid reports whether r holds uploaded buffers.
func (r *Resource) Valid() bool {
	return r.vao != 0 && r.vbo != 0 && r.ibo != 0 && r.indexCount > 0
}

// Handles returns the vertex-array, vertex-buffer and index-buffer handles.
func (r *Resource) Handles() (vao, vbo, ibo uint32) { return r.vao, r.vbo, r.ibo }

func (r *Resource) IndexCount() int { return int(r.indexCount) }

func free(b Backend, vao, vbo, ibo uint32) {
	if ibo != 0 {
		b.DeleteBuffer(ibo)
	}
	if vbo != 0 {
		b.DeleteBuffer(vbo)
	}
	if vao != 0 {
		b.DeleteVertexArray(vao)
	}
}

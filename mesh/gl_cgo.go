//go:build !tinygo && cgo

package mesh

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/soypat/glgl/v4.1-core/glgl"
)

const sizeofFloat32 = 4

// GL is the OpenGL [Backend]. Its methods must be called from the goroutine
// owning the current GL context.
type GL struct{}

func (GL) GenVertexArray() (vao uint32) {
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (GL) GenBuffer() (buf uint32) {
	gl.GenBuffers(1, &buf)
	return buf
}

func (GL) Upload(vao, vbo, ibo uint32, vertices []float32, indices []uint32) error {
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ibo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 4*len(indices), gl.Ptr(indices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, sizeofFloat32*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)

	const stride = Stride * sizeofFloat32
	gl.VertexAttribPointer(0, PositionSize, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, TexCoordSize, gl.FLOAT, false, stride, gl.PtrOffset(TexCoordOffset*sizeofFloat32))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, NormalSize, gl.FLOAT, false, stride, gl.PtrOffset(NormalOffset*sizeofFloat32))
	gl.EnableVertexAttribArray(2)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	// The element buffer binding is VAO state, unbind only after the VAO.
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	return glErrOrNil("uploading mesh")
}

func (GL) Draw(vao, ibo uint32, mode DrawMode, count int32) {
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ibo)
	gl.DrawElements(glMode(mode), count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
}

func (GL) DeleteBuffer(id uint32)      { gl.DeleteBuffers(1, &id) }
func (GL) DeleteVertexArray(id uint32) { gl.DeleteVertexArrays(1, &id) }

func glMode(m DrawMode) uint32 {
	switch m {
	case Lines:
		return gl.LINES
	default:
		return gl.TRIANGLES
	}
}

func glErrOrNil(msg string) error {
	err := glgl.Err()
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

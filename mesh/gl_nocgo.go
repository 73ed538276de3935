//go:build tinygo || !cgo

package mesh

import "errors"

var errNoCGO = errors.New("OpenGL mesh backend requires CGo and is not supported on TinyGo")

// GL is the OpenGL [Backend]. Without cgo it allocates nothing, so every
// upload fails with [ErrAllocation].
type GL struct{}

func (GL) GenVertexArray() uint32 { return 0 }
func (GL) GenBuffer() uint32      { return 0 }

func (GL) Upload(vao, vbo, ibo uint32, vertices []float32, indices []uint32) error {
	return errNoCGO
}

func (GL) Draw(vao, ibo uint32, mode DrawMode, count int32) {}
func (GL) DeleteBuffer(id uint32)                           {}
func (GL) DeleteVertexArray(id uint32)                      {}

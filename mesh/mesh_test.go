package mesh

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend hands out increasing handles and tracks which are alive.
type fakeBackend struct {
	next      uint32
	failAfter int // Number of successful generations before returning 0, -1 never fails.
	uploadErr error
	live      map[uint32]string
	draws     []int32
	vertices  []float32
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{failAfter: -1, live: make(map[uint32]string)}
}

func (f *fakeBackend) gen(kind string) uint32 {
	if f.failAfter == 0 {
		return 0
	} else if f.failAfter > 0 {
		f.failAfter--
	}
	f.next++
	f.live[f.next] = kind
	return f.next
}

func (f *fakeBackend) GenVertexArray() uint32 { return f.gen("vao") }
func (f *fakeBackend) GenBuffer() uint32      { return f.gen("buf") }

func (f *fakeBackend) Upload(vao, vbo, ibo uint32, vertices []float32, indices []uint32) error {
	f.vertices = append(f.vertices[:0], vertices...)
	return f.uploadErr
}

func (f *fakeBackend) Draw(vao, ibo uint32, mode DrawMode, count int32) {
	f.draws = append(f.draws, count)
}

func (f *fakeBackend) DeleteBuffer(id uint32) {
	if f.live[id] != "buf" {
		panic("deleting unknown buffer")
	}
	delete(f.live, id)
}

func (f *fakeBackend) DeleteVertexArray(id uint32) {
	if f.live[id] != "vao" {
		panic("deleting unknown vertex array")
	}
	delete(f.live, id)
}

func triangle() ([]float32, []uint32) {
	return []float32{
		0, 0, 0, 0, 0, 0, 0, 1,
		1, 0, 0, 1, 0, 0, 0, 1,
		0, 1, 0, 0, 1, 0, 0, 1,
	}, []uint32{0, 1, 2}
}

func TestUploadReleaseIdempotent(t *testing.T) {
	b := newFakeBackend()
	var r Resource
	v, idx := triangle()
	require.NoError(t, r.Upload(b, v, idx))
	assert.True(t, r.Valid())
	assert.Len(t, b.live, 3)

	r.Release()
	r.Release()
	vao, vbo, ibo := r.Handles()
	assert.Zero(t, vao)
	assert.Zero(t, vbo)
	assert.Zero(t, ibo)
	assert.Zero(t, r.IndexCount())
	assert.False(t, r.Valid())
	assert.Empty(t, b.live, "all handles freed")

	var never Resource
	never.Release()
	never.Render()
}

func TestRenderIsReadOnly(t *testing.T) {
	b := newFakeBackend()
	var r Resource
	v, idx := triangle()
	require.NoError(t, r.Upload(b, v, idx))
	vao, vbo, ibo := r.Handles()
	r.Render()
	r.Render()
	assert.Equal(t, []int32{3, 3}, b.draws)
	gvao, gvbo, gibo := r.Handles()
	assert.Equal(t, [3]uint32{vao, vbo, ibo}, [3]uint32{gvao, gvbo, gibo})
	assert.Equal(t, 3, r.IndexCount())

	r.Release()
	r.Render()
	assert.Len(t, b.draws, 2, "render after release is a no-op")
}

func TestUploadCopiesAndReplaces(t *testing.T) {
	b := newFakeBackend()
	var r Resource
	v, idx := triangle()
	require.NoError(t, r.Upload(b, v, idx))
	v[0] = 42
	assert.Equal(t, float32(0), b.vertices[0], "backend must receive its own copy")

	// Re-upload frees the previous handles.
	require.NoError(t, r.Upload(b, v, idx))
	assert.Len(t, b.live, 3)
	r.Release()
	assert.Empty(t, b.live)
}

func TestUploadAllocationFailure(t *testing.T) {
	for fail := 0; fail < 3; fail++ {
		b := newFakeBackend()
		b.failAfter = fail
		var r Resource
		v, idx := triangle()
		err := r.Upload(b, v, idx)
		assert.ErrorIs(t, err, ErrAllocation)
		assert.False(t, r.Valid())
		vao, vbo, ibo := r.Handles()
		assert.Equal(t, [3]uint32{}, [3]uint32{vao, vbo, ibo})
		assert.Empty(t, b.live, "partially allocated handles must be freed")
	}

	b := newFakeBackend()
	errGL := errors.New("GL_OUT_OF_MEMORY")
	b.uploadErr = errGL
	var r Resource
	v, idx := triangle()
	err := r.Upload(b, v, idx)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.ErrorIs(t, err, errGL)
	assert.Empty(t, b.live)
}

func TestUploadValidation(t *testing.T) {
	b := newFakeBackend()
	var r Resource
	v, _ := triangle()
	assert.Error(t, r.Upload(b, nil, []uint32{0}))
	assert.Error(t, r.Upload(b, v, nil))
	assert.Error(t, r.Upload(b, v[:7], []uint32{0}))
	assert.Error(t, r.Upload(b, v, []uint32{0, 1, 3}))
	assert.Error(t, r.Upload(nil, v, []uint32{0}))
	assert.Empty(t, b.live)
}

func TestDrawMode(t *testing.T) {
	var r Resource
	assert.Equal(t, Triangles, r.DrawMode())
	r.SetDrawMode(Lines)
	b := newFakeBackend()
	v, idx := triangle()
	require.NoError(t, r.Upload(b, v, idx[:2]))
	r.Release()
	assert.Equal(t, Lines, r.DrawMode(), "release keeps draw mode")
}

func TestUnitBeam(t *testing.T) {
	v, idx := UnitBeam()
	assert.Len(t, v, 24*Stride)
	assert.Len(t, idx, 36)
	for i := 0; i < len(v); i += Stride {
		z := v[i+2]
		assert.True(t, z == 0 || z == -1)
		n := v[i+NormalOffset : i+Stride]
		assert.InDelta(t, 1, math32.Sqrt(n[0]*n[0]+n[1]*n[1]+n[2]*n[2]), 1e-6)
	}
	var r Resource
	require.NoError(t, r.Upload(newFakeBackend(), v, idx))
}

func TestUnitSphere(t *testing.T) {
	const stacks, sectors = 40, 40
	v, idx, err := UnitSphere(stacks, sectors)
	require.NoError(t, err)
	assert.Len(t, v, (stacks+1)*(sectors+1)*Stride)
	assert.Len(t, idx, 6*sectors*(stacks-1))
	for i := 0; i < len(v); i += Stride {
		r := math32.Sqrt(v[i]*v[i] + v[i+1]*v[i+1] + v[i+2]*v[i+2])
		assert.InDelta(t, 1, r, 1e-5)
	}
	_, _, err = UnitSphere(1, 40)
	assert.Error(t, err)
}

func TestCalcAverageNormals(t *testing.T) {
	// Two triangles folded along the X axis: one in the XY plane, one in XZ.
	v := []float32{
		0, 0, 0, 0, 0, 0, 0, 0,
		1, 0, 0, 0, 0, 0, 0, 0,
		0, 1, 0, 0, 0, 0, 0, 0,
		0, 0, -1, 0, 0, 0, 0, 0,
	}
	idx := []uint32{0, 1, 2, 0, 1, 3}
	require.NoError(t, CalcAverageNormals(idx, v))
	n := func(i int) [3]float32 {
		o := i*Stride + NormalOffset
		return [3]float32{v[o], v[o+1], v[o+2]}
	}
	s := 1 / math32.Sqrt(2)
	want := [3]float32{0, s, s}
	for _, i := range []int{0, 1} {
		for k := range want {
			assert.InDelta(t, want[k], n(i)[k], 1e-6)
		}
	}
	assert.Equal(t, [3]float32{0, 0, 1}, n(2))
	assert.Equal(t, [3]float32{0, 1, 0}, n(3))

	assert.Error(t, CalcAverageNormals([]uint32{0, 1}, v))
	assert.Error(t, CalcAverageNormals([]uint32{0, 1, 9}, v))
}

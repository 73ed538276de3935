package truss

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

func TestParseExample(t *testing.T) {
	tr, err := Parse(strings.NewReader("v 1 2 3\nv 4 5 6\nl 0 1\n"))
	require.NoError(t, err)
	assert.Equal(t, []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}}, tr.Nodes)
	assert.Equal(t, []Beam{{0, 1}}, tr.Beams)
}

func TestParseSkipsCommentsAndBlanks(t *testing.T) {
	const src = `# a two-bar truss

v 0 0 0
   # indented comment
v 1 0 0
	v 0.5 1 -2.5e-1
vt 0 0
l 0 1
l 1 2

`
	tr, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, tr.Nodes, 3)
	assert.Equal(t, mgl32.Vec3{0.5, 1, -0.25}, tr.Nodes[2])
	assert.Equal(t, []Beam{{0, 1}, {1, 2}}, tr.Beams)

	tr, err = Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tr.Nodes)
	assert.Empty(t, tr.Beams)
}

func TestParseErrors(t *testing.T) {
	var tests = []struct {
		src  string
		line int
	}{
		{src: "v 1 2", line: 1},
		{src: "v 1 2 3 4", line: 1},
		{src: "v 1 two 3", line: 1},
		{src: "v 0 0 0\n\nl 0", line: 3},
		{src: "v 0 0 0\nl 0 1", line: 2},
		{src: "v 0 0 0\nl -1 0", line: 2},
		{src: "v 0 0 0\nl 0 x", line: 2},
		{src: "l 0 1\nv 0 0 0\nv 1 1 1", line: 1},
	}
	for _, test := range tests {
		_, err := Parse(strings.NewReader(test.src))
		var perr *ParseError
		require.True(t, errors.As(err, &perr), "%q: got %v", test.src, err)
		assert.Equal(t, test.line, perr.Line, test.src)
		assert.Contains(t, perr.Error(), "line "+strconv.Itoa(test.line))
	}
	_, err := Parse(strings.NewReader("v 0 0 0\nl 0 1"))
	assert.ErrorIs(t, err, errBeamIndex)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "bridge.txt")
	require.NoError(t, os.WriteFile(name, []byte("v 0 0 0\nv 0 2 0\nl 0 1\n"), 0o644))
	tr, err := Load(name)
	require.NoError(t, err)
	assert.Len(t, tr.Beams, 1)

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(name, []byte("v 0 0\n"), 0o644))
	_, err = Load(name)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), name)
}

func TestBoundsAndBuffers(t *testing.T) {
	tr := &Truss{
		Nodes: []mgl32.Vec3{{-1, 0, 2}, {3, -4, 0}, {0, 1, 1}},
		Beams: []Beam{{0, 1}, {1, 2}},
	}
	bb := tr.Bounds()
	assert.Equal(t, float32(-1), bb.Min.X)
	assert.Equal(t, float32(-4), bb.Min.Y)
	assert.Equal(t, float32(0), bb.Min.Z)
	assert.Equal(t, float32(3), bb.Max.X)
	assert.Equal(t, float32(1), bb.Max.Y)
	assert.Equal(t, float32(2), bb.Max.Z)
	assert.Equal(t, mgl32.Vec3{1, -1.5, 1}, tr.Center())

	v := tr.Vertices()
	assert.Len(t, v, 8*3)
	assert.Equal(t, []float32{3, -4, 0}, v[8:11])
	assert.Equal(t, []uint32{0, 1, 1, 2}, tr.LineIndices())

	var empty Truss
	assert.Equal(t, mgl32.Vec3{}, empty.Center())
	assert.Empty(t, empty.LineIndices())
}

func TestNodeTransform(t *testing.T) {
	m := NodeTransform(mgl32.Vec3{1, 2, 3}, 0.25)
	got := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	assert.True(t, got.ApproxEqualThreshold(mgl32.Vec3{1.25, 2, 3}, tol), "%v", got)
}

func TestBeamTransform(t *testing.T) {
	var tests = []struct {
		a, b mgl32.Vec3
	}{
		{a: mgl32.Vec3{0, 0, 0}, b: mgl32.Vec3{0, 0, -4}},
		{a: mgl32.Vec3{1, 2, 3}, b: mgl32.Vec3{4, 6, 3}},
		// Parallel to the default up direction.
		{a: mgl32.Vec3{0, 0, 0}, b: mgl32.Vec3{0, 3, 0}},
		{a: mgl32.Vec3{2, 5, 0}, b: mgl32.Vec3{2, -1, 0}},
	}
	const thick, tol = 0.15, 1e-4
	for _, test := range tests {
		m, ok := BeamTransform(test.a, test.b, thick)
		require.True(t, ok)
		start := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
		end := m.Mul4x1(mgl32.Vec4{0, 0, -1, 1}).Vec3()
		assert.True(t, start.ApproxEqualThreshold(test.a, tol), "start %v want %v", start, test.a)
		assert.True(t, end.ApproxEqualThreshold(test.b, tol), "end %v want %v", end, test.b)
		// Cross-section is scaled to the beam thickness.
		side := m.Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()
		assert.InDelta(t, thick, side.Len(), tol)
	}

	_, ok := BeamTransform(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1.0005}, thick)
	assert.False(t, ok)

	tr := &Truss{Nodes: []mgl32.Vec3{{0, 0, 0}, {0, 0, 0}, {1, 0, 0}}, Beams: []Beam{{0, 1}, {1, 2}}}
	assert.Len(t, tr.BeamTransforms(thick), 1, "degenerate beam skipped")
	assert.Len(t, tr.NodeTransforms(0.25), 3)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "truss.txt")
	require.NoError(t, os.WriteFile(name, []byte("v 0 0 0\n"), 0o644))
	w, err := Watch(name)
	require.NoError(t, err)
	defer w.Close()

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("v 1 2"), 0o644))
	require.NoError(t, os.WriteFile(name, []byte("v 0 0 0\nv 1 0 0\nl 0 1\n"), 0o644))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case u := <-w.Updates():
			// A reparse may race the writer and see a partial file.
			if u.Err == nil && len(u.Truss.Beams) == 1 {
				require.NoError(t, w.Close())
				require.NoError(t, w.Close())
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatchErrors(t *testing.T) {
	_, err := Watch("")
	assert.Error(t, err)
	_, err = Watch(filepath.Join(t.TempDir(), "nodir", "truss.txt"))
	assert.Error(t, err)
}

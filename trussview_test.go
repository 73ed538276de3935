package trussview

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/trussview/camera"
	"github.com/soypat/trussview/pick"
	"github.com/soypat/trussview/truss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-4

func bar(t *testing.T) *truss.Truss {
	t.Helper()
	tr, err := truss.Parse(strings.NewReader("v -1 0 0\nv 0 0 0\nv 1 0 0\nl 0 1\nl 1 2\n"))
	require.NoError(t, err)
	return tr
}

func TestNewSceneDefaults(t *testing.T) {
	s, err := NewScene(bar(t), Config{})
	require.NoError(t, err)
	assert.Equal(t, pick.Viewport{Width: 1366, Height: 768}, s.Viewport())
	assert.Equal(t, camera.FreeFly, s.Rig().Mode())
	assert.Equal(t, mgl32.Vec3{0, 0, 10}, s.Eye())

	lights := s.Lights()
	assert.Equal(t, 1, lights.NumPoints())
	require.Equal(t, 1, lights.NumSpots())
	flash := lights.SpotLight(0)
	assert.True(t, flash.Position.ApproxEqualThreshold(mgl32.Vec3{0, -0.3, 10}, tol), "%v", flash.Position)
	assert.True(t, flash.Direction().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, tol), "%v", flash.Direction())
	assert.InDelta(t, 17.5, flash.Edge(), tol)

	assert.Len(t, s.NodeTransforms(), 3)
	assert.Len(t, s.BeamTransforms(), 2)
	assert.Empty(t, s.Selected())
}

func TestNewSceneErrors(t *testing.T) {
	_, err := NewScene(nil, Config{})
	assert.Error(t, err)
	for _, cfg := range []Config{
		{NodeRadius: -1},
		{FieldOfView: 180},
		{Near: 10, Far: 1},
		{Width: 100, Height: -1},
		{Camera: camera.Config{WorldUp: mgl32.Vec3{0, 1, 0}, MoveSpeed: -1}},
	} {
		_, err = NewScene(bar(t), cfg)
		assert.Error(t, err, "%+v", cfg)
	}
}

func TestClickTogglesCenterNode(t *testing.T) {
	s, err := NewScene(bar(t), Config{})
	require.NoError(t, err)
	vp := s.Viewport()
	cx, cy := float32(vp.Width)/2, float32(vp.Height)/2

	hits, err := s.Click(cx, cy)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, hits)
	assert.Equal(t, pick.Selected, s.State(1))
	assert.Equal(t, SelectedColour, s.NodeColour(1))
	assert.Equal(t, UnselectedColour, s.NodeColour(0))
	assert.Equal(t, []int{1}, s.Selected())

	hits, err = s.Click(cx, cy)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, hits)
	assert.Equal(t, pick.Unselected, s.State(1))

	// Indices outside the truss are never selected.
	for _, i := range []int{-1, 3, 100} {
		assert.Equal(t, pick.Unselected, s.State(i))
		assert.Equal(t, UnselectedColour, s.NodeColour(i))
	}

	// Top left corner misses everything.
	hits, err = s.Click(0, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestOrbitFramesTruss(t *testing.T) {
	tr, err := truss.Parse(strings.NewReader("v 4 1 0\nv 6 1 0\nv 5 1 0\n"))
	require.NoError(t, err)
	s, err := NewScene(tr, Config{Mode: camera.Orbit})
	require.NoError(t, err)
	require.NoError(t, s.Step(camera.Input{}, 1.0/60))
	center := mgl32.Vec3{5, 1, 0}
	cam := s.Rig().Controller
	assert.InDelta(t, cam.Distance(), s.Eye().Sub(center).Len(), tol)
	front := center.Sub(s.Eye()).Normalize()
	assert.True(t, cam.Front().ApproxEqualThreshold(front, tol))

	// The orbit target is always under the screen center.
	vp := s.Viewport()
	hits, err := s.Click(float32(vp.Width)/2, float32(vp.Height)/2)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, hits)

	// Flashlight follows the camera.
	flash := s.Lights().SpotLight(0)
	assert.True(t, flash.Direction().ApproxEqualThreshold(cam.Front(), tol))
}

func TestSetTrussKeepsSelection(t *testing.T) {
	s, err := NewScene(bar(t), Config{})
	require.NoError(t, err)
	vp := s.Viewport()
	_, err = s.Click(float32(vp.Width)/2, float32(vp.Height)/2)
	require.NoError(t, err)

	grown, err := truss.Parse(strings.NewReader("v -1 0 0\nv 0 0 0\nv 1 0 0\nv 0 4 0\nl 1 3\n"))
	require.NoError(t, err)
	require.NoError(t, s.SetTruss(grown))
	assert.Equal(t, []int{1}, s.Selected())
	assert.Equal(t, grown, s.Truss())
	assert.Equal(t, mgl32.Vec3{0, 2, 0}, s.Rig().Target)

	shrunk, err := truss.Parse(strings.NewReader("v 5 5 5\n"))
	require.NoError(t, err)
	require.NoError(t, s.SetTruss(shrunk))
	assert.Empty(t, s.Selected())
	assert.Error(t, s.SetTruss(nil))
}

func TestResizeProjection(t *testing.T) {
	s, err := NewScene(bar(t), Config{Width: 800, Height: 600})
	require.NoError(t, err)
	s.Resize(0, 0)
	assert.Equal(t, pick.Viewport{Width: 800, Height: 600}, s.Viewport())
	s.Resize(1000, 500)
	assert.Equal(t, pick.Viewport{Width: 1000, Height: 500}, s.Viewport())
	want := mgl32.Perspective(mgl32.DegToRad(45), 2, 0.1, 100)
	assert.True(t, s.Projection().ApproxEqualThreshold(want, 1e-6))
}

func TestFlashFollowsDegenerateCamera(t *testing.T) {
	// Camera looks along its world up axis.
	cfg := Config{Camera: camera.Config{WorldUp: mgl32.Vec3{1, 0, 0}, MoveSpeed: 1, TurnSpeed: 1}}
	s, err := NewScene(bar(t), cfg)
	require.NoError(t, err)
	flash := s.Lights().SpotLight(0)
	front := s.Rig().Controller.Front()
	assert.True(t, flash.Direction().ApproxEqualThreshold(front, tol), "%v", flash.Direction())

	for _, in := range []camera.Input{
		{},
		{Keys: camera.Keys{Forward: true}, DX: 15, DY: -40},
		{DX: -300, DY: 300},
	} {
		require.NoError(t, s.Step(in, 1.0/60))
		front = s.Rig().Controller.Front()
		assert.True(t, flash.Direction().ApproxEqualThreshold(front, tol), "%v != %v", flash.Direction(), front)
	}
	s.Rig().Toggle()
	require.NoError(t, s.Step(camera.Input{DX: 5}, 1.0/60))
	assert.True(t, flash.Direction().ApproxEqualThreshold(s.Rig().Controller.Front(), tol))
}

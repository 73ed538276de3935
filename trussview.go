// Package trussview holds the per-frame CPU state of an interactive truss
// viewer: the camera rig, light set, node selection and projection.
// Rendering is done by package glview, which drives a [Scene].
package trussview

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/trussview/camera"
	"github.com/soypat/trussview/light"
	"github.com/soypat/trussview/pick"
	"github.com/soypat/trussview/truss"
)

const (
	defaultNodeRadius    = 0.25
	defaultBeamThickness = 0.15
	defaultFOV           = 45
	defaultNear          = 0.1
	defaultFar           = 100
	defaultWidth         = 1366
	defaultHeight        = 768
	// flashDrop lowers the flashlight under the eye so its hotspot is visible.
	flashDrop = 0.3
)

var (
	// UnselectedColour is the colour of an unselected node.
	UnselectedColour = mgl32.Vec3{1, 1, 1}
	// SelectedColour is the colour of a selected node.
	SelectedColour = mgl32.Vec3{1, 0, 0}
	// BeamColour is the colour of beams and the wireframe overlay.
	BeamColour = mgl32.Vec3{0.6, 0.6, 0.65}
)

// Config configures a [Scene]. Zero values select defaults.
type Config struct {
	// NodeRadius is the radius of node spheres, drawn and picked. Default 0.25.
	NodeRadius float32
	// BeamThickness is the side of the square beam cross-section. Default 0.15.
	BeamThickness float32
	// FieldOfView is the vertical field of view in degrees. Default 45.
	FieldOfView float32
	// Near and Far clip planes. Default 0.1 and 100.
	Near, Far float32
	// Width and Height of the initial viewport in pixels. Default 1366x768.
	Width, Height int
	// Camera is the initial camera configuration. If WorldUp is zero
	// [DefaultCamera] is used. A zero OrbitDistance is derived from the truss size.
	Camera camera.Config
	// Mode is the initial camera mode.
	Mode camera.Mode
	// Policy selects which nodes a click toggles when several overlap.
	Policy pick.Policy
}

// DefaultCamera returns a camera at (0,0,10) looking down -Z.
func DefaultCamera() camera.Config {
	return camera.Config{
		Position:  mgl32.Vec3{0, 0, 10},
		WorldUp:   mgl32.Vec3{0, 1, 0},
		Yaw:       -90,
		Pitch:     0,
		MoveSpeed: 5,
		TurnSpeed: 0.5,
	}
}

// Scene is the viewer state mutated once per frame on the render thread.
type Scene struct {
	truss    *truss.Truss
	states   []pick.State
	rig      *camera.Rig
	lights   light.Set
	flash    int
	picker   pick.Picker
	viewport pick.Viewport
	fov      float32
	near     float32
	far      float32
	radius   float32
	thick    float32
}

// NewScene returns a scene displaying t with every node unselected.
func NewScene(t *truss.Truss, cfg Config) (*Scene, error) {
	if t == nil {
		return nil, errors.New("nil truss")
	}
	defaultf(&cfg.NodeRadius, defaultNodeRadius)
	defaultf(&cfg.BeamThickness, defaultBeamThickness)
	defaultf(&cfg.FieldOfView, defaultFOV)
	defaultf(&cfg.Near, defaultNear)
	defaultf(&cfg.Far, defaultFar)
	if cfg.Width == 0 && cfg.Height == 0 {
		cfg.Width, cfg.Height = defaultWidth, defaultHeight
	}
	switch {
	case cfg.NodeRadius < 0 || cfg.BeamThickness < 0:
		return nil, errors.New("negative node radius or beam thickness")
	case cfg.FieldOfView >= 180 || cfg.FieldOfView < 0:
		return nil, fmt.Errorf("field of view %v out of range (0,180)", cfg.FieldOfView)
	case cfg.Near < 0 || cfg.Far <= cfg.Near:
		return nil, fmt.Errorf("bad clip planes near=%v far=%v", cfg.Near, cfg.Far)
	case cfg.Width <= 0 || cfg.Height <= 0:
		return nil, fmt.Errorf("bad viewport %dx%d", cfg.Width, cfg.Height)
	}
	camCfg := cfg.Camera
	if camCfg.WorldUp == (mgl32.Vec3{}) {
		camCfg = DefaultCamera()
	}
	if camCfg.OrbitDistance == 0 {
		camCfg.OrbitDistance = orbitDistance(t)
	}
	cam, err := camera.New(camCfg)
	if err != nil {
		return nil, err
	}
	rig, err := camera.NewRig(cam, t.Center(), cfg.Mode)
	if err != nil {
		return nil, err
	}
	s := &Scene{
		truss:    t,
		states:   make([]pick.State, len(t.Nodes)),
		rig:      rig,
		picker:   pick.Picker{Radius: cfg.NodeRadius, Policy: cfg.Policy},
		viewport: pick.Viewport{Width: cfg.Width, Height: cfg.Height},
		fov:      cfg.FieldOfView,
		near:     cfg.Near,
		far:      cfg.Far,
		radius:   cfg.NodeRadius,
		thick:    cfg.BeamThickness,
	}
	s.flash, err = defaultLights(&s.lights)
	if err != nil {
		return nil, err
	}
	err = s.updateFlash()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func defaultLights(set *light.Set) (flash int, err error) {
	set.Sun, err = light.NewDirectional(light.Base{
		Colour:           mgl32.Vec3{1, 0.95, 0.85},
		AmbientIntensity: 0.05,
		DiffuseIntensity: 0.4,
	}, mgl32.Vec3{-0.2, -1, -0.3})
	if err != nil {
		return -1, err
	}
	lamp, err := light.NewPoint(light.Base{
		Colour:           mgl32.Vec3{1, 0.9, 0.7},
		AmbientIntensity: 0.05,
		DiffuseIntensity: 0.3,
	}, mgl32.Vec3{3, 2, 1}, light.Attenuation{Constant: 0.1, Linear: 0.09, Quadratic: 0.032})
	if err != nil {
		return -1, err
	}
	_, err = set.AddPoint(lamp)
	if err != nil {
		return -1, err
	}
	flashlight, err := light.NewSpot(light.Base{
		Colour:           mgl32.Vec3{1, 0.95, 0.85},
		AmbientIntensity: 0,
		DiffuseIntensity: 0.9,
	}, mgl32.Vec3{}, light.DefaultSpotDirection, light.DefaultAttenuation, 17.5)
	if err != nil {
		return -1, err
	}
	return set.AddSpot(flashlight)
}

// orbitDistance frames the whole truss from the orbit target.
func orbitDistance(t *truss.Truss) float32 {
	return math32.Max(1.5*t.Bounds().Diagonal(), 10)
}

// Step advances the camera by one frame and slaves the flashlight to it.
// On error the flashlight keeps its previous pose.
func (s *Scene) Step(in camera.Input, elapsed float32) error {
	s.rig.Step(in, elapsed)
	return s.updateFlash()
}

func (s *Scene) updateFlash() error {
	cam := s.rig.Controller
	pos := cam.Position().Sub(mgl32.Vec3{0, flashDrop, 0})
	err := s.lights.SpotLight(s.flash).SetFlash(pos, cam.Front())
	if err != nil {
		return fmt.Errorf("flashlight: %w", err)
	}
	return nil
}

// Click toggles the nodes under the pointer at pixel (px, py) and returns
// their indices.
func (s *Scene) Click(px, py float32) ([]int, error) {
	return s.picker.Pick(px, py, s.viewport, s.Projection(), s.rig.Controller, s.truss.Nodes, s.states)
}

// Resize sets the viewport size. Zero sizes, as reported for minimized
// windows, are ignored.
func (s *Scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.viewport = pick.Viewport{Width: width, Height: height}
}

// SetTruss replaces the displayed truss. Selection of nodes that still exist
// is kept and the orbit target is moved to the new truss' center.
func (s *Scene) SetTruss(t *truss.Truss) error {
	if t == nil {
		return errors.New("nil truss")
	}
	states := make([]pick.State, len(t.Nodes))
	copy(states, s.states)
	s.truss = t
	s.states = states
	s.rig.Target = t.Center()
	return nil
}

// Projection returns the perspective projection for the current viewport.
func (s *Scene) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(s.fov), s.viewport.Aspect(), s.near, s.far)
}

// View returns the camera view matrix.
func (s *Scene) View() mgl32.Mat4 { return s.rig.Controller.ViewMatrix() }

// Eye returns the camera position.
func (s *Scene) Eye() mgl32.Vec3 { return s.rig.Controller.Position() }

// Rig returns the camera rig for mode changes.
func (s *Scene) Rig() *camera.Rig { return s.rig }

// Lights returns the scene's light set.
func (s *Scene) Lights() *light.Set { return &s.lights }

// Truss returns the displayed truss.
func (s *Scene) Truss() *truss.Truss { return s.truss }

// Viewport returns the current viewport size.
func (s *Scene) Viewport() pick.Viewport { return s.viewport }

// State returns the selection state of node i. Indices outside the truss
// report [pick.Unselected].
func (s *Scene) State(i int) pick.State {
	if i < 0 || i >= len(s.states) {
		return pick.Unselected
	}
	return s.states[i]
}

// Selected returns the indices of selected nodes.
func (s *Scene) Selected() []int {
	var sel []int
	for i, st := range s.states {
		if st == pick.Selected {
			sel = append(sel, i)
		}
	}
	return sel
}

// NodeColour returns the draw colour of node i.
func (s *Scene) NodeColour(i int) mgl32.Vec3 {
	if s.State(i) == pick.Selected {
		return SelectedColour
	}
	return UnselectedColour
}

// NodeTransforms returns the model matrix of every node sphere.
func (s *Scene) NodeTransforms() []mgl32.Mat4 { return s.truss.NodeTransforms(s.radius) }

// BeamTransforms returns the model matrix of every drawable beam.
func (s *Scene) BeamTransforms() []mgl32.Mat4 { return s.truss.BeamTransforms(s.thick) }

func defaultf(v *float32, def float32) {
	if *v == 0 {
		*v = def
	}
}

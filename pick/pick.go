// Package pick maps pointer coordinates to world-space rays and tests them
// against sphere-approximated scene nodes.
package pick

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrSingular      = errors.New("singular transform")
	errEmptyViewport = errors.New("empty viewport")
)

// State is the display state of a pickable node.
type State uint8

const (
	Unselected State = iota
	Selected
)

// Toggle returns the other state.
func (s State) Toggle() State {
	if s == Selected {
		return Unselected
	}
	return Selected
}

func (s State) String() string {
	if s == Selected {
		return "selected"
	}
	return "unselected"
}

// Policy decides which candidates react when several spheres lie on the ray.
type Policy uint8

const (
	// ToggleAll toggles every candidate the ray passes through.
	ToggleAll Policy = iota
	// Nearest toggles only the candidate whose center projects closest to the ray origin.
	Nearest
)

// Viewport is the framebuffer size in pixels.
type Viewport struct {
	Width, Height int
}

// Aspect returns width over height.
func (vp Viewport) Aspect() float32 {
	if vp.Height == 0 {
		return 1
	}
	return float32(vp.Width) / float32(vp.Height)
}

// Eye is the observer a ray is cast from.
type Eye interface {
	Position() mgl32.Vec3
	ViewMatrix() mgl32.Mat4
}

// Unproject converts a pointer position in pixels (origin top-left) into a
// normalized world-space ray direction. The ray starts at the eye position.
func Unproject(px, py float32, vp Viewport, projection, view mgl32.Mat4) (mgl32.Vec3, error) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return mgl32.Vec3{}, errEmptyViewport
	}
	invProj, err := inverse(projection)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("projection: %w", err)
	}
	invView, err := inverse(view)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("view: %w", err)
	}
	x := 2*px/float32(vp.Width) - 1
	y := 1 - 2*py/float32(vp.Height)
	clip := mgl32.Vec4{x, y, -1, 1}

	eye := invProj.Mul4x1(clip)
	// Only direction matters, discard eye-space depth.
	eye = mgl32.Vec4{eye[0], eye[1], -1, 0}

	dir := invView.Mul4x1(eye).Vec3()
	l := dir.Len()
	if l == 0 || math32.IsNaN(l) {
		return mgl32.Vec3{}, ErrSingular
	}
	return dir.Mul(1 / l), nil
}

// ClosestApproach returns the distance along the ray to the point nearest
// center, and the squared perpendicular distance from center to the ray.
// dir must be normalized.
func ClosestApproach(origin, dir, center mgl32.Vec3) (tca, d2 float32) {
	l := center.Sub(origin)
	tca = l.Dot(dir)
	d2 = l.Dot(l) - tca*tca
	return tca, d2
}

// IntersectsSphere reports whether the ray hits the sphere. Spheres whose
// center lies behind the origin are never hit, including when the origin is
// inside them.
func IntersectsSphere(origin, dir, center mgl32.Vec3, radius float32) bool {
	tca, d2 := ClosestApproach(origin, dir, center)
	return tca >= 0 && d2 <= radius*radius
}

// Picker toggles node states under the pointer.
type Picker struct {
	// Radius of every candidate sphere.
	Radius float32
	Policy Policy
}

// Pick casts a single ray through the pointer and toggles the state of the
// candidates it hits, as selected by the Policy. It returns the indices of
// toggled candidates in ascending order.
func (p Picker) Pick(px, py float32, vp Viewport, projection mgl32.Mat4, eye Eye, centers []mgl32.Vec3, states []State) ([]int, error) {
	if len(centers) != len(states) {
		return nil, fmt.Errorf("candidate positions (%d) and states (%d) length mismatch", len(centers), len(states))
	} else if p.Radius < 0 {
		return nil, errors.New("negative pick radius")
	}
	if len(centers) == 0 {
		return nil, nil
	}
	dir, err := Unproject(px, py, vp, projection, eye.ViewMatrix())
	if err != nil {
		return nil, err
	}
	hits := p.Hits(eye.Position(), dir, centers)
	for _, i := range hits {
		states[i] = states[i].Toggle()
	}
	return hits, nil
}

// Hits returns the indices of centers hit by the ray under the Policy
// without modifying any state.
func (p Picker) Hits(origin, dir mgl32.Vec3, centers []mgl32.Vec3) []int {
	r2 := p.Radius * p.Radius
	var hits []int
	nearest, nearestT := -1, math32.Inf(1)
	for i, c := range centers {
		tca, d2 := ClosestApproach(origin, dir, c)
		if tca < 0 || d2 > r2 {
			continue
		}
		switch p.Policy {
		case Nearest:
			if tca < nearestT {
				nearest, nearestT = i, tca
			}
		default:
			hits = append(hits, i)
		}
	}
	if p.Policy == Nearest && nearest >= 0 {
		hits = []int{nearest}
	}
	return hits
}

func inverse(m mgl32.Mat4) (mgl32.Mat4, error) {
	if m.Det() == 0 {
		return mgl32.Mat4{}, ErrSingular
	}
	inv := m.Inv()
	if inv == (mgl32.Mat4{}) {
		// mgl32 treats near-zero determinants as singular.
		return inv, ErrSingular
	}
	return inv, nil
}

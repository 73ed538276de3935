package truss

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// minBeamLength is the length under which a beam is not drawn.
const minBeamLength = 1e-3

var (
	beamUp    = mgl32.Vec3{0, 1, 0}
	beamUpAlt = mgl32.Vec3{0, 0, 1}
)

// NodeTransform returns the model matrix placing a unit sphere at p with the
// given radius.
func NodeTransform(p mgl32.Vec3, radius float32) mgl32.Mat4 {
	return mgl32.Translate3D(p[0], p[1], p[2]).Mul4(mgl32.Scale3D(radius, radius, radius))
}

// BeamTransform returns the model matrix stretching a unit beam spanning
// z in [-1,0] from a to b with the given square cross-section side.
// ok is false for beams shorter than 1e-3, which should not be drawn.
func BeamTransform(a, b mgl32.Vec3, thickness float32) (model mgl32.Mat4, ok bool) {
	d := b.Sub(a)
	length := d.Len()
	if length < minBeamLength || math32.IsNaN(length) {
		return mgl32.Mat4{}, false
	}
	up := beamUp
	if math32.Abs(d.Dot(up)) > 0.999*length {
		up = beamUpAlt
	}
	// Inverse view maps the eye frame, looking down -Z, onto a looking at b.
	orient := mgl32.LookAtV(a, b, up).Inv()
	return orient.Mul4(mgl32.Scale3D(thickness, thickness, length)), true
}

// NodeTransforms returns the model matrix of every node.
func (t *Truss) NodeTransforms(radius float32) []mgl32.Mat4 {
	m := make([]mgl32.Mat4, len(t.Nodes))
	for i, n := range t.Nodes {
		m[i] = NodeTransform(n, radius)
	}
	return m
}

// BeamTransforms returns the model matrices of every drawable beam.
// Degenerate beams are skipped.
func (t *Truss) BeamTransforms(thickness float32) []mgl32.Mat4 {
	m := make([]mgl32.Mat4, 0, len(t.Beams))
	for _, b := range t.Beams {
		model, ok := BeamTransform(t.Nodes[b[0]], t.Nodes[b[1]], thickness)
		if ok {
			m = append(m, model)
		}
	}
	return m
}

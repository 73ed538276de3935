package camera

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Mode selects which update path a [Rig] runs each frame.
type Mode uint8

const (
	FreeFly Mode = iota
	Orbit
)

func (m Mode) String() string {
	switch m {
	case FreeFly:
		return "free-fly"
	case Orbit:
		return "orbit"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode parses the output of [Mode.String].
func ParseMode(s string) (Mode, error) {
	switch s {
	case "free-fly", "freefly", "fly":
		return FreeFly, nil
	case "orbit":
		return Orbit, nil
	}
	return 0, fmt.Errorf("unknown camera mode %q", s)
}

// Input is the per-frame input a [Rig] consumes.
type Input struct {
	Keys Keys
	// DX and DY are pointer deltas in pixels accumulated since last frame.
	DX, DY float32
	// Zoom is a scroll delta, positive zooms in.
	Zoom float32
}

// Rig drives a [Controller] as an explicit two-state machine. Mode changes
// requested with SetMode take effect at the start of the next Step so that
// a single frame never runs both update paths.
type Rig struct {
	Controller *Controller
	// Target is the orbit focus point.
	Target  mgl32.Vec3
	mode    Mode
	pending Mode
}

// NewRig returns a Rig in the given mode. In Orbit mode the controller's pose
// is resolved immediately.
func NewRig(c *Controller, target mgl32.Vec3, mode Mode) (*Rig, error) {
	if c == nil {
		return nil, fmt.Errorf("nil camera controller")
	} else if mode > Orbit {
		return nil, fmt.Errorf("invalid camera mode %v", mode)
	}
	r := &Rig{Controller: c, Target: target, mode: mode, pending: mode}
	if mode == Orbit {
		c.ResolveOrbit(target)
	}
	return r, nil
}

// Mode returns the mode the last Step ran in.
func (r *Rig) Mode() Mode { return r.mode }

// SetMode requests a mode for the next Step.
func (r *Rig) SetMode(m Mode) {
	if m <= Orbit {
		r.pending = m
	}
}

// Toggle requests the opposite of the pending mode.
func (r *Rig) Toggle() {
	if r.pending == Orbit {
		r.pending = FreeFly
	} else {
		r.pending = Orbit
	}
}

// Step runs exactly one update path. Orbit mode resolves the camera position
// every call regardless of input since position is derived, not integrated.
func (r *Rig) Step(in Input, elapsed float32) {
	c := r.Controller
	if r.pending != r.mode {
		switch r.pending {
		case FreeFly:
			c.SyncFromPose()
		case Orbit:
			c.SyncOrbitFromPose(r.Target)
		}
		r.mode = r.pending
	}
	switch r.mode {
	case FreeFly:
		c.FreeFly(in.Keys, elapsed)
		c.Look(in.DX, in.DY)
	case Orbit:
		c.OrbitDelta(in.DX, in.DY, in.Zoom)
		c.ResolveOrbit(r.Target)
	}
}

package camera

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	maxPitch       = 89
	minElevation   = -10
	maxElevation   = 89
	minDistance    = 1
	defaultAlpha   = 0.1
	defaultOrbitR  = 10
	degToRadFactor = math32.Pi / 180
)

// Config holds the initial pose and tuning of a [Controller].
// Zero values for Smoothing and OrbitDistance select defaults of 0.1 and 10.
type Config struct {
	Position mgl32.Vec3
	WorldUp  mgl32.Vec3
	// Yaw and Pitch are in degrees. A yaw of -90 looks down -Z.
	Yaw, Pitch float32
	// MoveSpeed is in world units per second.
	MoveSpeed float32
	// TurnSpeed scales pointer deltas into degrees.
	TurnSpeed float32
	// Smoothing is the one-pole filter factor applied to free-fly pointer deltas.
	Smoothing float32
	// OrbitDistance is the initial orbit radius around the target.
	OrbitDistance float32
	// OrbitAngleX and OrbitAngleY are the initial azimuth and elevation in degrees.
	OrbitAngleX, OrbitAngleY float32
}

// Keys is the directional key state consumed by [Controller.FreeFly].
type Keys struct {
	Forward, Back, Left, Right bool
}

// Controller holds the observer pose. The basis vectors are always
// rederived from angles, never incrementally rotated.
type Controller struct {
	position mgl32.Vec3
	front    mgl32.Vec3
	up       mgl32.Vec3
	right    mgl32.Vec3
	worldUp  mgl32.Vec3

	yaw, pitch float32

	angleX, angleY float32
	distance       float32

	moveSpeed, turnSpeed float32

	alpha    float32
	smoothed mgl32.Vec2
}

// New returns a Controller looking along the direction given by cfg's yaw and pitch.
func New(cfg Config) (*Controller, error) {
	if cfg.WorldUp.LenSqr() == 0 {
		return nil, errors.New("zero world up vector")
	} else if cfg.MoveSpeed < 0 || cfg.TurnSpeed < 0 {
		return nil, errors.New("negative camera speed")
	} else if cfg.Smoothing < 0 || cfg.Smoothing > 1 {
		return nil, errors.New("smoothing factor must be in [0,1], 0 selects the default")
	} else if cfg.OrbitDistance < 0 {
		return nil, errors.New("negative orbit distance")
	}
	if cfg.Smoothing == 0 {
		cfg.Smoothing = defaultAlpha
	}
	if cfg.OrbitDistance == 0 {
		cfg.OrbitDistance = defaultOrbitR
	}
	c := &Controller{
		position:  cfg.Position,
		worldUp:   cfg.WorldUp.Normalize(),
		yaw:       cfg.Yaw,
		pitch:     clamp(cfg.Pitch, -maxPitch, maxPitch),
		angleX:    cfg.OrbitAngleX,
		angleY:    clamp(cfg.OrbitAngleY, minElevation, maxElevation),
		distance:  math32.Max(cfg.OrbitDistance, minDistance),
		moveSpeed: cfg.MoveSpeed,
		turnSpeed: cfg.TurnSpeed,
		alpha:     cfg.Smoothing,
	}
	c.updateBasis()
	return c, nil
}

// FreeFly translates the camera along its front and right vectors for
// every pressed key. Orientation is left untouched.
func (c *Controller) FreeFly(keys Keys, elapsed float32) {
	velocity := c.moveSpeed * elapsed
	if keys.Forward {
		c.position = c.position.Add(c.front.Mul(velocity))
	}
	if keys.Back {
		c.position = c.position.Sub(c.front.Mul(velocity))
	}
	if keys.Left {
		c.position = c.position.Sub(c.right.Mul(velocity))
	}
	if keys.Right {
		c.position = c.position.Add(c.right.Mul(velocity))
	}
}

// Look applies a free-fly pointer delta in screen pixels. The delta is
// low-pass filtered before it reaches yaw and pitch.
func (c *Controller) Look(dx, dy float32) {
	raw := mgl32.Vec2{dx, -dy} // Screen Y grows downward.
	c.smoothed = c.smoothed.Add(raw.Sub(c.smoothed).Mul(c.alpha))

	c.yaw += c.smoothed[0] * c.turnSpeed
	c.pitch = clamp(c.pitch+c.smoothed[1]*c.turnSpeed, -maxPitch, maxPitch)
	c.updateBasis()
}

// OrbitDelta rotates and zooms the orbit. Dragging right rotates the view left.
// Position is not updated until [Controller.ResolveOrbit] is called.
func (c *Controller) OrbitDelta(dx, dy, zoom float32) {
	c.angleX -= dx * c.turnSpeed
	c.angleY = clamp(c.angleY-dy*c.turnSpeed, minElevation, maxElevation)
	c.distance = math32.Max(c.distance-zoom, minDistance)
}

// ResolveOrbit places the camera on the orbit sphere around target and
// points it at target. Position is a pure function of target, distance and
// orbit angles, so this must run every frame orbit mode is active.
func (c *Controller) ResolveOrbit(target mgl32.Vec3) mgl32.Vec3 {
	theta := c.angleX * degToRadFactor
	phi := c.angleY * degToRadFactor
	offset := mgl32.Vec3{
		c.distance * math32.Cos(phi) * math32.Sin(theta),
		c.distance * math32.Sin(phi),
		c.distance * math32.Cos(phi) * math32.Cos(theta),
	}
	c.position = target.Add(offset)
	c.front = offset.Mul(-1).Normalize()
	c.deriveRightUp()
	return c.position
}

// ViewMatrix returns the look-at transform for the current pose.
func (c *Controller) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.position.Add(c.front), c.up)
}

// SyncFromPose sets yaw and pitch so that free-fly orientation matches the
// current front vector. The smoothing filter is reset.
func (c *Controller) SyncFromPose() {
	c.pitch = clamp(math32.Asin(clamp(c.front[1], -1, 1))/degToRadFactor, -maxPitch, maxPitch)
	c.yaw = math32.Atan2(c.front[2], c.front[0]) / degToRadFactor
	c.smoothed = mgl32.Vec2{}
	c.updateBasis()
}

// SyncOrbitFromPose sets orbit angles and distance so that resolving around
// target reproduces the current position as closely as the clamps allow.
func (c *Controller) SyncOrbitFromPose(target mgl32.Vec3) {
	offset := c.position.Sub(target)
	d := offset.Len()
	if d < minDistance {
		c.distance = minDistance
		return // Keep previous angles, direction is ill-defined.
	}
	c.distance = d
	c.angleY = clamp(math32.Asin(clamp(offset[1]/d, -1, 1))/degToRadFactor, minElevation, maxElevation)
	c.angleX = math32.Atan2(offset[0], offset[2]) / degToRadFactor
}

func (c *Controller) Position() mgl32.Vec3 { return c.position }
func (c *Controller) Front() mgl32.Vec3    { return c.front }
func (c *Controller) Up() mgl32.Vec3       { return c.up }
func (c *Controller) Right() mgl32.Vec3    { return c.right }
func (c *Controller) Yaw() float32         { return c.yaw }
func (c *Controller) Pitch() float32       { return c.pitch }
func (c *Controller) Distance() float32    { return c.distance }

// OrbitAngles returns azimuth and elevation in degrees.
func (c *Controller) OrbitAngles() (azimuth, elevation float32) { return c.angleX, c.angleY }

func (c *Controller) updateBasis() {
	yaw := c.yaw * degToRadFactor
	pitch := c.pitch * degToRadFactor
	c.front = mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
	c.deriveRightUp()
}

func (c *Controller) deriveRightUp() {
	right := c.front.Cross(c.worldUp)
	if right.LenSqr() < 1e-12 {
		// Front parallel to world up. Keep the previous right vector,
		// projected off front.
		right = c.right
		if right.LenSqr() < 1e-12 {
			right = leastAlignedAxis(c.front)
		}
		right = right.Sub(c.front.Mul(right.Dot(c.front)))
		if right.LenSqr() < 1e-12 {
			right = leastAlignedAxis(c.front)
			right = right.Sub(c.front.Mul(right.Dot(c.front)))
		}
	}
	c.right = right.Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

// leastAlignedAxis returns the world axis with the smallest component along v.
// Its projection off a unit v has length at least sqrt(2/3).
func leastAlignedAxis(v mgl32.Vec3) mgl32.Vec3 {
	i := 0
	for j := 1; j < 3; j++ {
		if math32.Abs(v[j]) < math32.Abs(v[i]) {
			i = j
		}
	}
	var axis mgl32.Vec3
	axis[i] = 1
	return axis
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(v, hi))
}

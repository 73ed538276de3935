// Package light holds directional, point and spot light parameters and
// writes them into a shading stage's uniform slots.
package light

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Kind discriminates the light variants sharing the [Light] struct.
type Kind uint8

const (
	Directional Kind = iota
	Point
	Spot
)

func (k Kind) String() string {
	switch k {
	case Directional:
		return "directional"
	case Point:
		return "point"
	case Spot:
		return "spot"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Attenuation holds the coefficients of 1/(constant + linear*d + quadratic*d²).
// The falloff itself is evaluated by the shading stage.
type Attenuation struct {
	Constant, Linear, Quadratic float32
}

// Default parameters.
var (
	DefaultColour           = mgl32.Vec3{1, 1, 1}
	DefaultAttenuation      = Attenuation{Constant: 1, Linear: 0.09, Quadratic: 0.032}
	DefaultSpotDirection    = mgl32.Vec3{0, -1, 0}
	defaultAmbientIntensity = float32(0.1)
	defaultDiffuseIntensity = float32(0.5)
)

// DefaultEdge is the default spot cone half-angle in degrees.
const DefaultEdge = 20

// Light is a directional, point or spot light. Fields not used by Kind are ignored.
// Direction and edge are kept behind setters so that the direction stays
// normalized and the edge cosine stays in sync with its angle.
type Light struct {
	kind Kind

	Colour           mgl32.Vec3
	AmbientIntensity float32
	DiffuseIntensity float32

	// Position is used by Point and Spot.
	Position    mgl32.Vec3
	Attenuation Attenuation

	direction mgl32.Vec3
	edge      float32
	cosEdge   float32
}

// Base is the parameter set common to every light kind.
type Base struct {
	Colour           mgl32.Vec3
	AmbientIntensity float32
	DiffuseIntensity float32
}

// DefaultBase returns a white light with low ambient and half diffuse intensity.
func DefaultBase() Base {
	return Base{
		Colour:           DefaultColour,
		AmbientIntensity: defaultAmbientIntensity,
		DiffuseIntensity: defaultDiffuseIntensity,
	}
}

// NewDirectional returns a light with no position shining along direction.
func NewDirectional(base Base, direction mgl32.Vec3) (Light, error) {
	l := Light{kind: Directional}
	l.setBase(base)
	if err := l.SetDirection(direction); err != nil {
		return Light{}, err
	}
	return l, nil
}

// NewPoint returns a light radiating from position.
func NewPoint(base Base, position mgl32.Vec3, att Attenuation) (Light, error) {
	if err := att.validate(); err != nil {
		return Light{}, err
	}
	l := Light{kind: Point, Position: position, Attenuation: att}
	l.setBase(base)
	return l, nil
}

// NewSpot returns a cone light at position pointing along direction with a
// half-angle of edge degrees.
func NewSpot(base Base, position, direction mgl32.Vec3, att Attenuation, edge float32) (Light, error) {
	l, err := NewPoint(base, position, att)
	if err != nil {
		return Light{}, err
	}
	l.kind = Spot
	if err = l.SetDirection(direction); err != nil {
		return Light{}, err
	}
	if err = l.SetEdge(edge); err != nil {
		return Light{}, err
	}
	return l, nil
}

// DefaultSpot returns a downward white spot light at the origin.
func DefaultSpot() Light {
	l, _ := NewSpot(DefaultBase(), mgl32.Vec3{}, DefaultSpotDirection, DefaultAttenuation, DefaultEdge)
	return l
}

func (l *Light) Kind() Kind { return l.kind }

// Direction returns the normalized direction of a Directional or Spot light.
func (l *Light) Direction() mgl32.Vec3 { return l.direction }

// Edge returns the spot cone half-angle in degrees.
func (l *Light) Edge() float32 { return l.edge }

// CosEdge returns the cosine of the spot cone half-angle.
func (l *Light) CosEdge() float32 { return l.cosEdge }

// SetDirection normalizes and stores dir. A zero vector is rejected and the
// previous direction kept.
func (l *Light) SetDirection(dir mgl32.Vec3) error {
	n, err := normalize(dir)
	if err != nil {
		return err
	}
	l.direction = n
	return nil
}

// SetEdge sets the spot cone half-angle in degrees and recomputes its cosine.
func (l *Light) SetEdge(degrees float32) error {
	if degrees < 0 || degrees > 180 || math32.IsNaN(degrees) {
		return fmt.Errorf("spot edge %v out of range [0,180] degrees", degrees)
	}
	l.edge = degrees
	l.cosEdge = math32.Cos(mgl32.DegToRad(degrees))
	return nil
}

// SetFlash moves a spot light and points it along direction in one call.
// It is used to slave a flashlight to the camera pose every frame.
func (l *Light) SetFlash(position, direction mgl32.Vec3) error {
	if l.kind != Spot {
		return fmt.Errorf("SetFlash on %v light", l.kind)
	}
	if err := l.SetDirection(direction); err != nil {
		return err
	}
	l.Position = position
	return nil
}

func (l *Light) setBase(b Base) {
	l.Colour = b.Colour
	l.AmbientIntensity = b.AmbientIntensity
	l.DiffuseIntensity = b.DiffuseIntensity
}

func (a Attenuation) validate() error {
	if a.Constant < 0 || a.Linear < 0 || a.Quadratic < 0 {
		return errors.New("negative attenuation coefficient")
	} else if a.Constant == 0 && a.Linear == 0 && a.Quadratic == 0 {
		return errors.New("all-zero attenuation coefficients")
	}
	return nil
}

func normalize(v mgl32.Vec3) (mgl32.Vec3, error) {
	l := v.Len()
	if l == 0 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return mgl32.Vec3{}, fmt.Errorf("cannot normalize direction %v", v)
	}
	return v.Mul(1 / l), nil
}

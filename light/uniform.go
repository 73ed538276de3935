package light

import (
	"errors"
	"fmt"
)

const (
	MaxPointLights = 3
	MaxSpotLights  = 3
)

var ErrTooManyLights = errors.New("light set full")

// UniformWriter writes values into a bound shader program's uniform slots.
// A location of -1 is silently ignored, as in OpenGL.
type UniformWriter interface {
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform3f(location int32, v0, v1, v2 float32)
}

// Locator resolves a uniform name to a location, -1 if absent.
type Locator func(name string) (int32, error)

// Slots are the uniform locations a single light is serialized into.
// Slots unused by a light's kind are ignored.
type Slots struct {
	Colour           int32
	AmbientIntensity int32
	DiffuseIntensity int32
	Direction        int32
	Position         int32
	Constant         int32
	Linear           int32
	Quadratic        int32
	Edge             int32
}

// Serialize writes the light's parameters into slots. The write order is
// fixed per kind: base parameters first, then positional, then spot.
func (l *Light) Serialize(w UniformWriter, s Slots) error {
	if l.kind > Spot {
		return fmt.Errorf("serialize: invalid light %v", l.kind)
	}
	w.Uniform3f(s.Colour, l.Colour[0], l.Colour[1], l.Colour[2])
	w.Uniform1f(s.AmbientIntensity, l.AmbientIntensity)
	w.Uniform1f(s.DiffuseIntensity, l.DiffuseIntensity)
	if l.kind == Directional {
		w.Uniform3f(s.Direction, l.direction[0], l.direction[1], l.direction[2])
		return nil
	}
	w.Uniform3f(s.Position, l.Position[0], l.Position[1], l.Position[2])
	w.Uniform1f(s.Constant, l.Attenuation.Constant)
	w.Uniform1f(s.Linear, l.Attenuation.Linear)
	w.Uniform1f(s.Quadratic, l.Attenuation.Quadratic)
	if l.kind == Spot {
		w.Uniform3f(s.Direction, l.direction[0], l.direction[1], l.direction[2])
		w.Uniform1f(s.Edge, l.cosEdge)
	}
	return nil
}

// Set is a fixed-capacity collection of lights: one directional sun plus
// bounded point and spot arrays. It never grows past its capacity.
type Set struct {
	Sun        Light
	points     [MaxPointLights]Light
	spots      [MaxSpotLights]Light
	pointCount int
	spotCount  int
}

// AddPoint appends a point light and returns its index.
func (s *Set) AddPoint(l Light) (int, error) {
	if l.kind != Point {
		return -1, fmt.Errorf("AddPoint: got %v light", l.kind)
	} else if s.pointCount == MaxPointLights {
		return -1, ErrTooManyLights
	}
	s.points[s.pointCount] = l
	s.pointCount++
	return s.pointCount - 1, nil
}

// AddSpot appends a spot light and returns its index.
func (s *Set) AddSpot(l Light) (int, error) {
	if l.kind != Spot {
		return -1, fmt.Errorf("AddSpot: got %v light", l.kind)
	} else if s.spotCount == MaxSpotLights {
		return -1, ErrTooManyLights
	}
	s.spots[s.spotCount] = l
	s.spotCount++
	return s.spotCount - 1, nil
}

func (s *Set) NumPoints() int { return s.pointCount }
func (s *Set) NumSpots() int  { return s.spotCount }

// PointLight returns a pointer to the i'th point light for in-place mutation.
func (s *Set) PointLight(i int) *Light {
	if i < 0 || i >= s.pointCount {
		return nil
	}
	return &s.points[i]
}

// SpotLight returns a pointer to the i'th spot light for in-place mutation.
func (s *Set) SpotLight(i int) *Light {
	if i < 0 || i >= s.spotCount {
		return nil
	}
	return &s.spots[i]
}

// SetSlots holds every uniform location a [Set] serializes into.
type SetSlots struct {
	Sun        Slots
	PointCount int32
	SpotCount  int32
	Points     [MaxPointLights]Slots
	Spots      [MaxSpotLights]Slots
}

// Serialize writes the light counts followed by the sun and every active light.
func (s *Set) Serialize(w UniformWriter, slots SetSlots) error {
	if s.Sun.kind != Directional {
		return fmt.Errorf("sun must be directional, got %v", s.Sun.kind)
	}
	w.Uniform1i(slots.PointCount, int32(s.pointCount))
	w.Uniform1i(slots.SpotCount, int32(s.spotCount))
	err := s.Sun.Serialize(w, slots.Sun)
	if err != nil {
		return err
	}
	for i := 0; i < s.pointCount; i++ {
		err = s.points[i].Serialize(w, slots.Points[i])
		if err != nil {
			return fmt.Errorf("point light %d: %w", i, err)
		}
	}
	for i := 0; i < s.spotCount; i++ {
		err = s.spots[i].Serialize(w, slots.Spots[i])
		if err != nil {
			return fmt.Errorf("spot light %d: %w", i, err)
		}
	}
	return nil
}

// ResolveSlots looks up every light uniform under the naming scheme
//
//	directionalLight.base.colour      directionalLight.direction
//	pointLights[i].base.colour        pointLights[i].position  pointLights[i].constant ...
//	spotLights[i].base.base.colour    spotLights[i].base.position  spotLights[i].direction  spotLights[i].edge
//	pointLightCount                   spotLightCount
func ResolveSlots(loc Locator) (slots SetSlots, err error) {
	r := resolver{loc: loc}
	slots.PointCount = r.get("pointLightCount")
	slots.SpotCount = r.get("spotLightCount")
	slots.Sun = r.base("directionalLight.base.")
	slots.Sun.Direction = r.get("directionalLight.direction")
	for i := range slots.Points {
		prefix := fmt.Sprintf("pointLights[%d].", i)
		slots.Points[i] = r.positional(prefix+"base.", prefix)
	}
	for i := range slots.Spots {
		prefix := fmt.Sprintf("spotLights[%d].", i)
		s := r.positional(prefix+"base.base.", prefix+"base.")
		s.Direction = r.get(prefix + "direction")
		s.Edge = r.get(prefix + "edge")
		slots.Spots[i] = s
	}
	return slots, r.err
}

type resolver struct {
	loc Locator
	err error
}

func (r *resolver) get(name string) int32 {
	if r.err != nil {
		return -1
	}
	l, err := r.loc(name)
	if err != nil {
		r.err = fmt.Errorf("resolving uniform %q: %w", name, err)
		return -1
	}
	return l
}

func (r *resolver) base(prefix string) Slots {
	return Slots{
		Colour:           r.get(prefix + "colour"),
		AmbientIntensity: r.get(prefix + "ambientIntensity"),
		DiffuseIntensity: r.get(prefix + "diffuseIntensity"),
		Direction:        -1,
		Position:         -1,
		Constant:         -1,
		Linear:           -1,
		Quadratic:        -1,
		Edge:             -1,
	}
}

func (r *resolver) positional(basePrefix, prefix string) Slots {
	s := r.base(basePrefix)
	s.Position = r.get(prefix + "position")
	s.Constant = r.get(prefix + "constant")
	s.Linear = r.get(prefix + "linear")
	s.Quadratic = r.get(prefix + "quadratic")
	return s
}

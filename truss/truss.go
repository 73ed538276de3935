// Package truss parses node-and-beam structure descriptions and computes the
// instance transforms used to draw them.
package truss

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/geometry/ms3"
)

// Beam connects two nodes by index.
type Beam [2]int

// Truss is a set of nodes and the beams joining them.
type Truss struct {
	Nodes []mgl32.Vec3
	Beams []Beam
}

// ParseError reports a malformed line in a truss description.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("truss line %d %q: %s", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errFieldCount = errors.New("wrong number of fields")
	errBeamIndex  = errors.New("beam references undeclared node")
)

// Parse reads a truss description. Lines starting with "v x y z" declare a
// node, "l i j" a beam between two previously declared nodes (0-based).
// Blank lines, lines starting with '#' and unknown directives are skipped.
func Parse(r io.Reader) (*Truss, error) {
	var t Truss
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)
		var err error
		switch fields[0] {
		case "v":
			err = t.parseNode(fields[1:])
		case "l":
			err = t.parseBeam(fields[1:])
		}
		if err != nil {
			return nil, &ParseError{Line: line, Text: text, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load parses the truss description in the named file.
func Load(filename string) (*Truss, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	t, err := Parse(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return t, nil
}

func (t *Truss) parseNode(fields []string) error {
	if len(fields) != 3 {
		return errFieldCount
	}
	var v mgl32.Vec3
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return err
		}
		v[i] = float32(x)
	}
	t.Nodes = append(t.Nodes, v)
	return nil
}

func (t *Truss) parseBeam(fields []string) error {
	if len(fields) != 2 {
		return errFieldCount
	}
	var b Beam
	for i, f := range fields {
		idx, err := strconv.Atoi(f)
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return fmt.Errorf("%w: %d (have %d nodes)", errBeamIndex, idx, len(t.Nodes))
		}
		b[i] = idx
	}
	t.Beams = append(t.Beams, b)
	return nil
}

// Bounds returns the axis-aligned box enclosing every node. An empty truss
// has a zero box at the origin.
func (t *Truss) Bounds() ms3.Box {
	if len(t.Nodes) == 0 {
		return ms3.Box{}
	}
	bb := ms3.Box{Min: toMS3(t.Nodes[0]), Max: toMS3(t.Nodes[0])}
	for _, n := range t.Nodes[1:] {
		v := toMS3(n)
		bb.Min = ms3.MinElem(bb.Min, v)
		bb.Max = ms3.MaxElem(bb.Max, v)
	}
	return bb
}

// Center returns the center of the node bounding box.
func (t *Truss) Center() mgl32.Vec3 {
	c := t.Bounds().Center()
	return mgl32.Vec3{c.X, c.Y, c.Z}
}

// Vertices returns the nodes as mesh vertices: position followed by zeroed
// texture coordinates and normals, 8 floats per node.
func (t *Truss) Vertices() []float32 {
	v := make([]float32, 0, 8*len(t.Nodes))
	for _, n := range t.Nodes {
		v = append(v, n[0], n[1], n[2], 0, 0, 0, 0, 0)
	}
	return v
}

// LineIndices returns beam endpoint indices suitable for a line-list draw.
func (t *Truss) LineIndices() []uint32 {
	idx := make([]uint32, 0, 2*len(t.Beams))
	for _, b := range t.Beams {
		idx = append(idx, uint32(b[0]), uint32(b[1]))
	}
	return idx
}

func toMS3(v mgl32.Vec3) ms3.Vec { return ms3.Vec{X: v[0], Y: v[1], Z: v[2]} }

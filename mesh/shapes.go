package mesh

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// UnitBeam returns a box of unit cross-section spanning z in [-1, 0],
// centered on the Z axis. Each face has its own vertices so normals are flat.
func UnitBeam() (vertices []float32, indices []uint32) {
	type face struct {
		corners [4][3]float32
		normal  [3]float32
	}
	const h = 0.5
	faces := [6]face{
		{[4][3]float32{{-h, -h, 0}, {h, -h, 0}, {h, h, 0}, {-h, h, 0}}, [3]float32{0, 0, 1}},
		{[4][3]float32{{-h, -h, -1}, {h, -h, -1}, {h, h, -1}, {-h, h, -1}}, [3]float32{0, 0, -1}},
		{[4][3]float32{{-h, -h, -1}, {-h, -h, 0}, {-h, h, 0}, {-h, h, -1}}, [3]float32{-1, 0, 0}},
		{[4][3]float32{{h, -h, 0}, {h, -h, -1}, {h, h, -1}, {h, h, 0}}, [3]float32{1, 0, 0}},
		{[4][3]float32{{-h, h, 0}, {h, h, 0}, {h, h, -1}, {-h, h, -1}}, [3]float32{0, 1, 0}},
		{[4][3]float32{{-h, -h, -1}, {h, -h, -1}, {h, -h, 0}, {-h, -h, 0}}, [3]float32{0, -1, 0}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	vertices = make([]float32, 0, len(faces)*4*Stride)
	indices = make([]uint32, 0, len(faces)*6)
	for i, f := range faces {
		for j, c := range f.corners {
			vertices = append(vertices, c[0], c[1], c[2], uvs[j][0], uvs[j][1], f.normal[0], f.normal[1], f.normal[2])
		}
		base := uint32(4 * i)
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return vertices, indices
}

// UnitSphere returns a UV sphere of radius 1 with stacks latitude bands and
// sectors longitude bands. Normals equal positions.
func UnitSphere(stacks, sectors int) (vertices []float32, indices []uint32, err error) {
	if stacks < 2 || sectors < 3 {
		return nil, nil, fmt.Errorf("sphere needs at least 2 stacks and 3 sectors, got %d and %d", stacks, sectors)
	}
	vertices = make([]float32, 0, (stacks+1)*(sectors+1)*Stride)
	for i := 0; i <= stacks; i++ {
		stackAngle := math32.Pi/2 - float32(i)*math32.Pi/float32(stacks)
		xy := math32.Cos(stackAngle)
		z := math32.Sin(stackAngle)
		for j := 0; j <= sectors; j++ {
			sectorAngle := float32(j) * 2 * math32.Pi / float32(sectors)
			x := xy * math32.Cos(sectorAngle)
			y := xy * math32.Sin(sectorAngle)
			u := float32(j) / float32(sectors)
			v := float32(i) / float32(stacks)
			vertices = append(vertices, x, y, z, u, v, x, y, z)
		}
	}
	// Pole stacks contribute a single triangle per sector.
	indices = make([]uint32, 0, 6*sectors*(stacks-1))
	for i := 0; i < stacks; i++ {
		k1 := uint32(i * (sectors + 1))
		k2 := k1 + uint32(sectors) + 1
		for j := 0; j < sectors; j++ {
			if i != 0 {
				indices = append(indices, k1, k2, k1+1)
			}
			if i != stacks-1 {
				indices = append(indices, k1+1, k2, k2+1)
			}
			k1++
			k2++
		}
	}
	return vertices, indices, nil
}

// CalcAverageNormals overwrites the normals of a triangle mesh with the
// normalized sum of the face normals of every triangle sharing each vertex.
// Existing normal values are accumulated into, callers zero them first for a
// pure average.
func CalcAverageNormals(indices []uint32, vertices []float32) error {
	if len(indices)%3 != 0 {
		return errors.New("index count not a multiple of 3")
	} else if len(vertices)%Stride != 0 {
		return errors.New("vertex data length not a multiple of stride")
	}
	nverts := uint32(len(vertices) / Stride)
	for i := 0; i < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if i0 >= nverts || i1 >= nverts || i2 >= nverts {
			return fmt.Errorf("triangle %d references vertex out of range", i/3)
		}
		p0 := vertices[i0*Stride:]
		p1 := vertices[i1*Stride:]
		p2 := vertices[i2*Stride:]
		ax, ay, az := p1[0]-p0[0], p1[1]-p0[1], p1[2]-p0[2]
		bx, by, bz := p2[0]-p0[0], p2[1]-p0[1], p2[2]-p0[2]
		nx, ny, nz := ay*bz-az*by, az*bx-ax*bz, ax*by-ay*bx
		l := math32.Sqrt(nx*nx + ny*ny + nz*nz)
		if l == 0 {
			continue // Degenerate triangle.
		}
		nx, ny, nz = nx/l, ny/l, nz/l
		for _, idx := range [3]uint32{i0, i1, i2} {
			n := vertices[idx*Stride+NormalOffset:]
			n[0] += nx
			n[1] += ny
			n[2] += nz
		}
	}
	for i := uint32(0); i < nverts; i++ {
		n := vertices[i*Stride+NormalOffset:]
		l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if l == 0 {
			continue
		}
		n[0], n[1], n[2] = n[0]/l, n[1]/l, n[2]/l
	}
	return nil
}

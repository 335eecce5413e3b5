package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// Epsilon below which a ray is considered parallel to a triangle's plane
const parallelEpsilon = 1e-6

// ErrIndexOutOfRange is wrapped by every IndexError
var ErrIndexOutOfRange = errors.New("geometry: face index out of range")

// IndexError describes a face corner referencing outside one of the scene arrays
type IndexError struct {
	Kind  string // "vertex", "normal" or "texture"
	Index int    // The offending 1-based index
	Len   int    // Length of the referenced array
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("geometry: %s index %d out of range [1, %d]", e.Kind, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// Corner holds the 0-based attribute indices of one triangle vertex.
// A negative index means the attribute is absent.
type Corner struct {
	Normal  int
	Texture int
}

// HasNormal reports whether the corner carries a normal index
func (c Corner) HasNormal() bool {
	return c.Normal >= 0
}

// HasTexture reports whether the corner carries a texture coordinate index
func (c Corner) HasTexture() bool {
	return c.Texture >= 0
}

// Triangle is a renderable primitive derived from one imported face
type Triangle struct {
	V0, V1, V2 core.Vec3 // World space positions
	Corners    [3]Corner // Attribute indices for shading-time interpolation
	Face       *Face     // Originating face, used for material lookup
	Bounds     core.AABB
	Centroid   core.Vec3
}

// TriangleSource carries the array lengths and positions needed to resolve
// the 1-based indices of imported faces.
type TriangleSource struct {
	Positions    []core.Vec3
	NumNormals   int
	NumTexCoords int
}

// NewTriangle builds the triangle formed by corners a, b and c of face.
// This is the only place where 1-based importer indices are converted.
func NewTriangle(face *Face, a, b, c int, src TriangleSource) (*Triangle, error) {
	t := &Triangle{Face: face}

	positions := [3]core.Vec3{}
	for i, cornerIndex := range [3]int{a, b, c} {
		fv := face.Vertices[cornerIndex]

		if fv.Vertex < 1 || fv.Vertex > len(src.Positions) {
			return nil, &IndexError{Kind: "vertex", Index: fv.Vertex, Len: len(src.Positions)}
		}
		positions[i] = src.Positions[fv.Vertex-1]

		corner := Corner{Normal: -1, Texture: -1}
		if fv.HasNormal() {
			if fv.Normal > src.NumNormals {
				return nil, &IndexError{Kind: "normal", Index: fv.Normal, Len: src.NumNormals}
			}
			corner.Normal = fv.Normal - 1
		}
		if fv.HasTexture() {
			if fv.Texture > src.NumTexCoords {
				return nil, &IndexError{Kind: "texture", Index: fv.Texture, Len: src.NumTexCoords}
			}
			corner.Texture = fv.Texture - 1
		}
		t.Corners[i] = corner
	}

	t.V0, t.V1, t.V2 = positions[0], positions[1], positions[2]

	t.Bounds = core.EmptyAABB()
	t.Bounds.Grow(t.V0)
	t.Bounds.Grow(t.V1)
	t.Bounds.Grow(t.V2)

	t.Centroid = t.V0.Add(t.V1).Add(t.V2).Multiply(1.0 / 3.0)

	return t, nil
}

// NewTriangleFromPoints creates a triangle without attribute indices
func NewTriangleFromPoints(v0, v1, v2 core.Vec3, face *Face) *Triangle {
	t := &Triangle{
		V0:      v0,
		V1:      v1,
		V2:      v2,
		Corners: [3]Corner{{-1, -1}, {-1, -1}, {-1, -1}},
		Face:    face,
	}
	t.Bounds = core.NewAABBFromPoints(v0, v1, v2)
	t.Centroid = v0.Add(v1).Add(v2).Multiply(1.0 / 3.0)
	return t
}

// HasVertexNormals reports whether all three corners carry a normal index
func (t *Triangle) HasVertexNormals() bool {
	return t.Corners[0].HasNormal() && t.Corners[1].HasNormal() && t.Corners[2].HasNormal()
}

// HasTexCoords reports whether all three corners carry a texture coordinate index
func (t *Triangle) HasTexCoords() bool {
	return t.Corners[0].HasTexture() && t.Corners[1].HasTexture() && t.Corners[2].HasTexture()
}

// GeometricNormal returns the normalized face normal cross(e1, e2)
func (t *Triangle) GeometricNormal() core.Vec3 {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	return edge1.Cross(edge2).Normalize()
}

// Intersect runs the Möller-Trumbore test against this triangle
func (t *Triangle) Intersect(origin, direction core.Vec3) (dist, u, v float64, ok bool) {
	return IntersectTriangle(origin, direction, t.V0, t.V1, t.V2)
}

// IntersectTriangle tests a ray against the triangle (v0, v1, v2) using the
// Möller-Trumbore algorithm. u is the barycentric weight of v1, v the weight
// of v2 and 1-u-v the weight of v0. Parallel rays and hits outside the
// triangle or behind the origin report ok=false.
func IntersectTriangle(origin, direction, v0, v1, v2 core.Vec3) (dist, u, v float64, ok bool) {
	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)

	h := direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in (or parallel to) the triangle's plane
	if a > -parallelEpsilon && a < parallelEpsilon {
		return 0, 0, 0, false
	}

	f := 1.0 / a
	s := origin.Subtract(v0)
	u = f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v = f * direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, 0, 0, false
	}

	dist = f * edge2.Dot(q)
	if dist <= parallelEpsilon {
		return 0, 0, 0, false
	}

	return dist, u, v, true
}

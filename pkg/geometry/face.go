package geometry

// FaceVertex is one corner of an imported face. Indices are 1-based as they
// come from the importer; zero means the attribute is absent.
type FaceVertex struct {
	Vertex  int
	Texture int
	Normal  int
}

// HasTexture reports whether the corner references a texture coordinate
func (fv FaceVertex) HasTexture() bool {
	return fv.Texture > 0
}

// HasNormal reports whether the corner references a vertex normal
func (fv FaceVertex) HasNormal() bool {
	return fv.Normal > 0
}

// Face is an imported polygon: an ordered list of corners plus the name of
// the material it was declared with.
type Face struct {
	Vertices []FaceVertex
	Material string
}

// NewFace creates a face from its corners and material name
func NewFace(material string, vertices ...FaceVertex) *Face {
	return &Face{Vertices: vertices, Material: material}
}

// TriangleCount returns the number of triangles a fan triangulation produces
func (f *Face) TriangleCount() int {
	if len(f.Vertices) < 3 {
		return 0
	}
	return len(f.Vertices) - 2
}

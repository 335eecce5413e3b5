package scene

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/material"
)

// Object is a named group of faces from an imported model
type Object struct {
	Name  string
	Faces []*geometry.Face
}

// Description is the parsed form of a model: shared attribute arrays,
// objects whose faces index into them, and the material library.
// Face indices are 1-based.
type Description struct {
	Positions []core.Vec3
	Normals   []core.Vec3
	TexCoords []core.Vec2
	Objects   []Object
	Materials map[string]*material.Material
}

// NewDescription creates an empty description ready to be filled by an importer
func NewDescription() *Description {
	return &Description{Materials: make(map[string]*material.Material)}
}

// FaceCount returns the number of faces across all objects
func (d *Description) FaceCount() int {
	count := 0
	for _, obj := range d.Objects {
		count += len(obj.Faces)
	}
	return count
}

// TriangleCount returns the number of triangles fan triangulation will produce
func (d *Description) TriangleCount() int {
	count := 0
	for _, obj := range d.Objects {
		for _, face := range obj.Faces {
			count += face.TriangleCount()
		}
	}
	return count
}

func (d *Description) triangleSource() geometry.TriangleSource {
	return geometry.TriangleSource{
		Positions:    d.Positions,
		NumNormals:   len(d.Normals),
		NumTexCoords: len(d.TexCoords),
	}
}

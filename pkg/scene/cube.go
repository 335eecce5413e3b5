package scene

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/material"
)

// CubeMaterialName is the material every face of the built-in cube uses
const CubeMaterialName = "cube"

// CubeColor is the diffuse color of the built-in cube
var CubeColor = core.NewVec3(0.8, 0.3, 0.2)

// NewCubeDescription returns a unit cube centered at the origin with six
// quad faces, per-face normals and texture coordinates. When texturePath is
// not empty the cube material samples it.
func NewCubeDescription(texturePath string) *Description {
	desc := NewDescription()

	desc.Positions = []core.Vec3{
		core.NewVec3(-0.5, -0.5, -0.5),
		core.NewVec3(0.5, -0.5, -0.5),
		core.NewVec3(0.5, 0.5, -0.5),
		core.NewVec3(-0.5, 0.5, -0.5),
		core.NewVec3(-0.5, -0.5, 0.5),
		core.NewVec3(0.5, -0.5, 0.5),
		core.NewVec3(0.5, 0.5, 0.5),
		core.NewVec3(-0.5, 0.5, 0.5),
	}
	desc.Normals = []core.Vec3{
		core.NewVec3(0, 0, 1),  // front
		core.NewVec3(0, 0, -1), // back
		core.NewVec3(1, 0, 0),  // right
		core.NewVec3(-1, 0, 0), // left
		core.NewVec3(0, 1, 0),  // top
		core.NewVec3(0, -1, 0), // bottom
	}
	desc.TexCoords = []core.Vec2{
		core.NewVec2(0, 0),
		core.NewVec2(1, 0),
		core.NewVec2(1, 1),
		core.NewVec2(0, 1),
	}

	// Corners are listed counter-clockwise seen from outside
	quads := [6][4]int{
		{5, 6, 7, 8},
		{2, 1, 4, 3},
		{6, 2, 3, 7},
		{1, 5, 8, 4},
		{8, 7, 3, 4},
		{1, 2, 6, 5},
	}

	cube := Object{Name: "cube"}
	for i, quad := range quads {
		vertices := make([]geometry.FaceVertex, 4)
		for corner, position := range quad {
			vertices[corner] = geometry.FaceVertex{
				Vertex:  position,
				Texture: corner + 1,
				Normal:  i + 1,
			}
		}
		cube.Faces = append(cube.Faces, geometry.NewFace(CubeMaterialName, vertices...))
	}
	desc.Objects = []Object{cube}

	mat := material.NewDiffuseMaterial(CubeMaterialName, CubeColor)
	mat.SetAmbient(CubeColor.Multiply(0.1))
	mat.SetSpecular(core.NewVec3(1, 1, 1))
	mat.SpecularExponent = 32
	mat.IlluminationModel = 2
	mat.DiffuseTexture = texturePath
	desc.Materials[CubeMaterialName] = mat

	return desc
}

// DefaultCubeLight is the white light used by the built-in cube scene
func DefaultCubeLight() lights.PointLight {
	return lights.NewWhiteLight(core.NewVec3(2, 2, 2))
}

// NewCubeScene builds the untextured cube lit from (2,2,2) and viewed by the default camera
func NewCubeScene() (*Scene, error) {
	return NewScene(
		NewCubeDescription(""),
		[]lights.PointLight{DefaultCubeLight()},
		geometry.DefaultCameraConfig(),
		nil,
	)
}

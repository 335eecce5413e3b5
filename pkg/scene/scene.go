package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/log"
	"github.com/df07/go-phong-raytracer/pkg/material"
)

var logger = log.New("scene")

// ErrNilDescription is returned when NewScene is called without a description
var ErrNilDescription = errors.New("scene: nil description")

// TextureLoader decodes the image at path into a texture
type TextureLoader func(path string) (*material.Texture, error)

// Scene is the immutable, render-ready form of a model: triangulated
// geometry, resolved materials and textures, lights and camera.
type Scene struct {
	Camera       *geometry.Camera
	CameraConfig geometry.CameraConfig
	Lights       []lights.PointLight

	Materials map[string]*material.Material
	Textures  map[string]*material.Texture // Keyed by material texture path
	Triangles []*geometry.Triangle

	Normals   []core.Vec3
	TexCoords []core.Vec2

	Stats Stats
}

// Stats summarizes what NewScene built
type Stats struct {
	Objects         int
	Faces           int
	SkippedFaces    int // Faces with fewer than three corners
	Triangles       int
	Materials       int
	Textures        int
	MissingTextures int
}

// NewScene triangulates every face of desc, loads the textures its materials
// reference and sets up the camera. A face index outside the description's
// arrays fails the build with an error wrapping geometry.ErrIndexOutOfRange.
// A texture the loader cannot provide is replaced by material.MissingTexture.
func NewScene(desc *Description, sceneLights []lights.PointLight, cameraConfig geometry.CameraConfig, loader TextureLoader) (*Scene, error) {
	if desc == nil {
		return nil, ErrNilDescription
	}

	s := &Scene{
		Camera:       geometry.NewCamera(cameraConfig),
		CameraConfig: cameraConfig,
		Lights:       sceneLights,
		Materials:    desc.Materials,
		Textures:     make(map[string]*material.Texture),
		Normals:      desc.Normals,
		TexCoords:    desc.TexCoords,
	}
	if s.Materials == nil {
		s.Materials = make(map[string]*material.Material)
	}

	if err := s.triangulate(desc); err != nil {
		return nil, err
	}
	s.loadTextures(loader)

	s.Stats.Objects = len(desc.Objects)
	s.Stats.Materials = len(s.Materials)
	s.Stats.Textures = len(s.Textures)

	logger.Infof("built scene: %d objects, %d faces, %d triangles, %d materials, %d textures",
		s.Stats.Objects, s.Stats.Faces, s.Stats.Triangles, s.Stats.Materials, s.Stats.Textures)

	return s, nil
}

// triangulate fans every face around its first corner: (0, i, i+1)
func (s *Scene) triangulate(desc *Description) error {
	src := desc.triangleSource()
	s.Triangles = make([]*geometry.Triangle, 0, desc.TriangleCount())

	for _, obj := range desc.Objects {
		for faceIndex, face := range obj.Faces {
			s.Stats.Faces++

			if len(face.Vertices) < 3 {
				s.Stats.SkippedFaces++
				logger.Debugf("object %q: skipping face %d with %d corners", obj.Name, faceIndex, len(face.Vertices))
				continue
			}

			for i := 1; i < len(face.Vertices)-1; i++ {
				tri, err := geometry.NewTriangle(face, 0, i, i+1, src)
				if err != nil {
					return fmt.Errorf("object %q face %d: %w", obj.Name, faceIndex, err)
				}
				s.Triangles = append(s.Triangles, tri)
			}
		}
	}

	s.Stats.Triangles = len(s.Triangles)
	return nil
}

// loadTextures loads every distinct diffuse texture once
func (s *Scene) loadTextures(loader TextureLoader) {
	for _, mat := range s.Materials {
		if !mat.HasTexture() {
			continue
		}
		if _, ok := s.Textures[mat.DiffuseTexture]; ok {
			continue
		}

		texture, err := loadTexture(loader, mat.DiffuseTexture)
		if err != nil {
			logger.Warningf("material %q: texture %s unavailable, using placeholder: %v", mat.Name, mat.DiffuseTexture, err)
			texture = material.MissingTexture()
			s.Stats.MissingTextures++
		}
		s.Textures[mat.DiffuseTexture] = texture
	}
}

func loadTexture(loader TextureLoader, path string) (*material.Texture, error) {
	if loader == nil {
		return nil, errors.New("no texture loader configured")
	}
	texture, err := loader(path)
	if err == nil && texture == nil {
		err = errors.New("loader returned no texture")
	}
	return texture, err
}

// PrimaryLight returns the first light of the scene. Only this light takes
// part in shadowing and shading.
func (s *Scene) PrimaryLight() (lights.PointLight, bool) {
	if len(s.Lights) == 0 {
		return lights.PointLight{}, false
	}
	return s.Lights[0], true
}

// MaterialFor returns the material the triangle's face was declared with,
// or nil when the face has none or names an unknown material.
func (s *Scene) MaterialFor(tri *geometry.Triangle) *material.Material {
	if tri.Face == nil {
		return nil
	}
	return s.Materials[tri.Face.Material]
}

// MaterialColor returns the surface color of tri at barycentric (u, v)
func (s *Scene) MaterialColor(tri *geometry.Triangle, u, v float64) core.Vec3 {
	return s.MaterialColorForFace(tri.Corners, u, v, s.MaterialFor(tri))
}

// MaterialColorForFace resolves a surface color. A textured material whose
// corners all carry texture coordinates is sampled at the interpolated UV;
// otherwise the diffuse color is used, and grey when there is none.
func (s *Scene) MaterialColorForFace(corners [3]geometry.Corner, u, v float64, mat *material.Material) core.Vec3 {
	if mat == nil {
		return material.DefaultColor
	}

	if mat.HasTexture() && corners[0].HasTexture() && corners[1].HasTexture() && corners[2].HasTexture() {
		if texture, ok := s.Textures[mat.DiffuseTexture]; ok {
			w := 1 - u - v
			t0 := s.TexCoords[corners[0].Texture]
			t1 := s.TexCoords[corners[1].Texture]
			t2 := s.TexCoords[corners[2].Texture]

			texU := t0.X*w + t1.X*u + t2.X*v
			texV := t0.Y*w + t1.Y*u + t2.Y*v
			return texture.GetPixel(texU, texV)
		}
	}

	return mat.BaseColor()
}

// NormalAt returns the shading normal of tri at barycentric (u, v): the
// interpolated vertex normals when every corner has one, else the face normal.
func (s *Scene) NormalAt(tri *geometry.Triangle, u, v float64) core.Vec3 {
	if !tri.HasVertexNormals() {
		return tri.GeometricNormal()
	}

	w := 1 - u - v
	n0 := s.Normals[tri.Corners[0].Normal]
	n1 := s.Normals[tri.Corners[1].Normal]
	n2 := s.Normals[tri.Corners[2].Normal]

	return n0.Multiply(w).Add(n1.Multiply(u)).Add(n2.Multiply(v)).Normalize()
}

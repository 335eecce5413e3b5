package material

import "github.com/df07/go-phong-raytracer/pkg/core"

// DefaultColor is used for faces without a material or without a diffuse color
var DefaultColor = core.NewVec3(0.5, 0.5, 0.5)

// Material holds the surface properties read from a material library.
// Every MTL statement is optional, so colors carry a presence flag.
type Material struct {
	Name string

	Ambient    core.Vec3 // Ka
	HasAmbient bool

	Diffuse    core.Vec3 // Kd
	HasDiffuse bool

	Specular    core.Vec3 // Ks
	HasSpecular bool

	SpecularExponent  float64 // Ns
	OpticalDensity    float64 // Ni
	Dissolve          float64 // d, or 1 - Tr
	IlluminationModel int     // illum

	DiffuseTexture string // map_Kd, resolved to a loadable path
}

// NewMaterial creates a material with the given name and MTL defaults
func NewMaterial(name string) *Material {
	return &Material{
		Name:           name,
		OpticalDensity: 1,
		Dissolve:       1,
	}
}

// NewDiffuseMaterial creates a named material with only a diffuse color
func NewDiffuseMaterial(name string, diffuse core.Vec3) *Material {
	m := NewMaterial(name)
	m.SetDiffuse(diffuse)
	return m
}

// SetAmbient sets the ambient color and marks it present
func (m *Material) SetAmbient(c core.Vec3) {
	m.Ambient = c
	m.HasAmbient = true
}

// SetDiffuse sets the diffuse color and marks it present
func (m *Material) SetDiffuse(c core.Vec3) {
	m.Diffuse = c
	m.HasDiffuse = true
}

// SetSpecular sets the specular color and marks it present
func (m *Material) SetSpecular(c core.Vec3) {
	m.Specular = c
	m.HasSpecular = true
}

// HasTexture reports whether the material references a diffuse texture
func (m *Material) HasTexture() bool {
	return m.DiffuseTexture != ""
}

// BaseColor returns the diffuse color, or DefaultColor when none was given
func (m *Material) BaseColor() core.Vec3 {
	if m == nil || !m.HasDiffuse {
		return DefaultColor
	}
	return m.Diffuse
}

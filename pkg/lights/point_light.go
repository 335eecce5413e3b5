package lights

import "github.com/df07/go-phong-raytracer/pkg/core"

// PointLight is an omnidirectional light at a single position
type PointLight struct {
	Position  core.Vec3
	Intensity float64 // Carried for scene descriptions; shading uses Color only
	Color     core.Vec3
}

// NewPointLight creates a point light
func NewPointLight(position, color core.Vec3, intensity float64) PointLight {
	return PointLight{
		Position:  position,
		Intensity: intensity,
		Color:     color,
	}
}

// NewWhiteLight creates a white point light of unit intensity
func NewWhiteLight(position core.Vec3) PointLight {
	return NewPointLight(position, core.NewVec3(1, 1, 1), 1)
}

// DirectionFrom returns the unit direction from point toward the light and the distance to it
func (l PointLight) DirectionFrom(point core.Vec3) (core.Vec3, float64) {
	toLight := l.Position.Subtract(point)
	distance := toLight.Length()
	return toLight.Normalize(), distance
}

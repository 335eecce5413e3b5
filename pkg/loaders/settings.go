package loaders

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
)

// Vec3Setting is a JSON triple such as [1, 2, 3]
type Vec3Setting [3]float64

// Vec3 converts the triple to a vector
func (v Vec3Setting) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// CameraSettings describes the camera in a settings file
type CameraSettings struct {
	Position  Vec3Setting `json:"position"`
	Direction Vec3Setting `json:"direction"`
	FOV       float64     `json:"fov"`
	Roll      float64     `json:"roll,omitempty"`
}

// LightSettings describes one point light in a settings file
type LightSettings struct {
	Position  Vec3Setting `json:"position"`
	Color     Vec3Setting `json:"color"`
	Intensity float64     `json:"intensity,omitempty"`
}

// Settings holds everything needed to render a model besides its geometry
type Settings struct {
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Workers     int             `json:"workers,omitempty"`
	RowsPerTask int             `json:"rowsPerTask,omitempty"`
	Camera      CameraSettings  `json:"camera"`
	Lights      []LightSettings `json:"lights"`
}

// DefaultSettings returns the settings of the built-in cube scene
func DefaultSettings() Settings {
	config := renderer.DefaultConfig()
	camera := geometry.DefaultCameraConfig()
	return Settings{
		Width:       config.Width,
		Height:      config.Height,
		Workers:     config.NumWorkers,
		RowsPerTask: config.RowsPerTask,
		Camera: CameraSettings{
			Position:  Vec3Setting{camera.Position.X, camera.Position.Y, camera.Position.Z},
			Direction: Vec3Setting{camera.Direction.X, camera.Direction.Y, camera.Direction.Z},
			FOV:       camera.VFov,
			Roll:      camera.Roll,
		},
		Lights: []LightSettings{{
			Position:  Vec3Setting{2, 2, 2},
			Color:     Vec3Setting{1, 1, 1},
			Intensity: 1,
		}},
	}
}

// LoadSettings reads a JSON settings file. Fields left out keep the values
// of DefaultSettings. A missing light list gets the default light, an
// explicit empty list renders without lights, and lights without a color
// are white.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	settings := DefaultSettings()
	defaultLights := settings.Lights
	settings.Lights = nil
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if settings.Lights == nil {
		settings.Lights = defaultLights
	}
	for i := range settings.Lights {
		if settings.Lights[i].Color == (Vec3Setting{}) {
			settings.Lights[i].Color = Vec3Setting{1, 1, 1}
		}
		if settings.Lights[i].Intensity == 0 {
			settings.Lights[i].Intensity = 1
		}
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings %s: %w", path, err)
	}

	logger.Debugf("loaded settings from %s: %dx%d, %d lights", path, settings.Width, settings.Height, len(settings.Lights))
	return settings, nil
}

// Validate checks the values a render cannot proceed without
func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", s.Width, s.Height)
	}
	if s.Camera.FOV <= 0 || s.Camera.FOV >= 180 {
		return fmt.Errorf("fov must be between 0 and 180 degrees, got %v", s.Camera.FOV)
	}
	if s.Camera.Direction.Vec3().Length() == 0 {
		return fmt.Errorf("camera direction must not be zero")
	}
	return nil
}

// CameraConfig converts the camera settings
func (s Settings) CameraConfig() geometry.CameraConfig {
	return geometry.CameraConfig{
		Position:  s.Camera.Position.Vec3(),
		Direction: s.Camera.Direction.Vec3(),
		VFov:      s.Camera.FOV,
		Roll:      s.Camera.Roll,
	}
}

// PointLights converts the light settings, keeping their order
func (s Settings) PointLights() []lights.PointLight {
	result := make([]lights.PointLight, 0, len(s.Lights))
	for _, l := range s.Lights {
		result = append(result, lights.NewPointLight(l.Position.Vec3(), l.Color.Vec3(), l.Intensity))
	}
	return result
}

// RenderConfig converts the size and parallelism settings
func (s Settings) RenderConfig() renderer.Config {
	return renderer.Config{
		Width:       s.Width,
		Height:      s.Height,
		NumWorkers:  s.Workers,
		RowsPerTask: s.RowsPerTask,
	}
}

package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

const (
	nearPlane = 0.1
	farPlane  = 1000.0

	// Forward vectors closer than this to vertical use +X as the world up
	verticalThreshold = 0.999
)

// CameraConfig contains the user-facing camera parameters
type CameraConfig struct {
	Position  core.Vec3 // Eye position
	Direction core.Vec3 // View direction, normalized on use
	VFov      float64   // Vertical field of view in degrees
	Roll      float64   // Rotation around the view direction in degrees
}

// DefaultCameraConfig returns a camera at (0,0,5) looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Position:  core.NewVec3(0, 0, 5),
		Direction: core.NewVec3(0, 0, -1),
		VFov:      60,
		Roll:      0,
	}
}

// Camera generates world space primary ray directions through pixel centers
type Camera struct {
	config CameraConfig

	forward core.Vec3
	view    mgl64.Mat4

	// Cached inverses for one viewport size
	width, height int
	invView       mgl64.Mat4
	invProj       mgl64.Mat4
}

// NewCamera creates a camera from its configuration
func NewCamera(config CameraConfig) *Camera {
	c := &Camera{config: config}
	c.forward = config.Direction.Normalize()
	c.view = c.viewMatrix()
	c.invView = c.view.Inv()
	return c
}

// Position returns the eye position
func (c *Camera) Position() core.Vec3 {
	return c.config.Position
}

// Forward returns the normalized view direction
func (c *Camera) Forward() core.Vec3 {
	return c.forward
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// SetupProjection caches the projection inverse for a viewport size.
// Call it before tracing; RayDirection is read-only afterwards.
func (c *Camera) SetupProjection(width, height int) {
	c.width = width
	c.height = height
	c.invProj = projectionMatrix(c.config.VFov, float64(width)/float64(height)).Inv()
}

// WithViewport returns a copy of the camera with the projection cached for
// width x height. The receiver is left untouched.
func (c *Camera) WithViewport(width, height int) *Camera {
	viewport := *c
	viewport.SetupProjection(width, height)
	return &viewport
}

// Up returns the final up vector after applying roll
func (c *Camera) Up() core.Vec3 {
	worldUp := mgl64.Vec3{0, 1, 0}
	if math.Abs(c.forward.Y) >= verticalThreshold {
		worldUp = mgl64.Vec3{1, 0, 0}
	}

	roll := mgl64.HomogRotate3D(mgl64.DegToRad(c.config.Roll), toMgl(c.forward))
	return fromMgl(mgl64.TransformNormal(worldUp, roll))
}

// viewMatrix builds a right-handed look-at matrix from position, forward and rolled up
func (c *Camera) viewMatrix() mgl64.Mat4 {
	eye := toMgl(c.config.Position)
	target := toMgl(c.config.Position.Add(c.forward))
	return mgl64.LookAtV(eye, target, toMgl(c.Up()))
}

// projectionMatrix builds a right-handed perspective matrix from a vertical FOV in degrees
func projectionMatrix(vfov, aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(vfov), aspect, nearPlane, farPlane)
}

// RayDirection returns the normalized world space direction through the
// center of pixel (x, y) in a width x height image.
func (c *Camera) RayDirection(x, y, width, height int) core.Vec3 {
	invProj := c.invProj
	if width != c.width || height != c.height {
		invProj = projectionMatrix(c.config.VFov, float64(width)/float64(height)).Inv()
	}

	ndcX := (float64(x)+0.5)/float64(width)*2.0 - 1.0
	ndcY := 1.0 - (float64(y)+0.5)/float64(height)*2.0

	// Unproject a far plane point into view space
	rayView := invProj.Mul4x1(mgl64.Vec4{ndcX, ndcY, 1, 1})
	rayView = rayView.Mul(1.0 / rayView[3])

	// Directions ignore the view translation
	rayWorld := c.invView.Mul4x1(mgl64.Vec4{rayView[0], rayView[1], rayView[2], 0})

	return fromMgl(rayWorld.Vec3()).Normalize()
}

// GetRay returns the primary ray for pixel (x, y)
func (c *Camera) GetRay(x, y, width, height int) core.Ray {
	return core.NewRay(c.config.Position, c.RayDirection(x, y, width, height))
}

func toMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

package renderer

import (
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/log"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

var logger = log.New("renderer")

const (
	bytesPerPixel = 4

	// Offset along the surface normal for shadow ray origins
	shadowBias = 1e-4

	// Fraction of the surface color used for ambient light and for shadowed points
	ambientFactor = 0.1

	specularExponent = 32.0
)

// Background is the color of pixels whose ray hits nothing
var Background = core.NewVec3(0, 0.1, 0.3)

// Config contains the output size and parallelism of a render
type Config struct {
	Width       int // Image width in pixels
	Height      int // Image height in pixels
	NumWorkers  int // Worker goroutines; 0 uses all CPUs, 1 renders on the calling goroutine
	RowsPerTask int // Height of the row band handed to a worker
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:       640,
		Height:      480,
		NumWorkers:  0,
		RowsPerTask: 8,
	}
}

// PixelResult describes how a single pixel was colored
type PixelResult struct {
	Color    core.Vec3
	Hit      bool
	Shadowed bool
	Distance float64 // Distance to the visible surface, +Inf for misses
}

// Raytracer renders a scene with one primary ray and one shadow ray per pixel.
// The scene is never modified, so several raytracers may share it.
type Raytracer struct {
	scene  *scene.Scene
	config Config

	pixelOnce  sync.Once
	pixelFrame *frame // Backs TracePixel
}

// frame is the read-only state one render traces against
type frame struct {
	octree *geometry.Octree
	camera *geometry.Camera
}

// NewRaytracer creates a raytracer for the scene. It panics if the configured
// image size is not positive.
func NewRaytracer(s *scene.Scene, config Config) *Raytracer {
	if config.Width <= 0 || config.Height <= 0 {
		panic(fmt.Sprintf("renderer: invalid image size %dx%d", config.Width, config.Height))
	}
	if config.RowsPerTask <= 0 {
		config.RowsPerTask = DefaultConfig().RowsPerTask
	}
	if config.NumWorkers <= 0 {
		config.NumWorkers = runtime.NumCPU()
	}

	return &Raytracer{
		scene:  s,
		config: config,
	}
}

// Config returns the effective configuration
func (rt *Raytracer) Config() Config {
	return rt.config
}

// prepare builds the octree and a camera with this raytracer's projection
func (rt *Raytracer) prepare() *frame {
	return &frame{
		octree: geometry.NewOctree(rt.scene.Triangles),
		camera: rt.scene.Camera.WithViewport(rt.config.Width, rt.config.Height),
	}
}

// Render traces every pixel and returns a BGRA8888 buffer of
// Width*Height*4 bytes, rows top to bottom, alpha always 255.
// The octree is rebuilt on every call.
func (rt *Raytracer) Render() ([]byte, RenderStats) {
	start := time.Now()
	f := rt.prepare()

	stats := RenderStats{
		Octree:    f.octree.Stats(),
		BuildTime: time.Since(start),
		Workers:   rt.config.NumWorkers,
	}
	logger.Debugf("octree built in %v: %d nodes, %d leaves, depth %d",
		stats.BuildTime, stats.Octree.TotalNodes, stats.Octree.LeafNodes, stats.Octree.MaxDepth)

	buffer := make([]byte, rt.config.Width*rt.config.Height*bytesPerPixel)
	tasks := rt.rowTasks()
	stats.Tasks = len(tasks)

	if rt.config.NumWorkers == 1 {
		stats.Workers = 1
		for _, task := range tasks {
			stats.Add(rt.renderRows(f, buffer, task.RowStart, task.RowEnd))
		}
	} else {
		render := func(rowStart, rowEnd int) RenderStats {
			return rt.renderRows(f, buffer, rowStart, rowEnd)
		}
		pool := NewWorkerPool(render, len(tasks), rt.config.NumWorkers)
		stats.Workers = pool.GetNumWorkers()
		pool.Start()
		for _, task := range tasks {
			pool.SubmitTask(task)
		}
		for range tasks {
			result, ok := pool.GetResult()
			if !ok {
				break
			}
			stats.Add(result.Stats)
		}
		pool.Stop()
	}

	stats.Duration = time.Since(start)
	logger.Infof("rendered %dx%d in %v (%d workers, %d hits, %d shadowed)",
		rt.config.Width, rt.config.Height, stats.Duration, stats.Workers, stats.Hits, stats.Shadowed)

	return buffer, stats
}

// rowTasks splits the image into bands of RowsPerTask rows
func (rt *Raytracer) rowTasks() []RowTask {
	var tasks []RowTask
	for row := 0; row < rt.config.Height; row += rt.config.RowsPerTask {
		tasks = append(tasks, RowTask{
			TaskID:   len(tasks),
			RowStart: row,
			RowEnd:   min(row+rt.config.RowsPerTask, rt.config.Height),
		})
	}
	return tasks
}

// renderRows traces rows [rowStart, rowEnd) into their slice of buffer
func (rt *Raytracer) renderRows(f *frame, buffer []byte, rowStart, rowEnd int) RenderStats {
	var stats RenderStats
	for y := rowStart; y < rowEnd; y++ {
		for x := 0; x < rt.config.Width; x++ {
			result := rt.tracePixel(f, x, y)
			writePixel(buffer, (y*rt.config.Width+x)*bytesPerPixel, result.Color)
			stats.addPixel(result)
		}
	}
	return stats
}

// TracePixel computes the color of pixel (x, y) without writing it anywhere.
// The octree it traces against is built on first use and shared by later
// calls; it is safe for concurrent use.
func (rt *Raytracer) TracePixel(x, y int) PixelResult {
	rt.pixelOnce.Do(func() {
		rt.pixelFrame = rt.prepare()
	})
	return rt.tracePixel(rt.pixelFrame, x, y)
}

func (rt *Raytracer) tracePixel(f *frame, x, y int) PixelResult {
	origin := f.camera.Position()
	direction := f.camera.RayDirection(x, y, rt.config.Width, rt.config.Height)

	hit, ok := f.octree.Intersect(origin, direction)
	if !ok {
		return PixelResult{Color: Background, Distance: math.Inf(1)}
	}

	point := origin.Add(direction.Multiply(hit.Distance))
	normal := rt.scene.NormalAt(hit.Triangle, hit.U, hit.V)
	surface := rt.scene.MaterialColor(hit.Triangle, hit.U, hit.V)
	result := PixelResult{Hit: true, Distance: hit.Distance}

	light, ok := rt.scene.PrimaryLight()
	if !ok {
		result.Color = surface.Multiply(ambientFactor)
		return result
	}

	lightDir, _ := light.DirectionFrom(point)
	if occluded(f.octree, point.Add(normal.Multiply(shadowBias)), lightDir) {
		result.Color = surface.Multiply(ambientFactor)
		result.Shadowed = true
		return result
	}

	result.Color = Shade(normal, surface, point, lightDir, light, origin)
	return result
}

// occluded reports whether a ray toward the light hits any triangle.
// Hits beyond the light also count.
func occluded(octree *geometry.Octree, origin, lightDir core.Vec3) bool {
	_, hit := octree.Intersect(origin, lightDir)
	return hit
}

// Shade evaluates the Phong model for one light: ambient plus Lambert diffuse
// plus a white specular highlight, clamped to [0,1]. lightDir points from the
// surface toward the light.
func Shade(normal, diffuse, point, lightDir core.Vec3, light lights.PointLight, cameraPos core.Vec3) core.Vec3 {
	ambient := diffuse.Multiply(ambientFactor)

	lambert := math.Max(0, normal.Dot(lightDir))
	diffuseTerm := diffuse.MultiplyVec(light.Color).Multiply(lambert)

	view := cameraPos.Subtract(point).Normalize()
	reflected := lightDir.Negate().Reflect(normal)
	highlight := math.Pow(math.Max(0, view.Dot(reflected)), specularExponent)
	specular := light.Color.Multiply(highlight)

	return ambient.Add(diffuseTerm).Add(specular).Clamp(0, 1)
}

// writePixel stores a clamped color as B, G, R, 255 at offset
func writePixel(buffer []byte, offset int, c core.Vec3) {
	c = c.Clamp(0, 1)
	buffer[offset] = uint8(255 * c.Z)
	buffer[offset+1] = uint8(255 * c.Y)
	buffer[offset+2] = uint8(255 * c.X)
	buffer[offset+3] = 255
}

// ToImage converts a BGRA8888 buffer into an image suitable for encoding
func ToImage(buffer []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i+bytesPerPixel <= len(buffer) && i+bytesPerPixel <= len(img.Pix); i += bytesPerPixel {
		img.Pix[i] = buffer[i+2]
		img.Pix[i+1] = buffer[i+1]
		img.Pix[i+2] = buffer[i]
		img.Pix[i+3] = buffer[i+3]
	}
	return img
}

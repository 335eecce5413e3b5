package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/loaders"
	"github.com/df07/go-phong-raytracer/pkg/log"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

var logger = log.New("phong")

// ErrUnknownScene is returned for an unrecognized --builtin value
var ErrUnknownScene = errors.New("unknown built-in scene")

func setupLogging(ctx *cli.Context) {
	verbosity := 0
	if ctx.GlobalBool("v") {
		verbosity = 1
	}
	if ctx.GlobalBool("vv") {
		verbosity = 2
	}
	log.SetLevel(log.VerbosityLevel(verbosity))
}

// renderModel implements the render command
func renderModel(ctx *cli.Context) error {
	setupLogging(ctx)

	settings, err := resolveSettings(ctx)
	if err != nil {
		return err
	}
	if ctx.IsSet("workers") {
		settings.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("rows-per-task") {
		settings.RowsPerTask = ctx.Int("rows-per-task")
	}

	s, err := buildScene(ctx, settings)
	if err != nil {
		return err
	}

	config := settings.RenderConfig()
	buffer, stats := renderer.NewRaytracer(s, config).Render()

	out := ctx.String("out")
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := loaders.SaveImage(out, renderer.ToImage(buffer, config.Width, config.Height)); err != nil {
		return err
	}

	logger.Noticef("render statistics\n%s", renderStatsTable(stats))
	logger.Noticef("saved %s", out)
	return nil
}

// inspectModel implements the inspect command
func inspectModel(ctx *cli.Context) error {
	setupLogging(ctx)

	settings, err := resolveSettings(ctx)
	if err != nil {
		return err
	}
	s, err := buildScene(ctx, settings)
	if err != nil {
		return err
	}

	octree := geometry.NewOctree(s.Triangles)
	fmt.Fprint(ctx.App.Writer, sceneStatsTable(s, octree.Stats()))
	return nil
}

// resolveSettings loads the settings file, if any, and applies flag overrides
func resolveSettings(ctx *cli.Context) (loaders.Settings, error) {
	settings := loaders.DefaultSettings()
	if path := ctx.String("settings"); path != "" {
		var err error
		if settings, err = loaders.LoadSettings(path); err != nil {
			return settings, err
		}
	}

	if ctx.IsSet("width") {
		settings.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		settings.Height = ctx.Int("height")
	}
	if ctx.IsSet("fov") {
		settings.Camera.FOV = ctx.Float64("fov")
	}
	if ctx.IsSet("roll") {
		settings.Camera.Roll = ctx.Float64("roll")
	}

	for _, override := range []struct {
		flag   string
		target *loaders.Vec3Setting
	}{
		{"camera-pos", &settings.Camera.Position},
		{"camera-dir", &settings.Camera.Direction},
	} {
		if value := ctx.String(override.flag); value != "" {
			v, err := parseVec3Flag(value)
			if err != nil {
				return settings, fmt.Errorf("--%s: %w", override.flag, err)
			}
			*override.target = loaders.Vec3Setting{v.X, v.Y, v.Z}
		}
	}

	if value := ctx.String("light"); value != "" {
		v, err := parseVec3Flag(value)
		if err != nil {
			return settings, fmt.Errorf("--light: %w", err)
		}
		light := loaders.LightSettings{Position: loaders.Vec3Setting{v.X, v.Y, v.Z}, Color: loaders.Vec3Setting{1, 1, 1}, Intensity: 1}
		settings.Lights = append([]loaders.LightSettings{light}, settings.Lights...)
	}

	return settings, settings.Validate()
}

// buildScene loads the model named by the first argument, or the built-in scene
func buildScene(ctx *cli.Context, settings loaders.Settings) (*scene.Scene, error) {
	desc, err := loadDescription(ctx.Args().First(), ctx.String("builtin"), ctx.String("texture"))
	if err != nil {
		return nil, err
	}
	return newScene(desc, settings.PointLights(), settings.CameraConfig())
}

func newScene(desc *scene.Description, sceneLights []lights.PointLight, camera geometry.CameraConfig) (*scene.Scene, error) {
	return scene.NewScene(desc, sceneLights, camera, loaders.LoadTexture)
}

// loadDescription reads an OBJ file, or builds the named built-in scene when path is empty
func loadDescription(path, builtin, texture string) (*scene.Description, error) {
	if path != "" {
		return loaders.LoadOBJ(path)
	}

	switch builtin {
	case "cube":
		return scene.NewCubeDescription(texture), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, builtin)
	}
}

// parseVec3Flag parses "x,y,z"
func parseVec3Flag(value string) (core.Vec3, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("expected x,y,z; got %q", value)
	}

	var v [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid component %q: %w", part, err)
		}
		v[i] = f
	}
	return core.NewVec3(v[0], v[1], v[2]), nil
}

func renderStatsTable(stats renderer.RenderStats) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pixels", "Hits", "Misses", "Shadowed", "Workers", "Bands", "Octree build", "Render time"})
	table.Append([]string{
		strconv.Itoa(stats.TotalPixels),
		strconv.Itoa(stats.Hits),
		strconv.Itoa(stats.Misses),
		strconv.Itoa(stats.Shadowed),
		strconv.Itoa(stats.Workers),
		strconv.Itoa(stats.Tasks),
		stats.BuildTime.String(),
		stats.Duration.String(),
	})
	table.SetFooter([]string{"", "", "", "", "", "", "PIXELS/S", fmt.Sprintf("%.0f", stats.PixelsPerSecond())})
	table.Render()
	return buf.String()
}

func sceneStatsTable(s *scene.Scene, octree geometry.OctreeStats) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	rows := [][]string{
		{"Objects", strconv.Itoa(s.Stats.Objects)},
		{"Faces", strconv.Itoa(s.Stats.Faces)},
		{"Skipped faces", strconv.Itoa(s.Stats.SkippedFaces)},
		{"Triangles", strconv.Itoa(s.Stats.Triangles)},
		{"Materials", strconv.Itoa(s.Stats.Materials)},
		{"Textures", fmt.Sprintf("%d (%d missing)", s.Stats.Textures, s.Stats.MissingTextures)},
		{"Lights", strconv.Itoa(len(s.Lights))},
		{"Octree nodes", fmt.Sprintf("%d (%d leaves, %d empty)", octree.TotalNodes, octree.LeafNodes, octree.EmptyLeaves)},
		{"Octree depth", fmt.Sprintf("%d (avg leaf %.2f)", octree.MaxDepth, octree.AvgLeafDepth)},
		{"Triangle references", fmt.Sprintf("%d (max %d, avg %.2f per leaf)", octree.TriangleRefs, octree.MaxLeafSize, octree.AvgLeafSize)},
		{"Bounds size", fmt.Sprintf("%.3f x %.3f x %.3f", octree.RootBoundsSize.X, octree.RootBoundsSize.Y, octree.RootBoundsSize.Z)},
	}
	table.AppendBulk(rows)
	table.Render()
	return buf.String()
}

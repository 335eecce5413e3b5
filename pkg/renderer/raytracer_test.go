package renderer

import (
	"bytes"
	"math"
	"sync"
	"testing"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

const testSize = 64

func testConfig(workers int) Config {
	return Config{Width: testSize, Height: testSize, NumWorkers: workers, RowsPerTask: 5}
}

func newCubeScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.NewCubeScene()
	if err != nil {
		t.Fatalf("NewCubeScene failed: %v", err)
	}
	return s
}

func pixelBytes(buffer []byte, x, y int) []byte {
	offset := (y*testSize + x) * bytesPerPixel
	return buffer[offset : offset+bytesPerPixel]
}

func colorBytes(c core.Vec3) []byte {
	buffer := make([]byte, bytesPerPixel)
	writePixel(buffer, 0, c)
	return buffer
}

func TestRender_CubeScene(t *testing.T) {
	rt := NewRaytracer(newCubeScene(t), testConfig(1))
	buffer, stats := rt.Render()

	if len(buffer) != testSize*testSize*bytesPerPixel {
		t.Fatalf("Expected %d bytes, got %d", testSize*testSize*bytesPerPixel, len(buffer))
	}
	for i := 3; i < len(buffer); i += bytesPerPixel {
		if buffer[i] != 255 {
			t.Fatalf("Expected opaque alpha at byte %d, got %d", i, buffer[i])
		}
	}

	// Corner misses the cube and shows the background as B, G, R, A
	if got := pixelBytes(buffer, 0, 0); !bytes.Equal(got, []byte{76, 25, 0, 255}) {
		t.Errorf("Expected background bytes [76 25 0 255], got %v", got)
	}

	// Center hits the lit front face
	center := rt.TracePixel(testSize/2, testSize/2)
	if !center.Hit || center.Shadowed {
		t.Fatalf("Expected lit hit at the center, got %+v", center)
	}
	if math.Abs(center.Distance-4.5) > 0.01 {
		t.Errorf("Expected front face about 4.5 units away, got %f", center.Distance)
	}
	if got := pixelBytes(buffer, testSize/2, testSize/2); !bytes.Equal(got, colorBytes(center.Color)) {
		t.Errorf("Center pixel bytes %v do not match traced color %v", got, center.Color)
	}
	if center.Color.Equals(Background) || !(center.Color.X > center.Color.Y && center.Color.Y > center.Color.Z) {
		t.Errorf("Expected a reddish cube color, got %v", center.Color)
	}

	if stats.TotalPixels != testSize*testSize {
		t.Errorf("Expected %d traced pixels, got %d", testSize*testSize, stats.TotalPixels)
	}
	if stats.Hits == 0 || stats.Hits+stats.Misses != stats.TotalPixels {
		t.Errorf("Inconsistent hit counts: %+v", stats)
	}
	// 12 triangles split once; every octant touches three faces
	if stats.Octree.TotalNodes != 9 || stats.Octree.MaxLeafSize != 6 {
		t.Errorf("Expected root plus 8 leaves of 6 triangles, got %+v", stats.Octree)
	}
}

func TestRender_ShadowToggle(t *testing.T) {
	plain := newCubeScene(t)

	// A small triangle between the front face center and the light,
	// perpendicular to the shadow ray and outside the camera frustum
	desc := scene.NewCubeDescription("")
	toLight := core.NewVec3(2, 2, 1.5).Normalize()
	p1 := core.NewVec3(1, -1, 0).Normalize()
	p2 := toLight.Cross(p1)
	center := core.NewVec3(1.94, 1.94, 1.955)

	base := len(desc.Positions)
	for i := 0; i < 3; i++ {
		angle := 2 * math.Pi * float64(i) / 3
		offset := p1.Multiply(math.Cos(angle)).Add(p2.Multiply(math.Sin(angle))).Multiply(0.2)
		desc.Positions = append(desc.Positions, center.Add(offset))
	}
	desc.Objects = append(desc.Objects, scene.Object{
		Name: "occluder",
		Faces: []*geometry.Face{geometry.NewFace(scene.CubeMaterialName,
			geometry.FaceVertex{Vertex: base + 1},
			geometry.FaceVertex{Vertex: base + 2},
			geometry.FaceVertex{Vertex: base + 3},
		)},
	})
	occluded, err := scene.NewScene(desc, []lights.PointLight{scene.DefaultCubeLight()}, geometry.DefaultCameraConfig(), nil)
	if err != nil {
		t.Fatalf("NewScene failed: %v", err)
	}

	before := NewRaytracer(plain, testConfig(1))
	after := NewRaytracer(occluded, testConfig(1))
	beforeBuf, beforeStats := before.Render()
	afterBuf, afterStats := after.Render()

	dim := scene.CubeColor.Multiply(ambientFactor)

	result := after.TracePixel(testSize/2, testSize/2)
	if !result.Hit || !result.Shadowed {
		t.Fatalf("Expected the center pixel to be shadowed, got %+v", result)
	}
	if !result.Color.ApproxEquals(dim, 1e-12) {
		t.Errorf("Expected shadowed color %v, got %v", dim, result.Color)
	}
	if beforeStats.Hits != afterStats.Hits {
		t.Errorf("Occluder must stay out of view: hits %d before, %d after", beforeStats.Hits, afterStats.Hits)
	}
	if afterStats.Shadowed <= beforeStats.Shadowed {
		t.Errorf("Expected more shadowed pixels with the occluder, got %d before and %d after",
			beforeStats.Shadowed, afterStats.Shadowed)
	}

	// Only pixels that went from lit to shadowed may change
	changed := 0
	for y := 0; y < testSize; y++ {
		for x := 0; x < testSize; x++ {
			if bytes.Equal(pixelBytes(beforeBuf, x, y), pixelBytes(afterBuf, x, y)) {
				continue
			}
			changed++

			was := before.TracePixel(x, y)
			now := after.TracePixel(x, y)
			if !was.Hit || was.Shadowed || !now.Shadowed {
				t.Errorf("pixel (%d,%d) changed without a shadow toggle: before %+v after %+v", x, y, was, now)
			}
			if got := pixelBytes(afterBuf, x, y); !bytes.Equal(got, colorBytes(dim)) {
				t.Errorf("pixel (%d,%d): expected dim bytes %v, got %v", x, y, colorBytes(dim), got)
			}
		}
	}
	if changed == 0 {
		t.Error("Expected the occluder to change at least one pixel")
	}
}

func TestRender_NoLightsIsAmbientOnly(t *testing.T) {
	s, err := scene.NewScene(scene.NewCubeDescription(""), nil, geometry.DefaultCameraConfig(), nil)
	if err != nil {
		t.Fatalf("NewScene failed: %v", err)
	}

	rt := NewRaytracer(s, testConfig(1))
	result := rt.TracePixel(testSize/2, testSize/2)
	if !result.Hit || result.Shadowed {
		t.Fatalf("Expected an unshadowed hit, got %+v", result)
	}
	if expected := scene.CubeColor.Multiply(ambientFactor); !result.Color.ApproxEquals(expected, 1e-12) {
		t.Errorf("Expected ambient color %v, got %v", expected, result.Color)
	}
}

func TestRender_EmptySceneIsBackground(t *testing.T) {
	s, err := scene.NewScene(scene.NewDescription(), nil, geometry.DefaultCameraConfig(), nil)
	if err != nil {
		t.Fatalf("NewScene failed: %v", err)
	}

	buffer, stats := NewRaytracer(s, Config{Width: 4, Height: 3, NumWorkers: 2}).Render()
	for i := 0; i < len(buffer); i += bytesPerPixel {
		if !bytes.Equal(buffer[i:i+bytesPerPixel], []byte{76, 25, 0, 255}) {
			t.Fatalf("Expected background at byte %d, got %v", i, buffer[i:i+bytesPerPixel])
		}
	}
	if stats.Misses != 12 || stats.Hits != 0 {
		t.Errorf("Expected 12 misses, got %+v", stats)
	}
}

func TestRender_ParallelMatchesSerial(t *testing.T) {
	serialBuf, serialStats := NewRaytracer(newCubeScene(t), testConfig(1)).Render()

	for _, workers := range []int{2, 3, 8, 0} {
		config := testConfig(workers)
		config.RowsPerTask = 3
		parallelBuf, parallelStats := NewRaytracer(newCubeScene(t), config).Render()

		if !bytes.Equal(serialBuf, parallelBuf) {
			t.Errorf("%d workers: output differs from serial render", workers)
		}
		if parallelStats.Hits != serialStats.Hits || parallelStats.Shadowed != serialStats.Shadowed ||
			parallelStats.TotalPixels != serialStats.TotalPixels {
			t.Errorf("%d workers: stats %+v differ from serial %+v", workers, parallelStats, serialStats)
		}
		if parallelStats.Tasks != (testSize+2)/3 {
			t.Errorf("%d workers: expected %d row bands, got %d", workers, (testSize+2)/3, parallelStats.Tasks)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	rt := NewRaytracer(newCubeScene(t), testConfig(4))
	first, _ := rt.Render()
	second, _ := rt.Render()
	if !bytes.Equal(first, second) {
		t.Error("Expected repeated renders to produce identical buffers")
	}
}

func TestRender_SharedSceneAtDifferentSizes(t *testing.T) {
	configs := []Config{
		{Width: testSize, Height: testSize, NumWorkers: 2, RowsPerTask: 4},
		{Width: 40, Height: 24, NumWorkers: 2, RowsPerTask: 4},
		{Width: 17, Height: 33, NumWorkers: 2, RowsPerTask: 4},
	}

	expected := make([][]byte, len(configs))
	for i, config := range configs {
		expected[i], _ = NewRaytracer(newCubeScene(t), config).Render()
	}

	shared := newCubeScene(t)
	results := make([][]byte, len(configs))
	var wg sync.WaitGroup
	for i, config := range configs {
		wg.Add(1)
		go func(i int, config Config) {
			defer wg.Done()
			results[i], _ = NewRaytracer(shared, config).Render()
		}(i, config)
	}
	wg.Wait()

	for i, config := range configs {
		if !bytes.Equal(expected[i], results[i]) {
			t.Errorf("%dx%d: render of the shared scene differs from a private one", config.Width, config.Height)
		}
	}
}

func TestTracePixel_ConcurrentMatchesRender(t *testing.T) {
	s := newCubeScene(t)
	buffer, _ := NewRaytracer(s, testConfig(1)).Render()

	rt := NewRaytracer(s, testConfig(1))
	mismatches := make([]int, testSize)
	var wg sync.WaitGroup
	for y := 0; y < testSize; y++ {
		wg.Add(1)
		go func(y int) {
			defer wg.Done()
			for x := 0; x < testSize; x++ {
				if !bytes.Equal(colorBytes(rt.TracePixel(x, y).Color), pixelBytes(buffer, x, y)) {
					mismatches[y]++
				}
			}
		}(y)
	}
	wg.Wait()

	for y, count := range mismatches {
		if count != 0 {
			t.Errorf("row %d: %d pixels differ from the rendered buffer", y, count)
		}
	}
}

func TestNewRaytracer_InvalidSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 10},
		{"negative height", 10, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Expected panic for invalid size")
				}
			}()
			NewRaytracer(newCubeScene(t), Config{Width: tt.width, Height: tt.height})
		})
	}
}

func TestShade(t *testing.T) {
	up := core.NewVec3(0, 0, 1)
	white := lights.NewWhiteLight(core.NewVec3(0, 0, 10))
	orange := lights.NewPointLight(core.NewVec3(0, 0, 10), core.NewVec3(1, 0.5, 0), 1)
	diffuse := core.NewVec3(0.4, 0.6, 0.8)
	oblique := core.NewVec3(math.Sin(math.Pi/3), 0, 0.5)
	mirror := core.NewVec3(-math.Sin(math.Pi/3), 0, 0.5)

	tests := []struct {
		name      string
		lightDir  core.Vec3
		light     lights.PointLight
		cameraPos core.Vec3
		expected  core.Vec3
	}{
		{"head-on saturates", up, white, up.Multiply(5), core.NewVec3(1, 1, 1)},
		{"light behind surface is ambient only", up.Negate(), white, up.Multiply(5), diffuse.Multiply(0.1)},
		{"grazing light is ambient only", core.NewVec3(1, 0, 0), white, up.Multiply(5), diffuse.Multiply(0.1)},
		{"colored light off the mirror direction", oblique, orange, oblique.Multiply(5), core.NewVec3(0.24, 0.21, 0.08)},
		{"colored light in the mirror direction", oblique, orange, mirror.Multiply(5), core.NewVec3(1, 0.71, 0.08)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Shade(up, diffuse, core.Vec3{}, tt.lightDir, tt.light, tt.cameraPos)
			if !got.ApproxEquals(tt.expected, 1e-9) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestWritePixel_ClampsAndTruncates(t *testing.T) {
	tests := []struct {
		name     string
		color    core.Vec3
		expected []byte
	}{
		{"background", Background, []byte{76, 25, 0, 255}},
		{"overbright", core.NewVec3(2, 1.5, -1), []byte{0, 255, 255, 255}},
		{"black", core.Vec3{}, []byte{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := colorBytes(tt.color); !bytes.Equal(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestToImage(t *testing.T) {
	buffer := []byte{
		10, 20, 30, 255, 40, 50, 60, 255,
		70, 80, 90, 255, 1, 2, 3, 255,
	}
	img := ToImage(buffer, 2, 2)

	r, g, b, a := img.At(1, 1).RGBA()
	if r>>8 != 3 || g>>8 != 2 || b>>8 != 1 || a>>8 != 255 {
		t.Errorf("Expected RGBA (3,2,1,255) at (1,1), got (%d,%d,%d,%d)", r>>8, g>>8, b>>8, a>>8)
	}
	r, _, b, _ = img.At(0, 0).RGBA()
	if r>>8 != 30 || b>>8 != 10 {
		t.Errorf("Expected red 30 and blue 10 at (0,0), got %d and %d", r>>8, b>>8)
	}
}

package material

import (
	"math"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

const bytesPerPixel = 4

// Texture is a decoded image stored as BGRA8888 bytes, row-major with row 0 at the top
type Texture struct {
	width  int
	height int
	pixels []byte
}

// NewTexture wraps a BGRA pixel buffer of the given dimensions
func NewTexture(width, height int, bgra []byte) *Texture {
	return &Texture{
		width:  width,
		height: height,
		pixels: bgra,
	}
}

// MissingTexture returns the 1x1 magenta texture used when an image cannot be loaded
func MissingTexture() *Texture {
	return NewTexture(1, 1, []byte{255, 0, 255, 255})
}

// Width returns the texture width in pixels
func (t *Texture) Width() int {
	return t.width
}

// Height returns the texture height in pixels
func (t *Texture) Height() int {
	return t.height
}

// GetPixel samples the texture at (u, v) with repeat wrapping and
// nearest-neighbor lookup. V=0 is the bottom row of the image.
func (t *Texture) GetPixel(u, v float64) core.Vec3 {
	if len(t.pixels) == 0 {
		return core.NewVec3(1, 0, 1)
	}

	u -= math.Floor(u)
	v -= math.Floor(v)

	x := int(u * float64(t.width-1))
	y := int((1.0 - v) * float64(t.height-1))

	index := (y*t.width + x) * bytesPerPixel
	if index < 0 || index > len(t.pixels)-bytesPerPixel {
		return core.Vec3{}
	}

	b := float64(t.pixels[index]) / 255.0
	g := float64(t.pixels[index+1]) / 255.0
	r := float64(t.pixels[index+2]) / 255.0
	return core.NewVec3(r, g, b)
}

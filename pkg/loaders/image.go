package loaders

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/df07/go-phong-raytracer/pkg/material"
)

// ErrUnsupportedFormat is returned when an output file extension has no encoder
var ErrUnsupportedFormat = errors.New("loaders: unsupported image format")

// LoadImage decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file
func LoadImage(filename string) (image.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Format is detected from the file header
	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	logger.Debugf("decoded %s image %s (%dx%d)", format, filename, img.Bounds().Dx(), img.Bounds().Dy())

	return img, nil
}

// LoadTexture decodes an image file into a BGRA texture
func LoadTexture(filename string) (*material.Texture, error) {
	img, err := LoadImage(filename)
	if err != nil {
		return nil, err
	}
	return TextureFromImage(img), nil
}

// TextureFromImage converts any image into a BGRA texture, row 0 at the top
func TextureFromImage(img image.Image) *material.Texture {
	bounds := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)

	// NRGBA stores R, G, B, A; swap red and blue in place
	pixels := nrgba.Pix
	for i := 0; i+3 < len(pixels); i += 4 {
		pixels[i], pixels[i+2] = pixels[i+2], pixels[i]
	}

	return material.NewTexture(bounds.Dx(), bounds.Dy(), pixels)
}

// SaveImage encodes img to filename, choosing the format from the extension:
// .png, .bmp, .tif/.tiff or .jpg/.jpeg.
func SaveImage(filename string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".bmp", ".tif", ".tiff", ".jpg", ".jpeg":
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	switch ext {
	case ".png":
		err = png.Encode(file, img)
	case ".bmp":
		err = bmp.Encode(file, img)
	case ".tif", ".tiff":
		err = tiff.Encode(file, img, nil)
	default:
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 95})
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return file.Close()
}

package renderer

import (
	"time"

	"github.com/df07/go-phong-raytracer/pkg/geometry"
)

// RenderStats contains statistics about a render
type RenderStats struct {
	TotalPixels int // Pixels traced
	Hits        int // Primary rays that hit a triangle
	Misses      int // Primary rays that got the background color
	Shadowed    int // Hits whose shadow ray was blocked

	Workers   int
	Tasks     int
	BuildTime time.Duration // Octree construction
	Duration  time.Duration // Whole render, build included

	Octree geometry.OctreeStats
}

// addPixel records the outcome of one traced pixel
func (s *RenderStats) addPixel(result PixelResult) {
	s.TotalPixels++
	switch {
	case !result.Hit:
		s.Misses++
	case result.Shadowed:
		s.Hits++
		s.Shadowed++
	default:
		s.Hits++
	}
}

// Add accumulates the pixel counters of other, typically one finished band
func (s *RenderStats) Add(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.Hits += other.Hits
	s.Misses += other.Misses
	s.Shadowed += other.Shadowed
}

// HitRatio returns the fraction of pixels that hit geometry
func (s RenderStats) HitRatio() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.TotalPixels)
}

// PixelsPerSecond returns the tracing throughput over the whole render
func (s RenderStats) PixelsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalPixels) / s.Duration.Seconds()
}

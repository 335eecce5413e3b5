package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns an inverted box that any call to Grow will replace
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: NewVec3(inf, inf, inf),
		Max: NewVec3(-inf, -inf, -inf),
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	box := EmptyAABB()
	for _, point := range points {
		box.Grow(point)
	}
	return box
}

// Grow expands the box to include p
func (aabb *AABB) Grow(p Vec3) {
	aabb.Min = aabb.Min.Min(p)
	aabb.Max = aabb.Max.Max(p)
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		Min: aabb.Min.Min(other.Min),
		Max: aabb.Max.Max(other.Max),
	}
}

// Intersect tests the ray against the box using the slab method. It reports
// whether the box is hit in front of the origin along with the entry distance.
//
// Division by a zero direction component yields ±Inf, which makes the slab
// for that axis either unbounded (origin inside the slab) or empty.
func (aabb AABB) Intersect(origin, direction Vec3) (bool, float64) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		var min, max, o, d float64

		switch axis {
		case 0: // X axis
			min, max, o, d = aabb.Min.X, aabb.Max.X, origin.X, direction.X
		case 1: // Y axis
			min, max, o, d = aabb.Min.Y, aabb.Max.Y, origin.Y, direction.Y
		case 2: // Z axis
			min, max, o, d = aabb.Min.Z, aabb.Max.Z, origin.Z, direction.Z
		}

		t1 := (min - o) / d
		t2 := (max - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		// NaN compares false on both sides and leaves the interval untouched
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}

		if tMin > tMax {
			return false, 0
		}
	}

	return tMax > 0, tMin
}

// Overlaps reports whether two boxes share any point (touching counts)
func (aabb AABB) Overlaps(other AABB) bool {
	if aabb.Max.X < other.Min.X || aabb.Min.X > other.Max.X {
		return false
	}
	if aabb.Max.Y < other.Min.Y || aabb.Min.Y > other.Max.Y {
		return false
	}
	if aabb.Max.Z < other.Min.Z || aabb.Min.Z > other.Max.Z {
		return false
	}
	return true
}

// Contains reports whether p lies inside the box, boundary included
func (aabb AABB) Contains(p Vec3) bool {
	return p.X >= aabb.Min.X && p.X <= aabb.Max.X &&
		p.Y >= aabb.Min.Y && p.Y <= aabb.Max.Y &&
		p.Z >= aabb.Min.Z && p.Z <= aabb.Max.Z
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}

// Octant returns the child box selected by the low three bits of index:
// bit 0 picks the upper X half, bit 1 the upper Y half, bit 2 the upper Z half.
func (aabb AABB) Octant(index int) AABB {
	center := aabb.Center()
	child := aabb

	if index&1 == 0 {
		child.Max.X = center.X
	} else {
		child.Min.X = center.X
	}
	if index&2 == 0 {
		child.Max.Y = center.Y
	} else {
		child.Min.Y = center.Y
	}
	if index&4 == 0 {
		child.Max.Z = center.Z
	} else {
		child.Min.Z = center.Z
	}

	return child
}

package core

import (
	"math"
	"testing"
)

func TestAABB_IntersectSlab(t *testing.T) {
	box := NewAABB(NewVec3(-0.5, -0.5, -0.5), NewVec3(0.5, 0.5, 0.5))

	hit, tMin := box.Intersect(NewVec3(-2, 0, 0), NewVec3(1, 0, 0))
	if !hit {
		t.Fatal("Expected axis-aligned ray to hit the box")
	}
	if math.Abs(tMin-1.5) > 1e-12 {
		t.Errorf("Expected tMin=1.5, got %f", tMin)
	}
}

func TestAABB_Intersect(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name      string
		origin    Vec3
		direction Vec3
		shouldHit bool
		expectedT float64
	}{
		{
			name:      "Diagonal ray hits corner region",
			origin:    NewVec3(-3, -3, -3),
			direction: NewVec3(1, 1, 1).Normalize(),
			shouldHit: true,
			expectedT: 2 * math.Sqrt(3),
		},
		{
			name:      "Parallel ray outside slab",
			origin:    NewVec3(-3, 2, 0),
			direction: NewVec3(1, 0, 0),
			shouldHit: false,
		},
		{
			name:      "Box entirely behind ray",
			origin:    NewVec3(3, 0, 0),
			direction: NewVec3(1, 0, 0),
			shouldHit: false,
		},
		{
			name:      "Origin inside box reports negative entry",
			origin:    NewVec3(0, 0, 0),
			direction: NewVec3(0, 0, 1),
			shouldHit: true,
			expectedT: -1,
		},
		{
			name:      "Ray passes beside box",
			origin:    NewVec3(-3, 0, 0),
			direction: NewVec3(1, 2, 0).Normalize(),
			shouldHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, tMin := box.Intersect(tt.origin, tt.direction)
			if hit != tt.shouldHit {
				t.Fatalf("Expected hit=%v, got hit=%v", tt.shouldHit, hit)
			}
			if tt.shouldHit && math.Abs(tMin-tt.expectedT) > 1e-9 {
				t.Errorf("Expected tMin=%f, got %f", tt.expectedT, tMin)
			}
		})
	}
}

func TestAABB_Grow(t *testing.T) {
	box := EmptyAABB()
	points := []Vec3{
		NewVec3(1, -2, 3),
		NewVec3(-4, 5, 0),
		NewVec3(2, 2, -6),
	}
	for _, p := range points {
		box.Grow(p)
	}

	if !box.Min.Equals(NewVec3(-4, -2, -6)) {
		t.Errorf("Unexpected min corner %v", box.Min)
	}
	if !box.Max.Equals(NewVec3(2, 5, 3)) {
		t.Errorf("Unexpected max corner %v", box.Max)
	}
	if !box.IsValid() {
		t.Error("Grown box should be valid")
	}
	for _, p := range points {
		if !box.Contains(p) {
			t.Errorf("Box %v should contain %v", box, p)
		}
	}
}

func TestAABB_Overlaps(t *testing.T) {
	a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))

	tests := []struct {
		name     string
		other    AABB
		expected bool
	}{
		{"Identical", a, true},
		{"Touching face", NewAABB(NewVec3(1, 0, 0), NewVec3(2, 1, 1)), true},
		{"Separated on X", NewAABB(NewVec3(1.1, 0, 0), NewVec3(2, 1, 1)), false},
		{"Separated on Z", NewAABB(NewVec3(0, 0, -2), NewVec3(1, 1, -0.1)), false},
		{"Contained", NewAABB(NewVec3(0.25, 0.25, 0.25), NewVec3(0.5, 0.5, 0.5)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.other); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			if got := tt.other.Overlaps(a); got != tt.expected {
				t.Errorf("Overlap should be symmetric: expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestAABB_Octant(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(2, 4, 6))

	low := box.Octant(0)
	if !low.Min.Equals(NewVec3(0, 0, 0)) || !low.Max.Equals(NewVec3(1, 2, 3)) {
		t.Errorf("Octant 0: unexpected box %v", low)
	}

	high := box.Octant(7)
	if !high.Min.Equals(NewVec3(1, 2, 3)) || !high.Max.Equals(NewVec3(2, 4, 6)) {
		t.Errorf("Octant 7: unexpected box %v", high)
	}

	// bit 0 selects X, bit 2 selects Z
	mixed := box.Octant(5)
	if !mixed.Min.Equals(NewVec3(1, 0, 3)) || !mixed.Max.Equals(NewVec3(2, 2, 6)) {
		t.Errorf("Octant 5: unexpected box %v", mixed)
	}
}

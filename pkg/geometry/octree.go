package geometry

import (
	"math"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

const (
	// Nodes with this many triangles or fewer become leaves
	leafThreshold = 10

	// Nodes at this depth become leaves regardless of triangle count
	maxDepth = 10

	// Padding applied to the root box against boundary misses from rounding
	octreePadding = 0.001

	// Minimum distance for a hit to count; rejects self-intersection at the origin
	hitEpsilon = 1e-4
)

// Hit describes the closest intersection found by an octree query
type Hit struct {
	Triangle *Triangle
	Distance float64
	U, V     float64 // Barycentric weights of V1 and V2
}

// octreeNode is either a leaf holding triangles or an internal node with
// exactly eight children. Triangles may be referenced by several leaves.
type octreeNode struct {
	bounds    core.AABB
	children  *[8]*octreeNode
	triangles []*Triangle
}

// Octree is an immutable spatial index over triangles
type Octree struct {
	root *octreeNode
}

// NewOctree builds an octree over the given triangles. An empty input
// produces a tree without a root that never reports hits.
func NewOctree(triangles []*Triangle) *Octree {
	if len(triangles) == 0 {
		return &Octree{}
	}

	bounds := core.EmptyAABB()
	for _, t := range triangles {
		bounds.Grow(t.Bounds.Min)
		bounds.Grow(t.Bounds.Max)
	}
	bounds = bounds.Expand(octreePadding)

	return &Octree{root: buildOctreeNode(bounds, triangles, 0)}
}

// buildOctreeNode recursively partitions triangles by the midpoint of bounds.
// A triangle goes into every child whose box overlaps the triangle's box.
func buildOctreeNode(bounds core.AABB, triangles []*Triangle, depth int) *octreeNode {
	node := &octreeNode{bounds: bounds}

	if len(triangles) <= leafThreshold || depth >= maxDepth {
		node.triangles = triangles
		return node
	}

	var childBounds [8]core.AABB
	var childTriangles [8][]*Triangle
	for i := range childBounds {
		childBounds[i] = bounds.Octant(i)
	}

	for _, t := range triangles {
		for i := range childBounds {
			if t.Bounds.Overlaps(childBounds[i]) {
				childTriangles[i] = append(childTriangles[i], t)
			}
		}
	}

	node.children = new([8]*octreeNode)
	for i := range node.children {
		node.children[i] = buildOctreeNode(childBounds[i], childTriangles[i], depth+1)
	}

	return node
}

// Bounds returns the padded bounding box of the whole tree
func (o *Octree) Bounds() core.AABB {
	if o.root == nil {
		return core.AABB{}
	}
	return o.root.bounds
}

// Intersect finds the closest triangle hit by the ray
func (o *Octree) Intersect(origin, direction core.Vec3) (Hit, bool) {
	hit := Hit{Distance: math.Inf(1)}
	if o.root == nil {
		return hit, false
	}

	found := o.root.intersect(origin, direction, &hit)
	return hit, found
}

// intersect descends the tree, updating closest whenever a nearer hit is
// found. Subtrees whose box is missed or starts beyond the closest hit are
// skipped; children are visited in index order.
func (n *octreeNode) intersect(origin, direction core.Vec3, closest *Hit) bool {
	boxHit, boxDist := n.bounds.Intersect(origin, direction)
	if !boxHit || boxDist > closest.Distance {
		return false
	}

	if n.children == nil {
		found := false
		for _, t := range n.triangles {
			dist, u, v, ok := t.Intersect(origin, direction)
			if ok && dist > hitEpsilon && dist < closest.Distance {
				closest.Triangle = t
				closest.Distance = dist
				closest.U = u
				closest.V = v
				found = true
			}
		}
		return found
	}

	found := false
	for _, child := range n.children {
		if child.intersect(origin, direction, closest) {
			found = true
		}
	}
	return found
}

// IntersectLinear tests every triangle in turn and returns the closest hit.
// It applies the same acceptance rules as Octree.Intersect.
func IntersectLinear(triangles []*Triangle, origin, direction core.Vec3) (Hit, bool) {
	hit := Hit{Distance: math.Inf(1)}
	found := false
	for _, t := range triangles {
		dist, u, v, ok := t.Intersect(origin, direction)
		if ok && dist > hitEpsilon && dist < hit.Distance {
			hit = Hit{Triangle: t, Distance: dist, U: u, V: v}
			found = true
		}
	}
	return hit, found
}

// OctreeStats contains statistics about the octree structure
type OctreeStats struct {
	TotalNodes     int
	LeafNodes      int
	EmptyLeaves    int
	MaxDepth       int
	TriangleRefs   int // Triangle references across all leaves, duplicates included
	MaxLeafSize    int
	AvgLeafDepth   float64
	AvgLeafSize    float64
	RootBoundsSize core.Vec3
}

// Stats walks the tree and returns statistics about its shape
func (o *Octree) Stats() OctreeStats {
	if o.root == nil {
		return OctreeStats{}
	}

	stats := OctreeStats{RootBoundsSize: o.root.bounds.Size()}
	o.root.collectStats(0, &stats)

	if stats.LeafNodes > 0 {
		stats.AvgLeafDepth = stats.AvgLeafDepth / float64(stats.LeafNodes)
		stats.AvgLeafSize = float64(stats.TriangleRefs) / float64(stats.LeafNodes)
	}

	return stats
}

// collectStats recursively accumulates node statistics
func (n *octreeNode) collectStats(depth int, stats *OctreeStats) {
	stats.TotalNodes++
	stats.MaxDepth = max(stats.MaxDepth, depth)

	if n.children == nil {
		stats.LeafNodes++
		stats.TriangleRefs += len(n.triangles)
		stats.MaxLeafSize = max(stats.MaxLeafSize, len(n.triangles))
		stats.AvgLeafDepth += float64(depth) // Divided by leaf count afterwards
		if len(n.triangles) == 0 {
			stats.EmptyLeaves++
		}
		return
	}

	for _, child := range n.children {
		child.collectStats(depth+1, stats)
	}
}

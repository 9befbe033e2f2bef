package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lixenwraith/vi-drive/vmath"
)

// LayerMask selects obstacle layers, bit n set = layer n included
type LayerMask uint32

// LayerAll matches every layer
const LayerAll LayerMask = ^LayerMask(0)

// MaxLayer is the highest addressable layer index
const MaxLayer = 31

// MaskOf builds a mask from layer indices, out of range indices are ignored
func MaskOf(layers ...int) LayerMask {
	var m LayerMask
	for _, l := range layers {
		if l < 0 || l > MaxLayer {
			continue
		}
		m |= 1 << uint(l)
	}
	return m
}

// Has reports whether layer is selected
func (m LayerMask) Has(layer uint8) bool {
	if layer > MaxLayer {
		return false
	}
	return m&(1<<layer) != 0
}

// Obstacle is a static axis-aligned box collider
type Obstacle struct {
	Name  string
	Layer uint8
	Min   mgl64.Vec3
	Max   mgl64.Vec3
}

// NewBox creates a box obstacle from center and full size
func NewBox(name string, layer uint8, center, size mgl64.Vec3) Obstacle {
	half := mgl64.Vec3{math.Abs(size[0]) / 2, math.Abs(size[1]) / 2, math.Abs(size[2]) / 2}
	return Obstacle{
		Name:  name,
		Layer: layer,
		Min:   center.Sub(half),
		Max:   center.Add(half),
	}
}

// Center returns the box midpoint
func (o Obstacle) Center() mgl64.Vec3 {
	return o.Min.Add(o.Max).Mul(0.5)
}

// Contains reports whether p lies inside or on the box
func (o Obstacle) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < o.Min[i] || p[i] > o.Max[i] {
			return false
		}
	}
	return true
}

// ClosestPoint returns the point of the box nearest to p
func (o Obstacle) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	var c mgl64.Vec3
	for i := 0; i < 3; i++ {
		c[i] = math.Max(o.Min[i], math.Min(p[i], o.Max[i]))
	}
	return c
}

// OverlapsSphere tests the box against a sphere
// Touching without penetration does not count
func (o Obstacle) OverlapsSphere(center mgl64.Vec3, radius float64) bool {
	d := o.ClosestPoint(center).Sub(center)
	return d.Dot(d) < radius*radius
}

// Hit describes the nearest ray intersection
type Hit struct {
	Obstacle string
	Layer    uint8
	Point    mgl64.Vec3
	Distance float64
}

// Collision is delivered when a body starts touching an obstacle
type Collision struct {
	Other string
	Layer uint8
	Point mgl64.Vec3
}

// intersectRay runs the slab test; dir must be unit length
// Returns entry distance, or exit distance when origin is inside
func (o Obstacle) intersectRay(origin, dir mgl64.Vec3) (float64, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < vmath.Epsilon {
			// Parallel to slab: must already be inside it
			if origin[i] < o.Min[i] || origin[i] > o.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (o.Min[i] - origin[i]) * inv
		t2 := (o.Max[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	if tMax < 0 {
		return 0, false
	}
	if tMin < 0 {
		return 0, true
	}
	return tMin, true
}

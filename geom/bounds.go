package geom

import "math"

// Bounds is an axis-aligned bounding box anchored at its top-left corner.
type Bounds struct {
	loc           Vec3
	width, height float64
}

// NewBounds builds a Bounds from a top-left coordinate and a size.
func NewBounds(loc Vec3, width, height float64) Bounds {
	return Bounds{loc: loc, width: width, height: height}
}

// FromVec builds a Bounds from a coordinate/size pair, the shape Position
// components carry.
func FromVec(loc Vec3, size Vec2) Bounds {
	return Bounds{loc: loc, width: size[0], height: size[1]}
}

// BoundsFromVertices returns the smallest Bounds enclosing every vertex.
func BoundsFromVertices(vertices []Vec3) Bounds {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	minZ := math.Inf(1)
	for _, v := range vertices {
		minX, maxX = math.Min(minX, v.X()), math.Max(maxX, v.X())
		minY, maxY = math.Min(minY, v.Y()), math.Max(maxY, v.Y())
		minZ = math.Min(minZ, v.Z())
	}
	return Bounds{loc: NewVec3(minX, minY, minZ), width: maxX - minX, height: maxY - minY}
}

func (b Bounds) X() float64      { return b.loc.X() }
func (b Bounds) Y() float64      { return b.loc.Y() }
func (b Bounds) Z() float64      { return b.loc.Z() }
func (b Bounds) Width() float64  { return b.width }
func (b Bounds) Height() float64 { return b.height }
func (b Bounds) Loc() Vec3       { return b.loc }

// Dimensions returns the (width, height) of b as a Vec2.
func (b Bounds) Dimensions() Vec2 { return NewVec2(b.width, b.height) }

// AsCoords returns the four corners of b, sorted clockwise from the
// lowest-y (then lowest-x) vertex.
func (b Bounds) AsCoords() []Vec3 {
	return SortClockwise([]Vec3{
		NewVec3(b.X(), b.Y(), b.Z()),
		NewVec3(b.X()+b.width, b.Y(), b.Z()),
		NewVec3(b.X()+b.width, b.Y()+b.height, b.Z()),
		NewVec3(b.X(), b.Y()+b.height, b.Z()),
	})
}

// Center2D returns the center point of b, ignoring z.
func (b Bounds) Center2D() Vec2 {
	return NewVec2(b.X()+b.width/2, b.Y()+b.height/2)
}

// TopLeft3D returns the top-left corner of b.
func (b Bounds) TopLeft3D() Vec3 { return b.loc }

// BottomRight3D returns the bottom-right corner of b.
func (b Bounds) BottomRight3D() Vec3 {
	return NewVec3(b.X()+b.width, b.Y()+b.height, b.Z())
}

// TopLeft2D returns the top-left corner of b, ignoring z.
func (b Bounds) TopLeft2D() Vec2 { return NewVec2(b.X(), b.Y()) }

// BottomRight2D returns the bottom-right corner of b, ignoring z.
func (b Bounds) BottomRight2D() Vec2 { return NewVec2(b.X()+b.width, b.Y()+b.height) }

// CoordWithin2D reports whether coord lies within b, ignoring z. The upper
// and lower bound are both inclusive.
func (b Bounds) CoordWithin2D(coord Vec3) bool {
	return b.X() <= coord.X() && coord.X() <= b.X()+b.width &&
		b.Y() <= coord.Y() && coord.Y() <= b.Y()+b.height
}

// CoordWithin3D additionally requires coord's z to match b's exactly.
func (b Bounds) CoordWithin3D(coord Vec3) bool {
	if coord.Z() != b.Z() {
		return false
	}
	return b.CoordWithin2D(coord)
}

// Contains2D reports whether b completely encloses other, ignoring z.
func (b Bounds) Contains2D(other Bounds) bool {
	topLeft := b.X() <= other.X() && b.Y() <= other.Y()
	bottomRight := b.X()+b.width >= other.X()+other.width && b.Y()+b.height >= other.Y()+other.height
	return topLeft && bottomRight
}

// Intersects2D reports whether b and other overlap, ignoring z.
func (b Bounds) Intersects2D(other Bounds) bool {
	if b.X()+b.width <= other.X() || other.X()+other.width <= b.X() {
		return false
	}
	if b.Y()+b.height <= other.Y() || other.Y()+other.height <= b.Y() {
		return false
	}
	return true
}

// Intersects3D additionally requires b and other to share a z layer.
func (b Bounds) Intersects3D(other Bounds) bool {
	if other.Z() != b.Z() {
		return false
	}
	return b.Intersects2D(other)
}

// ScaledFromCenter returns b scaled by scalar around its own center.
func (b Bounds) ScaledFromCenter(scalar float64) Bounds {
	newWidth, newHeight := b.width*scalar, b.height*scalar
	x := b.X() - (newWidth-b.width)/2
	y := b.Y() - (newHeight-b.height)/2
	return NewBounds(NewVec3(x, y, b.Z()), newWidth, newHeight)
}

// ClampWithin returns other repositioned so it lies fully inside b. If
// other is larger than b along either axis, other is returned unchanged.
func (b Bounds) ClampWithin(other Bounds) Bounds {
	if other.width > b.width || other.height > b.height {
		return other
	}
	x := clamp(other.X(), b.X(), b.X()+b.width-other.width)
	y := clamp(other.Y(), b.Y(), b.Y()+b.height-other.height)
	return NewBounds(NewVec3(x, y, other.Z()), other.width, other.height)
}

// ClampPoint clamps coord so it lies within b, leaving z untouched.
func (b Bounds) ClampPoint(coord Vec3) Vec3 {
	x := clamp(coord.X(), b.X(), b.X()+b.width)
	y := clamp(coord.Y(), b.Y(), b.Y()+b.height)
	return NewVec3(x, y, coord.Z())
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// SortClockwise sorts coordinates clockwise around the vertex with the
// lowest y (ties broken by lowest x), which becomes the pivot.
func SortClockwise(coordinates []Vec3) []Vec3 {
	sorted := make([]Vec3, len(coordinates))
	copy(sorted, coordinates)
	if len(sorted) == 0 {
		return sorted
	}

	pivot := sorted[0]
	for _, v := range sorted[1:] {
		if v.Y() < pivot.Y() || (v.Y() == pivot.Y() && v.X() < pivot.X()) {
			pivot = v
		}
	}

	sortByAngle(sorted, pivot)
	return sorted
}

func sortByAngle(vertices []Vec3, pivot Vec3) {
	// Insertion sort: vertex counts are small (quadrilaterals, simple
	// polygons), so this avoids pulling in sort.Slice's closure overhead.
	for i := 1; i < len(vertices); i++ {
		v := vertices[i]
		angle := pivot.PivotAngle(v)
		j := i - 1
		for j >= 0 && pivot.PivotAngle(vertices[j]) > angle {
			vertices[j+1] = vertices[j]
			j--
		}
		vertices[j+1] = v
	}
}

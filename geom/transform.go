package geom

import "math"

// stepSize is the distance, in world units, that Transform.AppliedVelocity
// walks a tentative velocity back towards zero per iteration when the
// destination would leave the containing bounds.
const stepSize = 1.0

// Transform is an oriented polygon region: an ordered vertex list sorted
// clockwise from its lowest-y pivot, plus a cached bounding box and a
// discrete layer derived from the vertices' z values.
type Transform struct {
	vertices []Vec3
	bbox     Bounds
	layer    float64
}

// FromVertices builds a Transform from a polygon's vertices.
func FromVertices(vertices []Vec3) Transform {
	layer := math.Inf(1)
	for _, v := range vertices {
		layer = math.Min(layer, v.Z())
	}
	layer = math.Min(layer, 0)

	return Transform{
		vertices: SortClockwise(vertices),
		bbox:     BoundsFromVertices(vertices),
		layer:    layer,
	}
}

// FromBounds builds a rectangular Transform from a Bounds.
func FromBounds(b Bounds) Transform {
	return Transform{vertices: b.AsCoords(), bbox: b, layer: b.Z()}
}

// FromVecs builds a rectangular Transform from a top-left coordinate and
// size.
func FromVecs(loc Vec3, size Vec2) Transform {
	return FromBounds(FromVec(loc, size))
}

// BoundingBox returns the cached AABB for the transform.
func (t Transform) BoundingBox() Bounds { return t.bbox }

// Position returns the top-left corner of the bounding box.
func (t Transform) Position() Vec3 { return t.bbox.TopLeft3D() }

// Layer returns the discrete layer the polygon occupies.
func (t Transform) Layer() float64 { return t.layer }

// Vertices returns the polygon's vertices, clockwise from the pivot.
func (t Transform) Vertices() []Vec3 { return t.vertices }

// SetPosition translates every vertex so the transform's top-left corner
// moves to coord, then rebuilds the cached bounding box.
func (t *Transform) SetPosition(coord Vec3) {
	current := t.Position()
	dx, dy := coord.X()-current.X(), coord.Y()-current.Y()

	moved := make([]Vec3, len(t.vertices))
	for i, v := range t.vertices {
		moved[i] = NewVec3(v.X()+dx, v.Y()+dy, v.Z())
	}
	t.vertices = moved
	t.bbox = BoundsFromVertices(moved)
}

// AppliedVelocity returns a copy of t translated by velocity, clamped so
// every corner of the moved bounding box still lies within bounds. If the
// full velocity would leave bounds, the velocity is shortened towards zero
// by stepSize along its own direction until all four corners fit, or until the
// velocity reaches zero (in which case t is returned unchanged).
func (t Transform) AppliedVelocity(velocity Vec2, bounds Bounds) Transform {
	vel := velocity
	x, y, z := t.Position().AsTuple()
	width, height := t.bbox.Dimensions().AsTuple()

	for !vel.IsZero() {
		modX, modY := x+vel.X(), y+vel.Y()
		corners := [4]Vec3{
			NewVec3(modX, modY, z),
			NewVec3(modX+width, modY, z),
			NewVec3(modX, modY+height, z),
			NewVec3(modX+width, modY+height, z),
		}

		allWithin := true
		for _, c := range corners {
			if !bounds.CoordWithin2D(c) {
				allWithin = false
				break
			}
		}
		if allWithin {
			next := t
			next.vertices = append([]Vec3(nil), t.vertices...)
			next.SetPosition(corners[0])
			return next
		}

		vel = vel.TowardsOrigin(stepSize)
	}

	return t
}

// CoordWithin reports whether coord lies inside the polygon using ray
// casting. The boundary policy is inclusive on crossing edges counted by
// the standard even-odd rule; vertices themselves are treated as interior.
func (t Transform) CoordWithin(coord Vec3) bool {
	inside := false
	n := len(t.vertices)
	if n == 0 {
		return false
	}
	for _, v := range t.vertices {
		if v.X() == coord.X() && v.Y() == coord.Y() {
			return true
		}
	}
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := t.vertices[i].X(), t.vertices[i].Y()
		xj, yj := t.vertices[j].X(), t.vertices[j].Y()

		intersect := (yi > coord.Y()) != (yj > coord.Y()) &&
			coord.X() < (xj-xi)*(coord.Y()-yi)/(yj-yi)+xi
		if intersect {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Intersects reports whether t and other overlap, either by a polygon edge
// crossing or by one polygon fully containing a vertex of the other.
func (t Transform) Intersects(other Transform) bool {
	if !t.bbox.Intersects3D(other.bbox) {
		return false
	}

	n, m := len(t.vertices), len(other.vertices)
	for i := 0; i < n; i++ {
		a1, a2 := t.vertices[i], t.vertices[(i+1)%n]
		for j := 0; j < m; j++ {
			b1, b2 := other.vertices[j], other.vertices[(j+1)%m]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}

	if n > 0 && m > 0 && (t.CoordWithin(other.vertices[0]) || other.CoordWithin(t.vertices[0])) {
		return true
	}
	return false
}

// segmentsIntersect determines whether segments (a1, a2) and (b1, b2)
// intersect within their bounds (not as infinite lines).
func segmentsIntersect(a1, a2, b1, b2 Vec3) bool {
	d1x, d1y := a2.X()-a1.X(), a2.Y()-a1.Y()
	d2x, d2y := b2.X()-b1.X(), b2.Y()-b1.Y()

	denom := d1x*d2y - d2x*d1y
	if math.Abs(denom) < 1e-12 {
		return false
	}

	ua := (d2x*(a1.Y()-b1.Y()) - d2y*(a1.X()-b1.X())) / denom
	ub := (d1x*(a1.Y()-b1.Y()) - d1y*(a1.X()-b1.X())) / denom

	return ua >= 0 && ua <= 1.0 && ub >= 0 && ub <= 1.0
}

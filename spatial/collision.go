package spatial

import (
	"math"

	"github.com/tilekeep/server/ecs"
	"github.com/tilekeep/server/geom"
)

// TillCollision returns the furthest point along the segment from source to
// destination at which an entity_size AABB does not intersect obstacle. If
// destination itself is clear, destination is returned unchanged. Otherwise
// the candidate point is stepped back towards source by step along each
// axis whose velocity component points away from source, until it clears
// the obstacle or until source itself is reached. If even source still
// intersects obstacle, (_, false) is returned: no clearance exists at all.
func TillCollision(source, destination geom.Vec3, velocity geom.Vec2, size geom.Vec2, obstacle geom.Bounds, step float64) (geom.Vec3, bool) {
	z := destination.Z()
	x, y := destination.X(), destination.Y()
	sx, sy := source.X(), source.Y()

	intersectsAt := func(px, py float64) bool {
		return geom.NewBounds(geom.NewVec3(px, py, z), size.X(), size.Y()).Intersects2D(obstacle)
	}

	if !intersectsAt(x, y) {
		return destination, true
	}

	maxIterations := int(math.Max(math.Abs(x-sx), math.Abs(y-sy))/step) + 2
	for i := 0; i < maxIterations; i++ {
		moved := false
		switch {
		case velocity.X() > 0 && x > sx:
			x, moved = math.Max(sx, x-step), true
		case velocity.X() < 0 && x < sx:
			x, moved = math.Min(sx, x+step), true
		}
		switch {
		case velocity.Y() > 0 && y > sy:
			y, moved = math.Max(sy, y-step), true
		case velocity.Y() < 0 && y < sy:
			y, moved = math.Min(sy, y+step), true
		}

		if !intersectsAt(x, y) {
			return geom.NewVec3(x, y, z), true
		}
		if (x == sx && y == sy) || !moved {
			break
		}
	}

	if intersectsAt(sx, sy) {
		return geom.Vec3{}, false
	}
	return geom.NewVec3(sx, sy, z), true
}

// BoundsLookup resolves an entity to its current AABB, used by
// TillCollisions to inspect each nearby obstacle in turn.
type BoundsLookup func(ecs.Entity) (geom.Bounds, bool)

// TillCollisions checks a prospective move against every entity in nearby,
// returning the closest-to-source clearance point across all of them. If
// any single obstacle permits no clearance whatsoever (TillCollision
// returns false for it), the move is entirely blocked and TillCollisions
// returns (_, false). With no obstacles, or if every obstacle is clear at
// destination, destination itself is returned.
func TillCollisions(source, destination geom.Vec3, velocity geom.Vec2, size geom.Vec2, nearby map[ecs.Entity]struct{}, lookup BoundsLookup, step float64) (geom.Vec3, bool) {
	if len(nearby) == 0 {
		return destination, true
	}

	closest := destination
	found := false
	for e := range nearby {
		bounds, ok := lookup(e)
		if !ok {
			continue
		}
		pos, ok := TillCollision(source, destination, velocity, size, bounds, step)
		if !ok {
			return geom.Vec3{}, false
		}
		if !found || closerToSource(source, pos, closest) {
			closest = pos
			found = true
		}
	}

	if found {
		return closest, true
	}
	return destination, true
}

func closerToSource(source, candidate, current geom.Vec3) bool {
	return source.Distance2D(candidate) < source.Distance2D(current)
}

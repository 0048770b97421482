// Package region implements polygon-bounded world regions: spawn points,
// tile grids, and the descriptor files they're loaded from.
package region

import (
	"github.com/tilekeep/server/geom"
)

// Region is a polygon area of the world, carrying a spawn point and the
// tile size entities within it are aligned to.
type Region struct {
	Name        string
	Description string
	Spawn       geom.Vec3
	Polygon     geom.Transform
	TileSize    float64
}

// New builds a Region from its vertices.
func New(name, description string, spawn geom.Vec3, vertices []geom.Vec3, tileSize float64) Region {
	return Region{
		Name:        name,
		Description: description,
		Spawn:       spawn,
		Polygon:     geom.FromVertices(vertices),
		TileSize:    tileSize,
	}
}

// Contains reports whether point lies within the region's polygon.
func (r Region) Contains(point geom.Vec3) bool {
	return r.Polygon.CoordWithin(point)
}

// ContainsBounds reports whether every corner of bounds lies within the
// region's polygon.
func (r Region) ContainsBounds(bounds geom.Bounds) bool {
	for _, corner := range bounds.AsCoords() {
		if !r.Contains(corner) {
			return false
		}
	}
	return true
}

// AABB returns the region's cached bounding box.
func (r Region) AABB() geom.Bounds {
	return r.Polygon.BoundingBox()
}

// TileLength is the maximum distance, in world units, a projectile may
// travel along a single tick.
func (r Region) TileLength() float64 { return r.TileSize }

// TileSizeVec returns the per-axis clamp creature velocities are held to:
// plus or minus one tile on each axis.
func (r Region) TileSizeVec() geom.Vec2 {
	return geom.NewVec2(r.TileSize, r.TileSize)
}

// AlignToTile snaps v to the region's tile grid.
func (r Region) AlignToTile(v geom.Vec3) geom.Vec3 {
	if r.TileSize <= 0 {
		return v
	}
	snap := func(x float64) float64 {
		return float64(int64(x/r.TileSize)) * r.TileSize
	}
	return geom.NewVec3(snap(v.X()), snap(v.Y()), v.Z())
}

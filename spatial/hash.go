// Package spatial implements a uniform-grid spatial hash used to index
// entities by their AABB for fast area queries and swept collision
// resolution.
package spatial

import (
	"github.com/brentp/intintmap"
	"github.com/segmentio/fasthash/fnv1a"
	"github.com/tilekeep/server/ecs"
	"github.com/tilekeep/server/geom"
)

// DefaultCellSize is the default cell edge length, in world units,
// recommended to match the average entity AABB.
const DefaultCellSize = 32.0

// Hash is a uniform grid: every cell a moving AABB overlaps holds that
// entity's id. Negative world coordinates are unsupported (cell
// coordinates are computed with integer floor division); callers that need
// them should offset their world's origin.
type Hash struct {
	cellSize float64
	// index maps a packed cell key to a slot in buckets. intintmap is used
	// here rather than a plain Go map because the key space is a dense,
	// purely numeric int64 and this is the hottest per-tick path in the
	// server (every moving entity re-queries several cells a tick).
	index   *intintmap.Map
	buckets []map[ecs.Entity]struct{}
}

// New returns a Hash with the given cell size.
func New(cellSize float64) *Hash {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Hash{
		cellSize: cellSize,
		index:    intintmap.New(64, 0.6),
	}
}

// cellKey packs a cell's (x, y) grid coordinates into a single hashed key,
// via fnv1a over the two coordinates in sequence.
func cellKey(cx, cy int64) int64 {
	h := fnv1a.Init64
	h = fnv1a.AddUint64(h, uint64(cx))
	h = fnv1a.AddUint64(h, uint64(cy))
	return int64(h)
}

func (h *Hash) cellCoord(x float64) int64 {
	if x < 0 {
		x = 0
	}
	return int64(x / h.cellSize)
}

// cellsFor returns the grid coordinates of every cell bounds overlaps.
func (h *Hash) cellsFor(bounds geom.Bounds) [][2]int64 {
	startX := h.cellCoord(bounds.X())
	startY := h.cellCoord(bounds.Y())
	endX := h.cellCoord(bounds.X() + bounds.Width())
	endY := h.cellCoord(bounds.Y() + bounds.Height())

	cells := make([][2]int64, 0, (endX-startX+1)*(endY-startY+1))
	for x := startX; x <= endX; x++ {
		for y := startY; y <= endY; y++ {
			cells = append(cells, [2]int64{x, y})
		}
	}
	return cells
}

func (h *Hash) bucket(cx, cy int64, createIfMissing bool) map[ecs.Entity]struct{} {
	key := cellKey(cx, cy)
	if idx, ok := h.index.Get(key); ok {
		return h.buckets[idx]
	}
	if !createIfMissing {
		return nil
	}
	h.buckets = append(h.buckets, make(map[ecs.Entity]struct{}))
	h.index.Put(key, int64(len(h.buckets)-1))
	return h.buckets[len(h.buckets)-1]
}

// Insert adds entity to every cell its bounds overlaps.
func (h *Hash) Insert(entity ecs.Entity, bounds geom.Bounds) {
	for _, c := range h.cellsFor(bounds) {
		h.bucket(c[0], c[1], true)[entity] = struct{}{}
	}
}

// Remove removes entity from every cell its bounds overlaps.
func (h *Hash) Remove(entity ecs.Entity, bounds geom.Bounds) {
	for _, c := range h.cellsFor(bounds) {
		if b := h.bucket(c[0], c[1], false); b != nil {
			delete(b, entity)
		}
	}
}

// Query returns the union of every entity occupying a cell that bounds
// overlaps, excluding the entity named in exclude (if any is given).
func (h *Hash) Query(bounds geom.Bounds, exclude ...ecs.Entity) map[ecs.Entity]struct{} {
	var excluded ecs.Entity
	hasExclude := len(exclude) > 0
	if hasExclude {
		excluded = exclude[0]
	}

	result := make(map[ecs.Entity]struct{})
	for _, c := range h.cellsFor(bounds) {
		b := h.bucket(c[0], c[1], false)
		for e := range b {
			if hasExclude && e == excluded {
				continue
			}
			result[e] = struct{}{}
		}
	}
	return result
}

// Package components defines the small set of ECS component types every
// other package (movement, process, game) shares a common understanding
// of.
package components

import (
	"github.com/google/uuid"
	"github.com/tilekeep/server/geom"
)

// Position is an entity's top-left corner and footprint. z is a discrete
// layer (ground plane or projectile plane), not continuous height.
type Position struct {
	Loc  geom.Vec3
	Size geom.Vec2
}

// Bounds returns the AABB this position occupies.
func (p Position) Bounds() geom.Bounds {
	return geom.FromVec(p.Loc, p.Size)
}

// Velocity is an entity's desired displacement for the current tick,
// before clamping.
type Velocity geom.Vec2

// Player marks an entity as a human player and carries its session
// identity.
type Player struct {
	UUID uuid.UUID
}

// Projectile marks an entity as an autonomous, self-expiring object.
type Projectile struct{}

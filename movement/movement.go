// Package movement implements the per-tick physics system: clamping
// velocities, sweeping against regions and other entities, and emitting
// the broadcasts that follow from whatever happened.
package movement

import (
	"github.com/google/uuid"
	"github.com/tilekeep/server/components"
	"github.com/tilekeep/server/ecs"
	"github.com/tilekeep/server/geom"
	"github.com/tilekeep/server/process"
	"github.com/tilekeep/server/protocol"
	"github.com/tilekeep/server/region"
	spatialhash "github.com/tilekeep/server/spatial"
)

// nearbyRange is the AABB scale factor used to decide which players hear
// about a given entity's movement or deletion.
const nearbyRange = 10.0

// RegionProvider resolves a world point to the region containing it.
// Satisfied by *region.Provider.
type RegionProvider interface {
	Find(point geom.Vec3) (region.Region, bool)
}

// Run executes one tick of the movement system against every entity that
// has both a Position and a Velocity, mutating world and grid in place and
// returning the outbound configurations the tick produced.
func Run(world *ecs.World, grid *spatialhash.Hash, regions RegionProvider) []process.Configuration {
	var posChanges []ecs.Change[components.Position]
	var velChanges []ecs.Change[components.Velocity]
	var despawn []ecs.Entity
	var configs []process.Configuration

	// Snapshot positions before any mutation: every entity observes every
	// other at its PRE-TICK position during this tick's resolution.
	snapshot := make(map[ecs.Entity]components.Position)
	for e, p := range ecs.Query1[components.Position](world) {
		snapshot[e] = *p
	}
	lookup := func(e ecs.Entity) (geom.Bounds, bool) {
		p, ok := snapshot[e]
		if !ok {
			return geom.Bounds{}, false
		}
		return p.Bounds(), true
	}

	for _, pair := range ecs.Query2[components.Position, components.Velocity](world) {
		entity, pos, vel := pair.Entity, *pair.A, geom.Vec2(*pair.B)

		r, ok := regions.Find(pos.Loc)
		if !ok {
			continue
		}
		isProjectile := ecs.Has[components.Projectile](world, entity)

		clamped := vel
		step := 1.0
		if isProjectile {
			clamped = vel.Clamped(0, r.TileLength())
		} else {
			step = r.TileSize
			tile := r.TileSizeVec()
			clamped = vel.ClampComponents(tile.ApplyScalar(-1), tile)
		}

		transform := geom.FromVecs(pos.Loc, pos.Size)
		swept := transform.AppliedVelocity(clamped, r.AABB())
		destination := swept.Position()

		effective := clamped
		if !isProjectile {
			aligned := r.AlignToTile(destination)
			destination = aligned
			effective = destination.Offset2D(pos.Loc).Vec2()
		}

		moved := destination.Round() != pos.Loc.Round()

		var nearby map[ecs.Entity]struct{}
		if moved {
			bounds := geom.FromVec(destination, pos.Size)
			nearby = grid.Query(bounds, entity)
		}

		finalPos, hasClearance := spatialhash.TillCollisions(pos.Loc, destination, effective, pos.Size, nearby, lookup, step)
		if !hasClearance {
			finalPos = pos.Loc
		}

		nearbyPlayers := NearbyPlayers(world, grid, entity, pos)

		stayed := finalPos.Round() == pos.Loc.Round()
		stuck := stayed && !effective.IsZero()
		overshoot := effective.Length() > vel.Length()

		if stayed || stuck || overshoot {
			if isProjectile {
				despawn = append(despawn, entity)
				grid.Remove(entity, pos.Bounds())
				configs = append(configs, process.Broadcast(
					protocol.New(protocol.EntityDelete, uuid.Nil, protocol.EntityPayload(entity)),
					process.LocalScope(nearbyPlayers...),
				))
				continue
			}

			velChanges = append(velChanges, ecs.RemoveChange[components.Velocity](entity))
			if !overshoot {
				continue
			}
		}

		remaining := vel.Sub(effective)
		posChanges = append(posChanges, ecs.UpdateChange(entity, components.Position{Loc: finalPos, Size: pos.Size}))
		velChanges = append(velChanges, ecs.UpdateChange(entity, components.Velocity(remaining)))

		grid.Remove(entity, pos.Bounds())
		grid.Insert(entity, geom.FromVec(finalPos, pos.Size))

		configs = append(configs, process.Broadcast(
			protocol.New(protocol.Movement, uuid.Nil, protocol.NewMovementPayload(entity, pos.Size, finalPos, effective)),
			process.LocalScope(nearbyPlayers...),
		))
	}

	ecs.ApplyChanges(world, velChanges)
	ecs.ApplyChanges(world, posChanges)
	for _, e := range despawn {
		world.Despawn(e)
	}

	return configs
}

// NearbyPlayers returns the session UUIDs of every Player entity
// within nearbyRange times the given position's AABB.
func NearbyPlayers(world *ecs.World, hash *spatialhash.Hash, self ecs.Entity, pos components.Position) []uuid.UUID {
	scaled := pos.Bounds().ScaledFromCenter(nearbyRange)
	found := hash.Query(scaled, self)

	uuids := make([]uuid.UUID, 0, len(found))
	for e := range found {
		if player, ok := ecs.Get[components.Player](world, e); ok {
			uuids = append(uuids, player.UUID)
		}
	}
	return uuids
}

// Package game implements the Gamestate orchestrator: the tick loop that
// owns the ECS world, the spatial index, the timer queue and the region
// set, draining inbound intents once per tick and running movement.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tilekeep/server/cache"
	"github.com/tilekeep/server/components"
	"github.com/tilekeep/server/ecs"
	"github.com/tilekeep/server/geom"
	"github.com/tilekeep/server/movement"
	"github.com/tilekeep/server/process"
	"github.com/tilekeep/server/protocol"
	"github.com/tilekeep/server/region"
	"github.com/tilekeep/server/spatial"
	"github.com/tilekeep/server/timer"
)

// DefaultPlayerSize is the footprint every joining player spawns with.
var DefaultPlayerSize = geom.NewVec2(32, 32)

// ProjectileLifespanSeconds is how long a spawned projectile survives
// before its EntityDelete timer force-despawns it.
const ProjectileLifespanSeconds = 10.0

// Sender delivers an outbound configuration to whichever sessions it
// names. Satisfied by *transport.Server; kept as an interface here so
// this package never needs to import the transport layer.
type Sender interface {
	Send(process.Configuration)
}

// Config configures a Gamestate's tick loop and initial world content.
type Config struct {
	Log *slog.Logger

	// SpatialCellSize is the uniform grid's cell size, in world units.
	SpatialCellSize float64

	// Regions is the loaded set of playable areas. At least one is
	// required: Gamestate refuses to start without a spawn point.
	Regions *region.Provider

	// SpawnRegion names the region joining players spawn in. If empty,
	// or if no region has this name, the first loaded region is used.
	SpawnRegion string
}

// Gamestate is the simulation: it drains inbound intents, runs movement,
// and forwards whatever broadcasts result to a Sender, once per tick.
type Gamestate struct {
	log     *slog.Logger
	world   *ecs.World
	grid    *spatial.Hash
	timers  *timer.Manager
	regions *region.Provider
	spawn   region.Region

	inbound *cache.PacketCache
	out     Sender
}

// New constructs a Gamestate. ids is shared with whatever mints
// projectile entity ids off the simulation's own goroutine (the packet
// processor), so Gamestate and that processor never collide on an id.
func New(cfg Config, ids *ecs.IDAllocator, inbound *cache.PacketCache, out Sender) (*Gamestate, error) {
	if cfg.Regions == nil || cfg.Regions.Len() == 0 {
		return nil, fmt.Errorf("game: at least one region is required to start")
	}
	spawn, ok := cfg.Regions.FindByName(cfg.SpawnRegion)
	if !ok {
		spawn = cfg.Regions.Regions()[0]
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	world := ecs.NewWorldWithIDs(ids)
	ecs.Register[components.Position](world)
	ecs.Register[components.Velocity](world)
	ecs.Register[components.Player](world)
	ecs.Register[components.Projectile](world)

	return &Gamestate{
		log:     log,
		world:   world,
		grid:    spatial.New(cfg.SpatialCellSize),
		timers:  timer.NewManager(),
		regions: cfg.Regions,
		spawn:   spawn,
		inbound: inbound,
		out:     out,
	}, nil
}

// Run drives the tick loop until ctx is cancelled or a Shutdown packet is
// drained from the inbound queue. Each tick: expire timers, drain and
// apply intents, run movement, then sleep the remainder of the tick
// budget.
func (g *Gamestate) Run(ctx context.Context) {
	ticker := time.NewTicker(timer.ServerTickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if g.tick() {
				return
			}
		}
	}
}

// tick runs a single simulation step and reports whether a Shutdown
// intent was seen, in which case the caller should stop the loop.
func (g *Gamestate) tick() bool {
	for _, cfg := range g.applyExpiredTimers() {
		g.out.Send(cfg)
	}

	shutdown := false
	for _, pkt := range g.inbound.GetAll() {
		cfg, stop := g.applyIntent(pkt)
		if stop {
			shutdown = true
			break
		}
		if !cfg.IsEmpty() {
			g.out.Send(cfg)
		}
	}

	if shutdown {
		return true
	}

	for _, cfg := range movement.Run(g.world, g.grid, g.regions) {
		g.out.Send(cfg)
	}

	return false
}

// applyExpiredTimers despawns every entity an expired timer names and
// returns the resulting EntityDelete broadcasts.
func (g *Gamestate) applyExpiredTimers() []process.Configuration {
	var configs []process.Configuration
	for _, t := range g.timers.Update() {
		entity, ok := t.Data.Entity()
		if !ok || !g.world.Alive(entity) {
			continue
		}
		if pos, ok := ecs.Get[components.Position](g.world, entity); ok {
			g.grid.Remove(entity, pos.Bounds())
		}
		g.world.Despawn(entity)
		configs = append(configs, process.Broadcast(
			protocol.New(protocol.EntityDelete, uuid.Nil, protocol.EntityPayload(entity)),
			process.GlobalScope(),
		))
	}
	return configs
}

// applyIntent handles one packet drained from the inbound queue. The
// returned bool is true only for Shutdown, signalling the caller to stop
// the tick loop after this packet.
func (g *Gamestate) applyIntent(pkt protocol.Packet) (process.Configuration, bool) {
	switch pkt.Action() {
	case protocol.ClientJoin:
		return g.handleJoin(pkt.UUID()), false
	case protocol.ClientLeave:
		return g.handleLeave(pkt.UUID()), false
	case protocol.Movement:
		return g.handleMovement(pkt), false
	case protocol.Projectile:
		return g.handleProjectile(pkt), false
	case protocol.Shutdown:
		return process.Empty(), true
	default:
		return process.Empty(), false
	}
}

func (g *Gamestate) handleJoin(id uuid.UUID) process.Configuration {
	pos := components.Position{Loc: g.spawn.Spawn, Size: DefaultPlayerSize}
	entity := g.world.Spawn().Build()
	ecs.Upsert(g.world, entity, pos)
	ecs.Upsert(g.world, entity, components.Player{UUID: id})
	g.grid.Insert(entity, pos.Bounds())

	zero := geom.OriginVec2
	movementPayload := protocol.NewMovementPayload(entity, pos.Size, pos.Loc, zero)
	success := protocol.New(protocol.Success, id, movementPayload)
	announce := protocol.New(protocol.ClientJoin, id, movementPayload)

	nearby := movement.NearbyPlayers(g.world, g.grid, entity, pos)
	return process.SuccessBroadcast(success, announce, process.LocalScope(nearby...))
}

func (g *Gamestate) handleLeave(id uuid.UUID) process.Configuration {
	entity, ok := g.findPlayer(id)
	if !ok {
		return process.Empty()
	}
	if pos, ok := ecs.Get[components.Position](g.world, entity); ok {
		g.grid.Remove(entity, pos.Bounds())
	}
	g.world.Despawn(entity)
	return process.Broadcast(
		protocol.New(protocol.ClientLeave, id, protocol.EmptyPayload()),
		process.GlobalScope(),
	)
}

func (g *Gamestate) handleMovement(pkt protocol.Packet) process.Configuration {
	_, _, _, velocity, ok := pkt.Payload().Movement()
	if !ok {
		return process.Empty()
	}
	entity, ok := g.findPlayer(pkt.UUID())
	if !ok {
		return process.Empty()
	}
	ecs.Upsert(g.world, entity, components.Velocity(velocity))
	return process.Empty()
}

func (g *Gamestate) handleProjectile(pkt protocol.Packet) process.Configuration {
	entity, size, position, velocity, ok := pkt.Payload().Movement()
	if !ok {
		return process.Empty()
	}
	if _, inRegion := g.regions.Find(position); !inRegion {
		return process.Empty()
	}

	pos := components.Position{Loc: position, Size: size}
	g.world.SpawnAt(entity)
	ecs.Upsert(g.world, entity, pos)
	ecs.Upsert(g.world, entity, components.Velocity(velocity))
	ecs.Upsert(g.world, entity, components.Projectile{})
	g.grid.Insert(entity, pos.Bounds())
	g.timers.AddSeconds(ProjectileLifespanSeconds, timer.DeleteEntity(entity))

	return process.Empty()
}

func (g *Gamestate) findPlayer(id uuid.UUID) (ecs.Entity, bool) {
	for e, player := range ecs.Query1[components.Player](g.world) {
		if player.UUID == id {
			return e, true
		}
	}
	return ecs.Invalid, false
}

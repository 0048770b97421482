package movement

import (
	"testing"

	"github.com/tilekeep/server/components"
	"github.com/tilekeep/server/ecs"
	"github.com/tilekeep/server/geom"
	"github.com/tilekeep/server/region"
	"github.com/tilekeep/server/spatial"
)

func openField(tileSize float64) *region.Provider {
	p := region.NewProvider()
	vertices := []geom.Vec3{
		geom.NewVec3(0, 0, 0),
		geom.NewVec3(1000, 0, 0),
		geom.NewVec3(1000, 1000, 0),
		geom.NewVec3(0, 1000, 0),
	}
	p.Add(region.New("field", "open field", geom.NewVec3(500, 500, 0), vertices, tileSize))
	return p
}

func TestCreatureMovesWithinRegion(t *testing.T) {
	world := ecs.NewWorld()
	ecs.Register[components.Position](world)
	ecs.Register[components.Velocity](world)
	grid := spatial.New(32)
	regions := openField(16)

	pos := components.Position{Loc: geom.NewVec3(100, 100, 0), Size: geom.NewVec2(16, 16)}
	e := world.Spawn().Build()
	ecs.Upsert(world, e, pos)
	ecs.Upsert(world, e, components.Velocity(geom.NewVec2(16, 0)))
	grid.Insert(e, pos.Bounds())

	Run(world, grid, regions)

	updated, ok := ecs.Get[components.Position](world, e)
	if !ok {
		t.Fatal("expected position component to still exist")
	}
	if updated.Loc.X() <= pos.Loc.X() {
		t.Fatalf("expected entity to move in +x, got %v", updated.Loc)
	}
}

func TestProjectileDespawnsWhenStuckAgainstBoundary(t *testing.T) {
	world := ecs.NewWorld()
	ecs.Register[components.Position](world)
	ecs.Register[components.Velocity](world)
	ecs.Register[components.Projectile](world)
	grid := spatial.New(32)
	regions := openField(16)

	pos := components.Position{Loc: geom.NewVec3(998, 500, 0), Size: geom.NewVec2(16, 16)}
	e := world.Spawn().Build()
	ecs.Upsert(world, e, pos)
	ecs.Upsert(world, e, components.Velocity(geom.NewVec2(50, 0)))
	ecs.Upsert(world, e, components.Projectile{})
	grid.Insert(e, pos.Bounds())

	configs := Run(world, grid, regions)

	if ecs.Has[components.Position](world, e) {
		t.Fatal("expected a projectile stuck against the region boundary to despawn")
	}

	foundDelete := false
	for _, c := range configs {
		if _, _, ok := c.BroadcastPacket(); ok {
			foundDelete = true
		}
	}
	if !foundDelete {
		t.Fatal("expected an EntityDelete broadcast for the despawned projectile")
	}
}

func TestEntityWithoutRegionIsSkipped(t *testing.T) {
	world := ecs.NewWorld()
	ecs.Register[components.Position](world)
	ecs.Register[components.Velocity](world)
	grid := spatial.New(32)
	regions := region.NewProvider() // no regions loaded

	pos := components.Position{Loc: geom.NewVec3(5000, 5000, 0), Size: geom.NewVec2(16, 16)}
	e := world.Spawn().Build()
	ecs.Upsert(world, e, pos)
	ecs.Upsert(world, e, components.Velocity(geom.NewVec2(1, 0)))

	Run(world, grid, regions)

	got, _ := ecs.Get[components.Position](world, e)
	if *got != pos {
		t.Fatalf("expected an entity outside any region to be left untouched, got %+v", got)
	}
}

func TestStuckCreatureLosesVelocity(t *testing.T) {
	world := ecs.NewWorld()
	ecs.Register[components.Position](world)
	ecs.Register[components.Velocity](world)
	grid := spatial.New(32)
	regions := openField(16)

	// An obstacle occupying the only cell this entity could move into.
	blocker := ecs.Entity(999)
	blockerPos := components.Position{Loc: geom.NewVec3(116, 100, 0), Size: geom.NewVec2(16, 16)}
	grid.Insert(blocker, blockerPos.Bounds())
	ecs.Upsert(world, blocker, blockerPos)

	pos := components.Position{Loc: geom.NewVec3(100, 100, 0), Size: geom.NewVec2(16, 16)}
	e := world.Spawn().Build()
	ecs.Upsert(world, e, pos)
	ecs.Upsert(world, e, components.Velocity(geom.NewVec2(16, 0)))
	grid.Insert(e, pos.Bounds())

	Run(world, grid, regions)

	if ecs.Has[components.Velocity](world, e) {
		t.Fatal("expected a creature that could not move to have its velocity removed")
	}
}

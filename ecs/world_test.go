package ecs

import "testing"

type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }
type Tag struct{}

func TestSpawnUpsertGet(t *testing.T) {
	w := NewWorld()
	Register[Position](w)

	e := With(w.Spawn(), Position{X: 1, Y: 2}).Build()

	pos, ok := Get[Position](w, e)
	if !ok {
		t.Fatal("expected position component")
	}
	if pos.X != 1 || pos.Y != 2 {
		t.Fatalf("unexpected position: %+v", pos)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	w := NewWorld()
	Register[Position](w)
	e := w.Spawn().Build()

	Upsert(w, e, Position{X: 1, Y: 1})
	Upsert(w, e, Position{X: 5, Y: 5})

	pos, _ := Get[Position](w, e)
	if pos.X != 5 || pos.Y != 5 {
		t.Fatalf("expected replaced position, got %+v", pos)
	}
	if Count[Position](w) != 1 {
		t.Fatalf("expected exactly one stored position, got %d", Count[Position](w))
	}
}

func TestRemoveSwapsDenseCorrectly(t *testing.T) {
	w := NewWorld()
	Register[Position](w)

	e1 := With(w.Spawn(), Position{X: 1}).Build()
	e2 := With(w.Spawn(), Position{X: 2}).Build()
	e3 := With(w.Spawn(), Position{X: 3}).Build()

	Remove[Position](w, e1)

	if Has[Position](w, e1) {
		t.Fatal("e1 should no longer have a position")
	}
	p2, ok := Get[Position](w, e2)
	if !ok || p2.X != 2 {
		t.Fatalf("e2's component corrupted after swap-remove: %+v", p2)
	}
	p3, ok := Get[Position](w, e3)
	if !ok || p3.X != 3 {
		t.Fatalf("e3's component corrupted after swap-remove: %+v", p3)
	}
}

func TestDespawnRemovesFromEveryStore(t *testing.T) {
	w := NewWorld()
	Register[Position](w)
	Register[Velocity](w)

	e := With(With(w.Spawn(), Position{}), Velocity{X: 1}).Build()
	w.Despawn(e)

	if Has[Position](w, e) || Has[Velocity](w, e) {
		t.Fatal("despawned entity still has components")
	}
}

func TestQuery1IteratesAllMembers(t *testing.T) {
	w := NewWorld()
	Register[Position](w)

	want := map[Entity]bool{}
	for i := 0; i < 5; i++ {
		e := With(w.Spawn(), Position{X: float64(i)}).Build()
		want[e] = true
	}

	got := map[Entity]bool{}
	for e := range Query1[Position](w) {
		got[e] = true
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entities, got %d", len(want), len(got))
	}
}

func TestQuery2OnlyIntersection(t *testing.T) {
	w := NewWorld()
	Register[Position](w)
	Register[Velocity](w)

	both := With(With(w.Spawn(), Position{}), Velocity{}).Build()
	_ = With(w.Spawn(), Position{}).Build() // position only

	rows := Query2[Position, Velocity](w)
	if len(rows) != 1 || rows[0].Entity != both {
		t.Fatalf("expected exactly the entity with both components, got %+v", rows)
	}
}

func TestApplyChangesDeferredMutation(t *testing.T) {
	w := NewWorld()
	Register[Velocity](w)

	e1 := With(w.Spawn(), Velocity{X: 1}).Build()
	e2 := With(w.Spawn(), Velocity{X: 2}).Build()

	var changes []Change[Velocity]
	for e, v := range Query1[Velocity](w) {
		if v.X == 1 {
			changes = append(changes, RemoveChange[Velocity](e))
		} else {
			changes = append(changes, UpdateChange(e, Velocity{X: v.X * 10}))
		}
	}
	ApplyChanges(w, changes)

	if Has[Velocity](w, e1) {
		t.Fatal("e1's velocity should have been removed")
	}
	v2, _ := Get[Velocity](w, e2)
	if v2.X != 20 {
		t.Fatalf("expected updated velocity 20, got %f", v2.X)
	}
}

func TestApplyChangesOnDespawnedEntityIsNoop(t *testing.T) {
	w := NewWorld()
	Register[Velocity](w)
	e := w.Spawn().Build()
	w.Despawn(e)

	ApplyChanges(w, []Change[Velocity]{UpdateChange(e, Velocity{X: 1})})
	if Has[Velocity](w, e) {
		t.Fatal("an update queued against a despawned entity must be a no-op")
	}
}

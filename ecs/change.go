package ecs

// Change is a deferred mutation to a component store, collected by a system
// while iterating a query and applied afterwards via ApplyChanges. This
// avoids mutating a sparse set's dense arrays mid-iteration, which would
// invalidate the iteration order.
type Change[T any] struct {
	entity Entity
	remove bool
	value  T
}

// UpdateChange returns a Change that upserts value onto entity.
func UpdateChange[T any](entity Entity, value T) Change[T] {
	return Change[T]{entity: entity, value: value}
}

// RemoveChange returns a Change that removes entity's component of type T.
func RemoveChange[T any](entity Entity) Change[T] {
	return Change[T]{entity: entity, remove: true}
}

// ApplyChanges applies every queued Change to w, in order. A change
// referencing an entity that was despawned earlier in the same tick is a
// no-op: Remove against a missing sparse-set entry is already harmless, and
// an Update is skipped outright rather than resurrecting the entity with a
// stray component.
func ApplyChanges[T any](w *World, changes []Change[T]) {
	for _, c := range changes {
		if c.remove {
			Remove[T](w, c.entity)
			continue
		}
		if !w.Alive(c.entity) {
			continue
		}
		Upsert(w, c.entity, c.value)
	}
}

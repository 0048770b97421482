// Package ecs implements a small entity-component-system world store:
// sparse-set component storage, 1/2/3-arity joins, and a deferred
// ComponentChange batch so that systems can safely mutate components while
// iterating over a query.
package ecs

import "fmt"

// Entity is an opaque, strictly-increasing identity. Ids are never reused
// within a server lifetime.
type Entity uint64

// Invalid is the sentinel Entity representing "no entity".
const Invalid Entity = 0

// String implements fmt.Stringer.
func (e Entity) String() string { return fmt.Sprintf("entity#%d", uint64(e)) }

// IsValid reports whether e is not the Invalid sentinel.
func (e Entity) IsValid() bool { return e != Invalid }

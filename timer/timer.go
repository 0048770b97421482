// Package timer implements the tick-indexed deadline queue used to expire
// short-lived entities such as projectiles.
package timer

import (
	"sort"
	"time"

	"github.com/tilekeep/server/ecs"
)

// ServerTicksPerSecond is the authoritative simulation rate.
const ServerTicksPerSecond = 180.0

// ClientTicksPerSecond is exposed only as a hint for client-side timers;
// the server never depends on it.
const ClientTicksPerSecond = 60.0

// Data is the payload a Timer carries once it expires.
type Data struct {
	empty        bool
	entityDelete ecs.Entity
}

// EmptyData is a diagnostic timer with no effect when drained.
func EmptyData() Data { return Data{empty: true} }

// DeleteEntity schedules e's removal once the timer expires.
func DeleteEntity(e ecs.Entity) Data { return Data{entityDelete: e} }

// IsEmpty reports whether d carries no actionable payload.
func (d Data) IsEmpty() bool { return d.empty }

// Entity returns the entity to delete and true, if d is an entity-delete
// timer.
func (d Data) Entity() (ecs.Entity, bool) {
	return d.entityDelete, !d.empty && d.entityDelete != ecs.Invalid
}

// Timer is a single scheduled deadline.
type Timer struct {
	start int64
	span  int64
	Data  Data
}

func (t Timer) deadline() int64 { return t.start + t.span }

func (t Timer) expired(currentTick int64) bool {
	return t.deadline() <= currentTick
}

// Manager holds every pending Timer, sorted by ascending deadline.
type Manager struct {
	timers []Timer
	tick   int64
}

// NewManager returns an empty Manager at tick 0.
func NewManager() *Manager {
	return &Manager{}
}

// Tick returns the current tick count.
func (m *Manager) Tick() int64 { return m.tick }

// ServerTickInterval is the wall-clock duration of a single server tick.
func ServerTickInterval() time.Duration {
	return time.Second / ServerTicksPerSecond
}

// ClientTickInterval is the wall-clock duration of a single client tick,
// provided only as a hint for clients.
func ClientTickInterval() time.Duration {
	return time.Second / ClientTicksPerSecond
}

// AddTicks schedules data to fire span ticks from now.
func (m *Manager) AddTicks(span int64, data Data) {
	t := Timer{start: m.tick, span: span, Data: data}
	i := sort.Search(len(m.timers), func(i int) bool {
		return m.timers[i].deadline() > t.deadline()
	})
	m.timers = append(m.timers, Timer{})
	copy(m.timers[i+1:], m.timers[i:])
	m.timers[i] = t
}

// AddSeconds schedules data to fire after span seconds, measured in
// server ticks.
func (m *Manager) AddSeconds(span float64, data Data) {
	ticks := int64(span*ServerTicksPerSecond + 0.5)
	m.AddTicks(ticks, data)
}

// Update advances the tick counter by one and drains every timer whose
// deadline has now passed, in deadline order.
func (m *Manager) Update() []Timer {
	m.tick++

	cut := len(m.timers)
	for i, t := range m.timers {
		if !t.expired(m.tick) {
			cut = i
			break
		}
	}

	expired := make([]Timer, cut)
	copy(expired, m.timers[:cut])
	m.timers = m.timers[cut:]
	return expired
}

// Len returns the number of pending timers.
func (m *Manager) Len() int { return len(m.timers) }

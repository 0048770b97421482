// Package session tracks connected clients: the address↔UUID binding a
// datagram transport uses to authenticate senders, and the heartbeat
// liveness protocol that evicts unresponsive ones.
package session

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HeartbeatInterval is how often the server pings every session.
const HeartbeatInterval = 5 * time.Second

// EvictAfter is the liveness window: a session that hasn't answered a
// ping within this long is considered gone.
const EvictAfter = 3 * HeartbeatInterval

// Session is a single connected client.
type Session struct {
	UUID     uuid.UUID
	Addr     net.Addr
	PingID   uuid.UUID
	LastPing time.Time

	// Name is a display label used only for logging; it carries no
	// authentication weight.
	Name string
}

// Registry maps sessions by both UUID and network address, guarded by a
// single mutex. Lookups and mutations are brief; nothing here ever blocks
// on a channel operation while the lock is held.
type Registry struct {
	mu     sync.Mutex
	byUUID map[uuid.UUID]*Session
	byAddr map[string]*Session
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byUUID: make(map[uuid.UUID]*Session),
		byAddr: make(map[string]*Session),
	}
}

// Bind returns the session for addr, creating one with a freshly
// allocated UUID if this is the first datagram seen from that address.
// The returned bool is true when a new session was created.
func (r *Registry) Bind(addr net.Addr, now time.Time) (*Session, bool) {
	key := addr.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byAddr[key]; ok {
		return s, false
	}

	s := &Session{
		UUID:     uuid.New(),
		Addr:     addr,
		LastPing: now,
		Name:     key,
	}
	r.byAddr[key] = s
	r.byUUID[s.UUID] = s
	return s, true
}

// Get returns the session for id, if one is registered.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byUUID[id]
	return s, ok
}

// Remove drops the session identified by id from both maps.
func (r *Registry) Remove(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUUID[id]
	if !ok {
		return nil, false
	}
	delete(r.byUUID, id)
	delete(r.byAddr, s.Addr.String())
	return s, true
}

// All returns a snapshot of every registered session.
func (r *Registry) All() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.byUUID))
	for _, s := range r.byUUID {
		out = append(out, s)
	}
	return out
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUUID)
}

// BeginHeartbeat stamps every session with a fresh ping id, to be sent out
// as a single broadcast by the caller.
func (r *Registry) BeginHeartbeat(pingID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byUUID {
		s.PingID = pingID
	}
}

// Acknowledge records a client's response to the current heartbeat,
// updating its liveness timestamp only if the echoed ping id matches the
// one most recently sent to it.
func (r *Registry) Acknowledge(id uuid.UUID, pingID uuid.UUID, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUUID[id]
	if !ok || s.PingID != pingID {
		return false
	}
	s.LastPing = now
	return true
}

// Expired returns and removes every session whose last acknowledged
// heartbeat is older than EvictAfter relative to now.
func (r *Registry) Expired(now time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []*Session
	for id, s := range r.byUUID {
		if now.Sub(s.LastPing) > EvictAfter {
			expired = append(expired, s)
			delete(r.byUUID, id)
			delete(r.byAddr, s.Addr.String())
		}
	}
	return expired
}

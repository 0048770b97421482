// Package process implements the pure dispatch table mapping an inbound
// packet to an outbound configuration, and to whatever side effect
// (acknowledging a heartbeat, queuing an intent for the simulation loop)
// that packet's action requires.
package process

import (
	"github.com/google/uuid"
	"github.com/tilekeep/server/cache"
	"github.com/tilekeep/server/ecs"
	"github.com/tilekeep/server/protocol"
)

// Scope selects which sessions an outbound packet is delivered to.
type Scope struct {
	global bool
	local  map[uuid.UUID]struct{}
}

// GlobalScope delivers to every connected session.
func GlobalScope() Scope { return Scope{global: true} }

// LocalScope delivers only to the named sessions.
func LocalScope(ids ...uuid.UUID) Scope {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Scope{local: set}
}

// IsGlobal reports whether s targets every session.
func (s Scope) IsGlobal() bool { return s.global }

// Includes reports whether id is targeted by s.
func (s Scope) Includes(id uuid.UUID) bool {
	if s.global {
		return true
	}
	if s.local == nil {
		return false
	}
	_, included := s.local[id]
	return included
}

// configKind tags which variant a Configuration holds.
type configKind int

const (
	kindEmpty configKind = iota
	kindSingle
	kindBroadcast
	kindSuccessBroadcast
)

// Configuration describes what, if anything, to send back over the
// transport in response to a processed packet.
type Configuration struct {
	kind     configKind
	single   protocol.Packet
	toSender protocol.Packet
	toOthers protocol.Packet
	scope    Scope
}

// Empty sends nothing.
func Empty() Configuration { return Configuration{kind: kindEmpty} }

// Single sends p back to whichever single recipient the caller already
// knows (typically the sender).
func Single(p protocol.Packet) Configuration {
	return Configuration{kind: kindSingle, single: p}
}

// Broadcast sends p to every session scope includes.
func Broadcast(p protocol.Packet, scope Scope) Configuration {
	return Configuration{kind: kindBroadcast, single: p, scope: scope}
}

// SuccessBroadcast sends toSender back to the originating session and
// toOthers to every other session in scope — used for join acks, where
// the joiner gets a Success and everyone else gets a ClientJoin.
func SuccessBroadcast(toSender, toOthers protocol.Packet, scope Scope) Configuration {
	return Configuration{kind: kindSuccessBroadcast, toSender: toSender, toOthers: toOthers, scope: scope}
}

func (c Configuration) IsEmpty() bool { return c.kind == kindEmpty }

// Single returns the lone packet to send, if this is a Single
// configuration.
func (c Configuration) SinglePacket() (protocol.Packet, bool) {
	return c.single, c.kind == kindSingle
}

// BroadcastPacket returns the packet and scope to send, if this is a
// Broadcast configuration.
func (c Configuration) BroadcastPacket() (protocol.Packet, Scope, bool) {
	return c.single, c.scope, c.kind == kindBroadcast
}

// SuccessBroadcastPackets returns the sender-bound and other-bound
// packets plus scope, if this is a SuccessBroadcast configuration.
func (c Configuration) SuccessBroadcastPackets() (toSender, toOthers protocol.Packet, scope Scope, ok bool) {
	return c.toSender, c.toOthers, c.scope, c.kind == kindSuccessBroadcast
}

// Processor dispatches inbound packets to outbound configurations, and
// queues whichever of them the simulation loop needs to see as an intent.
type Processor struct {
	inbound *cache.PacketCache
	ids     *ecs.IDAllocator
}

// New returns a Processor that queues simulation-bound packets onto
// inbound and mints projectile entity ids from ids.
func New(inbound *cache.PacketCache, ids *ecs.IDAllocator) *Processor {
	return &Processor{inbound: inbound, ids: ids}
}

// AckFunc records a heartbeat acknowledgement; bound to session.Registry
// by the caller to keep this package free of a time-keeping dependency.
type AckFunc func(sessionID, pingID uuid.UUID)

// Process dispatches a single inbound packet from session sessionID,
// returning what (if anything) should be sent back over the transport.
// Packets relevant to the simulation loop (ClientJoin, ClientLeave,
// Movement, Projectile) are additionally queued onto the processor's
// inbound cache for Gamestate to drain and act on.
func (p *Processor) Process(sessionID uuid.UUID, pkt protocol.Packet, ack AckFunc) Configuration {
	switch pkt.Action() {
	case protocol.Ping:
		if id, ok := pkt.Payload().UUID(); ok && ack != nil {
			ack(sessionID, id)
		}
		return Empty()

	case protocol.Message:
		return Broadcast(pkt, GlobalScope())

	case protocol.ClientJoin:
		p.inbound.Add(pkt)
		return Empty()

	case protocol.ClientLeave:
		p.inbound.Add(pkt)
		return Broadcast(pkt, GlobalScope())

	case protocol.Movement:
		if _, _, _, _, ok := pkt.Payload().Movement(); ok {
			p.inbound.Add(pkt)
		}
		return Empty()

	case protocol.Projectile:
		if entity, size, position, velocity, ok := pkt.Payload().Movement(); ok {
			fresh := p.ids.Next()
			_ = entity // the sender's own id is discarded; the server mints its own
			p.inbound.Add(protocol.New(protocol.Projectile, sessionID, protocol.NewMovementPayload(fresh, size, position, velocity)))
		}
		return Empty()

	default:
		return Empty()
	}
}

package process

import (
	"testing"

	"github.com/google/uuid"
	"github.com/tilekeep/server/cache"
	"github.com/tilekeep/server/ecs"
	"github.com/tilekeep/server/geom"
	"github.com/tilekeep/server/protocol"
)

func newProcessor() *Processor {
	return New(cache.New(cache.DefaultAllowedDuplicates), ecs.NewIDAllocator())
}

func TestPingForwardsToAckAndSendsNothing(t *testing.T) {
	p := newProcessor()
	session := uuid.New()
	pingID := uuid.New()

	var ackedSession, ackedPing uuid.UUID
	cfg := p.Process(session, protocol.New(protocol.Ping, session, protocol.UUIDPayload(pingID)), func(s, id uuid.UUID) {
		ackedSession, ackedPing = s, id
	})

	if !cfg.IsEmpty() {
		t.Fatal("expected Ping to produce an Empty configuration")
	}
	if ackedSession != session || ackedPing != pingID {
		t.Fatalf("expected ack callback to receive (%v, %v), got (%v, %v)", session, pingID, ackedSession, ackedPing)
	}
}

func TestMessageBroadcastsGlobally(t *testing.T) {
	p := newProcessor()
	pkt := protocol.New(protocol.Message, uuid.New(), protocol.MessagePayload("hi"))

	cfg := p.Process(uuid.New(), pkt, nil)
	sent, scope, ok := cfg.BroadcastPacket()
	if !ok || !scope.IsGlobal() {
		t.Fatal("expected a global broadcast configuration for a Message packet")
	}
	if text, _ := sent.Payload().Message(); text != "hi" {
		t.Fatalf("expected broadcast to carry original message, got %q", text)
	}
}

func TestClientJoinQueuesForSimulationAndSendsNothing(t *testing.T) {
	inbound := cache.New(cache.DefaultAllowedDuplicates)
	p := New(inbound, ecs.NewIDAllocator())
	session := uuid.New()

	cfg := p.Process(session, protocol.New(protocol.ClientJoin, session, protocol.EmptyPayload()), nil)
	if !cfg.IsEmpty() {
		t.Fatal("expected ClientJoin to produce an Empty configuration")
	}
	if inbound.Len() != 1 {
		t.Fatalf("expected ClientJoin to be queued for the simulation loop, queue len=%d", inbound.Len())
	}
}

func TestClientLeaveQueuesAndBroadcasts(t *testing.T) {
	inbound := cache.New(cache.DefaultAllowedDuplicates)
	p := New(inbound, ecs.NewIDAllocator())
	session := uuid.New()

	cfg := p.Process(session, protocol.New(protocol.ClientLeave, session, protocol.EmptyPayload()), nil)
	_, scope, ok := cfg.BroadcastPacket()
	if !ok || !scope.IsGlobal() {
		t.Fatal("expected ClientLeave to broadcast globally")
	}
	if inbound.Len() != 1 {
		t.Fatal("expected ClientLeave to also be queued for the simulation loop")
	}
}

func TestProjectileMintsFreshEntityID(t *testing.T) {
	inbound := cache.New(cache.DefaultAllowedDuplicates)
	ids := ecs.NewIDAllocator()
	p := New(inbound, ids)
	session := uuid.New()

	clientProvided := ecs.Entity(999)
	payload := protocol.NewMovementPayload(clientProvided, geom.NewVec2(8, 8), geom.NewVec3(0, 0, 0), geom.NewVec2(1, 0))
	p.Process(session, protocol.New(protocol.Projectile, session, payload), nil)

	queued := inbound.GetAll()
	if len(queued) != 1 {
		t.Fatalf("expected 1 queued projectile packet, got %d", len(queued))
	}
	entity, _, _, _, ok := queued[0].Payload().Movement()
	if !ok {
		t.Fatal("expected a Movement payload on the queued projectile packet")
	}
	if entity == clientProvided {
		t.Fatal("expected the server to mint a fresh entity id rather than trust the client's")
	}
}

func TestActionWithoutDispatchRuleYieldsEmpty(t *testing.T) {
	p := newProcessor()
	cfg := p.Process(uuid.New(), protocol.New(protocol.Shutdown, uuid.New(), protocol.EmptyPayload()), nil)
	if !cfg.IsEmpty() {
		t.Fatal("expected an action with no dispatch rule to yield Empty")
	}
}

func TestLocalScopeIncludesOnlyNamedSessions(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	scope := LocalScope(a)
	if !scope.Includes(a) {
		t.Fatal("expected local scope to include its own member")
	}
	if scope.Includes(b) {
		t.Fatal("expected local scope to exclude a non-member")
	}
}

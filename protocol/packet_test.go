package protocol

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/tilekeep/server/ecs"
	"github.com/tilekeep/server/geom"
)

func TestEncodeDecodeRoundTripsMessage(t *testing.T) {
	id := uuid.New()
	original := New(Message, id, MessagePayload("hello"))

	decoded, ok := Decode(original.Encode())
	if !ok {
		t.Fatal("expected a short message packet to decode")
	}
	if decoded.Action() != Message || decoded.UUID() != id {
		t.Fatalf("header mismatch: %+v", decoded)
	}
	text, ok := decoded.Payload().Message()
	if !ok || text != "hello" {
		t.Fatalf("expected message payload 'hello', got %q ok=%v", text, ok)
	}
}

func TestEncodePadsToMinimumEnvelopeSize(t *testing.T) {
	id := uuid.New()
	encoded := New(Ping, id, UUIDPayload(id)).Encode()
	if len(encoded) < minPacketSize {
		t.Fatalf("expected at least %d bytes, got %d", minPacketSize, len(encoded))
	}

	// A tiny 5-byte payload (a two-character Message) still pads the whole
	// envelope to 32 bytes with trailing zeros, and decodes back to the
	// original packet.
	small := New(Message, id, MessagePayload("hi"))
	encoded = small.Encode()
	if len(encoded) != minPacketSize {
		t.Fatalf("expected padding to exactly %d bytes, got %d", minPacketSize, len(encoded))
	}
	decoded, ok := Decode(encoded)
	if !ok {
		t.Fatal("expected padded packet to decode")
	}
	text, _ := decoded.Payload().Message()
	if text != "hi" {
		t.Fatalf("expected 'hi' to survive padding round trip, got %q", text)
	}
}

func TestDecodeRejectsShortPackets(t *testing.T) {
	if _, ok := Decode(make([]byte, 18)); ok {
		t.Fatal("expected an 18-byte packet (below the 19-byte header) to be rejected")
	}
}

func TestDecodeToleratesTrailingPadding(t *testing.T) {
	full := New(ClientJoin, uuid.New(), EmptyPayload()).Encode()
	padded := append(bytes.Clone(full), make([]byte, 64)...)

	decoded, ok := Decode(padded)
	if !ok || decoded.Action() != ClientJoin {
		t.Fatalf("expected extra trailing padding to still decode, got %+v ok=%v", decoded, ok)
	}
}

func TestDecodeUnknownActionYieldsInvalidPayload(t *testing.T) {
	raw := New(Ping, uuid.New(), EmptyPayload()).Encode()
	binaryPutUint16(raw[1:3], 9999)

	decoded, ok := Decode(raw)
	if !ok {
		t.Fatal("expected an unknown action code to still decode the envelope")
	}
	if decoded.IsKnownAction() {
		t.Fatal("expected action 9999 to be reported as unknown")
	}
	if !decoded.Payload().IsInvalid() {
		t.Fatal("expected an unknown action's payload to be Invalid")
	}
}

func TestDecodeMalformedMessageBodyYieldsInvalid(t *testing.T) {
	raw := New(Message, uuid.New(), MessagePayload("hello world")).Encode()
	// Corrupt the declared length prefix to point past the actual body.
	binaryPutUint16(raw[headerSize+1:headerSize+3], 0xFFFF)

	decoded, _ := Decode(raw)
	if !decoded.Payload().IsInvalid() {
		t.Fatal("expected a corrupted length-prefixed body to decode as Invalid")
	}
}

func TestMovementPayloadRoundTrips(t *testing.T) {
	entity := ecs.Entity(42)
	size := geom.NewVec2(16, 16)
	position := geom.NewVec3(100, 200, 0)
	velocity := geom.NewVec2(1, -1)

	original := New(Movement, uuid.New(), NewMovementPayload(entity, size, position, velocity))
	decoded, ok := Decode(original.Encode())
	if !ok {
		t.Fatal("expected movement packet to decode")
	}

	e, sz, pos, vel, ok := decoded.Payload().Movement()
	if !ok {
		t.Fatal("expected a Movement payload")
	}
	if e != entity || sz != size || pos != position || vel != velocity {
		t.Fatalf("movement payload round trip mismatch: %+v %+v %+v %+v", e, sz, pos, vel)
	}
}

func binaryPutUint16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

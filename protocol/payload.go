package protocol

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"
	"github.com/tilekeep/server/ecs"
	"github.com/tilekeep/server/geom"
)

// payloadKind tags the encoded form of a Payload so Decode knows which
// variant to reconstruct.
type payloadKind uint8

const (
	kindEmpty payloadKind = iota
	kindInvalid
	kindUUID
	kindMessage
	kindEntity
	kindMovement
)

// Payload is the tagged union of bodies a Packet may carry. Which of the
// typed fields are meaningful is selected by kind (a Movement payload uses
// four of them, the other variants at most one).
type Payload struct {
	kind payloadKind

	uuid     uuid.UUID
	message  string
	entity   ecs.Entity
	size     geom.Vec2
	position geom.Vec3
	velocity geom.Vec2
}

// EmptyPayload carries no data.
func EmptyPayload() Payload { return Payload{kind: kindEmpty} }

// InvalidPayload marks a packet whose body could not be decoded.
func InvalidPayload() Payload { return Payload{kind: kindInvalid} }

// UUIDPayload carries a single UUID, used for the ping nonce echo.
func UUIDPayload(id uuid.UUID) Payload {
	return Payload{kind: kindUUID, uuid: id}
}

// MessagePayload carries free text, used for chat broadcast.
func MessagePayload(text string) Payload {
	return Payload{kind: kindMessage, message: text}
}

// EntityPayload names a single entity, used for delete notifications.
func EntityPayload(e ecs.Entity) Payload {
	return Payload{kind: kindEntity, entity: e}
}

// NewMovementPayload carries an entity's current size, position, and
// velocity, used both for client-submitted intents and server broadcasts.
func NewMovementPayload(e ecs.Entity, size geom.Vec2, position geom.Vec3, velocity geom.Vec2) Payload {
	return Payload{kind: kindMovement, entity: e, size: size, position: position, velocity: velocity}
}

func (p Payload) IsEmpty() bool    { return p.kind == kindEmpty }
func (p Payload) IsInvalid() bool  { return p.kind == kindInvalid }
func (p Payload) IsUUID() bool     { return p.kind == kindUUID }
func (p Payload) IsMessage() bool  { return p.kind == kindMessage }
func (p Payload) IsEntity() bool   { return p.kind == kindEntity }
func (p Payload) IsMovement() bool { return p.kind == kindMovement }

// UUID returns the carried uuid and true if this is a Uuid payload.
func (p Payload) UUID() (uuid.UUID, bool) {
	return p.uuid, p.kind == kindUUID
}

// Message returns the carried text and true if this is a Message payload.
func (p Payload) Message() (string, bool) {
	return p.message, p.kind == kindMessage
}

// Entity returns the carried entity and true if this is an Entity payload.
func (p Payload) Entity() (ecs.Entity, bool) {
	return p.entity, p.kind == kindEntity
}

// Movement returns the carried movement fields and true if this is a
// Movement payload.
func (p Payload) Movement() (entity ecs.Entity, size geom.Vec2, position geom.Vec3, velocity geom.Vec2, ok bool) {
	return p.entity, p.size, p.position, p.velocity, p.kind == kindMovement
}

// encode serializes the payload body. The encoding is internal to this
// package: the envelope only promises a stable header, not a stable body
// format across versions.
func (p Payload) encode() []byte {
	switch p.kind {
	case kindEmpty, kindInvalid:
		return []byte{byte(p.kind)}
	case kindUUID:
		buf := make([]byte, 1+16)
		buf[0] = byte(p.kind)
		copy(buf[1:], p.uuid[:])
		return buf
	case kindMessage:
		text := []byte(p.message)
		buf := make([]byte, 1+2+len(text))
		buf[0] = byte(p.kind)
		binary.BigEndian.PutUint16(buf[1:3], uint16(len(text)))
		copy(buf[3:], text)
		return buf
	case kindEntity:
		buf := make([]byte, 1+8)
		buf[0] = byte(p.kind)
		binary.BigEndian.PutUint64(buf[1:9], uint64(p.entity))
		return buf
	case kindMovement:
		buf := make([]byte, 1+8+16+24+16)
		off := 0
		buf[off] = byte(p.kind)
		off++
		binary.BigEndian.PutUint64(buf[off:], uint64(p.entity))
		off += 8
		putFloat64(buf[off:], p.size.X())
		putFloat64(buf[off+8:], p.size.Y())
		off += 16
		putFloat64(buf[off:], p.position.X())
		putFloat64(buf[off+8:], p.position.Y())
		putFloat64(buf[off+16:], p.position.Z())
		off += 24
		putFloat64(buf[off:], p.velocity.X())
		putFloat64(buf[off+8:], p.velocity.Y())
		return buf
	default:
		return []byte{byte(kindInvalid)}
	}
}

// decodePayload reverses encode. Any malformed or truncated body yields
// InvalidPayload rather than an error: the caller logs and drops the
// packet without disconnecting the sender.
func decodePayload(body []byte) Payload {
	if len(body) < 1 {
		return InvalidPayload()
	}
	switch payloadKind(body[0]) {
	case kindEmpty:
		return EmptyPayload()
	case kindUUID:
		if len(body) < 1+16 {
			return InvalidPayload()
		}
		var id uuid.UUID
		copy(id[:], body[1:17])
		return UUIDPayload(id)
	case kindMessage:
		if len(body) < 1+2 {
			return InvalidPayload()
		}
		n := int(binary.BigEndian.Uint16(body[1:3]))
		if len(body) < 3+n {
			return InvalidPayload()
		}
		return MessagePayload(string(body[3 : 3+n]))
	case kindEntity:
		if len(body) < 1+8 {
			return InvalidPayload()
		}
		return EntityPayload(ecs.Entity(binary.BigEndian.Uint64(body[1:9])))
	case kindMovement:
		const want = 1 + 8 + 16 + 24 + 16
		if len(body) < want {
			return InvalidPayload()
		}
		off := 1
		entity := ecs.Entity(binary.BigEndian.Uint64(body[off:]))
		off += 8
		size := geom.NewVec2(getFloat64(body[off:]), getFloat64(body[off+8:]))
		off += 16
		position := geom.NewVec3(getFloat64(body[off:]), getFloat64(body[off+8:]), getFloat64(body[off+16:]))
		off += 24
		velocity := geom.NewVec2(getFloat64(body[off:]), getFloat64(body[off+8:]))
		return NewMovementPayload(entity, size, position, velocity)
	default:
		return InvalidPayload()
	}
}

func putFloat64(buf []byte, v float64) {
	binary.BigEndian.PutUint64(buf, math.Float64bits(v))
}

func getFloat64(buf []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(buf[:8]))
}

// Package protocol implements the UDP wire format: a fixed header
// carrying an action code and sender UUID, followed by a typed payload
// body.
package protocol

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// headerSize is the byte offset at which the payload body begins:
// 1 (version) + 2 (action) + 16 (uuid).
const headerSize = 19

// minPacketSize is the smallest envelope this server ever emits; shorter
// wire packets are padded with zeros on encode and accepted as-is on
// decode.
const minPacketSize = 32

// Packet is a single envelope exchanged between client and server.
type Packet struct {
	version uint8
	action  Action
	uuid    uuid.UUID
	payload Payload
}

// New builds a packet from its parts.
func New(action Action, id uuid.UUID, payload Payload) Packet {
	return Packet{version: Version, action: action, uuid: id, payload: payload}
}

func (p Packet) Version() uint8    { return p.version }
func (p Packet) Action() Action    { return p.action }
func (p Packet) UUID() uuid.UUID   { return p.uuid }
func (p Packet) Payload() Payload  { return p.payload }
func (p Packet) IsKnownAction() bool { return p.action.Known() }

// Encode serializes p into bytes ready to send, zero-padded up to
// minPacketSize when the header plus body would otherwise be shorter.
func (p Packet) Encode() []byte {
	body := p.payload.encode()
	total := headerSize + len(body)
	if total < minPacketSize {
		total = minPacketSize
	}

	buf := make([]byte, total)
	buf[0] = p.version
	binary.BigEndian.PutUint16(buf[1:3], uint16(p.action))
	copy(buf[3:19], p.uuid[:])
	copy(buf[headerSize:], body)
	return buf
}

// Decode parses bytes received off the wire into a Packet. Packets
// shorter than the 19-byte header are rejected outright. An unrecognised
// action code decodes successfully but reports false from IsKnownAction,
// rather than erroring — callers treat it the same as an Invalid payload:
// log and drop, never disconnect.
func Decode(data []byte) (Packet, bool) {
	if len(data) < headerSize {
		return Packet{}, false
	}

	var id uuid.UUID
	copy(id[:], data[3:19])

	p := Packet{
		version: data[0],
		action:  Action(binary.BigEndian.Uint16(data[1:3])),
		uuid:    id,
	}
	if !p.action.Known() {
		p.payload = InvalidPayload()
		return p, true
	}
	p.payload = decodePayload(data[headerSize:])
	return p, true
}

// Package transport implements the UDP datagram endpoint: the receive
// loop, outbound delivery with scope, and the heartbeat ticker that ties
// the session registry to the wire.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tilekeep/server/cache"
	"github.com/tilekeep/server/process"
	"github.com/tilekeep/server/protocol"
	"github.com/tilekeep/server/session"
)

// OutboundCapacity bounds the channel the simulation loop posts outbound
// configurations onto. A full channel means the network can't keep up;
// Send drops the configuration rather than stall the simulation.
const OutboundCapacity = 32

// SendTimeout bounds a single client's write, so one slow or dead peer
// can't stall delivery to the rest of the registry.
const SendTimeout = 3 * session.HeartbeatInterval

// readBufferSize comfortably fits the largest payload this protocol
// defines (Movement, at well under 100 bytes) plus headroom.
const readBufferSize = 2048

// Server is the UDP endpoint. It owns the socket and the client registry,
// dispatches inbound packets through a process.Processor, and forwards
// whatever the simulation loop posts on Outbound.
type Server struct {
	conn      net.PacketConn
	log       *slog.Logger
	sessions  *session.Registry
	processor *process.Processor
	inbound   *cache.PacketCache

	// Outbound receives configurations produced by the simulation loop.
	// Send is the only safe way to post to it from another goroutine.
	Outbound chan process.Configuration
}

// New returns a Server reading and writing over conn. A capacity of 0
// falls back to OutboundCapacity.
func New(conn net.PacketConn, log *slog.Logger, sessions *session.Registry, processor *process.Processor, inbound *cache.PacketCache, capacity int) *Server {
	if log == nil {
		log = slog.Default()
	}
	if capacity <= 0 {
		capacity = OutboundCapacity
	}
	return &Server{
		conn:      conn,
		log:       log,
		sessions:  sessions,
		processor: processor,
		inbound:   inbound,
		Outbound:  make(chan process.Configuration, capacity),
	}
}

// Listen opens a UDP socket bound to addr and returns a Server for it. A
// capacity of 0 falls back to OutboundCapacity.
func Listen(addr string, log *slog.Logger, sessions *session.Registry, processor *process.Processor, inbound *cache.PacketCache, capacity int) (*Server, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, err
	}
	return New(conn, log, sessions, processor, inbound, capacity), nil
}

// LocalAddr returns the address the underlying socket is bound to.
func (s *Server) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// Send posts cfg for delivery on the next outbound flush. If the channel
// is full, cfg is dropped and logged rather than blocking the caller.
func (s *Server) Send(cfg process.Configuration) {
	if cfg.IsEmpty() {
		return
	}
	select {
	case s.Outbound <- cfg:
	default:
		s.log.Debug("dropped outbound configuration: channel full")
	}
}

// Run drives the receive loop, the outbound flush loop, and the heartbeat
// ticker concurrently, returning when ctx is cancelled or one of them
// fails. A cancellation is reported as a nil error, not a failure.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		return s.conn.Close()
	})
	g.Go(func() error { return s.receiveLoop(gctx) })
	g.Go(func() error { s.outboundLoop(gctx); return nil })
	g.Go(func() error { s.heartbeatLoop(gctx); return nil })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Server) receiveLoop(ctx context.Context) error {
	buf := make([]byte, readBufferSize)
	for {
		n, addr, err := s.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		pkt, ok := protocol.Decode(buf[:n])
		if !ok {
			s.log.Debug("dropped undersized packet", "raddr", addr.String())
			continue
		}
		if pkt.Payload().IsInvalid() {
			s.log.Debug("dropped malformed packet", "raddr", addr.String(), "action", pkt.Action())
			continue
		}
		s.handleInbound(addr, pkt)
	}
}

// handleInbound binds addr to a session and dispatches the packet. The
// packet's declared uuid is never trusted: it's rewritten to the
// address-bound session id before the processor ever sees it, so a
// client can't impersonate another session by forging that field.
func (s *Server) handleInbound(addr net.Addr, pkt protocol.Packet) {
	sess, created := s.sessions.Bind(addr, time.Now())
	if created {
		s.log.Debug("session bound", "uuid", sess.UUID, "raddr", addr.String())
	}

	authenticated := protocol.New(pkt.Action(), sess.UUID, pkt.Payload())
	cfg := s.processor.Process(sess.UUID, authenticated, s.acknowledge)
	s.deliver(cfg)
}

func (s *Server) acknowledge(sessionID, pingID uuid.UUID) {
	s.sessions.Acknowledge(sessionID, pingID, time.Now())
}

func (s *Server) outboundLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-s.Outbound:
			s.deliver(cfg)
		}
	}
}

func (s *Server) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(session.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickHeartbeat()
		}
	}
}

// tickHeartbeat evicts sessions that missed too many pings, synthesizing
// and broadcasting a ClientLeave for each, then starts the next round by
// stamping every remaining session with a fresh ping id.
func (s *Server) tickHeartbeat() {
	now := time.Now()
	for _, evicted := range s.sessions.Expired(now) {
		s.log.Debug("session evicted", "uuid", evicted.UUID)
		leave := protocol.New(protocol.ClientLeave, evicted.UUID, protocol.EmptyPayload())
		s.inbound.Add(leave)
		s.broadcastToScope(leave, process.GlobalScope())
	}

	pingID := uuid.New()
	s.sessions.BeginHeartbeat(pingID)
	ping := protocol.New(protocol.Ping, uuid.Nil, protocol.UUIDPayload(pingID))
	s.broadcastToScope(ping, process.GlobalScope())
}

// deliver sends the packet(s) named by cfg. A packet's own uuid field
// names its intended single recipient, by convention of how
// process.Configuration values are constructed throughout this server.
func (s *Server) deliver(cfg process.Configuration) {
	if pkt, ok := cfg.SinglePacket(); ok {
		s.sendTo(pkt.UUID(), pkt)
		return
	}
	if pkt, scope, ok := cfg.BroadcastPacket(); ok {
		s.broadcastToScope(pkt, scope)
		return
	}
	if toSender, toOthers, scope, ok := cfg.SuccessBroadcastPackets(); ok {
		s.sendTo(toSender.UUID(), toSender)
		s.broadcastToScope(toOthers, scope, toSender.UUID())
		return
	}
}

func (s *Server) sendTo(id uuid.UUID, pkt protocol.Packet) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return
	}
	s.write(sess, pkt)
}

// broadcastToScope sends pkt to every session scope includes, skipping
// the optional excluded id (used to avoid double-delivery to a session
// that already received the same tick's SuccessBroadcast single packet).
func (s *Server) broadcastToScope(pkt protocol.Packet, scope process.Scope, exclude ...uuid.UUID) {
	var skip uuid.UUID
	if len(exclude) > 0 {
		skip = exclude[0]
	}
	for _, sess := range s.sessions.All() {
		if sess.UUID == skip {
			continue
		}
		if !scope.Includes(sess.UUID) {
			continue
		}
		s.write(sess, pkt)
	}
}

func (s *Server) write(sess *session.Session, pkt protocol.Packet) {
	ctx, cancel := context.WithTimeout(context.Background(), SendTimeout)
	defer cancel()
	deadline, _ := ctx.Deadline()
	_ = s.conn.SetWriteDeadline(deadline)

	if _, err := s.conn.WriteTo(pkt.Encode(), sess.Addr); err != nil {
		s.log.Debug("write failed", "uuid", sess.UUID, "err", err)
	}
}

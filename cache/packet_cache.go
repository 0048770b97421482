// Package cache implements the bounded inbound packet queue between the
// transport layer and the simulation loop.
package cache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/tilekeep/server/protocol"
)

// DefaultAllowedDuplicates bounds how many times an identical packet
// (same encoded bytes) may be queued before further copies are dropped.
// This absorbs retransmits from a lossy UDP client without letting a
// runaway sender flood the simulation loop.
const DefaultAllowedDuplicates = 3

// PacketCache buffers inbound packets under a single mutex, suppressing
// duplicates by signature (an xxhash digest of the encoded packet).
type PacketCache struct {
	mu                sync.Mutex
	counts            map[uint64]int
	packets           []protocol.Packet
	allowedDuplicates int
}

// New returns an empty PacketCache permitting up to allowedDuplicates
// copies of any one packet signature per drain cycle.
func New(allowedDuplicates int) *PacketCache {
	return &PacketCache{
		counts:            make(map[uint64]int),
		allowedDuplicates: allowedDuplicates,
	}
}

func signature(p protocol.Packet) uint64 {
	return xxhash.Sum64(p.Encode())
}

// Add queues p unless its signature has already been seen
// allowedDuplicates times since the last GetAll.
func (c *PacketCache) Add(p protocol.Packet) {
	sig := signature(p)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.counts[sig] >= c.allowedDuplicates {
		return
	}
	c.counts[sig]++
	c.packets = append(c.packets, p)
}

// GetAll drains and returns every queued packet in FIFO order, clearing
// both the queue and the duplicate-count table.
func (c *PacketCache) GetAll() []protocol.Packet {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.packets
	c.packets = nil
	c.counts = make(map[uint64]int)
	return out
}

// Len reports how many packets are currently queued.
func (c *PacketCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.packets)
}

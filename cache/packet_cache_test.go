package cache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/tilekeep/server/protocol"
)

func TestAddThenGetAllDrainsInOrder(t *testing.T) {
	c := New(DefaultAllowedDuplicates)
	p1 := protocol.New(protocol.Message, uuid.New(), protocol.MessagePayload("a"))
	p2 := protocol.New(protocol.Message, uuid.New(), protocol.MessagePayload("b"))

	c.Add(p1)
	c.Add(p2)

	got := c.GetAll()
	if len(got) != 2 {
		t.Fatalf("expected 2 packets, got %d", len(got))
	}
	if m, _ := got[0].Payload().Message(); m != "a" {
		t.Fatalf("expected FIFO order, first packet should be 'a', got %q", m)
	}

	if c.Len() != 0 {
		t.Fatal("expected queue to be empty after GetAll")
	}
}

func TestAddSuppressesExcessDuplicates(t *testing.T) {
	c := New(2)
	id := uuid.New()
	identical := protocol.New(protocol.Message, id, protocol.MessagePayload("same"))

	for i := 0; i < 5; i++ {
		c.Add(identical)
	}

	got := c.GetAll()
	if len(got) != 2 {
		t.Fatalf("expected only 2 of 5 identical packets to survive, got %d", len(got))
	}
}

func TestGetAllResetsDuplicateCounts(t *testing.T) {
	c := New(1)
	id := uuid.New()
	p := protocol.New(protocol.Message, id, protocol.MessagePayload("x"))

	c.Add(p)
	c.GetAll()
	c.Add(p)

	if got := c.GetAll(); len(got) != 1 {
		t.Fatalf("expected duplicate counts to reset after a drain, got %d", len(got))
	}
}

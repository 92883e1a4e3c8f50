package sse

import (
	"testing"

	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

func TestBroadcastReachesClients(t *testing.T) {
	s := New(logger.Discard())
	a := &client{id: uuid.New(), events: make(chan Event, 1)}
	b := &client{id: uuid.New(), events: make(chan Event, 1)}
	s.addClient(a)
	s.addClient(b)

	if n := s.Broadcast(Event{Type: "leads.lead.created"}); n != 2 {
		t.Fatalf("expected 2 clients, got %d", n)
	}
	if (<-a.events).Type != "leads.lead.created" || (<-b.events).Type != "leads.lead.created" {
		t.Fatal("expected both clients to receive the event")
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	s := New(logger.Discard())
	c := &client{id: uuid.New(), events: make(chan Event, 1)}
	s.addClient(c)

	s.Broadcast(Event{Type: "first"})
	s.Broadcast(Event{Type: "second"})

	if got := (<-c.events).Type; got != "first" {
		t.Fatalf("expected first event to be kept, got %q", got)
	}
	select {
	case e := <-c.events:
		t.Fatalf("expected second event to be dropped, got %q", e.Type)
	default:
	}
}

func TestCloseRejectsNewClients(t *testing.T) {
	s := New(logger.Discard())
	c := &client{id: uuid.New(), events: make(chan Event, 1)}
	s.addClient(c)
	s.Close()

	if _, ok := <-c.events; ok {
		t.Fatal("expected client channel to be closed")
	}
	if s.addClient(&client{id: uuid.New(), events: make(chan Event, 1)}) {
		t.Fatal("expected closed service to refuse clients")
	}
	// removing an already closed client must not panic
	s.removeClient(c)
}

package mqtt

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/ledclock/internal/logic"
)

// gatedPublisher blocks every publish until release is closed.
type gatedPublisher struct {
	*FakePublisher
	release chan struct{}
	entered chan struct{}
}

func newGatedPublisher() *gatedPublisher {
	return &gatedPublisher{
		FakePublisher: NewFakePublisher(),
		release:       make(chan struct{}),
		entered:       make(chan struct{}, 16),
	}
}

func (g *gatedPublisher) Publish(e logic.Event) error {
	g.entered <- struct{}{}
	<-g.release
	return g.FakePublisher.Publish(e)
}

func (g *gatedPublisher) PublishSystem(e SystemEvent) error {
	<-g.release
	return g.FakePublisher.PublishSystem(e)
}

func TestQueueDeliversInOrder(t *testing.T) {
	f := NewFakePublisher()
	q := NewQueue(f, 8)

	_ = q.Publish(sampleEvent(logic.EventDateSet))
	_ = q.PublishSystem(SystemEvent{Timestamp: ts, Event: "HEARTBEAT"})
	_ = q.Publish(sampleEvent(logic.EventTimeSet))

	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	types := f.Types()
	if len(types) != 2 || types[0] != logic.EventDateSet || types[1] != logic.EventTimeSet {
		t.Errorf("Types() = %v", types)
	}
	if got := f.SystemTypes(); len(got) != 1 || got[0] != "HEARTBEAT" {
		t.Errorf("SystemTypes() = %v", got)
	}
	if !f.Closed {
		t.Error("Close should close the wrapped publisher")
	}
}

func TestQueueNeverBlocksOnSlowPublisher(t *testing.T) {
	g := newGatedPublisher()
	q := NewQueue(g, 2)

	// First message is taken by the worker, which then blocks in Publish.
	_ = q.Publish(sampleEvent(logic.EventViewDate))
	<-g.entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			_ = q.Publish(sampleEvent(logic.EventViewTime))
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked behind a slow publisher")
	}

	// Two fit in the buffer, the rest are dropped.
	if got := q.Dropped(); got != 8 {
		t.Errorf("Dropped() = %d, want 8", got)
	}

	close(g.release)
	q.Close()
	if got := len(g.Events); got != 3 {
		t.Errorf("delivered %d events, want 3", got)
	}
}

func TestQueueFullError(t *testing.T) {
	g := newGatedPublisher()
	q := NewQueue(g, 1)
	_ = q.Publish(sampleEvent(logic.EventViewDate))
	<-g.entered
	_ = q.Publish(sampleEvent(logic.EventViewDate))

	if err := q.Publish(sampleEvent(logic.EventViewDate)); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	close(g.release)
	q.Close()
}

func TestQueueAfterClose(t *testing.T) {
	q := NewQueue(NewFakePublisher(), 1)
	q.Close()
	if err := q.Publish(sampleEvent(logic.EventViewDate)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestQueueIsConnected(t *testing.T) {
	f := NewFakePublisher()
	q := NewQueue(f, 1)
	defer q.Close()

	if !q.IsConnected() {
		t.Error("expected connected")
	}
	f.mu.Lock()
	f.Connected = false
	f.mu.Unlock()
	if q.IsConnected() {
		t.Error("expected disconnected")
	}
}

var (
	_ Publisher        = (*Queue)(nil)
	_ ConnectionStatus = (*Queue)(nil)
)

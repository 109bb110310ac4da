package mqtt

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/sweeney/ledclock/internal/logic"
)

// ErrQueueFull is returned when a message is dropped because the publishing
// goroutine is behind.
var ErrQueueFull = errors.New("mqtt: publish queue full")

// ErrQueueClosed is returned for publishes after Close.
var ErrQueueClosed = errors.New("mqtt: publish queue closed")

// queued is one pending publish; exactly one of event and system is set.
type queued struct {
	event  *logic.Event
	system *SystemEvent
}

// Queue hands messages to another Publisher on its own goroutine, so a slow
// broker never stalls the caller. Publish and PublishSystem never block:
// when the queue is full the message is dropped and counted.
type Queue struct {
	next  Publisher
	ch    chan queued
	done  chan struct{}
	drops uint32

	mu     sync.Mutex
	closed bool
}

// NewQueue starts a Queue in front of next. size <= 0 selects a default.
func NewQueue(next Publisher, size int) *Queue {
	if size <= 0 {
		size = 64
	}
	q := &Queue{
		next: next,
		ch:   make(chan queued, size),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for m := range q.ch {
		if m.event != nil {
			if err := q.next.Publish(*m.event); err != nil {
				log.Printf("mqtt: publish %s failed: %v", m.event.Type, err)
			}
			continue
		}
		if err := q.next.PublishSystem(*m.system); err != nil {
			log.Printf("mqtt: publish %s failed: %v", m.system.Event, err)
		}
	}
}

func (q *Queue) enqueue(m queued) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- m:
		return nil
	default:
		atomic.AddUint32(&q.drops, 1)
		return ErrQueueFull
	}
}

// Publish queues a clock event.
func (q *Queue) Publish(event logic.Event) error {
	return q.enqueue(queued{event: &event})
}

// PublishSystem queues a system event.
func (q *Queue) PublishSystem(event SystemEvent) error {
	return q.enqueue(queued{system: &event})
}

// Dropped returns the number of messages dropped because the queue was full.
func (q *Queue) Dropped() uint32 {
	return atomic.LoadUint32(&q.drops)
}

// IsConnected reports the wrapped publisher's connection state, or false if
// it does not track one.
func (q *Queue) IsConnected() bool {
	if cs, ok := q.next.(ConnectionStatus); ok {
		return cs.IsConnected()
	}
	return false
}

// Close delivers everything already queued, then closes the wrapped
// publisher.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	<-q.done
	return q.next.Close()
}

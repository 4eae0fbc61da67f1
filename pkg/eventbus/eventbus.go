// Package eventbus is a synchronous in-process publish/subscribe hub.
//
// Publish delivers on the calling goroutine, to subscribers in subscription
// order. A subscriber that publishes with the context it was handed enqueues
// the new event; it is delivered after the current one finishes, never
// recursively. Concurrent publishers deliver independently, so subscribers
// must be safe for concurrent use. A failing or panicking subscriber is
// logged and skipped.
package eventbus

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"groupstay/pkg/logger"
)

type Topic string

const (
	TopicAllocationApplied Topic = "allocation.applied"
	TopicAlertRaised       Topic = "alert.raised"
	TopicGuestSaved        Topic = "guest.saved"
	TopicGuestRemoved      Topic = "guest.removed"
)

type Event struct {
	ID         string
	Topic      Topic
	ScopeID    string
	Payload    any
	OccurredAt time.Time
}

type Handler func(ctx context.Context, ev Event) error

type subscriber struct {
	id     uint64
	name   string
	topics []Topic
	fn     Handler
}

func (s subscriber) wants(t Topic) bool {
	return len(s.topics) == 0 || slices.Contains(s.topics, t)
}

type queued struct {
	ctx context.Context
	ev  Event
}

// pending is the queue of one top-level Publish call. It travels in the
// context handed to subscribers.
type pending struct {
	mu     sync.Mutex
	events []queued
	done   bool
}

// push reports false once the owning Publish has returned.
func (p *pending) push(q queued) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return false
	}
	p.events = append(p.events, q)
	return true
}

func (p *pending) pop() (queued, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		p.done = true
		return queued{}, false
	}
	next := p.events[0]
	p.events = p.events[1:]
	return next, true
}

type pendingKey struct{ bus *Bus }

type Bus struct {
	mu     sync.Mutex
	subs   []subscriber
	nextID uint64
	log    *logger.Logger
}

func New(log *logger.Logger) *Bus {
	return &Bus{log: log}
}

// Subscribe registers fn for the given topics, or for every topic when none
// are given. The returned function removes the subscription.
func (b *Bus) Subscribe(name string, fn Handler, topics ...Topic) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, name: name, topics: topics, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs = slices.DeleteFunc(b.subs, func(s subscriber) bool { return s.id == id })
	}
}

// Publish delivers ev to every interested subscriber before returning. When
// ctx comes from a delivery still in progress on this bus, ev is queued and
// that delivery loop handles it after the current event.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	if p, ok := ctx.Value(pendingKey{b}).(*pending); ok && p.push(queued{ctx: ctx, ev: ev}) {
		return
	}

	p := &pending{}
	p.push(queued{ctx: context.WithValue(ctx, pendingKey{b}, p), ev: ev})
	b.drain(p)
}

func (b *Bus) drain(p *pending) {
	for {
		next, ok := p.pop()
		if !ok {
			return
		}

		b.mu.Lock()
		subs := slices.Clone(b.subs)
		b.mu.Unlock()

		for _, s := range subs {
			if s.wants(next.ev.Topic) {
				b.deliver(next.ctx, s, next.ev)
			}
		}
	}
}

func (b *Bus) deliver(ctx context.Context, s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Event subscriber panicked",
				"subscriber", s.name,
				"topic", string(ev.Topic),
				"event_id", ev.ID,
				"error", fmt.Sprint(r),
			)
		}
	}()

	if err := s.fn(ctx, ev); err != nil {
		b.log.Error("Event subscriber failed",
			"subscriber", s.name,
			"topic", string(ev.Topic),
			"event_id", ev.ID,
			"error", err,
		)
	}
}

package realtime

import (
	"context"
	"sync"
	"time"
)

// MemoryBroker is an in-process Broker. Slow subscribers lose events instead of blocking publishers.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	now    func() time.Time
}

func NewMemoryBroker(buffer int) *MemoryBroker {
	if buffer <= 0 {
		buffer = 16
	}
	return &MemoryBroker{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
		now:    time.Now,
	}
}

func (b *MemoryBroker) Publish(_ context.Context, topic, eventType string, data any) error {
	ev, err := newEvent(topic, eventType, data, b.now())
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[topic] {
		select {
		case sub.events <- ev:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, topics ...string) (*Subscription, error) {
	sub := &Subscription{events: make(chan Event, b.buffer)}
	sub.closeFn = func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, t := range topics {
			delete(b.subs[t], sub)
			if len(b.subs[t]) == 0 {
				delete(b.subs, t)
			}
		}
		close(sub.events)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range topics {
		if b.subs[t] == nil {
			b.subs[t] = make(map[*Subscription]struct{})
		}
		b.subs[t][sub] = struct{}{}
	}
	return sub, nil
}

// Subscribers reports how many live subscriptions listen on topic.
func (b *MemoryBroker) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codequest/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBroker carries events over Redis pub/sub so every API instance sees them.
type RedisBroker struct {
	rdb    *redis.Client
	prefix string
	buffer int
}

var (
	_ Broker = (*RedisBroker)(nil)
	_ Broker = (*MemoryBroker)(nil)
)

func NewRedisBroker(rdb *redis.Client, prefix string) *RedisBroker {
	return &RedisBroker{rdb: rdb, prefix: prefix, buffer: 32}
}

func (b *RedisBroker) channel(topic string) string {
	return b.prefix + ":" + topic
}

func (b *RedisBroker) Publish(ctx context.Context, topic, eventType string, data any) error {
	ev, err := newEvent(topic, eventType, data, time.Now())
	if err != nil {
		return fmt.Errorf("realtime: encode event: %w", err)
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("realtime: encode event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel(topic), payload).Err(); err != nil {
		return fmt.Errorf("realtime: publish %s: %w", topic, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, topics ...string) (*Subscription, error) {
	channels := make([]string, len(topics))
	for i, t := range topics {
		channels[i] = b.channel(t)
	}

	ps := b.rdb.Subscribe(ctx, channels...)
	// Wait for the subscription confirmation so no event published after we return is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("realtime: subscribe: %w", err)
	}

	sub := &Subscription{events: make(chan Event, b.buffer)}
	done := make(chan struct{})
	sub.closeFn = func() error {
		err := ps.Close()
		<-done
		return err
	}

	go func() {
		defer close(done)
		defer close(sub.events)
		log := logger.WithComponent("realtime")
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed event")
				continue
			}
			select {
			case sub.events <- ev:
			default:
				log.Warn().Str("topic", ev.Topic).Msg("subscriber too slow, dropping event")
			}
		}
	}()
	return sub, nil
}

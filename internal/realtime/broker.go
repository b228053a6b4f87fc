// Package realtime fans out change events to interested clients.
// Topics are "battle:{id}" and "user:{id}".
package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

const (
	EventBattleJoined     = "battle.joined"
	EventBattleStarted    = "battle.started"
	EventBattleSubmission = "battle.submission"
	EventBattleCompleted  = "battle.completed"
	EventNotification     = "notification"
)

type Event struct {
	Topic string          `json:"topic"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	At    time.Time       `json:"at"`
}

// Broker publishes events to topics and hands out subscriptions.
type Broker interface {
	Publish(ctx context.Context, topic, eventType string, data any) error
	Subscribe(ctx context.Context, topics ...string) (*Subscription, error)
}

func BattleTopic(battleID string) string { return "battle:" + battleID }
func UserTopic(userID string) string     { return "user:" + userID }

// ParseTopic splits "kind:id". ok is false for unknown kinds or an empty id.
func ParseTopic(topic string) (kind, id string, ok bool) {
	kind, id, found := strings.Cut(topic, ":")
	if !found || id == "" {
		return "", "", false
	}
	switch kind {
	case "battle", "user":
		return kind, id, true
	}
	return "", "", false
}

func newEvent(topic, eventType string, data any, now time.Time) (Event, error) {
	ev := Event{Topic: topic, Type: eventType, At: now.UTC()}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return Event{}, err
		}
		ev.Data = b
	}
	return ev, nil
}

// Subscription delivers events until Close is called. Close is safe to call more than once.
type Subscription struct {
	events    chan Event
	closeOnce sync.Once
	closeFn   func() error
	closeErr  error
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.closeFn()
	})
	return s.closeErr
}

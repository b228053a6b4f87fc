package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"codequest/internal/api/middleware"
	"codequest/internal/common"
	"codequest/internal/platform/logger"
	"codequest/internal/realtime"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

const (
	maxTopicsPerConn = 10
	wsWriteTimeout   = 5 * time.Second
)

// BattleWatcher decides whether a user may follow a battle's live events.
type BattleWatcher interface {
	CanWatch(ctx context.Context, battleID, userID string) error
}

type EventsHandler struct {
	broker         realtime.Broker
	watcher        BattleWatcher
	originPatterns []string
}

func NewEventsHandler(broker realtime.Broker, watcher BattleWatcher, originPatterns []string) *EventsHandler {
	return &EventsHandler{broker: broker, watcher: watcher, originPatterns: originPatterns}
}

func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.stream)
}

// authorize checks every requested topic before the upgrade so failures are plain HTTP errors.
func (h *EventsHandler) authorize(ctx context.Context, userID string, topics []string) error {
	if len(topics) == 0 {
		return common.E(common.ErrValidation, "at least one topic is required")
	}
	if len(topics) > maxTopicsPerConn {
		return common.E(common.ErrValidation, "too many topics")
	}
	for _, t := range topics {
		kind, id, ok := realtime.ParseTopic(t)
		if !ok {
			return common.E(common.ErrValidation, "unknown topic "+t)
		}
		switch kind {
		case "user":
			if id != userID {
				return common.E(common.ErrForbidden, "Cannot subscribe to another user's events")
			}
		case "battle":
			if err := h.watcher.CanWatch(ctx, id, userID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *EventsHandler) stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	topics := r.URL.Query()["topic"]
	if err := h.authorize(r.Context(), userID, topics); err != nil {
		common.RespondWithErr(w, r, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	log := logger.FromContext(r.Context())
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := h.broker.Subscribe(ctx, topics...)
	if err != nil {
		log.Error().Err(err).Strs("topics", topics).Msg("subscribe failed")
		conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer sub.Close()
	log.Debug().Strs("topics", topics).Msg("event stream opened")

	// Writer goroutine
	go func() {
		defer cancel()
		for ev := range sub.Events() {
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			wctx, wcancel := context.WithTimeout(ctx, wsWriteTimeout)
			err = conn.Write(wctx, websocket.MessageText, payload)
			wcancel()
			if err != nil {
				return
			}
		}
	}()

	// Reader loop. Clients have nothing to send; reading keeps control frames flowing.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil {
					log.Debug().Err(err).Msg("event stream read failed")
				}
			}
			return
		}
	}
}

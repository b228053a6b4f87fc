package handler

import (
	"net/http"

	"codequest/internal/api/middleware"
	"codequest/internal/app/service"
	"codequest/internal/common"

	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(ns *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.list)
	r.Get("/unread-count", h.unreadCount)
	r.Post("/read-all", h.markAllRead)
	r.Post("/{notificationId}/read", h.markRead)
	r.Delete("/{notificationId}", h.delete)
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter, err := service.ParseNotificationFilter(q.Get("unread"), q.Get("limit"))
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}

	items, err := h.notificationService.List(r.Context(), userID, filter)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (h *NotificationHandler) unreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	n, err := h.notificationService.UnreadCount(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "notificationId", "Notification")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), id, userID); err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	n, err := h.notificationService.MarkAllRead(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (h *NotificationHandler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "notificationId", "Notification")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(r.Context(), id, userID); err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

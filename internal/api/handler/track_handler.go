package handler

import (
	"context"
	"net/http"

	"codequest/internal/api/middleware"
	"codequest/internal/app/service"
	"codequest/internal/common"

	"github.com/go-chi/chi/v5"
)

type TrackHandler struct {
	trackService *service.TrackService
}

func NewTrackHandler(ts *service.TrackService) *TrackHandler {
	return &TrackHandler{trackService: ts}
}

func (h *TrackHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listTracks)
	r.With(middleware.OptionalAuth).Get("/{slug}", h.getTrack)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createTrack)
	})
}

// RegisterProgressRoutes mounts the per-problem toggles under /progress.
func (h *TrackHandler) RegisterProgressRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Put("/{problemId}/solved", h.markSolved)
	r.Delete("/{problemId}/solved", h.unmarkSolved)
	r.Put("/{problemId}/revision", h.setRevision(true))
	r.Delete("/{problemId}/revision", h.setRevision(false))
}

func (h *TrackHandler) createTrack(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.CreateTrackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	track, err := h.trackService.Create(r.Context(), userID, req)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, track)
}

func (h *TrackHandler) listTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.trackService.List(r.Context())
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

func (h *TrackHandler) getTrack(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	view, err := h.trackService.Get(r.Context(), chi.URLParam(r, "slug"), userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *TrackHandler) markSolved(w http.ResponseWriter, r *http.Request) {
	h.toggleSolved(w, r, h.trackService.MarkSolved)
}

func (h *TrackHandler) unmarkSolved(w http.ResponseWriter, r *http.Request) {
	h.toggleSolved(w, r, h.trackService.UnmarkSolved)
}

func (h *TrackHandler) toggleSolved(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, userID string, problemID int64) (*service.ProgressChange, error)) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	problemID, ok := int64Param(w, r, "problemId")
	if !ok {
		return
	}

	change, err := apply(r.Context(), userID, problemID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, change)
}

func (h *TrackHandler) setRevision(revision bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		problemID, ok := int64Param(w, r, "problemId")
		if !ok {
			return
		}

		if err := h.trackService.SetRevision(r.Context(), userID, problemID, revision); err != nil {
			common.RespondWithErr(w, r, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, map[string]any{"problem_id": problemID, "revision": revision})
	}
}

package handler

import (
	"net/http"

	"codequest/internal/api/middleware"
	"codequest/internal/app/service"
	"codequest/internal/common"
	"codequest/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(ls *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.OptionalAuth)
	r.Get("/", h.users)
	r.Get("/teams", h.teams)
}

func (h *LeaderboardHandler) users(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope, limit, err := service.ParseLeaderboardQuery(q.Get("scope"), q.Get("limit"))
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	userID, authed := middleware.GetUserIDFromContext(r.Context())
	if scope == model.ScopeFollowing && !authed {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	entries, err := h.leaderboardService.Users(r.Context(), userID, scope, limit)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"scope": scope, "entries": entries})
}

func (h *LeaderboardHandler) teams(w http.ResponseWriter, r *http.Request) {
	_, limit, err := service.ParseLeaderboardQuery("", r.URL.Query().Get("limit"))
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	entries, err := h.leaderboardService.Teams(r.Context(), limit)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

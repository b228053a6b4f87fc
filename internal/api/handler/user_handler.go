package handler

import (
	"net/http"

	"codequest/internal/api/middleware"
	"codequest/internal/app/service"
	"codequest/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService   *service.UserService
	followService *service.FollowService
}

func NewUserHandler(us *service.UserService, fs *service.FollowService) *UserHandler {
	return &UserHandler{userService: us, followService: fs}
}

// RegisterMeRoutes mounts the caller's own account under /me.
func (h *UserHandler) RegisterMeRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.me)
	r.Put("/leetcode", h.setLeetCode)
	r.Post("/leetcode/sync", h.requestSync)
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Route("/{userId}", func(ur chi.Router) {
		ur.Get("/", h.profile)
		ur.Post("/follow", h.follow)
		ur.Delete("/follow", h.unfollow)
		ur.Get("/followers", h.followers)
		ur.Get("/following", h.following)
	})
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	profile, err := h.userService.Me(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) setLeetCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.LeetCodeUsernameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.SetLeetCodeUsername(r.Context(), userID, req.Username)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) requestSync(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.userService.RequestStatsSync(r.Context(), userID); err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *UserHandler) profile(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	userID, ok := uuidParam(w, r, "userId", "User")
	if !ok {
		return
	}

	profile, err := h.userService.Profile(r.Context(), viewerID, userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) follow(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	userID, ok := uuidParam(w, r, "userId", "User")
	if !ok {
		return
	}

	if err := h.followService.Follow(r.Context(), viewerID, userID); err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]any{"following": true})
}

func (h *UserHandler) unfollow(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	userID, ok := uuidParam(w, r, "userId", "User")
	if !ok {
		return
	}

	if err := h.followService.Unfollow(r.Context(), viewerID, userID); err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) followers(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId", "User")
	if !ok {
		return
	}
	users, err := h.followService.Followers(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) following(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId", "User")
	if !ok {
		return
	}
	users, err := h.followService.Following(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"users": users})
}

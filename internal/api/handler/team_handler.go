package handler

import (
	"net/http"

	"codequest/internal/api/middleware"
	"codequest/internal/app/service"
	"codequest/internal/common"

	"github.com/go-chi/chi/v5"
)

type TeamHandler struct {
	teamService *service.TeamService
}

func NewTeamHandler(ts *service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

func (h *TeamHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Get("/", h.listTeams)
	r.Post("/", h.createTeam)
	r.Post("/join", h.joinByCode)
	r.Route("/{teamId}", func(tr chi.Router) {
		tr.Get("/", h.getTeam)
		tr.Post("/join", h.joinOpen)
		tr.Post("/invitations", h.invite)
		tr.Post("/leave", h.leave)
	})
}

// RegisterInvitationRoutes mounts the invitee side under /invitations.
func (h *TeamHandler) RegisterInvitationRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listInvitations)
	r.Post("/{invitationId}/accept", h.respond(true))
	r.Post("/{invitationId}/decline", h.respond(false))
}

func (h *TeamHandler) createTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.CreateTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	team, err := h.teamService.Create(r.Context(), userID, req)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.List(r.Context())
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

func (h *TeamHandler) getTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, "teamId", "Team")
	if !ok {
		return
	}

	team, err := h.teamService.Get(r.Context(), teamID, userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) joinByCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.JoinTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	team, err := h.teamService.JoinByCode(r.Context(), userID, req.InviteCode)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) joinOpen(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, "teamId", "Team")
	if !ok {
		return
	}

	team, err := h.teamService.JoinOpen(r.Context(), userID, teamID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, "teamId", "Team")
	if !ok {
		return
	}
	var req service.InviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inv, err := h.teamService.Invite(r.Context(), userID, teamID, req.UserID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, inv)
}

func (h *TeamHandler) leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, "teamId", "Team")
	if !ok {
		return
	}

	if err := h.teamService.Leave(r.Context(), userID, teamID); err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) listInvitations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	invs, err := h.teamService.Invitations(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"invitations": invs})
}

func (h *TeamHandler) respond(accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		invitationID, ok := uuidParam(w, r, "invitationId", "Invitation")
		if !ok {
			return
		}

		inv, err := h.teamService.RespondInvitation(r.Context(), userID, invitationID, accept)
		if err != nil {
			common.RespondWithErr(w, r, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, inv)
	}
}

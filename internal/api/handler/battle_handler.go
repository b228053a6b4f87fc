package handler

import (
	"net/http"

	"codequest/internal/api/middleware"
	"codequest/internal/app/service"
	"codequest/internal/common"

	"github.com/go-chi/chi/v5"
)

type BattleHandler struct {
	battleService *service.BattleService
	submitLimit   func(http.Handler) http.Handler
}

func NewBattleHandler(bs *service.BattleService, submitLimit func(http.Handler) http.Handler) *BattleHandler {
	return &BattleHandler{battleService: bs, submitLimit: submitLimit}
}

func (h *BattleHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Get("/", h.listBattles)
	r.Post("/", h.createBattle)
	r.Route("/{battleId}", func(br chi.Router) {
		br.Get("/", h.getBattle)
		br.Post("/join", h.joinBattle)
		br.Post("/start", h.startBattle)
		br.Get("/submissions", h.listSubmissions)
		br.With(h.submitLimit).Post("/submit", h.submit)
	})
}

func (h *BattleHandler) createBattle(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.CreateBattleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	battle, err := h.battleService.Create(r.Context(), userID, req)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]any{"battle": battle})
}

func (h *BattleHandler) listBattles(w http.ResponseWriter, r *http.Request) {
	status, err := service.ParseBattleStatus(r.URL.Query().Get("status"))
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	battles, err := h.battleService.List(r.Context(), status)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"battles": battles})
}

func (h *BattleHandler) getBattle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	battleID, ok := uuidParam(w, r, "battleId", "Battle")
	if !ok {
		return
	}

	detail, err := h.battleService.Get(r.Context(), battleID, userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *BattleHandler) joinBattle(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	battleID, ok := uuidParam(w, r, "battleId", "Battle")
	if !ok {
		return
	}

	participant, err := h.battleService.Join(r.Context(), battleID, userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]any{"participant": participant})
}

func (h *BattleHandler) startBattle(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	battleID, ok := uuidParam(w, r, "battleId", "Battle")
	if !ok {
		return
	}

	battle, err := h.battleService.Start(r.Context(), battleID, userID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"battle": battle})
}

func (h *BattleHandler) submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	battleID, ok := uuidParam(w, r, "battleId", "Battle")
	if !ok {
		return
	}
	var req service.SubmitBattleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.battleService.Submit(r.Context(), battleID, userID, req)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *BattleHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	battleID, ok := uuidParam(w, r, "battleId", "Battle")
	if !ok {
		return
	}
	subs, err := h.battleService.Submissions(r.Context(), battleID)
	if err != nil {
		common.RespondWithErr(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

package common

import (
	"encoding/json"
	"net/http"

	"codequest/internal/platform/logger"

	"github.com/go-chi/chi/v5/middleware"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithErr writes the sanitized form of err and logs the full chain.
func RespondWithErr(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatusFromError(err)
	event := logger.FromContext(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromContext(r.Context()).Error()
	}
	event.Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")
	RespondWithError(w, status, PublicMessage(err))
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

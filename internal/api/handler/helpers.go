package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"codequest/internal/api/middleware"
	"codequest/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst, replying 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			common.RespondWithError(w, http.StatusBadRequest, "Request body is required")
		} else {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		}
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
	}
	return userID, ok
}

// uuidParam reads a UUID path parameter. Malformed ids can never match a row, so they are 404s.
func uuidParam(w http.ResponseWriter, r *http.Request, name, what string) (string, bool) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		common.RespondWithError(w, http.StatusNotFound, what+" not found")
		return "", false
	}
	return raw, true
}

func int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		common.RespondWithError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

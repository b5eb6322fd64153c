package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/themeradar/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps pipeline errors: lock conflict → 409, preconditions → 422, else 500
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, contracts.ErrLockConflict):
		return http.StatusConflict, contracts.ErrLockConflict.Error()
	case errors.Is(err, contracts.ErrNoDocs):
		return http.StatusUnprocessableEntity, contracts.ErrNoDocs.Error()
	case errors.Is(err, contracts.ErrInsufficientEvidence):
		return http.StatusUnprocessableEntity, contracts.ErrInsufficientEvidence.Error()
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

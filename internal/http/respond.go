package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bilancio/internal/core"
	applog "bilancio/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeRawJSON writes a pre-marshaled JSON body (cached report responses).
func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps domain errors to the wire contract: validation
// failures are 400 with the sentinel's message, everything else is an
// opaque 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", "url", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidMonth,
		core.ErrInvalidAmount,
		core.ErrInvalidDate,
		core.ErrFutureDate,
		core.ErrEmptyDescription,
		core.ErrEmptyCategory,
		core.ErrEmptyName,
		core.ErrEmptyOwner,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

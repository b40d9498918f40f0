package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yucabot/yucabot/internal/embedding"
	"github.com/yucabot/yucabot/internal/extract"
	"github.com/yucabot/yucabot/internal/knowledge"
)

// writeJSON writes a JSON response with the given status code.
// Note: If encoding fails after WriteHeader is called, there's no way to
// notify the client since the status code is already sent. The error is
// logged for debugging but doesn't affect the response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse represents a JSON error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// writePipelineError maps pipeline failures onto HTTP statuses:
// caller mistakes are 4xx, upstream provider failures are 502, and
// everything else, including missing provisioning, is 500.
func writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, embedding.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "empty_input", "document contains no usable text")
	case errors.Is(err, extract.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_type", err.Error())
	case errors.Is(err, knowledge.ErrSearchNotConfigured):
		writeError(w, http.StatusInternalServerError, "search_not_configured", err.Error())
	case errors.Is(err, embedding.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, "provider_not_configured", err.Error())
	default:
		var providerErr *embedding.ProviderError
		if errors.As(err, &providerErr) {
			writeError(w, http.StatusBadGateway, "provider_error", providerErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

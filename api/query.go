package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/yucabot/yucabot/internal/log"
	"github.com/yucabot/yucabot/internal/pipeline"
)

// Querier answers one question. Implemented by pipeline.Pipeline.
type Querier interface {
	Query(ctx context.Context, question string) (pipeline.QueryResult, error)
}

// QueryHandler handles the question answering endpoint.
type QueryHandler struct {
	querier Querier
	logger  log.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(querier Querier, logger log.Logger) *QueryHandler {
	return &QueryHandler{querier: querier, logger: logger}
}

// RegisterRoutes registers query routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.handleQuery)
}

// QueryRequest is the JSON body for POST /api/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// handleQuery answers a question from stored documents.
// Request body: {"query": "..."}
// Response: {"answer": "...", "sources": [{"id": "...", "similarity": 0.9}]}
func (h *QueryHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a query field")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}

	result, err := h.querier.Query(r.Context(), req.Query)
	if err != nil {
		h.logger.Error("query failed", "error", err)
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/yucabot/yucabot/internal/extract"
	"github.com/yucabot/yucabot/internal/log"
	"github.com/yucabot/yucabot/internal/pipeline"
)

// DefaultMaxUploadBytes caps the accepted document size.
const DefaultMaxUploadBytes = 16 << 20

// Ingestor stores one document. Implemented by pipeline.Pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, rawText string) (pipeline.IngestResult, error)
}

// IngestHandler handles document upload endpoints.
type IngestHandler struct {
	ingestor Ingestor
	registry *extract.Registry
	maxBytes int64
	logger   log.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(ingestor Ingestor, registry *extract.Registry, maxBytes int64, logger log.Logger) *IngestHandler {
	if registry == nil {
		registry = extract.NewRegistry()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &IngestHandler{ingestor: ingestor, registry: registry, maxBytes: maxBytes, logger: logger}
}

// RegisterRoutes registers ingest routes on the given mux.
func (h *IngestHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ingest", h.handleIngest)
}

// IngestResponse is the JSON body returned on successful ingestion.
type IngestResponse struct {
	Success             bool   `json:"success"`
	ID                  string `json:"id"`
	StoredLength        int    `json:"storedLength"`
	EmbeddingDimensions int    `json:"embeddingDimensions"`
}

// handleIngest accepts a multipart upload under the "file" field, extracts
// its text and stores it.
func (h *IngestHandler) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("missing or unreadable file field: %v", err))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("reading upload: %v", err))
		return
	}

	contentType := header.Header.Get("Content-Type")
	rawText, err := h.registry.Extract(r.Context(), data, contentType, header.Filename)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), rawText)
	if err != nil {
		h.logger.Error("ingest failed", "filename", header.Filename, "error", err)
		writePipelineError(w, err)
		return
	}

	h.logger.Info("document uploaded",
		"filename", header.Filename, "stored_length", result.StoredLength)

	writeJSON(w, http.StatusOK, IngestResponse{
		Success:             true,
		ID:                  result.ID,
		StoredLength:        result.StoredLength,
		EmbeddingDimensions: result.Dimensions,
	})
}

package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yucabot/yucabot/internal/embedding"
	"github.com/yucabot/yucabot/internal/log"
	"github.com/yucabot/yucabot/internal/pipeline"
)

// fakeService scripts both pipeline operations.
type fakeService struct {
	ingestResult pipeline.IngestResult
	ingestErr    error
	ingestInput  string

	queryResult pipeline.QueryResult
	queryErr    error
	queryInput  string
}

func (f *fakeService) Ingest(_ context.Context, rawText string) (pipeline.IngestResult, error) {
	f.ingestInput = rawText
	return f.ingestResult, f.ingestErr
}

func (f *fakeService) Query(_ context.Context, question string) (pipeline.QueryResult, error) {
	f.queryInput = question
	return f.queryResult, f.queryErr
}

// multipartUpload builds a multipart body with one file part.
func multipartUpload(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestIngestEndpoint(t *testing.T) {
	t.Run("stores uploaded text document", func(t *testing.T) {
		svc := &fakeService{ingestResult: pipeline.IngestResult{
			ID: "doc-1", StoredLength: 11, Dimensions: 1024,
		}}
		srv := NewServer(svc, nil, nil, 0, log.NewNop())

		body, contentType := multipartUpload(t, "file", "notes.txt", "text/plain", []byte("Hello world"))
		req := httptest.NewRequest(http.MethodPost, "/api/ingest", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Hello world", svc.ingestInput)
		assert.JSONEq(t,
			`{"success": true, "id": "doc-1", "storedLength": 11, "embeddingDimensions": 1024}`,
			w.Body.String())
	})

	t.Run("missing file field returns 400", func(t *testing.T) {
		srv := NewServer(&fakeService{}, nil, nil, 0, log.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/ingest", bytes.NewBufferString("not multipart"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		w := httptest.NewRecorder()

		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unsupported document type returns 415", func(t *testing.T) {
		srv := NewServer(&fakeService{}, nil, nil, 0, log.NewNop())

		body, contentType := multipartUpload(t, "file", "doc.pdf", "application/pdf", []byte("%PDF-1.7"))
		req := httptest.NewRequest(http.MethodPost, "/api/ingest", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		assert.Contains(t, w.Body.String(), "unsupported_type")
	})

	t.Run("blank document returns 400", func(t *testing.T) {
		svc := &fakeService{ingestErr: embedding.ErrEmptyInput}
		srv := NewServer(svc, nil, nil, 0, log.NewNop())

		body, contentType := multipartUpload(t, "file", "blank.txt", "text/plain", []byte("   \n"))
		req := httptest.NewRequest(http.MethodPost, "/api/ingest", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "empty_input")
	})

	t.Run("embedding provider failure returns 502", func(t *testing.T) {
		svc := &fakeService{ingestErr: &embedding.ProviderError{
			Provider: "huggingface", StatusCode: 503, Message: "model loading",
		}}
		srv := NewServer(svc, nil, nil, 0, log.NewNop())

		body, contentType := multipartUpload(t, "file", "notes.txt", "text/plain", []byte("text"))
		req := httptest.NewRequest(http.MethodPost, "/api/ingest", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

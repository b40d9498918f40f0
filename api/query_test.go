package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yucabot/yucabot/internal/knowledge"
	"github.com/yucabot/yucabot/internal/log"
	"github.com/yucabot/yucabot/internal/pipeline"
)

func postQuery(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestQueryEndpoint(t *testing.T) {
	t.Run("answers with sources", func(t *testing.T) {
		svc := &fakeService{queryResult: pipeline.QueryResult{
			Answer: "The studio opens at 7am.",
			Sources: []pipeline.Source{
				{ID: "a", Similarity: 0.92},
			},
		}}
		srv := NewServer(svc, nil, nil, 0, log.NewNop())

		w := postQuery(t, srv, `{"query": "When does the studio open?"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "When does the studio open?", svc.queryInput)
		assert.JSONEq(t,
			`{"answer": "The studio opens at 7am.", "sources": [{"id": "a", "similarity": 0.92}]}`,
			w.Body.String())
	})

	t.Run("no matches still returns a structured answer", func(t *testing.T) {
		svc := &fakeService{queryResult: pipeline.QueryResult{
			Answer:  "I could not find that information in the documents.",
			Sources: []pipeline.Source{},
		}}
		srv := NewServer(svc, nil, nil, 0, log.NewNop())

		w := postQuery(t, srv, `{"query": "unknown topic?"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"sources":[]`)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		srv := NewServer(&fakeService{}, nil, nil, 0, log.NewNop())
		w := postQuery(t, srv, `{"query": `)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty query returns 400", func(t *testing.T) {
		srv := NewServer(&fakeService{}, nil, nil, 0, log.NewNop())
		w := postQuery(t, srv, `{"query": ""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing search function returns 500 with remediation hint", func(t *testing.T) {
		svc := &fakeService{queryErr: knowledge.ErrSearchNotConfigured}
		srv := NewServer(svc, nil, nil, 0, log.NewNop())

		w := postQuery(t, srv, `{"query": "anything"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "search_not_configured")
		assert.Contains(t, w.Body.String(), "migrations")
	})
}

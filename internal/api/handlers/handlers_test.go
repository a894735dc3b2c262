package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
	"github.com/Harshitk-cp/filinggraph/internal/nlp"
	"github.com/Harshitk-cp/filinggraph/internal/service"
	"github.com/Harshitk-cp/filinggraph/internal/store"
)

type fakeExtractor struct {
	err  error
	docs []domain.Document
}

func (f *fakeExtractor) Extract(ctx context.Context, doc domain.Document) (*domain.ExtractionResult, error) {
	f.docs = append(f.docs, doc)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ExtractionResult{
		Document:  doc,
		People:    []*domain.PersonEntity{{Name: "Alice", Aliases: []string{"Alice"}, Contexts: []string{"Alice acquired Beta Corp."}}},
		Companies: []*domain.CompanyEntity{},
		Relationships: []domain.Relationship{{
			Actor: domain.PersonRef("Alice"), ActorName: "Alice",
			Target: domain.CompanyRef("200"), TargetName: "Beta Corp",
			Verb: "acquire", Confidence: 5,
		}},
		ExtractedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

type fakeSink struct {
	err   error
	saved []*domain.ExtractionResult
}

func (f *fakeSink) Save(ctx context.Context, r *domain.ExtractionResult) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, r)
	return nil
}

func postExtract(h *ExtractHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Extract(rec, req)
	return rec
}

func TestExtractHandler_Extract(t *testing.T) {
	ext := &fakeExtractor{}
	h := NewExtractHandler(ext, nil, zap.NewNop())

	rec := postExtract(h, `{"text":"  Alice acquired   Beta Corp. ","filer_id":"0000000100","form_type":"8-K","url":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, ext.docs, 1)
	assert.Equal(t, "Alice acquired Beta Corp.", ext.docs[0].Text)
	assert.Equal(t, "100", ext.docs[0].FilerID)
	assert.Equal(t, "8-K", ext.docs[0].FormType)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["persisted"])
	rels := body["relationships"].([]any)
	require.Len(t, rels, 1)
	assert.Equal(t, "acquire", rels[0].(map[string]any)["verb"])
	assert.NotContains(t, rec.Body.String(), `"text"`)
}

func TestExtractHandler_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		sink    domain.ResultSink
		body    string
		want    int
		wantMsg string
	}{
		{"bad json", nil, nil, `{`, http.StatusBadRequest, "invalid request body"},
		{"empty text", service.ErrEmptyText, nil, `{"text":""}`, http.StatusBadRequest, service.ErrEmptyText.Error()},
		{"too long", nlp.ErrTextTooLong, nil, `{"text":"x"}`, http.StatusRequestEntityTooLarge, nlp.ErrTextTooLong.Error()},
		{"internal", errors.New("boom"), nil, `{"text":"x"}`, http.StatusInternalServerError, "extraction failed"},
		{"persist without sink", nil, nil, `{"text":"x","url":"u","persist":true}`, http.StatusServiceUnavailable, "persistence is not configured"},
		{"persist without url", nil, &fakeSink{}, `{"text":"x","persist":true}`, http.StatusBadRequest, "url is required when persist is set"},
		{"persist failure", nil, &fakeSink{err: errors.New("db down")}, `{"text":"x","url":"u","persist":true}`, http.StatusInternalServerError, "failed to persist extraction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExtractHandler(&fakeExtractor{err: tt.err}, tt.sink, zap.NewNop())
			rec := postExtract(h, tt.body)
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestExtractHandler_Persist(t *testing.T) {
	sink := &fakeSink{}
	h := NewExtractHandler(&fakeExtractor{}, sink, zap.NewNop())

	rec := postExtract(h, `{"text":"Alice acquired Beta Corp.","url":" u1 ","persist":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sink.saved, 1)
	assert.Equal(t, "u1", sink.saved[0].Document.URL)
	assert.Contains(t, rec.Body.String(), `"persisted":true`)
}

func TestExtractHandler_BodyTooLarge(t *testing.T) {
	h := NewExtractHandler(&fakeExtractor{}, nil, zap.NewNop())
	rec := postExtract(h, `{"text":"`+strings.Repeat("a", MaxExtractBodyBytes)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

type fakeResolver map[string]domain.Company

func (f fakeResolver) ResolveCompany(name string) (domain.Company, bool) {
	c, ok := f[strings.ToLower(name)]
	return c, ok
}

func TestRegistryHandler_Lookup(t *testing.T) {
	h := NewRegistryHandler(fakeResolver{"acme": {ID: "100", Name: "Acme Corp"}})

	tests := []struct {
		query string
		want  int
	}{
		{"?q=ACME", http.StatusOK},
		{"?q=unknown", http.StatusNotFound},
		{"?q=%20", http.StatusBadRequest},
		{"", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/v1/registry/lookup"+tt.query, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/v1/registry/lookup?q=acme", nil))
	var c domain.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "100", c.ID)
	assert.Equal(t, "Acme Corp", c.Name)
}

type fakeDocumentStore struct {
	results    map[string]*domain.ExtractionResult
	listErr    error
	lastLimit  int
	lastVector []float32
}

func (f *fakeDocumentStore) GetResult(ctx context.Context, url string) (*domain.ExtractionResult, error) {
	r, ok := f.results[url]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (f *fakeDocumentStore) ListDocuments(ctx context.Context, limit int) ([]store.DocumentSummary, error) {
	f.lastLimit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return nil, nil
}

func (f *fakeDocumentStore) SimilarRelationships(ctx context.Context, query []float32, limit int) ([]domain.Relationship, error) {
	f.lastVector = query
	f.lastLimit = limit
	return []domain.Relationship{{Verb: "acquire", Confidence: 7}}, nil
}

type fakeEmbedder struct{ err error }

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

func TestDocumentHandler_GetResult(t *testing.T) {
	s := &fakeDocumentStore{results: map[string]*domain.ExtractionResult{
		"u1": {Document: domain.Document{URL: "u1"}},
	}}
	h := NewDocumentHandler(s, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.GetResult(rec, httptest.NewRequest(http.MethodGet, "/v1/documents/result?url=u1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetResult(rec, httptest.NewRequest(http.MethodGet, "/v1/documents/result?url=u2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.GetResult(rec, httptest.NewRequest(http.MethodGet, "/v1/documents/result", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_List(t *testing.T) {
	s := &fakeDocumentStore{}
	h := NewDocumentHandler(s, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/v1/documents?limit=9999", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500, s.lastLimit)
	assert.JSONEq(t, `{"documents":[]}`, rec.Body.String())

	s.listErr = errors.New("db down")
	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/v1/documents?limit=abc", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 50, s.lastLimit)
}

func TestDocumentHandler_Similar(t *testing.T) {
	s := &fakeDocumentStore{}

	rec := httptest.NewRecorder()
	NewDocumentHandler(s, nil, zap.NewNop()).Similar(rec, httptest.NewRequest(http.MethodGet, "/v1/relationships/similar?q=x", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h := NewDocumentHandler(s, fakeEmbedder{}, zap.NewNop())
	rec = httptest.NewRecorder()
	h.Similar(rec, httptest.NewRequest(http.MethodGet, "/v1/relationships/similar", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Similar(rec, httptest.NewRequest(http.MethodGet, "/v1/relationships/similar?q=acquisition&limit=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []float32{1, 0}, s.lastVector)
	assert.Equal(t, 3, s.lastLimit)
	assert.Contains(t, rec.Body.String(), `"verb":"acquire"`)

	rec = httptest.NewRecorder()
	NewDocumentHandler(s, fakeEmbedder{err: errors.New("quota")}, zap.NewNop()).
		Similar(rec, httptest.NewRequest(http.MethodGet, "/v1/relationships/similar?q=x", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

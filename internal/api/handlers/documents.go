package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/api/middleware"
	"github.com/Harshitk-cp/filinggraph/internal/domain"
	"github.com/Harshitk-cp/filinggraph/internal/store"
)

// DocumentStore reads previously persisted results.
type DocumentStore interface {
	GetResult(ctx context.Context, url string) (*domain.ExtractionResult, error)
	ListDocuments(ctx context.Context, limit int) ([]store.DocumentSummary, error)
	SimilarRelationships(ctx context.Context, query []float32, limit int) ([]domain.Relationship, error)
}

type DocumentHandler struct {
	store    DocumentStore
	embedder domain.EmbeddingClient
	logger   *zap.Logger
}

// NewDocumentHandler creates the handler. embedder may be nil, which
// disables the similarity search.
func NewDocumentHandler(s DocumentStore, embedder domain.EmbeddingClient, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{store: s, embedder: embedder, logger: logger}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.ListDocuments(r.Context(), queryInt(r, "limit", 50, 500))
	if err != nil {
		middleware.LoggerFromContext(r.Context(), h.logger).Error("failed to list documents", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []store.DocumentSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *DocumentHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	result, err := h.store.GetResult(r.Context(), url)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		middleware.LoggerFromContext(r.Context(), h.logger).Error("failed to load result", zap.String("url", url), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load result")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Similar embeds ?q= and returns the stored relationships whose contexts are
// closest to it.
func (h *DocumentHandler) Similar(w http.ResponseWriter, r *http.Request) {
	if h.embedder == nil {
		writeError(w, http.StatusServiceUnavailable, "embedding provider is not configured")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	logger := middleware.LoggerFromContext(r.Context(), h.logger)
	vec, err := h.embedder.Embed(r.Context(), q)
	if err != nil {
		logger.Error("failed to embed query", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to embed query")
		return
	}

	rels, err := h.store.SimilarRelationships(r.Context(), vec, queryInt(r, "limit", 10, 100))
	if err != nil {
		logger.Error("similarity search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}
	if rels == nil {
		rels = []domain.Relationship{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"relationships": rels})
}

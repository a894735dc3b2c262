package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/api/middleware"
	"github.com/Harshitk-cp/filinggraph/internal/domain"
	"github.com/Harshitk-cp/filinggraph/internal/filing"
	"github.com/Harshitk-cp/filinggraph/internal/nlp"
	"github.com/Harshitk-cp/filinggraph/internal/registry"
	"github.com/Harshitk-cp/filinggraph/internal/service"
)

// MaxExtractBodyBytes bounds the request body of POST /v1/extract.
const MaxExtractBodyBytes = 16 << 20

type Extractor interface {
	Extract(ctx context.Context, doc domain.Document) (*domain.ExtractionResult, error)
}

type ExtractHandler struct {
	svc    Extractor
	sink   domain.ResultSink
	logger *zap.Logger
}

// NewExtractHandler creates the handler. sink may be nil, in which case
// persist requests are rejected.
func NewExtractHandler(svc Extractor, sink domain.ResultSink, logger *zap.Logger) *ExtractHandler {
	return &ExtractHandler{svc: svc, sink: sink, logger: logger}
}

type extractRequest struct {
	Text     string `json:"text"`
	FilerID  string `json:"filer_id"`
	FormType string `json:"form_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Persist  bool   `json:"persist,omitempty"`
}

type extractResponse struct {
	*domain.ExtractionResult
	Persisted bool `json:"persisted"`
}

func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxExtractBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Persist {
		if h.sink == nil {
			writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			writeError(w, http.StatusBadRequest, "url is required when persist is set")
			return
		}
	}

	doc := domain.Document{
		URL:      strings.TrimSpace(req.URL),
		FilerID:  registry.NormalizeCIK(req.FilerID),
		FormType: req.FormType,
		Text:     filing.CleanText(req.Text),
	}

	logger := middleware.LoggerFromContext(r.Context(), h.logger)
	result, err := h.svc.Extract(r.Context(), doc)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyText):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, nlp.ErrTextTooLong):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			logger.Error("extraction failed", zap.String("url", doc.URL), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "extraction failed")
		}
		return
	}

	resp := extractResponse{ExtractionResult: result}
	if req.Persist {
		if err := h.sink.Save(r.Context(), result); err != nil {
			logger.Error("failed to persist extraction", zap.String("url", doc.URL), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to persist extraction")
			return
		}
		resp.Persisted = true
	}

	writeJSON(w, http.StatusOK, resp)
}

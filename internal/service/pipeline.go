package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

var ErrEmptyText = errors.New("document text is required")

// ExtractionService runs the full per-document pipeline: parse, entity
// extraction, person and company merging, relationship extraction and
// aggregation.
type ExtractionService struct {
	engine        domain.NLPEngine
	registry      domain.CompanyRegistry
	entities      *EntityExtractor
	companies     *CompanyResolver
	people        *PersonDeduplicator
	relationships *RelationshipExtractor
	opts          domain.ExtractionOptions
	logger        *zap.Logger

	loader  domain.DocumentLoader
	sink    domain.ResultSink
	checker domain.ProcessedChecker
	now     func() time.Time
}

func NewExtractionService(engine domain.NLPEngine, registry domain.CompanyRegistry, similarity domain.SimilarityFunc, opts domain.ExtractionOptions, logger *zap.Logger) *ExtractionService {
	companies := NewCompanyResolver(registry, similarity, opts, logger)
	return &ExtractionService{
		engine:        engine,
		registry:      registry,
		entities:      NewEntityExtractor(companies, logger),
		companies:     companies,
		people:        NewPersonDeduplicator(engine, similarity, opts, logger),
		relationships: NewRelationshipExtractor(engine, opts, logger),
		opts:          opts,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *ExtractionService) SetDocumentLoader(l domain.DocumentLoader) {
	s.loader = l
}

func (s *ExtractionService) SetResultSink(sink domain.ResultSink) {
	s.sink = sink
}

func (s *ExtractionService) SetProcessedChecker(c domain.ProcessedChecker) {
	s.checker = c
}

func (s *ExtractionService) Options() domain.ExtractionOptions {
	return s.opts
}

// ResolveCompany maps a name or ticker to its registry entry using the same
// exact-then-fuzzy rules as extraction.
func (s *ExtractionService) ResolveCompany(name string) (domain.Company, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Company{}, false
	}
	id, ok := s.companies.Resolve(name)
	if !ok {
		return domain.Company{}, false
	}
	return s.registry.Get(id)
}

// documentGraph is a document's entities and relationships before confidence
// normalization.
type documentGraph struct {
	document      domain.Document
	people        []*domain.PersonEntity
	companies     []*domain.CompanyEntity
	relationships []*domain.AggregatedRelationship
}

func (g *documentGraph) result(scale ConfidenceScale, at time.Time) *domain.ExtractionResult {
	people := g.people
	if people == nil {
		people = []*domain.PersonEntity{}
	}
	companies := g.companies
	if companies == nil {
		companies = []*domain.CompanyEntity{}
	}
	return &domain.ExtractionResult{
		Document:      g.document,
		People:        people,
		Companies:     companies,
		Relationships: scale.Apply(g.relationships),
		ExtractedAt:   at,
	}
}

// Extract runs one document end to end. Confidence is normalized over the
// document's own relationships.
func (s *ExtractionService) Extract(ctx context.Context, doc domain.Document) (*domain.ExtractionResult, error) {
	g, err := s.analyze(ctx, doc)
	if err != nil {
		return nil, err
	}
	return g.result(NewConfidenceScale(g.relationships), s.now().UTC()), nil
}

func (s *ExtractionService) analyze(ctx context.Context, doc domain.Document) (*documentGraph, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if n := len(doc.Text); n > s.engine.MaxLength() {
		s.engine.RaiseMaxLength(n)
	}

	parsed, err := s.engine.Parse(ctx, doc.Text)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	raw := s.entities.Extract(parsed, doc.FilerID)
	people := s.people.Deduplicate(ctx, raw.People)
	companies := s.companies.Merge(raw.Companies)

	candidates, err := s.relationships.Extract(ctx, people, companies)
	if err != nil {
		return nil, err
	}
	rels := AggregateRelationships(candidates)

	s.logger.Debug("analyzed document",
		zap.String("url", doc.URL),
		zap.Int("people", len(people)),
		zap.Int("companies", len(companies)),
		zap.Int("candidates", len(candidates)),
		zap.Int("relationships", len(rels)),
	)

	return &documentGraph{
		document:      doc,
		people:        people,
		companies:     companies,
		relationships: rels,
	}, nil
}

package service

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

// CompanyResolver maps organization mentions onto registry identifiers: an
// exact name or ticker hit first, then an optional fuzzy scan.
type CompanyResolver struct {
	registry   domain.CompanyRegistry
	similarity domain.SimilarityFunc
	logger     *zap.Logger

	Threshold   int
	MinLength   int
	EnableFuzzy bool
}

func NewCompanyResolver(registry domain.CompanyRegistry, similarity domain.SimilarityFunc, opts domain.ExtractionOptions, logger *zap.Logger) *CompanyResolver {
	return &CompanyResolver{
		registry:    registry,
		similarity:  similarity,
		logger:      logger,
		Threshold:   opts.CompanySimilarityThreshold,
		MinLength:   opts.CompanyFuzzyMinLength,
		EnableFuzzy: opts.EnableCompanyFuzzyMatch,
	}
}

// Resolve returns the registry identifier for text.
func (r *CompanyResolver) Resolve(text string) (string, bool) {
	if id, ok := r.registry.LookupExact(text); ok {
		return id, true
	}
	if !r.EnableFuzzy || utf8.RuneCountInString(strings.TrimSpace(text)) <= r.MinLength {
		return "", false
	}
	return r.fuzzyMatch(text)
}

// fuzzyMatch scores text against every registry name. Only a strictly better
// score replaces the current best, so ties keep the earliest entry.
func (r *CompanyResolver) fuzzyMatch(text string) (string, bool) {
	lower := strings.ToLower(text)
	bestID, bestScore := "", 0
	for _, c := range r.registry.Entries() {
		score := r.similarity(lower, strings.ToLower(c.Name))
		if score > bestScore {
			bestID, bestScore = c.ID, score
		}
	}
	if bestID == "" || bestScore < r.Threshold {
		return "", false
	}
	r.logger.Debug("fuzzy company match",
		zap.String("mention", text),
		zap.String("company_id", bestID),
		zap.Int("score", bestScore),
	)
	return bestID, true
}

// Merge groups resolved mentions by identifier in first-seen order. The
// display name comes from the registry; aliases dedupe ignoring case.
func (r *CompanyResolver) Merge(mentions []domain.ResolvedMention) []*domain.CompanyEntity {
	byID := make(map[string]*domain.CompanyEntity)
	var out []*domain.CompanyEntity
	for _, m := range mentions {
		entity, ok := byID[m.CompanyID]
		if !ok {
			entity = &domain.CompanyEntity{ID: m.CompanyID, Name: m.Text}
			if c, found := r.registry.Get(m.CompanyID); found {
				company := c
				entity.Name = c.Name
				entity.Company = &company
			}
			byID[m.CompanyID] = entity
			out = append(out, entity)
		}
		entity.AddAlias(m.Text)
		entity.AddContexts(m.Contexts...)
	}
	return out
}

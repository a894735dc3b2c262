package service

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

// RawEntities is the entity extractor output for one document.
type RawEntities struct {
	People    []domain.Mention
	Companies []domain.ResolvedMention
}

// EntityExtractor turns NER spans into person mentions and registry-resolved
// company mentions.
type EntityExtractor struct {
	companies *CompanyResolver
	logger    *zap.Logger
}

func NewEntityExtractor(companies *CompanyResolver, logger *zap.Logger) *EntityExtractor {
	return &EntityExtractor{companies: companies, logger: logger}
}

// Extract walks the entity spans of doc in order. Every span is checked
// against the registry before its label is trusted: a person span that names
// a registered company is treated as that company. Organization spans that do
// not resolve, or that resolve to filerID, are dropped.
func (e *EntityExtractor) Extract(doc *domain.Doc, filerID string) RawEntities {
	var out RawEntities
	dropped, relabeled := 0, 0
	for _, ent := range doc.Entities {
		text := strings.TrimSpace(ent.Text)
		if text == "" {
			continue
		}
		mention := domain.Mention{
			Text:     text,
			Contexts: []string{sentenceText(doc, ent.Sentence)},
			Start:    ent.Start,
			End:      ent.End,
		}

		var (
			id string
			ok bool
		)
		switch ent.Label {
		case domain.LabelPerson:
			id, ok = e.resolvePersonSpan(text)
			if !ok {
				if hasCorporateDesignator(text) {
					dropped++
					continue
				}
				mention.Kind = domain.KindPerson
				out.People = append(out.People, mention)
				continue
			}
			relabeled++
		case domain.LabelOrg:
			id, ok = e.companies.Resolve(text)
		default:
			continue
		}

		if !ok || id == filerID {
			dropped++
			continue
		}
		mention.Kind = domain.KindCompany
		out.Companies = append(out.Companies, domain.ResolvedMention{Mention: mention, CompanyID: id})
	}

	e.logger.Debug("extracted entity mentions",
		zap.Int("people", len(out.People)),
		zap.Int("companies", len(out.Companies)),
		zap.Int("dropped_orgs", dropped),
		zap.Int("relabeled_people", relabeled),
	)
	return out
}

// resolvePersonSpan looks a person-labeled span up in the registry. A ticker
// hit only counts when the span is written in capitals, and fuzzy matching
// only runs when the span carries a corporate designator, so a given name or
// surname never lands on a company that shares it.
func (e *EntityExtractor) resolvePersonSpan(text string) (string, bool) {
	if id, ok := e.companies.registry.LookupExact(text); ok {
		if c, found := e.companies.registry.Get(id); found && strings.EqualFold(c.Name, text) {
			return id, true
		}
		if strings.ToUpper(text) == text {
			return id, true
		}
	}
	if !hasCorporateDesignator(text) {
		return "", false
	}
	return e.companies.Resolve(text)
}

var corporateDesignators = map[string]struct{}{
	"ag": {}, "bancorp": {}, "bank": {}, "co": {}, "company": {},
	"corp": {}, "corporation": {}, "group": {}, "holding": {}, "holdings": {},
	"inc": {}, "incorporated": {}, "limited": {}, "llc": {}, "llp": {},
	"lp": {}, "ltd": {}, "nv": {}, "plc": {}, "sa": {}, "trust": {},
}

func hasCorporateDesignator(text string) bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, ok := corporateDesignators[w]; ok {
			return true
		}
	}
	return false
}

func sentenceText(doc *domain.Doc, i int) string {
	if i < 0 || i >= len(doc.Sentences) {
		return strings.TrimSpace(doc.Text)
	}
	return strings.TrimSpace(doc.Sentences[i].Text)
}

package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

var personPronouns = map[string]bool{
	"he": true, "she": true, "him": true, "her": true, "his": true, "hers": true,
}

// PersonDeduplicator folds person mentions into canonical people.
type PersonDeduplicator struct {
	engine     domain.NLPEngine
	similarity domain.SimilarityFunc
	logger     *zap.Logger

	Threshold int
}

func NewPersonDeduplicator(engine domain.NLPEngine, similarity domain.SimilarityFunc, opts domain.ExtractionOptions, logger *zap.Logger) *PersonDeduplicator {
	return &PersonDeduplicator{
		engine:     engine,
		similarity: similarity,
		logger:     logger,
		Threshold:  opts.PersonSimilarityThreshold,
	}
}

// CanonicalName picks the primary name among matching names: the longest,
// then the lexicographically smallest.
func CanonicalName(names []string) string {
	ranked := rankNames(names)
	if len(ranked) == 0 {
		return ""
	}
	return ranked[0]
}

func rankNames(names []string) []string {
	ranked := append([]string(nil), names...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if len(ranked[i]) != len(ranked[j]) {
			return len(ranked[i]) > len(ranked[j])
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}

// Deduplicate merges mentions and then attaches pronoun aliases.
func (d *PersonDeduplicator) Deduplicate(ctx context.Context, mentions []domain.Mention) []*domain.PersonEntity {
	people := d.Merge(mentions)
	d.AttachPronouns(ctx, people)
	return people
}

// Merge folds mentions in order. Each mention is compared against the names
// already established as keys plus every mention name of the document.
func (d *PersonDeduplicator) Merge(mentions []domain.Mention) []*domain.PersonEntity {
	byName := make(map[string]*domain.PersonEntity)
	var people []*domain.PersonEntity

	for _, m := range mentions {
		candidates := make([]string, 0, len(people)+len(mentions))
		for _, p := range people {
			candidates = append(candidates, p.Name)
		}
		for _, other := range mentions {
			candidates = append(candidates, other.Text)
		}

		seen := make(map[string]bool)
		var matches []string
		for _, c := range candidates {
			if seen[c] {
				continue
			}
			seen[c] = true
			if d.similarity(m.Text, c) >= d.Threshold {
				matches = append(matches, c)
			}
		}
		if len(matches) == 0 {
			matches = []string{m.Text}
		}
		matches = rankNames(matches)
		key := matches[0]

		person, ok := byName[key]
		if !ok {
			person = domain.NewPersonEntity(key, m.Contexts)
			byName[key] = person
			people = append(people, person)
			continue
		}
		for _, alias := range matches {
			person.AddAlias(alias)
		}
		person.AddContexts(m.Contexts...)
	}

	d.logger.Debug("merged person mentions",
		zap.Int("mentions", len(mentions)),
		zap.Int("people", len(people)),
	)
	return people
}

// AttachPronouns adds he/she/him/her/his/hers as aliases of a person when the
// pronoun appears in one of that person's own contexts.
func (d *PersonDeduplicator) AttachPronouns(ctx context.Context, people []*domain.PersonEntity) {
	parsed := make(map[string]*domain.Doc)
	for _, p := range people {
		for _, c := range p.Contexts {
			doc, ok := parsed[c]
			if !ok {
				var err error
				doc, err = d.engine.Parse(ctx, c)
				if err != nil {
					d.logger.Warn("pronoun pass: parse failed", zap.String("person", p.Name), zap.Error(err))
				}
				parsed[c] = doc
			}
			if doc == nil {
				continue
			}
			for _, tok := range doc.Tokens {
				lower := strings.ToLower(tok.Text)
				if tok.POS == domain.POSPron && personPronouns[lower] {
					p.AddAlias(lower)
				}
			}
		}
	}
}

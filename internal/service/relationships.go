package service

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

const (
	PatternBonus         = 1.0
	MaxVerbPositionScore = 3.0
	MaxProximityScore    = 2.0
)

// RelationshipExtractor finds verb-linked entity pairs within shared
// sentence contexts.
type RelationshipExtractor struct {
	engine domain.NLPEngine
	logger *zap.Logger

	IncludePersonPerson bool
}

func NewRelationshipExtractor(engine domain.NLPEngine, opts domain.ExtractionOptions, logger *zap.Logger) *RelationshipExtractor {
	return &RelationshipExtractor{
		engine:              engine,
		logger:              logger,
		IncludePersonPerson: opts.IncludePersonPersonRelationships,
	}
}

type entityPair struct {
	a, b domain.EntityNode
}

// Pairs enumerates company-company, company-person and, when enabled,
// person-person pairs. Pairs with identical references are skipped.
func (x *RelationshipExtractor) Pairs(people []*domain.PersonEntity, companies []*domain.CompanyEntity) []entityPair {
	var pairs []entityPair
	add := func(a, b domain.EntityNode) {
		if a.Ref != b.Ref {
			pairs = append(pairs, entityPair{a, b})
		}
	}
	for i := range companies {
		for j := i + 1; j < len(companies); j++ {
			add(companies[i].Node(), companies[j].Node())
		}
	}
	for _, c := range companies {
		for _, p := range people {
			add(c.Node(), p.Node())
		}
	}
	if x.IncludePersonPerson {
		for i := range people {
			for j := i + 1; j < len(people); j++ {
				add(people[i].Node(), people[j].Node())
			}
		}
	}
	return pairs
}

// Extract returns one candidate per related span pair per shared context.
func (x *RelationshipExtractor) Extract(ctx context.Context, people []*domain.PersonEntity, companies []*domain.CompanyEntity) ([]domain.RelationshipCandidate, error) {
	parsed := make(map[string]*domain.Doc)
	var out []domain.RelationshipCandidate

	for _, pair := range x.Pairs(people, companies) {
		for _, c := range pair.a.Contexts {
			if !pair.b.HasContext(c) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			doc, ok := parsed[c]
			if !ok {
				var err error
				doc, err = x.engine.Parse(ctx, c)
				if err != nil {
					x.logger.Warn("relationship pass: parse failed", zap.Error(err))
				}
				parsed[c] = doc
			}
			if doc == nil {
				continue
			}
			out = append(out, x.extractFromContext(doc, c, pair.a, pair.b)...)
		}
	}
	return out, nil
}

func (x *RelationshipExtractor) extractFromContext(doc *domain.Doc, sentence string, a, b domain.EntityNode) []domain.RelationshipCandidate {
	spansA := FindSpans(doc, a.Aliases)
	spansB := FindSpans(doc, b.Aliases)

	var out []domain.RelationshipCandidate
	for _, sa := range spansA {
		for _, sb := range spansB {
			if sa.Overlaps(sb) {
				continue
			}
			link, ok := FindVerb(doc, sa, sb)
			if !ok {
				continue
			}
			cand := domain.RelationshipCandidate{
				Verb:          link.Lemma,
				RawConfidence: link.Confidence,
				Context:       sentence,
			}
			if link.FirstIsActor {
				cand.Actor, cand.ActorName, cand.Target, cand.TargetName = a.Ref, a.Name, b.Ref, b.Name
			} else {
				cand.Actor, cand.ActorName, cand.Target, cand.TargetName = b.Ref, b.Name, a.Ref, a.Name
			}
			out = append(out, cand)
		}
	}
	return out
}

// FindSpans locates every case-insensitive occurrence of each alias that
// lines up with token boundaries.
func FindSpans(doc *domain.Doc, aliases []string) []domain.Span {
	var spans []domain.Span
	seen := make(map[domain.Span]bool)
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		for _, start := range indexAllFold(doc.Text, alias) {
			span, ok := doc.CharSpan(start, start+len(alias))
			if !ok || seen[span] {
				continue
			}
			seen[span] = true
			spans = append(spans, span)
		}
	}
	return spans
}

func indexAllFold(s, sub string) []int {
	var out []int
	n := len(sub)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], sub) {
			out = append(out, i)
		}
	}
	return out
}

// VerbLink is the verb joining two spans and the direction it implies.
type VerbLink struct {
	Verb         int
	Lemma        string
	FirstIsActor bool
	Pattern      bool
	Confidence   float64
}

// FindVerb applies the dependency patterns to the roots of the two spans and
// falls back to the first main verb between them.
func FindVerb(doc *domain.Doc, first, second domain.Span) (VerbLink, bool) {
	s, t := doc.Root(first), doc.Root(second)

	link, ok := matchPattern(doc, s, t)
	if ok {
		link.Pattern = true
	} else {
		link, ok = fallbackVerb(doc, first, second)
		if !ok {
			return VerbLink{}, false
		}
	}

	tok := doc.Tokens[link.Verb]
	link.Lemma = strings.ToLower(tok.Lemma)
	if link.Lemma == "" {
		link.Lemma = strings.ToLower(tok.Text)
	}
	link.Confidence = Confidence(doc, s, t, link.Verb, link.Pattern)
	return link, true
}

func matchPattern(doc *domain.Doc, s, t int) (VerbLink, bool) {
	toks := doc.Tokens
	src, tgt := toks[s], toks[t]

	switch {
	case src.Dep.IsSubject() && tgt.Dep.IsObject() && src.Head == tgt.Head && toks[src.Head].POS == domain.POSVerb:
		return VerbLink{Verb: src.Head, FirstIsActor: true}, true
	case tgt.Dep.IsSubject() && src.Dep.IsObject() && tgt.Head == src.Head && toks[tgt.Head].POS == domain.POSVerb:
		return VerbLink{Verb: tgt.Head, FirstIsActor: false}, true
	case src.Dep == domain.DepPrepObject && toks[src.Head].POS == domain.POSAdp && doc.InSubtree(t, toks[src.Head].Head):
		return VerbLink{Verb: toks[src.Head].Head, FirstIsActor: true}, true
	case tgt.Dep == domain.DepPrepObject && toks[tgt.Head].POS == domain.POSAdp && doc.InSubtree(s, toks[tgt.Head].Head):
		return VerbLink{Verb: toks[tgt.Head].Head, FirstIsActor: false}, true
	case src.Dep == domain.DepAppositive && src.Head == t:
		return VerbLink{Verb: src.Head, FirstIsActor: true}, true
	case tgt.Dep == domain.DepAppositive && tgt.Head == s:
		return VerbLink{Verb: tgt.Head, FirstIsActor: false}, true
	case src.Dep == domain.DepConjunct && tgt.Head == src.Head && toks[src.Head].POS == domain.POSNoun:
		return VerbLink{Verb: src.Head, FirstIsActor: true}, true
	case tgt.Dep == domain.DepConjunct && src.Head == tgt.Head && toks[tgt.Head].POS == domain.POSNoun:
		return VerbLink{Verb: tgt.Head, FirstIsActor: false}, true
	}
	return VerbLink{}, false
}

// fallbackVerb takes the first non-auxiliary verb strictly between the spans.
// The span that occurs first is the actor.
func fallbackVerb(doc *domain.Doc, first, second domain.Span) (VerbLink, bool) {
	lo, hi := first.End, second.Start
	firstEarlier := first.Start < second.Start
	if !firstEarlier {
		lo, hi = second.End, first.Start
	}
	for i := lo; i < hi; i++ {
		tok := doc.Tokens[i]
		if tok.POS == domain.POSVerb && !tok.Dep.IsAuxiliary() {
			return VerbLink{Verb: i, FirstIsActor: firstEarlier}, true
		}
	}
	return VerbLink{}, false
}

// Confidence scores a link from the pattern bonus, how central the verb is
// between the two roots and how close the roots are within the sentence.
func Confidence(doc *domain.Doc, s, t, verb int, pattern bool) float64 {
	score := 0.0
	if pattern {
		score += PatternBonus
	}

	start, end := min(s, t), max(s, t)
	mid := float64(start+end) / 2
	if maxDist := float64(end-start) / 2; maxDist > 0 {
		dist := math.Abs(float64(verb) - mid)
		score += MaxVerbPositionScore - math.Min(2, dist/maxDist*2)
	}

	if half := doc.SentenceOf(s).Len() / 2; half > 0 {
		score += MaxProximityScore - math.Min(1, float64(end-start)/float64(half))
	}
	return score
}

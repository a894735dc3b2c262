package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

// ProseBackend tokenizes, segments, tags and runs NER with prose. It does not
// produce dependencies; the engine annotates them.
type ProseBackend struct{}

func NewProseBackend() *ProseBackend {
	return &ProseBackend{}
}

func (b *ProseBackend) Close() error { return nil }

func (b *ProseBackend) Analyze(ctx context.Context, text string) (*domain.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pd, err := prose.NewDocument(text)
	if err != nil {
		return nil, fmt.Errorf("prose document: %w", err)
	}

	doc := &domain.Doc{Text: text}

	ptoks := pd.Tokens()
	pieces := make([]string, len(ptoks))
	for i, t := range ptoks {
		pieces[i] = t.Text
	}
	ranges, found := alignStrings(text, pieces)
	for i, t := range ptoks {
		if !found[i] {
			continue
		}
		doc.Tokens = append(doc.Tokens, domain.Token{
			Index: len(doc.Tokens),
			Text:  text[ranges[i].start:ranges[i].end],
			Tag:   t.Tag,
			POS:   POSFromTag(t.Tag),
			Start: ranges[i].start,
			End:   ranges[i].end,
		})
	}

	psents := pd.Sentences()
	sentTexts := make([]string, len(psents))
	for i, s := range psents {
		sentTexts[i] = s.Text
	}
	sentRanges, sentFound := alignStrings(text, sentTexts)
	var kept []charRange
	for i, r := range sentRanges {
		if sentFound[i] {
			kept = append(kept, r)
		}
	}
	assignSentences(doc, kept)

	ents := pd.Entities()
	entTexts := make([]string, len(ents))
	for i, e := range ents {
		entTexts[i] = strings.TrimSpace(e.Text)
	}
	entRanges, entFound := alignStrings(text, entTexts)
	for i, e := range ents {
		if !entFound[i] {
			continue
		}
		label, ok := normalizeLabel(e.Label)
		if !ok {
			continue
		}
		if span, ok := entitySpan(doc, entRanges[i].start, entRanges[i].end, label); ok {
			doc.Entities = append(doc.Entities, span)
		}
	}
	sortEntities(doc)
	return doc, nil
}

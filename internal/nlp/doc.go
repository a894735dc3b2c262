package nlp

import (
	"sort"
	"strings"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

// charRange is a half-open byte range into the document text.
type charRange struct {
	start, end int
}

// alignStrings locates each piece in text in order and returns its byte range.
// Pieces that cannot be found (tokenizers sometimes rewrite quotes) get a
// zero-width range at the cursor and ok=false.
func alignStrings(text string, pieces []string) ([]charRange, []bool) {
	ranges := make([]charRange, len(pieces))
	found := make([]bool, len(pieces))
	cursor := 0
	for i, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			ranges[i] = charRange{cursor, cursor}
			continue
		}
		idx := strings.Index(text[cursor:], p)
		if idx < 0 {
			ranges[i] = charRange{cursor, cursor}
			continue
		}
		start := cursor + idx
		ranges[i] = charRange{start, start + len(p)}
		found[i] = true
		cursor = start + len(p)
	}
	return ranges, found
}

// assignSentences groups tokens into the given sentence ranges. Tokens outside
// every range join the preceding sentence; with no ranges the whole text is
// one sentence.
func assignSentences(doc *domain.Doc, ranges []charRange) {
	if len(ranges) == 0 && len(doc.Tokens) > 0 {
		ranges = []charRange{{doc.Tokens[0].Start, doc.Tokens[len(doc.Tokens)-1].End}}
	}
	doc.Sentences = doc.Sentences[:0]
	s := 0
	for i := range doc.Tokens {
		for s+1 < len(ranges) && doc.Tokens[i].Start >= ranges[s+1].start {
			s++
		}
		doc.Tokens[i].Sentence = s
	}

	for si := range ranges {
		first, last := -1, -1
		for i := range doc.Tokens {
			if doc.Tokens[i].Sentence == si {
				if first < 0 {
					first = i
				}
				last = i
			}
		}
		if first < 0 {
			continue
		}
		idx := len(doc.Sentences)
		for i := first; i <= last; i++ {
			doc.Tokens[i].Sentence = idx
		}
		start, end := doc.Tokens[first].Start, doc.Tokens[last].End
		doc.Sentences = append(doc.Sentences, domain.Sentence{
			Text:       doc.Text[start:end],
			Start:      start,
			End:        end,
			TokenStart: first,
			TokenEnd:   last + 1,
		})
	}
}

// entitySpan builds a span for the byte range, or fails when it is not token
// aligned.
func entitySpan(doc *domain.Doc, start, end int, label domain.EntityLabel) (domain.EntitySpan, bool) {
	span, ok := doc.CharSpan(start, end)
	if !ok {
		return domain.EntitySpan{}, false
	}
	return domain.EntitySpan{
		Text:       doc.Text[start:end],
		Label:      label,
		Start:      start,
		End:        end,
		TokenStart: span.Start,
		TokenEnd:   span.End,
		Sentence:   doc.Tokens[span.Start].Sentence,
	}, true
}

// normalizeLabel folds NER label variants onto the two labels extraction uses.
func normalizeLabel(label string) (domain.EntityLabel, bool) {
	switch strings.ToUpper(label) {
	case "PERSON", "PER":
		return domain.LabelPerson, true
	case "ORG", "ORGANIZATION", "GPE":
		return domain.LabelOrg, true
	}
	return "", false
}

func sortEntities(doc *domain.Doc) {
	sort.SliceStable(doc.Entities, func(i, j int) bool {
		return doc.Entities[i].Start < doc.Entities[j].Start
	})
}

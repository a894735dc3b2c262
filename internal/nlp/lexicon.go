package nlp

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

var tokenPattern = regexp.MustCompile(`['’]s\b|[\p{L}\p{N}]+(?:[&.\-][\p{L}\p{N}]+)*|[^\s\p{L}\p{N}]`)

var titleAbbrevs = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"jr": true, "sr": true, "st": true, "messrs": true,
}

// closedClass holds function words and the verbs filings use to link parties.
var closedClass = map[string]string{
	"the": "DT", "a": "DT", "an": "DT", "this": "DT", "that": "DT", "these": "DT", "those": "DT",
	"each": "DT", "every": "DT", "all": "DT", "any": "DT", "some": "DT", "no": "DT",

	"of": "IN", "in": "IN", "on": "IN", "at": "IN", "by": "IN", "for": "IN", "with": "IN",
	"from": "IN", "into": "IN", "under": "IN", "over": "IN", "between": "IN", "among": "IN",
	"through": "IN", "during": "IN", "against": "IN", "about": "IN", "as": "IN", "upon": "IN",
	"within": "IN", "without": "IN", "after": "IN", "before": "IN", "since": "IN", "per": "IN",
	"via": "IN", "than": "IN", "because": "IN", "whether": "IN", "although": "IN", "while": "IN", "if": "IN",
	"to": "TO",

	"and": "CC", "or": "CC", "but": "CC", "nor": "CC",

	"he": "PRP", "she": "PRP", "it": "PRP", "they": "PRP", "we": "PRP", "i": "PRP", "you": "PRP",
	"him": "PRP", "them": "PRP", "us": "PRP", "me": "PRP", "her": "PRP", "hers": "PRP",
	"his": "PRP$", "its": "PRP$", "their": "PRP$", "our": "PRP$", "my": "PRP$", "your": "PRP$",
	"who": "WP", "whom": "WP", "whose": "WP$", "which": "WDT", "there": "EX",

	"will": "MD", "would": "MD", "shall": "MD", "should": "MD", "can": "MD", "could": "MD",
	"may": "MD", "might": "MD", "must": "MD",

	"be": "VB", "is": "VBZ", "are": "VBP", "am": "VBP", "was": "VBD", "were": "VBD", "been": "VBN", "being": "VBG",
	"has": "VBZ", "have": "VBP", "had": "VBD", "having": "VBG",
	"does": "VBZ", "do": "VBP", "did": "VBD",

	"not": "RB", "n't": "RB", "also": "RB", "previously": "RB", "currently": "RB", "formerly": "RB",
	"recently": "RB", "jointly": "RB", "subsequently": "RB",

	"acquire": "VB", "acquires": "VBZ", "acquired": "VBD", "acquiring": "VBG",
	"appoint": "VB", "appoints": "VBZ", "appointed": "VBD",
	"serve": "VB", "serves": "VBZ", "served": "VBD", "serving": "VBG",
	"own": "VB", "owns": "VBZ", "owned": "VBD",
	"supply": "VB", "supplies": "VBZ", "supplied": "VBD",
	"provide": "VB", "provides": "VBZ", "provided": "VBD",
	"sign": "VB", "signs": "VBZ", "signed": "VBD",
	"agree": "VB", "agrees": "VBZ", "agreed": "VBD",
	"announce": "VB", "announces": "VBZ", "announced": "VBD",
	"say": "VB", "says": "VBZ", "said": "VBD",
	"join": "VB", "joins": "VBZ", "joined": "VBD",
	"lead": "VB", "leads": "VBZ", "led": "VBD",
	"manage": "VB", "manages": "VBZ", "managed": "VBD",
	"invest": "VB", "invests": "VBZ", "invested": "VBD",
	"merge": "VB", "merges": "VBZ", "merged": "VBD",
	"sell": "VB", "sells": "VBZ", "sold": "VBD",
	"buy": "VB", "buys": "VBZ", "bought": "VBD",
	"hire": "VB", "hires": "VBZ", "hired": "VBD",
	"employ": "VB", "employs": "VBZ", "employed": "VBD",
	"found": "VB", "founded": "VBD",
	"name": "VB", "named": "VBD",
	"elect": "VB", "elected": "VBD",
	"resign": "VB", "resigned": "VBD",
	"purchase": "VB", "purchases": "VBZ", "purchased": "VBD",
	"license": "VB", "licenses": "VBZ", "licensed": "VBD",
	"distribute": "VB", "distributes": "VBZ", "distributed": "VBD",
	"partner": "VB", "partnered": "VBD",
	"compete": "VB", "competes": "VBZ", "competed": "VBD",
	"report": "VB", "reports": "VBZ", "reported": "VBD",
	"enter": "VB", "entered": "VBD",
	"control": "VB", "controls": "VBZ", "controlled": "VBD",
}

// LexiconBackend tokenizes with a regular expression and tags from a word
// list. Entities are the strings registered with AddEntity.
type LexiconBackend struct {
	mu       sync.RWMutex
	tags     map[string]string
	entities map[string]domain.EntityLabel
}

func NewLexiconBackend() *LexiconBackend {
	return &LexiconBackend{
		tags:     make(map[string]string),
		entities: make(map[string]domain.EntityLabel),
	}
}

// AddWord overrides the Penn tag of a lowercase word.
func (b *LexiconBackend) AddWord(word, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tags[strings.ToLower(word)] = tag
}

// AddEntity registers text as an entity of the given label. Matching is
// case-sensitive and token aligned.
func (b *LexiconBackend) AddEntity(text string, label domain.EntityLabel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entities[text] = label
}

func (b *LexiconBackend) Close() error { return nil }

func (b *LexiconBackend) Analyze(ctx context.Context, text string) (*domain.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := &domain.Doc{Text: text}
	for _, loc := range tokenPattern.FindAllStringIndex(text, -1) {
		doc.Tokens = append(doc.Tokens, domain.Token{
			Index: len(doc.Tokens),
			Text:  text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
		})
	}
	doc.Tokens = mergeAbbreviations(doc.Tokens, text)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := range doc.Tokens {
		doc.Tokens[i].Index = i
		doc.Tokens[i].Tag = b.tag(doc.Tokens, i)
		doc.Tokens[i].POS = POSFromTag(doc.Tokens[i].Tag)
	}
	assignSentences(doc, splitSentences(doc.Tokens))
	b.findEntities(doc)
	return doc, nil
}

// mergeAbbreviations folds a period into a preceding title, initial or dotted
// abbreviation.
func mergeAbbreviations(toks []domain.Token, text string) []domain.Token {
	out := toks[:0]
	for _, t := range toks {
		if t.Text == "." && len(out) > 0 {
			prev := &out[len(out)-1]
			if prev.End == t.Start && isAbbreviation(prev.Text) {
				prev.End = t.End
				prev.Text = text[prev.Start:prev.End]
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func isAbbreviation(w string) bool {
	if titleAbbrevs[strings.ToLower(w)] {
		return true
	}
	if strings.Contains(w, ".") {
		return true
	}
	r, size := utf8.DecodeRuneInString(w)
	return size == len(w) && unicode.IsUpper(r)
}

func splitSentences(toks []domain.Token) []charRange {
	var ranges []charRange
	start := -1
	for i, t := range toks {
		if start < 0 {
			start = t.Start
		}
		if t.Text != "." && t.Text != "!" && t.Text != "?" {
			continue
		}
		if i+1 < len(toks) && !startsSentence(toks[i+1].Text) {
			continue
		}
		ranges = append(ranges, charRange{start, t.End})
		start = -1
	}
	if start >= 0 {
		ranges = append(ranges, charRange{start, toks[len(toks)-1].End})
	}
	return ranges
}

func startsSentence(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune("\"'“‘(", r)
}

func (b *LexiconBackend) lookup(lower string) (string, bool) {
	if tag, ok := b.tags[lower]; ok {
		return tag, true
	}
	tag, ok := closedClass[lower]
	return tag, ok
}

func (b *LexiconBackend) tag(toks []domain.Token, i int) string {
	w := toks[i].Text
	lower := strings.ToLower(w)

	if tag, ok := punctTag(w); ok {
		return tag
	}
	if lower == "'s" || lower == "’s" {
		return "POS"
	}
	if lower == "her" && i+1 < len(toks) {
		if tag, known := b.lookup(strings.ToLower(toks[i+1].Text)); !known || strings.HasPrefix(tag, "NN") || strings.HasPrefix(tag, "JJ") {
			if _, isPunct := punctTag(toks[i+1].Text); !isPunct {
				return "PRP$"
			}
		}
	}
	if tag, ok := b.lookup(lower); ok {
		return tag
	}

	r, _ := utf8.DecodeRuneInString(w)
	switch {
	case isNumber(w):
		return "CD"
	case unicode.IsUpper(r):
		return "NNP"
	case strings.HasSuffix(lower, "ly"):
		return "RB"
	case strings.HasSuffix(lower, "ed") && len(lower) > 4:
		return "VBD"
	case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") && len(lower) > 3:
		return "NNS"
	}
	return "NN"
}

func punctTag(w string) (string, bool) {
	switch w {
	case ".", "!", "?":
		return ".", true
	case ",":
		return ",", true
	case ":", ";", "-", "—", "–":
		return ":", true
	case "\"", "“", "'", "‘":
		return "``", true
	case "”", "’":
		return "''", true
	case "(", "[", "{":
		return "-LRB-", true
	case ")", "]", "}":
		return "-RRB-", true
	case "$", "#":
		return w, true
	}
	r, _ := utf8.DecodeRuneInString(w)
	if utf8.RuneCountInString(w) == 1 && (unicode.IsPunct(r) || unicode.IsSymbol(r)) {
		return "SYM", true
	}
	return "", false
}

func isNumber(w string) bool {
	digits := 0
	for _, r := range w {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',' || r == '-':
		default:
			return false
		}
	}
	return digits > 0
}

func (b *LexiconBackend) findEntities(doc *domain.Doc) {
	texts := make([]string, 0, len(b.entities))
	for t := range b.entities {
		texts = append(texts, t)
	}
	sort.Slice(texts, func(i, j int) bool {
		if len(texts[i]) != len(texts[j]) {
			return len(texts[i]) > len(texts[j])
		}
		return texts[i] < texts[j]
	})

	var taken []domain.Span
	for _, t := range texts {
		if t == "" {
			continue
		}
		from := 0
		for {
			idx := strings.Index(doc.Text[from:], t)
			if idx < 0 {
				break
			}
			start := from + idx
			from = start + len(t)
			span, ok := entitySpan(doc, start, start+len(t), b.entities[t])
			if !ok {
				continue
			}
			tokens := domain.Span{Start: span.TokenStart, End: span.TokenEnd}
			if overlapsAny(tokens, taken) {
				continue
			}
			taken = append(taken, tokens)
			doc.Entities = append(doc.Entities, span)
		}
	}
	sortEntities(doc)
}

func overlapsAny(s domain.Span, spans []domain.Span) bool {
	for _, o := range spans {
		if s.Overlaps(o) {
			return true
		}
	}
	return false
}

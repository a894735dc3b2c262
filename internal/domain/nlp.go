package domain

import "context"

// POS is a universal part-of-speech tag.
type POS string

const (
	POSVerb  POS = "VERB"
	POSAux   POS = "AUX"
	POSNoun  POS = "NOUN"
	POSPropn POS = "PROPN"
	POSPron  POS = "PRON"
	POSAdp   POS = "ADP"
	POSDet   POS = "DET"
	POSAdj   POS = "ADJ"
	POSAdv   POS = "ADV"
	POSCconj POS = "CCONJ"
	POSNum   POS = "NUM"
	POSPart  POS = "PART"
	POSPunct POS = "PUNCT"
	POSSym   POS = "SYM"
	POSOther POS = "X"
)

// IsNominal reports whether the tag can head a noun phrase.
func (p POS) IsNominal() bool {
	return p == POSNoun || p == POSPropn
}

// DepKind is a dependency relation between a token and its head.
type DepKind string

const (
	DepRoot           DepKind = "root"
	DepSubject        DepKind = "nsubj"
	DepPassiveSubject DepKind = "nsubjpass"
	DepDirectObject   DepKind = "dobj"
	DepIndirectObject DepKind = "iobj"
	DepPrepObject     DepKind = "pobj"
	DepPreposition    DepKind = "prep"
	DepAppositive     DepKind = "appos"
	DepConjunct       DepKind = "conj"
	DepCoordinator    DepKind = "cc"
	DepAux            DepKind = "aux"
	DepPassiveAux     DepKind = "auxpass"
	DepCompound       DepKind = "compound"
	DepDeterminer     DepKind = "det"
	DepModifier       DepKind = "amod"
	DepPunct          DepKind = "punct"
	DepOther          DepKind = "dep"
)

func (d DepKind) IsSubject() bool {
	return d == DepSubject || d == DepPassiveSubject
}

func (d DepKind) IsObject() bool {
	return d == DepDirectObject || d == DepPrepObject || d == DepIndirectObject
}

func (d DepKind) IsAuxiliary() bool {
	return d == DepAux || d == DepPassiveAux
}

// EntityLabel is the NER label attached to an entity span.
type EntityLabel string

const (
	LabelPerson EntityLabel = "PERSON"
	LabelOrg    EntityLabel = "ORG"
)

// Token is one analyzed token. Start and End are byte offsets into Doc.Text.
type Token struct {
	Index    int     `json:"i"`
	Text     string  `json:"text"`
	Lemma    string  `json:"lemma"`
	POS      POS     `json:"pos"`
	Tag      string  `json:"tag"`
	Dep      DepKind `json:"dep"`
	Head     int     `json:"head"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Sentence int     `json:"sentence"`
}

// Sentence covers tokens [TokenStart, TokenEnd).
type Sentence struct {
	Text       string `json:"text"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	TokenStart int    `json:"token_start"`
	TokenEnd   int    `json:"token_end"`
}

// Len returns the number of tokens in the sentence.
func (s Sentence) Len() int {
	return s.TokenEnd - s.TokenStart
}

type EntitySpan struct {
	Text       string      `json:"text"`
	Label      EntityLabel `json:"label"`
	Start      int         `json:"start"`
	End        int         `json:"end"`
	TokenStart int         `json:"token_start"`
	TokenEnd   int         `json:"token_end"`
	Sentence   int         `json:"sentence"`
}

// Doc is the output of one Parse call.
type Doc struct {
	Text      string       `json:"text"`
	Sentences []Sentence   `json:"sentences"`
	Tokens    []Token      `json:"tokens"`
	Entities  []EntitySpan `json:"entities"`
}

// Span is a half-open token range.
type Span struct {
	Start int
	End   int
}

func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// CharSpan converts a byte range into a token span. It fails unless the range
// starts at a token start and ends at a token end.
func (d *Doc) CharSpan(start, end int) (Span, bool) {
	first, last := -1, -1
	for i, t := range d.Tokens {
		if t.Start == start && first < 0 {
			first = i
		}
		if t.End == end {
			last = i
			break
		}
		if t.Start > end {
			break
		}
	}
	if first < 0 || last < first {
		return Span{}, false
	}
	return Span{Start: first, End: last + 1}, true
}

// Depth returns the number of head hops from token i to its root.
func (d *Doc) Depth(i int) int {
	depth := 0
	for n := 0; n < len(d.Tokens); n++ {
		h := d.Tokens[i].Head
		if h == i || h < 0 || h >= len(d.Tokens) {
			return depth
		}
		i = h
		depth++
	}
	return depth
}

// Root returns the syntactic root of a span: the token whose head lies outside
// the span, preferring the shallowest one.
func (d *Doc) Root(s Span) int {
	root, best := s.Start, -1
	for i := s.Start; i < s.End; i++ {
		h := d.Tokens[i].Head
		if h >= s.Start && h < s.End && h != i {
			continue
		}
		depth := d.Depth(i)
		if best < 0 || depth < best {
			root, best = i, depth
		}
	}
	return root
}

// InSubtree reports whether token i is h or a descendant of h.
func (d *Doc) InSubtree(i, h int) bool {
	if h < 0 || h >= len(d.Tokens) {
		return false
	}
	for n := 0; n <= len(d.Tokens); n++ {
		if i == h {
			return true
		}
		next := d.Tokens[i].Head
		if next == i || next < 0 || next >= len(d.Tokens) {
			return false
		}
		i = next
	}
	return false
}

// SentenceOf returns the sentence containing token i.
func (d *Doc) SentenceOf(i int) Sentence {
	s := d.Tokens[i].Sentence
	if s < 0 || s >= len(d.Sentences) {
		return Sentence{TokenStart: 0, TokenEnd: len(d.Tokens)}
	}
	return d.Sentences[s]
}

// NLPEngine turns text into sentences, tokens, dependencies and entity spans.
// One handle is shared by every extraction call and must be safe for
// concurrent use.
type NLPEngine interface {
	Parse(ctx context.Context, text string) (*Doc, error)
	MaxLength() int
	// RaiseMaxLength lifts the working limit to n if it is currently lower.
	RaiseMaxLength(n int) bool
	Close() error
}

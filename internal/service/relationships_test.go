package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

func companyEntity(id, name string, contexts ...string) *domain.CompanyEntity {
	c := &domain.CompanyEntity{ID: id, Name: name}
	c.AddAlias(name)
	c.AddContexts(contexts...)
	return c
}

func TestRelationshipExtractor_SubjectObject(t *testing.T) {
	sentence := "Alice acquired Beta Corp."
	engine := newLexiconEngine(nil)
	x := NewRelationshipExtractor(engine, domain.DefaultExtractionOptions(), zap.NewNop())

	people := []*domain.PersonEntity{domain.NewPersonEntity("Alice", []string{sentence})}
	companies := []*domain.CompanyEntity{companyEntity("200", "Beta Corp", sentence)}

	cands, err := x.Extract(context.Background(), people, companies)
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, domain.PersonRef("Alice"), c.Actor)
	assert.Equal(t, domain.CompanyRef("200"), c.Target)
	assert.Equal(t, "acquire", c.Verb)
	assert.Equal(t, sentence, c.Context)
	assert.InDelta(t, 1+(3-2.0/3)+1, c.RawConfidence, 1e-9)
}

func TestRelationshipExtractor_PassiveKeepsActor(t *testing.T) {
	sentence := "Beta Corp was acquired by Alice."
	engine := newLexiconEngine(nil)
	x := NewRelationshipExtractor(engine, domain.DefaultExtractionOptions(), zap.NewNop())

	people := []*domain.PersonEntity{domain.NewPersonEntity("Alice", []string{sentence})}
	companies := []*domain.CompanyEntity{companyEntity("200", "Beta Corp", sentence)}

	cands, err := x.Extract(context.Background(), people, companies)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, domain.PersonRef("Alice"), cands[0].Actor)
	assert.Equal(t, domain.CompanyRef("200"), cands[0].Target)
	assert.Equal(t, "acquire", cands[0].Verb)
	assert.InDelta(t, 5.0, cands[0].RawConfidence, 1e-9)
}

func TestRelationshipExtractor_NoSharedContext(t *testing.T) {
	x := NewRelationshipExtractor(newLexiconEngine(nil), domain.DefaultExtractionOptions(), zap.NewNop())

	people := []*domain.PersonEntity{domain.NewPersonEntity("Alice", []string{"Alice resigned."})}
	companies := []*domain.CompanyEntity{companyEntity("200", "Beta Corp", "Beta Corp reported earnings.")}

	cands, err := x.Extract(context.Background(), people, companies)
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestRelationshipExtractor_Pairs(t *testing.T) {
	acme := companyEntity("100", "Acme Corp")
	beta := companyEntity("200", "Beta Corp")
	alice := domain.NewPersonEntity("Alice", nil)
	bob := domain.NewPersonEntity("Bob", nil)

	opts := domain.DefaultExtractionOptions()
	x := NewRelationshipExtractor(nil, opts, zap.NewNop())
	assert.Len(t, x.Pairs([]*domain.PersonEntity{alice, bob}, []*domain.CompanyEntity{acme, beta}), 1+4)

	opts.IncludePersonPersonRelationships = true
	x = NewRelationshipExtractor(nil, opts, zap.NewNop())
	assert.Len(t, x.Pairs([]*domain.PersonEntity{alice, bob}, []*domain.CompanyEntity{acme, beta}), 1+4+1)

	dup := companyEntity("100", "ACME")
	assert.Empty(t, x.Pairs(nil, []*domain.CompanyEntity{acme, dup}))
}

func TestRelationshipExtractor_CancelledContext(t *testing.T) {
	sentence := "Alice acquired Beta Corp."
	x := NewRelationshipExtractor(newLexiconEngine(nil), domain.DefaultExtractionOptions(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := x.Extract(ctx,
		[]*domain.PersonEntity{domain.NewPersonEntity("Alice", []string{sentence})},
		[]*domain.CompanyEntity{companyEntity("200", "Beta Corp", sentence)},
	)
	assert.ErrorIs(t, err, context.Canceled)
}

// fallbackDoc is "Acme quietly bought Beta" with no pattern-forming labels.
func fallbackDoc() *domain.Doc {
	words := []struct {
		text  string
		lemma string
		pos   domain.POS
	}{
		{"Acme", "Acme", domain.POSPropn},
		{"quietly", "quietly", domain.POSAdv},
		{"bought", "buy", domain.POSVerb},
		{"Beta", "Beta", domain.POSPropn},
	}
	doc := &domain.Doc{Text: "Acme quietly bought Beta"}
	offset := 0
	for i, w := range words {
		dep := domain.DepOther
		if i == 2 {
			dep = domain.DepRoot
		}
		doc.Tokens = append(doc.Tokens, domain.Token{
			Index: i, Text: w.text, Lemma: w.lemma, POS: w.pos, Dep: dep, Head: 2,
			Start: offset, End: offset + len(w.text),
		})
		offset += len(w.text) + 1
	}
	doc.Sentences = []domain.Sentence{{Text: doc.Text, Start: 0, End: len(doc.Text), TokenStart: 0, TokenEnd: 4}}
	return doc
}

func TestFindVerb_Fallback(t *testing.T) {
	doc := fallbackDoc()

	link, ok := FindVerb(doc, domain.Span{Start: 3, End: 4}, domain.Span{Start: 0, End: 1})
	require.True(t, ok)
	assert.Equal(t, 2, link.Verb)
	assert.Equal(t, "buy", link.Lemma)
	assert.False(t, link.Pattern)
	assert.False(t, link.FirstIsActor, "the earlier span is the actor")
	// verb position 3 - 2*(0.5/1.5), proximity 2 - min(1, 3/2)
	assert.InDelta(t, (3-2.0/3)+1, link.Confidence, 1e-9)
}

func TestFindVerb_NoVerbBetween(t *testing.T) {
	doc := fallbackDoc()

	_, ok := FindVerb(doc, domain.Span{Start: 0, End: 1}, domain.Span{Start: 1, End: 2})
	assert.False(t, ok)
}

func TestFindSpans(t *testing.T) {
	engine := newLexiconEngine(nil)
	doc, err := engine.Parse(context.Background(), "Acme Corp and ACME CORP differ from Acmeco.")
	require.NoError(t, err)

	spans := FindSpans(doc, []string{"Acme Corp", "acme"})
	assert.Equal(t, []domain.Span{{Start: 0, End: 2}, {Start: 3, End: 5}, {Start: 0, End: 1}, {Start: 3, End: 4}}, spans)
}

// failingEngine fails to parse one sentence and delegates the rest.
type failingEngine struct {
	domain.NLPEngine
	fail  string
	calls map[string]int
}

func newFailingEngine(fail string) *failingEngine {
	return &failingEngine{NLPEngine: newLexiconEngine(nil), fail: fail, calls: make(map[string]int)}
}

func (e *failingEngine) Parse(ctx context.Context, text string) (*domain.Doc, error) {
	e.calls[text]++
	if text == e.fail {
		return nil, errors.New("parser crashed")
	}
	return e.NLPEngine.Parse(ctx, text)
}

func TestRelationshipExtractor_ParseFailureSkipsContext(t *testing.T) {
	bad := "Alice bought Beta Corp."
	good := "Alice acquired Beta Corp."
	engine := newFailingEngine(bad)
	core, logs := observer.New(zapcore.WarnLevel)
	x := NewRelationshipExtractor(engine, domain.DefaultExtractionOptions(), zap.New(core))

	people := []*domain.PersonEntity{domain.NewPersonEntity("Alice", []string{bad, good})}
	companies := []*domain.CompanyEntity{companyEntity("200", "Beta Corp", bad, good)}

	cands, err := x.Extract(context.Background(), people, companies)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, good, cands[0].Context)
	assert.Equal(t, "acquire", cands[0].Verb)

	assert.Equal(t, 1, engine.calls[bad])
	assert.Equal(t, 1, logs.FilterMessage("relationship pass: parse failed").Len())
}

type docWord struct {
	text  string
	lemma string
	pos   domain.POS
	dep   domain.DepKind
	head  int
}

// buildDoc lays words out separated by single spaces as one sentence.
func buildDoc(words []docWord) *domain.Doc {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.text
	}
	doc := &domain.Doc{Text: strings.Join(texts, " ")}
	offset := 0
	for i, w := range words {
		doc.Tokens = append(doc.Tokens, domain.Token{
			Index: i, Text: w.text, Lemma: w.lemma, POS: w.pos, Dep: w.dep, Head: w.head,
			Start: offset, End: offset + len(w.text),
		})
		offset += len(w.text) + 1
	}
	doc.Sentences = []domain.Sentence{{Text: doc.Text, Start: 0, End: len(doc.Text), TokenStart: 0, TokenEnd: len(words)}}
	return doc
}

func TestFindVerb_Appositive(t *testing.T) {
	// "Acme , Beta" with Beta in apposition to Acme.
	doc := buildDoc([]docWord{
		{"Acme", "Acme", domain.POSPropn, domain.DepRoot, 0},
		{",", ",", domain.POSPunct, domain.DepOther, 0},
		{"Beta", "Beta", domain.POSPropn, domain.DepAppositive, 0},
	})
	acme, beta := domain.Span{Start: 0, End: 1}, domain.Span{Start: 2, End: 3}

	link, ok := FindVerb(doc, beta, acme)
	require.True(t, ok)
	assert.True(t, link.Pattern)
	assert.Equal(t, 0, link.Verb)
	assert.Equal(t, "acme", link.Lemma)
	assert.True(t, link.FirstIsActor, "the appositive is the actor")
	assert.GreaterOrEqual(t, link.Confidence, PatternBonus)

	link, ok = FindVerb(doc, acme, beta)
	require.True(t, ok)
	assert.True(t, link.Pattern)
	assert.Equal(t, 0, link.Verb)
	assert.False(t, link.FirstIsActor)
}

func TestFindVerb_Conjunction(t *testing.T) {
	// "partners Acme and Beta": both names hang off the noun, Beta as its conjunct.
	doc := buildDoc([]docWord{
		{"partners", "partner", domain.POSNoun, domain.DepRoot, 0},
		{"Acme", "Acme", domain.POSPropn, domain.DepOther, 0},
		{"and", "and", domain.POSCconj, domain.DepOther, 3},
		{"Beta", "Beta", domain.POSPropn, domain.DepConjunct, 0},
	})
	acme, beta := domain.Span{Start: 1, End: 2}, domain.Span{Start: 3, End: 4}

	link, ok := FindVerb(doc, beta, acme)
	require.True(t, ok)
	assert.True(t, link.Pattern)
	assert.Equal(t, 0, link.Verb)
	assert.Equal(t, "partner", link.Lemma)
	assert.True(t, link.FirstIsActor, "the conjunct is the actor")

	link, ok = FindVerb(doc, acme, beta)
	require.True(t, ok)
	assert.True(t, link.Pattern)
	assert.Equal(t, "partner", link.Lemma)
	assert.False(t, link.FirstIsActor)
}

func TestFindVerb_ConjunctionNeedsNounHead(t *testing.T) {
	doc := buildDoc([]docWord{
		{"joined", "join", domain.POSVerb, domain.DepRoot, 0},
		{"Acme", "Acme", domain.POSPropn, domain.DepOther, 0},
		{"and", "and", domain.POSCconj, domain.DepOther, 3},
		{"Beta", "Beta", domain.POSPropn, domain.DepConjunct, 0},
	})

	_, ok := FindVerb(doc, domain.Span{Start: 3, End: 4}, domain.Span{Start: 1, End: 2})
	assert.False(t, ok)
}

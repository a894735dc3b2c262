package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
	"github.com/Harshitk-cp/filinggraph/internal/nlp"
	"github.com/Harshitk-cp/filinggraph/internal/similarity"
)

var pipelineEntities = map[string]domain.EntityLabel{
	"Alice":     domain.LabelPerson,
	"Acme Corp": domain.LabelOrg,
	"Beta Corp": domain.LabelOrg,
}

func newTestService(opts domain.ExtractionOptions) *ExtractionService {
	svc := NewExtractionService(newLexiconEngine(pipelineEntities), testRegistry(), similarity.TokenSetRatio, opts, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestExtractionService_Extract(t *testing.T) {
	svc := newTestService(domain.DefaultExtractionOptions())

	res, err := svc.Extract(context.Background(), domain.Document{
		URL:     "https://example.com/filing.htm",
		FilerID: "100",
		Text:    "Alice acquired Beta Corp.",
	})
	require.NoError(t, err)

	require.Len(t, res.People, 1)
	assert.Equal(t, "Alice", res.People[0].Name)
	require.Len(t, res.Companies, 1)
	assert.Equal(t, "200", res.Companies[0].ID)
	assert.Equal(t, "Beta Corp", res.Companies[0].Name)

	require.Len(t, res.Relationships, 1)
	rel := res.Relationships[0]
	assert.Equal(t, domain.PersonRef("Alice"), rel.Actor)
	assert.Equal(t, domain.CompanyRef("200"), rel.Target)
	assert.Equal(t, "acquire", rel.Verb)
	assert.Equal(t, domain.NeutralConfidence, rel.Confidence)
	assert.Equal(t, []string{"Alice acquired Beta Corp."}, rel.Contexts)
	assert.Equal(t, "https://example.com/filing.htm", res.Document.URL)
	assert.False(t, res.ExtractedAt.IsZero())
}

func TestExtractionService_FilerExcluded(t *testing.T) {
	svc := newTestService(domain.DefaultExtractionOptions())

	res, err := svc.Extract(context.Background(), domain.Document{
		FilerID: "200",
		Text:    "Acme Corp supplies services to Beta Corp.",
	})
	require.NoError(t, err)

	require.Len(t, res.Companies, 1)
	assert.Equal(t, "100", res.Companies[0].ID)
	assert.Empty(t, res.People)
	assert.Empty(t, res.Relationships)
}

func TestExtractionService_EmptyText(t *testing.T) {
	svc := newTestService(domain.DefaultExtractionOptions())

	_, err := svc.Extract(context.Background(), domain.Document{Text: "  \n "})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestExtractionService_RaisesMaxLength(t *testing.T) {
	engine := newLexiconEngine(pipelineEntities)
	engine.SetMaxLength(10)
	svc := NewExtractionService(engine, testRegistry(), similarity.TokenSetRatio, domain.DefaultExtractionOptions(), zap.NewNop())

	text := "Alice acquired Beta Corp."
	_, err := svc.Extract(context.Background(), domain.Document{Text: text})
	require.NoError(t, err)
	assert.Equal(t, len(text), engine.MaxLength())
}

type mapLoader struct {
	texts map[string]string
}

func (l *mapLoader) Load(ctx context.Context, src domain.DocumentSource) (string, error) {
	text, ok := l.texts[src.FilePath]
	if !ok {
		return "", fmt.Errorf("open %s: no such file", src.FilePath)
	}
	return text, nil
}

type memorySink struct {
	mu      sync.Mutex
	results map[string]*domain.ExtractionResult
	done    map[string]bool
	failURL string
}

func newMemorySink() *memorySink {
	return &memorySink{results: make(map[string]*domain.ExtractionResult), done: make(map[string]bool)}
}

func (s *memorySink) Save(ctx context.Context, r *domain.ExtractionResult) error {
	if r.Document.URL == s.failURL {
		return errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.Document.URL] = r
	return nil
}

func (s *memorySink) HasDocument(ctx context.Context, url string) (bool, error) {
	return s.done[url], nil
}

func (s *memorySink) urls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.results))
	for u := range s.results {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func batchSources(n int) []domain.DocumentSource {
	out := make([]domain.DocumentSource, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.DocumentSource{
			URL:      fmt.Sprintf("u%d", i),
			FilePath: fmt.Sprintf("f%d", i),
			FilerID:  "100",
		})
	}
	return out
}

func TestExtractBatch_SkipsProcessedAndFailures(t *testing.T) {
	svc := newTestService(domain.DefaultExtractionOptions())
	sink := newMemorySink()
	sink.done["u1"] = true
	svc.SetDocumentLoader(&mapLoader{texts: map[string]string{
		"f0": "Alice acquired Beta Corp.",
		"f1": "Alice acquired Beta Corp.",
		"f3": "   ",
	}})
	svc.SetResultSink(sink)
	svc.SetProcessedChecker(sink)

	report, err := svc.ExtractBatch(context.Background(), batchSources(4))
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, []string{"u0"}, sink.urls())

	failed := make([]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		failed = append(failed, f.URL)
	}
	assert.ElementsMatch(t, []string{"u2", "u3"}, failed)
}

func TestExtractBatch_SinkFailureCounted(t *testing.T) {
	svc := newTestService(domain.DefaultExtractionOptions())
	sink := newMemorySink()
	sink.failURL = "u1"
	svc.SetDocumentLoader(&mapLoader{texts: map[string]string{
		"f0": "Alice acquired Beta Corp.",
		"f1": "Alice acquired Beta Corp.",
	}})
	svc.SetResultSink(sink)

	report, err := svc.ExtractBatch(context.Background(), batchSources(2))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.True(t, strings.Contains(report.Failures[0].Error, "disk full"))
}

func TestExtractBatch_NormalizationScope(t *testing.T) {
	texts := map[string]string{
		"f0": "Alice acquired Beta Corp.",
		"f1": "Beta Corp was acquired by Alice.",
	}

	tests := []struct {
		scope domain.NormalizationScope
		want  map[string]int
	}{
		{domain.ScopeDocument, map[string]int{"u0": 5, "u1": 5}},
		{domain.ScopeBatch, map[string]int{"u0": 1, "u1": 10}},
	}
	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			opts := domain.DefaultExtractionOptions()
			opts.NormalizationScope = tt.scope
			opts.Workers = 2
			svc := newTestService(opts)
			sink := newMemorySink()
			svc.SetDocumentLoader(&mapLoader{texts: texts})
			svc.SetResultSink(sink)

			report, err := svc.ExtractBatch(context.Background(), batchSources(2))
			require.NoError(t, err)
			assert.Equal(t, 2, report.Processed)

			for url, want := range tt.want {
				res := sink.results[url]
				require.NotNil(t, res, url)
				require.Len(t, res.Relationships, 1, url)
				assert.Equal(t, want, res.Relationships[0].Confidence, url)
				assert.Equal(t, domain.PersonRef("Alice"), res.Relationships[0].Actor, url)
			}
		})
	}
}

func TestExtractBatch_Cancelled(t *testing.T) {
	svc := newTestService(domain.DefaultExtractionOptions())
	svc.SetDocumentLoader(&mapLoader{texts: map[string]string{"f0": "Alice acquired Beta Corp."}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ExtractBatch(ctx, batchSources(3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractBatch_RequiresLoader(t *testing.T) {
	svc := newTestService(domain.DefaultExtractionOptions())

	_, err := svc.ExtractBatch(context.Background(), batchSources(1))
	assert.ErrorIs(t, err, ErrNoDocumentLoader)
}

func TestMultiSink(t *testing.T) {
	a, b := newMemorySink(), newMemorySink()
	b.done["u9"] = true
	b.failURL = "bad"
	multi := NewMultiSink(a, b)

	require.NoError(t, multi.Save(context.Background(), &domain.ExtractionResult{Document: domain.Document{URL: "ok"}}))
	assert.Equal(t, []string{"ok"}, a.urls())
	assert.Equal(t, []string{"ok"}, b.urls())

	err := multi.Save(context.Background(), &domain.ExtractionResult{Document: domain.Document{URL: "bad"}})
	assert.Error(t, err)
	assert.Equal(t, []string{"bad", "ok"}, a.urls())

	done, err := multi.HasDocument(context.Background(), "u9")
	require.NoError(t, err)
	assert.True(t, done)
	done, err = multi.HasDocument(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestExtractionService_ResolveCompany(t *testing.T) {
	svc := newTestService(domain.DefaultExtractionOptions())

	c, ok := svc.ResolveCompany("  acme ")
	require.True(t, ok)
	assert.Equal(t, "100", c.ID)

	c, ok = svc.ResolveCompany("Gamma Holdings Inc")
	require.True(t, ok)
	assert.Equal(t, "300", c.ID)

	_, ok = svc.ResolveCompany("")
	assert.False(t, ok)
	_, ok = svc.ResolveCompany("Zeta Widget")
	assert.False(t, ok)
}

func newProseService() *ExtractionService {
	engine := nlp.NewEngine(nlp.NewProseBackend(), nlp.NewRuleLemmatizer(), zap.NewNop())
	return NewExtractionService(engine, testRegistry(), similarity.TokenSetRatio, domain.DefaultExtractionOptions(), zap.NewNop())
}

func TestExtractionService_ProseFilerExcluded(t *testing.T) {
	svc := newProseService()

	res, err := svc.Extract(context.Background(), domain.Document{
		FilerID: "200",
		Text:    "Acme Corp supplies services to Beta Corp.",
	})
	require.NoError(t, err)

	require.Len(t, res.Companies, 1)
	assert.Equal(t, "100", res.Companies[0].ID)
	assert.Empty(t, res.People)
	assert.Empty(t, res.Relationships)
}

func TestExtractionService_ProseCompanyNeverPerson(t *testing.T) {
	svc := newProseService()

	res, err := svc.Extract(context.Background(), domain.Document{
		FilerID: "100",
		Text:    "Alice acquired Beta Corp.",
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(res.Companies))
	for _, c := range res.Companies {
		ids = append(ids, c.ID)
	}
	assert.Contains(t, ids, "200")
	for _, p := range res.People {
		assert.NotEqual(t, "Beta Corp", p.Name)
	}
}

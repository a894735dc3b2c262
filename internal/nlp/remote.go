package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

const defaultRemoteTimeout = 60 * time.Second

// RemoteBackend posts text to a dependency-parsing service that answers with
// spaCy-style token annotations.
type RemoteBackend struct {
	url        string
	httpClient *http.Client
}

func NewRemoteBackend(url string) *RemoteBackend {
	return &RemoteBackend{
		url:        url,
		httpClient: &http.Client{Timeout: defaultRemoteTimeout},
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Sentences []struct {
		Start int `json:"start"`
		End   int `json:"end"`
	} `json:"sentences"`
	Tokens []struct {
		Text  string `json:"text"`
		Lemma string `json:"lemma"`
		POS   string `json:"pos"`
		Tag   string `json:"tag"`
		Dep   string `json:"dep"`
		Head  int    `json:"head"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	} `json:"tokens"`
	Ents []struct {
		Label string `json:"label"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	} `json:"ents"`
	Error string `json:"error,omitempty"`
}

func (b *RemoteBackend) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}

func (b *RemoteBackend) Analyze(ctx context.Context, text string) (*domain.Doc, error) {
	body, err := json.Marshal(parseRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal parse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parse request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("parser returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result parseResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal parse response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("parser error: %s", result.Error)
	}
	return result.toDoc(text)
}

// toDoc builds a Doc from the response. The service reports offsets in code
// points; they are converted to byte offsets into text.
func (r *parseResponse) toDoc(text string) (*domain.Doc, error) {
	offsets := runeOffsets(text)
	span := func(start, end int) (int, int, bool) {
		if start < 0 || end >= len(offsets) || start > end {
			return 0, 0, false
		}
		return offsets[start], offsets[end], true
	}

	doc := &domain.Doc{Text: text}
	for i, t := range r.Tokens {
		start, end, ok := span(t.Start, t.End)
		if !ok {
			return nil, fmt.Errorf("token %d has span [%d,%d) outside text", i, t.Start, t.End)
		}
		head := t.Head
		if head < 0 || head >= len(r.Tokens) {
			head = i
		}
		dep := DepKindFromLabel(t.Dep)
		if head == i {
			dep = domain.DepRoot
		}
		tag := t.Tag
		if tag == "" {
			tag = t.POS
		}
		pos := POSFromTag(t.POS)
		if t.POS == "" {
			pos = POSFromTag(t.Tag)
		}
		doc.Tokens = append(doc.Tokens, domain.Token{
			Index: i,
			Text:  text[start:end],
			Lemma: t.Lemma,
			POS:   pos,
			Tag:   tag,
			Dep:   dep,
			Head:  head,
			Start: start,
			End:   end,
		})
	}

	ranges := make([]charRange, 0, len(r.Sentences))
	for _, s := range r.Sentences {
		if start, end, ok := span(s.Start, s.End); ok {
			ranges = append(ranges, charRange{start, end})
		}
	}
	assignSentences(doc, ranges)

	for _, e := range r.Ents {
		label, ok := normalizeLabel(e.Label)
		if !ok {
			continue
		}
		start, end, ok := span(e.Start, e.End)
		if !ok {
			continue
		}
		if ent, ok := entitySpan(doc, start, end, label); ok {
			doc.Entities = append(doc.Entities, ent)
		}
	}
	sortEntities(doc)
	return doc, nil
}

// runeOffsets returns the byte offset of every rune in text followed by
// len(text).
func runeOffsets(text string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}

// Package nlp adapts tokenizers, taggers, parsers and NER models to the
// domain.NLPEngine contract.
package nlp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

const DefaultMaxLength = 1_000_000

const (
	BackendProse   = "prose"
	BackendLexicon = "lexicon"
	BackendRemote  = "remote"
)

var ErrTextTooLong = errors.New("text exceeds engine max length")

// Backend produces a tagged document. Dependencies and lemmas are optional;
// the engine fills whatever the backend leaves empty.
type Backend interface {
	Analyze(ctx context.Context, text string) (*domain.Doc, error)
	Close() error
}

// Engine is the shared analysis handle passed into every extraction.
type Engine struct {
	backend   Backend
	lemmas    *Lemmatizer
	maxLength atomic.Int64
	logger    *zap.Logger
}

func NewEngine(backend Backend, lemmas *Lemmatizer, logger *zap.Logger) *Engine {
	if lemmas == nil {
		lemmas = NewRuleLemmatizer()
	}
	e := &Engine{backend: backend, lemmas: lemmas, logger: logger}
	e.maxLength.Store(DefaultMaxLength)
	return e
}

// NewBackend creates a backend by name.
func NewBackend(name, url string) (Backend, error) {
	switch name {
	case BackendProse, "":
		return NewProseBackend(), nil
	case BackendLexicon:
		return NewLexiconBackend(), nil
	case BackendRemote:
		if url == "" {
			return nil, fmt.Errorf("NLP_URL is required for the remote NLP backend")
		}
		return NewRemoteBackend(url), nil
	default:
		return nil, fmt.Errorf("unknown NLP backend: %s (valid options: prose, lexicon, remote)", name)
	}
}

func (e *Engine) MaxLength() int {
	return int(e.maxLength.Load())
}

func (e *Engine) SetMaxLength(n int) {
	e.maxLength.Store(int64(n))
}

func (e *Engine) RaiseMaxLength(n int) bool {
	for {
		cur := e.maxLength.Load()
		if int64(n) <= cur {
			return false
		}
		if e.maxLength.CompareAndSwap(cur, int64(n)) {
			e.logger.Info("raised NLP max length", zap.Int64("from", cur), zap.Int("to", n))
			return true
		}
	}
}

func (e *Engine) Parse(ctx context.Context, text string) (*domain.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit := e.MaxLength(); len(text) > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrTextTooLong, len(text), limit)
	}

	doc, err := e.backend.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	e.lemmas.Fill(doc)
	if !hasDependencies(doc) {
		Annotate(doc)
	}
	return doc, nil
}

func (e *Engine) Close() error {
	return e.backend.Close()
}

func hasDependencies(doc *domain.Doc) bool {
	for _, t := range doc.Tokens {
		if t.Dep != "" {
			return true
		}
	}
	return false
}

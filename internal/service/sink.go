package service

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

// MultiSink saves each result to every sink in order. A document counts as
// processed if any sink that can answer already has it.
type MultiSink struct {
	sinks []domain.ResultSink
}

func NewMultiSink(sinks ...domain.ResultSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Add(sink domain.ResultSink) {
	m.sinks = append(m.sinks, sink)
}

func (m *MultiSink) Len() int {
	return len(m.sinks)
}

func (m *MultiSink) Save(ctx context.Context, result *domain.ExtractionResult) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Save(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) HasDocument(ctx context.Context, url string) (bool, error) {
	for _, sink := range m.sinks {
		checker, ok := sink.(domain.ProcessedChecker)
		if !ok {
			continue
		}
		done, err := checker.HasDocument(ctx, url)
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}
	}
	return false, nil
}

var (
	_ domain.ResultSink       = (*MultiSink)(nil)
	_ domain.ProcessedChecker = (*MultiSink)(nil)
)

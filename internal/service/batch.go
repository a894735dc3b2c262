package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

var ErrNoDocumentLoader = errors.New("document loader is not configured")

type batchRun struct {
	mu     sync.Mutex
	report domain.BatchReport
}

func (r *batchRun) skipped() {
	r.mu.Lock()
	r.report.Skipped++
	r.mu.Unlock()
}

func (r *batchRun) processed() {
	r.mu.Lock()
	r.report.Processed++
	r.mu.Unlock()
}

func (r *batchRun) failed(url string, err error) {
	r.mu.Lock()
	r.report.Failed++
	r.report.Failures = append(r.report.Failures, domain.DocumentFailure{URL: url, Error: err.Error()})
	r.mu.Unlock()
}

// ExtractBatch processes sources on a bounded worker pool. Documents already
// known to the processed checker are skipped. A document that cannot be
// loaded, analyzed or saved is logged, counted and skipped. Only cancellation
// aborts the run.
func (s *ExtractionService) ExtractBatch(ctx context.Context, sources []domain.DocumentSource) (*domain.BatchReport, error) {
	if s.loader == nil {
		return nil, ErrNoDocumentLoader
	}
	run := &batchRun{report: domain.BatchReport{RunID: uuid.New().String(), Total: len(sources)}}
	logger := s.logger.With(zap.String("run_id", run.report.RunID))

	workers := s.opts.Workers
	if workers < 1 {
		workers = 1
	}
	batchScope := s.opts.NormalizationScope == domain.ScopeBatch
	graphs := make([]*documentGraph, len(sources))

	logger.Info("batch extraction started",
		zap.Int("documents", len(sources)),
		zap.Int("workers", workers),
		zap.String("scope", string(s.opts.NormalizationScope)),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range sources {
		if gctx.Err() != nil {
			break
		}
		i, src := i, src
		g.Go(func() error {
			graph, err := s.processSource(gctx, src, run, logger)
			if err != nil {
				return err
			}
			if graph == nil {
				return nil
			}
			if batchScope {
				graphs[i] = graph
				return nil
			}
			s.save(gctx, graph.result(NewConfidenceScale(graph.relationships), s.now().UTC()), run, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &run.report, err
	}
	if err := ctx.Err(); err != nil {
		return &run.report, err
	}

	if batchScope {
		all := make([][]*domain.AggregatedRelationship, 0, len(graphs))
		for _, graph := range graphs {
			if graph != nil {
				all = append(all, graph.relationships)
			}
		}
		scale := NewConfidenceScale(all...)
		logger.Debug("batch confidence scale", zap.Float64("min", scale.Min), zap.Float64("max", scale.Max))
		at := s.now().UTC()
		for _, graph := range graphs {
			if graph == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return &run.report, err
			}
			s.save(ctx, graph.result(scale, at), run, logger)
		}
	}

	logger.Info("batch extraction finished",
		zap.Int("processed", run.report.Processed),
		zap.Int("skipped", run.report.Skipped),
		zap.Int("failed", run.report.Failed),
	)
	return &run.report, nil
}

// processSource returns a nil graph for skipped or failed documents. The
// error is non-nil only for cancellation.
func (s *ExtractionService) processSource(ctx context.Context, src domain.DocumentSource, run *batchRun, logger *zap.Logger) (*documentGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.checker != nil {
		done, err := s.checker.HasDocument(ctx, src.URL)
		if err != nil {
			logger.Warn("processed check failed", zap.String("url", src.URL), zap.Error(err))
		} else if done {
			logger.Debug("document already processed", zap.String("url", src.URL))
			run.skipped()
			return nil, nil
		}
	}

	text, err := s.loader.Load(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("failed to load document", zap.String("url", src.URL), zap.String("path", src.FilePath), zap.Error(err))
		run.failed(src.URL, fmt.Errorf("load: %w", err))
		return nil, nil
	}

	graph, err := s.analyze(ctx, src.Document(text))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("failed to extract document", zap.String("url", src.URL), zap.Error(err))
		run.failed(src.URL, err)
		return nil, nil
	}
	return graph, nil
}

func (s *ExtractionService) save(ctx context.Context, result *domain.ExtractionResult, run *batchRun, logger *zap.Logger) {
	if s.sink != nil {
		if err := s.sink.Save(ctx, result); err != nil {
			logger.Error("failed to save extraction result", zap.String("url", result.Document.URL), zap.Error(err))
			run.failed(result.Document.URL, fmt.Errorf("save: %w", err))
			return
		}
	}
	run.processed()
}

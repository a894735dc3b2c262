// Package bootstrap builds the shared runtime for the server and batch
// binaries from the flat env configuration.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Harshitk-cp/filinggraph/internal/config"
	"github.com/Harshitk-cp/filinggraph/internal/domain"
	"github.com/Harshitk-cp/filinggraph/internal/embedding"
	"github.com/Harshitk-cp/filinggraph/internal/graph"
	"github.com/Harshitk-cp/filinggraph/internal/nlp"
	"github.com/Harshitk-cp/filinggraph/internal/registry"
	"github.com/Harshitk-cp/filinggraph/internal/service"
	"github.com/Harshitk-cp/filinggraph/internal/similarity"
	"github.com/Harshitk-cp/filinggraph/internal/store"
)

// NewLogger returns a production JSON logger at level. Unknown levels fall
// back to info.
func NewLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// NewEngine builds the configured NLP backend. A missing lemma dictionary
// degrades to suffix rules.
func NewEngine(logger *zap.Logger) (*nlp.Engine, error) {
	backend, err := nlp.NewBackend(config.NLPBackend(), config.NLPURL())
	if err != nil {
		return nil, err
	}

	lemmas, err := nlp.NewLemmatizer()
	if err != nil {
		logger.Warn("lemma dictionary unavailable, using suffix rules", zap.Error(err))
		lemmas = nlp.NewRuleLemmatizer()
	}

	engine := nlp.NewEngine(backend, lemmas, logger)
	engine.SetMaxLength(config.NLPMaxLength())
	logger.Info("NLP engine initialized", zap.String("backend", config.NLPBackend()))
	return engine, nil
}

// NewExtractionService loads the company registry and wires the pipeline.
func NewExtractionService(engine *nlp.Engine, logger *zap.Logger) (*service.ExtractionService, error) {
	reg, err := registry.LoadCSV(config.RegistryPath())
	if err != nil {
		return nil, fmt.Errorf("load company registry: %w", err)
	}
	logger.Info("company registry loaded", zap.String("path", config.RegistryPath()), zap.Int("companies", reg.Len()))

	return service.NewExtractionService(engine, reg, similarity.TokenSetRatio, config.ExtractionOptions(), logger), nil
}

// NewEmbeddingClient returns nil when embeddings are disabled or the
// provider cannot be initialized.
func NewEmbeddingClient(logger *zap.Logger) domain.EmbeddingClient {
	provider := config.EmbeddingProvider()
	client, err := embedding.NewClient(provider, embedding.Options{
		APIKey:  config.EmbeddingAPIKey(),
		Model:   config.EmbeddingModel(),
		BaseURL: config.EmbeddingBaseURL(),
	})
	if err != nil {
		logger.Warn("Embedding client initialization failed", zap.String("provider", provider), zap.Error(err))
		return nil
	}
	if client != nil {
		logger.Info("Embedding client initialized", zap.String("provider", provider))
	}
	return client
}

// OpenDatabase connects to DATABASE_URL and applies the schema. It returns
// nils when no database is configured.
func OpenDatabase(ctx context.Context, embedder domain.EmbeddingClient, logger *zap.Logger) (*pgxpool.Pool, *store.ExtractionStore, error) {
	dbURL := config.DatabaseURL()
	if dbURL == "" {
		return nil, nil, nil
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := store.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("connected to database")

	s := store.NewExtractionStore(pool, logger)
	if embedder != nil {
		s.SetEmbeddingClient(embedder)
	}
	return pool, s, nil
}

// OpenGraph connects to Neo4j when NEO4J_URI is set.
func OpenGraph(ctx context.Context, logger *zap.Logger) (*graph.Client, *graph.Sink, error) {
	client, err := graph.NewClient(ctx, graph.Config{
		URI:      config.Neo4jURI(),
		User:     config.Neo4jUser(),
		Password: config.Neo4jPassword(),
		Database: config.Neo4jDatabase(),
		MaxPool:  config.Neo4jMaxPool(),
		Timeout:  config.Neo4jTimeout(),
	}, logger)
	if err != nil || client == nil {
		return nil, nil, err
	}
	sink := graph.NewSink(client, logger)
	sink.EnsureSchema(ctx)
	return client, sink, nil
}

// FileSink is a resumable output file.
type FileSink interface {
	domain.ResultSink
	domain.ProcessedChecker
	io.Closer
}

// OpenFileSink opens path as CSV rows when it ends in .csv and as JSONL
// otherwise.
func OpenFileSink(path string) (FileSink, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		s, err := store.OpenCSV(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := store.OpenJSONL(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

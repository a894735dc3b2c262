// Command extract runs the batch pipeline over the filing index and writes
// results to the output file and any configured database or graph.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/bootstrap"
	"github.com/Harshitk-cp/filinggraph/internal/config"
	"github.com/Harshitk-cp/filinggraph/internal/filing"
	"github.com/Harshitk-cp/filinggraph/internal/service"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	indexPath := flag.String("index", config.IndexPath(), "filing index CSV (url, file_path, cik, form)")
	outputPath := flag.String("output", config.OutputPath(), "output file; .csv writes flat rows, anything else JSONL")
	limit := flag.Int("limit", 0, "process at most this many index rows (0 = all)")
	flag.Parse()

	logger, err := bootstrap.NewLogger(config.LogLevel())
	if err != nil {
		panic(err)
	}

	code := run(*indexPath, *outputPath, *limit, logger)
	_ = logger.Sync()
	os.Exit(code)
}

func run(indexPath, outputPath string, limit int, logger *zap.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sources, err := filing.LoadIndex(indexPath)
	if err != nil {
		logger.Error("failed to load filing index", zap.String("path", indexPath), zap.Error(err))
		return 1
	}
	if limit > 0 && limit < len(sources) {
		sources = sources[:limit]
	}

	engine, err := bootstrap.NewEngine(logger)
	if err != nil {
		logger.Error("failed to initialize NLP engine", zap.Error(err))
		return 1
	}
	defer func() { _ = engine.Close() }()

	svc, err := bootstrap.NewExtractionService(engine, logger)
	if err != nil {
		logger.Error("failed to initialize extraction service", zap.Error(err))
		return 1
	}

	out, err := bootstrap.OpenFileSink(outputPath)
	if err != nil {
		logger.Error("failed to open output", zap.String("path", outputPath), zap.Error(err))
		return 1
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("failed to close output", zap.Error(err))
		}
	}()
	sinks := service.NewMultiSink(out)

	pool, extractionStore, err := bootstrap.OpenDatabase(ctx, bootstrap.NewEmbeddingClient(logger), logger)
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		return 1
	}
	if pool != nil {
		defer pool.Close()
		sinks.Add(extractionStore)
	}

	graphClient, graphSink, err := bootstrap.OpenGraph(ctx, logger)
	if err != nil {
		logger.Error("failed to connect to neo4j", zap.Error(err))
		return 1
	}
	if graphClient != nil {
		defer func() { _ = graphClient.Close(context.Background()) }()
		sinks.Add(graphSink)
	}

	svc.SetDocumentLoader(filing.NewFileLoader())
	svc.SetResultSink(sinks)
	svc.SetProcessedChecker(sinks)

	logger.Info("writing results", zap.String("output", outputPath), zap.Int("sinks", sinks.Len()))

	report, err := svc.ExtractBatch(ctx, sources)
	if report != nil {
		for _, f := range report.Failures {
			logger.Warn("document failed", zap.String("run_id", report.RunID), zap.String("url", f.URL), zap.String("error", f.Error))
		}
	}
	if err != nil {
		logger.Error("batch extraction aborted", zap.Error(err))
		return 1
	}
	return 0
}

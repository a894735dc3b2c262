package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Harshitk-cp/filinggraph/internal/store"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := NewLogger(tt.level)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			assert.False(t, logger.Core().Enabled(tt.want-1))
		})
	}
}

func TestOpenFileSink(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenFileSink(filepath.Join(dir, "out.CSV"))
	require.NoError(t, err)
	assert.IsType(t, &store.CSVSink{}, s)
	require.NoError(t, s.Close())

	s, err = OpenFileSink(filepath.Join(dir, "out.jsonl"))
	require.NoError(t, err)
	assert.IsType(t, &store.JSONLSink{}, s)
	require.NoError(t, s.Close())
}

func TestNewExtractionService(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte("company_name,cik\nAcme Corp,100\n"), 0o600))

	t.Setenv("REGISTRY_PATH", path)
	t.Setenv("NLP_BACKEND", "lexicon")

	engine, err := NewEngine(zap.NewNop())
	require.NoError(t, err)
	svc, err := NewExtractionService(engine, zap.NewNop())
	require.NoError(t, err)

	c, ok := svc.ResolveCompany("acme corp")
	require.True(t, ok)
	assert.Equal(t, "100", c.ID)

	t.Setenv("REGISTRY_PATH", filepath.Join(dir, "missing.csv"))
	_, err = NewExtractionService(engine, zap.NewNop())
	assert.Error(t, err)
}

func TestOptionalBackendsDisabled(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("NEO4J_URI", "")
	t.Setenv("EMBEDDING_PROVIDER", "none")

	pool, s, err := OpenDatabase(context.Background(), nil, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, pool)
	assert.Nil(t, s)

	client, sink, err := OpenGraph(context.Background(), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.Nil(t, sink)

	assert.Nil(t, NewEmbeddingClient(zap.NewNop()))
}

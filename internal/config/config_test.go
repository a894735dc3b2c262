package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

func TestExtractionOptions_Defaults(t *testing.T) {
	for _, k := range []string{
		"PERSON_SIMILARITY_THRESHOLD", "COMPANY_SIMILARITY_THRESHOLD", "COMPANY_FUZZY_MIN_LENGTH",
		"ENABLE_COMPANY_FUZZY_MATCH", "INCLUDE_PERSON_PERSON_RELATIONSHIPS", "NORMALIZATION_SCOPE", "EXTRACT_WORKERS",
	} {
		t.Setenv(k, "")
	}

	assert.Equal(t, domain.DefaultExtractionOptions(), ExtractionOptions())
}

func TestExtractionOptions_FromEnv(t *testing.T) {
	t.Setenv("PERSON_SIMILARITY_THRESHOLD", "80")
	t.Setenv("COMPANY_SIMILARITY_THRESHOLD", "150")
	t.Setenv("COMPANY_FUZZY_MIN_LENGTH", "6")
	t.Setenv("ENABLE_COMPANY_FUZZY_MATCH", "false")
	t.Setenv("INCLUDE_PERSON_PERSON_RELATIONSHIPS", "true")
	t.Setenv("NORMALIZATION_SCOPE", "BATCH")
	t.Setenv("EXTRACT_WORKERS", "0")

	opts := ExtractionOptions()
	assert.Equal(t, 80, opts.PersonSimilarityThreshold)
	assert.Equal(t, 100, opts.CompanySimilarityThreshold)
	assert.Equal(t, 6, opts.CompanyFuzzyMinLength)
	assert.False(t, opts.EnableCompanyFuzzyMatch)
	assert.True(t, opts.IncludePersonPersonRelationships)
	assert.Equal(t, domain.ScopeBatch, opts.NormalizationScope)
	assert.Equal(t, domain.DefaultWorkers, opts.Workers)
}

func TestLoad_SecretSidecar(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(env, []byte("NLP_BACKEND=lexicon\nSERVER_PORT=9191\n"), 0o600))
	require.NoError(t, os.WriteFile(env+".secret", []byte("API_KEY=s3cret\n"), 0o600))

	t.Setenv("FILINGGRAPH_ENV", env)
	t.Setenv("NLP_BACKEND", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("API_KEY", "")
	os.Unsetenv("NLP_BACKEND")
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("API_KEY")

	require.NoError(t, Load())
	assert.Equal(t, "lexicon", NLPBackend())
	assert.Equal(t, 9191, ServerPort())
	assert.Equal(t, ":9191", ServerAddr())
	assert.Equal(t, "s3cret", APIKey())
}

func TestGetterDefaults(t *testing.T) {
	t.Setenv("NEO4J_TIMEOUT_SECONDS", "nope")
	t.Setenv("NLP_MAX_LENGTH", "-1")
	t.Setenv("EMBEDDING_PROVIDER", "")
	t.Setenv("RATE_LIMIT_RPS", "")

	assert.Equal(t, 10*time.Second, Neo4jTimeout())
	assert.Equal(t, 1_000_000, NLPMaxLength())
	assert.Equal(t, "none", EmbeddingProvider())
	assert.Equal(t, "", EmbeddingAPIKey())
	assert.Equal(t, 100.0, RateLimitRPS())
}

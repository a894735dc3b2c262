package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

// Load reads the .env file specified by FILINGGRAPH_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("FILINGGRAPH_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func boolEnv(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "none" if not set.
// Valid values: openai, mock, none
func EmbeddingProvider() string {
	return stringEnv("EMBEDDING_PROVIDER", "none")
}

func EmbeddingModel() string {
	return os.Getenv("EMBEDDING_MODEL")
}

func EmbeddingBaseURL() string {
	return os.Getenv("EMBEDDING_BASE_URL")
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "openai":
		return OpenAIAPIKey()
	default:
		return ""
	}
}

// NLPBackend returns the analysis backend.
// Valid values: prose, lexicon, remote
func NLPBackend() string {
	return stringEnv("NLP_BACKEND", "prose")
}

// NLPURL is the parse endpoint of the remote backend.
func NLPURL() string {
	return os.Getenv("NLP_URL")
}

func NLPMaxLength() int {
	n := intEnv("NLP_MAX_LENGTH", 1_000_000)
	if n <= 0 {
		return 1_000_000
	}
	return n
}

func RegistryPath() string {
	return stringEnv("REGISTRY_PATH", "data/public_companies.csv")
}

func IndexPath() string {
	return stringEnv("INDEX_PATH", "data/filings_index.csv")
}

// OutputPath is the JSONL output file. A ".csv" suffix selects flat CSV rows.
func OutputPath() string {
	return stringEnv("OUTPUT_PATH", "data/filing_graph.jsonl")
}

func Neo4jURI() string {
	return os.Getenv("NEO4J_URI")
}

func Neo4jUser() string {
	return stringEnv("NEO4J_USER", "neo4j")
}

func Neo4jPassword() string {
	return os.Getenv("NEO4J_PASSWORD")
}

func Neo4jDatabase() string {
	return os.Getenv("NEO4J_DATABASE")
}

func Neo4jMaxPool() int {
	return intEnv("NEO4J_MAX_POOL_SIZE", 50)
}

func Neo4jTimeout() time.Duration {
	sec := intEnv("NEO4J_TIMEOUT_SECONDS", 10)
	if sec <= 0 {
		sec = 10
	}
	return time.Duration(sec) * time.Second
}

// APIKey is the static key required by the HTTP API. Empty disables auth.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// ExtractionOptions reads the extraction tunables over their defaults.
func ExtractionOptions() domain.ExtractionOptions {
	opts := domain.DefaultExtractionOptions()
	opts.PersonSimilarityThreshold = clampPercent(intEnv("PERSON_SIMILARITY_THRESHOLD", opts.PersonSimilarityThreshold))
	opts.CompanySimilarityThreshold = clampPercent(intEnv("COMPANY_SIMILARITY_THRESHOLD", opts.CompanySimilarityThreshold))
	opts.CompanyFuzzyMinLength = intEnv("COMPANY_FUZZY_MIN_LENGTH", opts.CompanyFuzzyMinLength)
	opts.EnableCompanyFuzzyMatch = boolEnv("ENABLE_COMPANY_FUZZY_MATCH", opts.EnableCompanyFuzzyMatch)
	opts.IncludePersonPersonRelationships = boolEnv("INCLUDE_PERSON_PERSON_RELATIONSHIPS", opts.IncludePersonPersonRelationships)
	if scope := domain.NormalizationScope(strings.ToLower(os.Getenv("NORMALIZATION_SCOPE"))); scope == domain.ScopeBatch || scope == domain.ScopeDocument {
		opts.NormalizationScope = scope
	}
	if w := intEnv("EXTRACT_WORKERS", opts.Workers); w > 0 {
		opts.Workers = w
	}
	return opts
}

func clampPercent(v int) int {
	return max(0, min(100, v))
}

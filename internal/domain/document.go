package domain

import (
	"context"
	"time"
)

// Document is one cleaned filing ready for extraction.
type Document struct {
	URL      string `json:"url"`
	FilerID  string `json:"filer_id"`
	FormType string `json:"form_type"`
	Text     string `json:"-"`
}

// DocumentSource is one row of the filing index.
type DocumentSource struct {
	URL      string `json:"url"`
	FilePath string `json:"file_path"`
	FilerID  string `json:"filer_id"`
	FormType string `json:"form_type"`
}

func (s DocumentSource) Document(text string) Document {
	return Document{URL: s.URL, FilerID: s.FilerID, FormType: s.FormType, Text: text}
}

// ExtractionResult is everything produced for one document.
type ExtractionResult struct {
	Document      Document         `json:"document"`
	People        []*PersonEntity  `json:"people"`
	Companies     []*CompanyEntity `json:"companies"`
	Relationships []Relationship   `json:"relationships"`
	ExtractedAt   time.Time        `json:"extracted_at"`
}

// DocumentFailure records a document skipped by a batch run.
type DocumentFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

type BatchReport struct {
	RunID     string            `json:"run_id"`
	Total     int               `json:"total"`
	Processed int               `json:"processed"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Failures  []DocumentFailure `json:"failures,omitempty"`
}

// NormalizationScope selects the population a confidence score is relative to.
type NormalizationScope string

const (
	ScopeDocument NormalizationScope = "document"
	ScopeBatch    NormalizationScope = "batch"
)

type ExtractionOptions struct {
	PersonSimilarityThreshold        int
	CompanySimilarityThreshold       int
	CompanyFuzzyMinLength            int
	EnableCompanyFuzzyMatch          bool
	IncludePersonPersonRelationships bool
	NormalizationScope               NormalizationScope
	Workers                          int
}

const (
	DefaultPersonSimilarityThreshold  = 85
	DefaultCompanySimilarityThreshold = 80
	DefaultCompanyFuzzyMinLength      = 4
	DefaultWorkers                    = 4
)

func DefaultExtractionOptions() ExtractionOptions {
	return ExtractionOptions{
		PersonSimilarityThreshold:  DefaultPersonSimilarityThreshold,
		CompanySimilarityThreshold: DefaultCompanySimilarityThreshold,
		CompanyFuzzyMinLength:      DefaultCompanyFuzzyMinLength,
		EnableCompanyFuzzyMatch:    true,
		NormalizationScope:         ScopeDocument,
		Workers:                    DefaultWorkers,
	}
}

// SimilarityFunc scores two strings on a 0-100 scale.
type SimilarityFunc func(a, b string) int

// ResultSink receives finished extraction results.
type ResultSink interface {
	Save(ctx context.Context, result *ExtractionResult) error
}

// ProcessedChecker reports documents already present in prior output.
type ProcessedChecker interface {
	HasDocument(ctx context.Context, url string) (bool, error)
}

// DocumentLoader reads and cleans the text for one index row.
type DocumentLoader interface {
	Load(ctx context.Context, src DocumentSource) (string, error)
}

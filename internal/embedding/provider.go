package embedding

import (
	"fmt"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
	ProviderNone   = "none"
)

// Options configures NewClient. Model and BaseURL apply to OpenAI only.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient creates an embedding client based on the provider name. The
// "none" provider and an empty name return a nil client, which disables
// context embeddings.
func NewClient(provider string, opts Options) (domain.EmbeddingClient, error) {
	switch provider {
	case ProviderOpenAI:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI embedding provider")
		}
		return NewOpenAIClient(opts.APIKey).WithModel(opts.Model).WithBaseURL(opts.BaseURL), nil

	case ProviderMock:
		return NewMockClient(), nil

	case ProviderNone, "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (valid options: openai, mock, none)", provider)
	}
}

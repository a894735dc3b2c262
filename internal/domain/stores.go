package domain

import "context"

// EmbeddingClient turns text into a dense vector.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

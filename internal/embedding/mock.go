package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

const DefaultMockDimensions = 64

// MockClient hashes words into a fixed-size unit vector, so equal texts embed
// identically and texts sharing words land close together.
type MockClient struct {
	Dimensions int
	Error      error

	mu    sync.Mutex
	Calls []string
}

func NewMockClient() *MockClient {
	return &MockClient{Dimensions: DefaultMockDimensions}
}

func (c *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, text)
	c.mu.Unlock()
	if c.Error != nil {
		return nil, c.Error
	}

	dims := c.Dimensions
	if dims <= 0 {
		dims = DefaultMockDimensions
	}
	vec := make([]float32, dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%uint32(dims)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

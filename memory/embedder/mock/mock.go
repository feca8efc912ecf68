// Package mock provides a deterministic embedder for tests and offline runs.
package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder generates deterministic unit vectors from a text hash. Equal
// texts always map to equal vectors, which is what the gateway tests need;
// there is no real semantic similarity.
type MockEmbedder struct {
	dimensions int
}

// New creates a mock embedder with the all-MiniLM-L6-v2 dimensionality.
func New() *MockEmbedder {
	return NewWithDimensions(384)
}

// NewWithDimensions creates a mock embedder producing vectors of the given size.
func NewWithDimensions(dims int) *MockEmbedder {
	return &MockEmbedder{dimensions: dims}
}

// Embed creates a deterministic embedding from text. The FNV hash of the
// text seeds a linear congruential generator that fills the vector.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float32, m.dimensions)
	for i := 0; i < m.dimensions; i++ {
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding), nil
}

// Dimensions returns the embedding size.
func (m *MockEmbedder) Dimensions() int {
	return m.dimensions
}

// normalize converts embedding to unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}

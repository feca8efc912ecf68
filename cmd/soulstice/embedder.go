//go:build !onnx

package main

import (
	"github.com/soulstice-ai/soulstice-go/memory"
	"github.com/soulstice-ai/soulstice-go/memory/embedder/mock"
)

// newEmbedder returns the deterministic mock embedder. Build with -tags onnx
// for real semantic embeddings via a local all-MiniLM-L6-v2 model.
func newEmbedder() (memory.Embedder, string, error) {
	return mock.New(), "mock-384", nil
}

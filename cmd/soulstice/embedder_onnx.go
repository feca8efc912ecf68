//go:build onnx

package main

import (
	"fmt"
	"os"

	"github.com/soulstice-ai/soulstice-go/memory"
	"github.com/soulstice-ai/soulstice-go/memory/embedder/onnx"
)

// newEmbedder loads the local all-MiniLM-L6-v2 ONNX model. Requires
// SOULSTICE_ONNX_MODEL and SOULSTICE_ONNX_TOKENIZER to point at the model
// files, and ONNXRUNTIME_LIB at the onnxruntime shared library.
func newEmbedder() (memory.Embedder, string, error) {
	modelPath := os.Getenv("SOULSTICE_ONNX_MODEL")
	tokenizerPath := os.Getenv("SOULSTICE_ONNX_TOKENIZER")
	if modelPath == "" || tokenizerPath == "" {
		return nil, "", fmt.Errorf("SOULSTICE_ONNX_MODEL and SOULSTICE_ONNX_TOKENIZER are required with the onnx build tag")
	}

	embedder, err := onnx.New(onnx.Config{
		ModelPath:     modelPath,
		TokenizerPath: tokenizerPath,
		Dimensions:    384,
	})
	if err != nil {
		return nil, "", err
	}
	return embedder, "all-MiniLM-L6-v2", nil
}

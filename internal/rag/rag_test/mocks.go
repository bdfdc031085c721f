package rag_test

import (
	"context"
	"sync"

	"github.com/akolanti/PaperRAG/internal/rag/llm"
)

// MockEmbedder implements embedding.Embedder with constant vectors by default.
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{1, float32(i)}
	}
	return vectors, nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{1, 0}, nil
}

// MockReranker implements rerank.Reranker
type MockReranker struct {
	OnRerank func(ctx context.Context, query string, texts []string) ([]float64, error)
}

func (m *MockReranker) Rerank(ctx context.Context, query string, texts []string) ([]float64, error) {
	if m.OnRerank != nil {
		return m.OnRerank(ctx, query, texts)
	}
	return make([]float64, len(texts)), nil
}

// MockLLM implements llm.Provider and records every prompt it was given.
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt llm.Prompt) (string, error)

	mu      sync.Mutex
	Prompts []llm.Prompt
}

func (m *MockLLM) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

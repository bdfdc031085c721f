package openAIEmbedding

import (
	"context"
	"fmt"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/rag/embedding"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger = logger_i.NewLogger("openai_embedding")

type client struct {
	api       openai.Client
	model     string
	dimension int64
}

// NewOpenAIEmbedder talks to any OpenAI compatible /embeddings endpoint. An empty baseURL means api.openai.com.
func NewOpenAIEmbedder(apiKey string, baseURL string, model string) embedding.Embedder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	logger.Info("OpenAI Embedding client created", "model", model, "baseURL", baseURL)
	return &client{
		api:       openai.NewClient(opts...),
		model:     model,
		dimension: int64(config.EmbeddingOutputDimensionality),
	}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}
	return c.embed(ctx, chunks)
}

func (c *client) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Model:      c.model,
		Dimensions: openai.Int(c.dimension),
	})
	if err != nil {
		logger.WithContext(ctx).Error("Error getting Embeddings from OpenAI", "error", err)
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("openai embedding returned %d vectors for %d inputs", len(resp.Data), len(inputs))
	}

	vectors := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(vectors) {
			return nil, fmt.Errorf("openai embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = toFloat32(d.Embedding)
	}
	return vectors, nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

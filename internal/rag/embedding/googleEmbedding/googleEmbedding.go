package googleEmbedding

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/rag/embedding"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	taskQuery    = "RETRIEVAL_QUERY"
	taskDocument = "RETRIEVAL_DOCUMENT"
)

var logger = logger_i.NewLogger("google_embedding")

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	backoff   time.Duration
}

// NewGoogleEmbedder builds a Gemini embedding client. It does not call the API.
func NewGoogleEmbedder(ctx context.Context, modelName string, apikey string) (embedding.Embedder, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("creating google embedding client: %w", err)
	}
	logger.Info("Google Embedding client created", "model", modelName)
	return &client{
		genAi:     c,
		model:     modelName,
		dimension: config.EmbeddingOutputDimensionality,
		backoff:   5 * time.Second,
	}, nil
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	res, err := c.embedWithRetry(ctx, genai.Text(query), taskQuery)
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) == 0 {
		return nil, fmt.Errorf("google embedding returned no vectors")
	}
	return res.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}
	res, err := c.embedWithRetry(ctx, getContent(chunks), taskDocument)
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) != len(chunks) {
		return nil, fmt.Errorf("google embedding returned %d vectors for %d chunks", len(res.Embeddings), len(chunks))
	}
	embeddingResults := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		embeddingResults = append(embeddingResults, r.Values)
	}
	return embeddingResults, nil
}

func (c *client) embedWithRetry(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	log := logger.WithContext(ctx)
	res, err := c.doCall(ctx, content, taskType)
	if err != nil && doRetry(err, log) {
		log.Debug("Retrying embedding call", "after", c.backoff)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff):
		}
		res, err = c.doCall(ctx, content, taskType)
	}
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, fmt.Errorf("google embedding: %w", err)
	}
	return res, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	dim := c.dimension
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &dim, TaskType: taskType})
}

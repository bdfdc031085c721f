package embedding

import "context"

type Embedder interface {
	// GetEmbedding embeds a search query.
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	// BatchEmbedding embeds document chunks, one vector per input in order.
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}

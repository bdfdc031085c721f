package vectorDB

import (
	"context"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
)

// DataProcessor is the chunk index. All chunks live in one collection, scoped by document id.
type DataProcessor interface {
	// Search returns at most topK chunks of docId ordered by similarity.
	Search(ctx context.Context, docId string, vectorVal []float32, topK int) ([]commonModels.Candidate, error)

	// CreateCollection Ingest document call
	CreateCollection(ctx context.Context) error
	DeleteDocument(ctx context.Context, docId string) error
	UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
}

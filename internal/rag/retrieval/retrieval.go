package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/metrics"
	"github.com/akolanti/PaperRAG/internal/rag/embedding"
	"github.com/akolanti/PaperRAG/internal/rag/rerank"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("Retriever")

type Retriever struct {
	embedder embedding.Embedder
	index    vectorDB.DataProcessor
	reranker rerank.Reranker
}

func NewRetriever(embedder embedding.Embedder, index vectorDB.DataProcessor, reranker rerank.Reranker) *Retriever {
	return &Retriever{embedder: embedder, index: index, reranker: reranker}
}

// Retrieve returns at most topN chunks of docId, reranked against query. No candidates is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, docId string, topK int, topN int) ([]commonModels.ScoredChunk, error) {
	log := logger.WithContext(ctx).With("documentId", docId)
	if topN > topK {
		topN = topK
	}
	if topN <= 0 {
		return []commonModels.ScoredChunk{}, nil
	}

	vector, err := timed("embedding", func() ([]float32, error) {
		return r.embedder.GetEmbedding(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := timed("vector_search", func() ([]commonModels.Candidate, error) {
		return r.index.Search(ctx, docId, vector, topK)
	})
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	if len(candidates) == 0 {
		log.Debug("No candidates for query")
		return []commonModels.ScoredChunk{}, nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	scores, err := timed("rerank", func() ([]float64, error) {
		return r.reranker.Rerank(ctx, query, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("reranking: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("reranker returned %d scores for %d candidates", len(scores), len(candidates))
	}

	ranked := Rank(candidates, scores)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	log.Debug("Retrieved chunks", "candidates", len(candidates), "kept", len(ranked))
	return ranked, nil
}

// Rank sorts candidates best first by raw rerank score and reports the sigmoid normalized score.
// Equal raw scores keep their retrieval order.
func Rank(candidates []commonModels.Candidate, scores []float64) []commonModels.ScoredChunk {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranked := make([]commonModels.ScoredChunk, len(candidates))
	for pos, i := range order {
		c := candidates[i]
		ranked[pos] = commonModels.ScoredChunk{Text: c.Text, Order: c.Order, Score: Sigmoid(scores[i])}
	}
	return ranked
}

func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func timed[T any](label string, call func() (T, error)) (T, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(label, time.Since(start)) }()
	return call()
}

package memoryIndex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
)

type point struct {
	chunk  commonModels.DocChunk
	vector []float32
}

// Index is a brute force cosine index for local runs and tests.
type Index struct {
	mu     sync.RWMutex
	points map[string]map[string]point
}

func New() *Index {
	return &Index{points: make(map[string]map[string]point)}
}

func (ix *Index) CreateCollection(ctx context.Context) error {
	return nil
}

func (ix *Index) DeleteDocument(ctx context.Context, docId string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.points, docId)
	return nil
}

func (ix *Index) UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i, c := range chunks {
		doc, ok := ix.points[c.DocId]
		if !ok {
			doc = make(map[string]point)
			ix.points[c.DocId] = doc
		}
		doc[c.ChunkId] = point{chunk: c, vector: vectors[i]}
	}
	return nil
}

func (ix *Index) Search(ctx context.Context, docId string, vectorVal []float32, topK int) ([]commonModels.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	candidates := make([]commonModels.Candidate, 0, len(ix.points[docId]))
	for _, p := range ix.points[docId] {
		candidates = append(candidates, commonModels.Candidate{
			Text:  p.chunk.Chunk,
			Order: p.chunk.Order,
			Score: cosine(vectorVal, p.vector),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Order < candidates[j].Order
	})
	if topK < 0 {
		topK = 0
	}
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// Count is the number of chunks stored for docId.
func (ix *Index) Count(docId string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.points[docId])
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

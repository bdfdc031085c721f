package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/PaperRAG/internal/customHttpClient"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

// Reranker scores every (query, text) pair independently. Scores are raw logits, higher is better.
type Reranker interface {
	Rerank(ctx context.Context, query string, texts []string) ([]float64, error)
}

var logger = logger_i.NewLogger("reranker")

// HTTPReranker calls a cross-encoder served behind a text-embeddings-inference style /rerank endpoint.
type HTTPReranker struct {
	endpoint string
	client   *http.Client
}

func NewHTTPReranker(baseURL string, timeout time.Duration) *HTTPReranker {
	return &HTTPReranker{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/rerank",
		client:   customHttpClient.NewClient(timeout),
	}
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
}

type rerankHit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

func (r *HTTPReranker) Rerank(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return []float64{}, nil
	}
	body, err := json.Marshal(rerankRequest{Query: query, Texts: texts, RawScores: true})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		logger.WithContext(ctx).Error("Rerank call failed", "error", err)
		return nil, fmt.Errorf("rerank: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rerank: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var hits []rerankHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("rerank: decoding response: %w", err)
	}
	if len(hits) != len(texts) {
		return nil, fmt.Errorf("rerank: got %d scores for %d texts", len(hits), len(texts))
	}

	// the server sorts by score; put them back in input order
	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, h := range hits {
		if h.Index < 0 || h.Index >= len(texts) || seen[h.Index] {
			return nil, fmt.Errorf("rerank: bad index %d in response", h.Index)
		}
		seen[h.Index] = true
		scores[h.Index] = h.Score
	}
	return scores, nil
}

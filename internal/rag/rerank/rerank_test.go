package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPReranker_RestoresInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req rerankRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if !req.RawScores || req.Query != "q" || len(req.Texts) != 3 {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode([]rerankHit{{Index: 2, Score: 3}, {Index: 0, Score: 1}, {Index: 1, Score: -2}})
	}))
	defer srv.Close()

	scores, err := NewHTTPReranker(srv.URL, time.Second).Rerank(context.Background(), "q", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, -2, 3}
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("score[%d] = %v, want %v", i, scores[i], want[i])
		}
	}
}

func TestHTTPReranker_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"count mismatch", http.StatusOK, `[{"index":0,"score":1}]`},
		{"duplicate index", http.StatusOK, `[{"index":0,"score":1},{"index":0,"score":2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			}))
			defer srv.Close()

			_, err := NewHTTPReranker(srv.URL, time.Second).Rerank(context.Background(), "q", []string{"a", "b"})
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHTTPReranker_EmptyTexts(t *testing.T) {
	scores, err := NewHTTPReranker("http://127.0.0.1:1", time.Second).Rerank(context.Background(), "q", nil)
	if err != nil || len(scores) != 0 {
		t.Errorf("got %v, %v", scores, err)
	}
}

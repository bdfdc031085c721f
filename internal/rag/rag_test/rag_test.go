package rag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/PaperRAG/internal/data/store"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/rag"
	"github.com/akolanti/PaperRAG/internal/rag/llm"
	"github.com/akolanti/PaperRAG/internal/rag/responseCache"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB/memoryIndex"
)

const paper = `# Paper on X

## Abstract
We study X.

## Introduction
X is a property of some systems. We measure it in many settings and describe the setup in detail.

## Method
We run the experiment twice and compare the outcomes.

## Conclusion
X works.

## References
[1] A. Author. Something about X.
`

type fixture struct {
	svc      rag.Service
	embedder *MockEmbedder
	reranker *MockReranker
	llm      *MockLLM
	index    *memoryIndex.Index
	sessions *store.InMemorySessionStore
	articles *store.InMemoryArticleStore
	cache    *responseCache.MemoryCache
}

func newFixture() *fixture {
	f := &fixture{
		embedder: &MockEmbedder{},
		reranker: &MockReranker{},
		llm:      &MockLLM{},
		index:    memoryIndex.New(),
		sessions: store.InitInMemorySessionStore(),
		articles: store.InitInMemoryArticleStore(),
		cache:    responseCache.NewMemoryCache(),
	}
	f.svc = rag.NewService(
		rag.Capabilities{Embedder: f.embedder, Reranker: f.reranker, LLM: f.llm},
		rag.Stores{Index: f.index, Articles: f.articles, Sessions: f.sessions, Cache: f.cache},
	)
	return f
}

func writePaper(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.md")
	if err := os.WriteFile(path, []byte(paper), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func ingestJob(t *testing.T, user string) jobModel.Job {
	return jobModel.Job{
		Id:      "ingest-1",
		UserId:  user,
		JobType: jobModel.JobTypeIngest,
		Input:   jobModel.JobInput{FilePath: writePaper(t), FileName: "paper.md"},
	}
}

func TestIngestThenSummarize(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	got := f.svc.Ingest(ctx, ingestJob(t, "u1"))
	if got.Status != jobModel.JobStatusCompleted {
		t.Fatalf("ingest status = %s, error = %q", got.Status, got.Error)
	}
	if got.Result == nil || got.Result.Skipped || got.Result.NumChunks == 0 {
		t.Fatalf("unexpected ingest result %+v", got.Result)
	}
	docId := got.Result.DocumentId
	if f.index.Count(docId) != got.Result.NumChunks {
		t.Errorf("index holds %d chunks, result says %d", f.index.Count(docId), got.Result.NumChunks)
	}

	bound, _ := f.sessions.GetDocumentForUser(ctx, "u1")
	if bound != docId {
		t.Errorf("session bound to %q, want %q", bound, docId)
	}

	f.llm.OnGenerate = func(ctx context.Context, p llm.Prompt) (string, error) {
		return "The paper shows that X works.\n\nNow, something else.", nil
	}
	sum := f.svc.Summarize(ctx, jobModel.Job{Id: "s1", UserId: "u1", JobType: jobModel.JobTypeSummarize})
	if sum.Status != jobModel.JobStatusCompleted {
		t.Fatalf("summarize status = %s, error = %q", sum.Status, sum.Error)
	}
	if sum.Result.Summary != "The paper shows that X works." {
		t.Errorf("summary = %q", sum.Result.Summary)
	}
	if sum.Result.Abstract != "We study X." || sum.Result.Conclusion != "X works." {
		t.Errorf("sections = %q / %q", sum.Result.Abstract, sum.Result.Conclusion)
	}
	if !strings.Contains(f.llm.Prompts[0].User, "We study X.") {
		t.Errorf("summary prompt misses abstract: %q", f.llm.Prompts[0].User)
	}
}

func TestIngest_SecondRunIsSkippedAndRebinds(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	first := f.svc.Ingest(ctx, ingestJob(t, "u1"))
	if first.Status != jobModel.JobStatusCompleted {
		t.Fatalf("first ingest failed: %s", first.Error)
	}
	var embedCalls int
	f.embedder.OnBatchEmbedding = func(ctx context.Context, chunks []string) ([][]float32, error) {
		embedCalls++
		return nil, errors.New("should not be called")
	}

	second := f.svc.Ingest(ctx, ingestJob(t, "u2"))
	if second.Status != jobModel.JobStatusCompleted || !second.Result.Skipped {
		t.Fatalf("second ingest = %+v, %+v", second, second.Result)
	}
	if embedCalls != 0 {
		t.Errorf("skipped ingest embedded %d batches", embedCalls)
	}
	bound, _ := f.sessions.GetDocumentForUser(ctx, "u2")
	if bound != first.Result.DocumentId {
		t.Errorf("u2 bound to %q", bound)
	}
}

func TestIngest_InvalidSource(t *testing.T) {
	f := newFixture()
	got := f.svc.Ingest(context.Background(), jobModel.Job{Id: "x", UserId: "u", Input: jobModel.JobInput{Source: "ftp://nowhere/file.pdf"}})
	if got.Status != jobModel.JobStatusCompleted || got.Result == nil || got.Result.InputError == "" {
		t.Errorf("expected a completed task carrying an input error, got %+v", got)
	}
}

func TestIngest_EmbeddingFailureFailsTask(t *testing.T) {
	f := newFixture()
	f.embedder.OnBatchEmbedding = func(ctx context.Context, chunks []string) ([][]float32, error) {
		return nil, errors.New("quota")
	}
	got := f.svc.Ingest(context.Background(), ingestJob(t, "u1"))
	if got.Status != jobModel.JobStatusFailed || !strings.Contains(got.Error, "quota") {
		t.Errorf("got status %s error %q", got.Status, got.Error)
	}
	if _, err := f.sessions.GetDocumentForUser(context.Background(), "u1"); err == nil {
		t.Error("failed ingestion must not bind the session")
	}
}

func TestAsk_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		bind           bool
		setup          func(f *fixture)
		question       string
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		inputError     bool
		llmCalls       int
	}{
		{
			name:           "No_Document_Bound",
			question:       "What is X?",
			expectedStatus: jobModel.JobStatusCompleted,
			inputError:     true,
		},
		{
			name:           "Empty_Question",
			bind:           true,
			expectedStatus: jobModel.JobStatusCompleted,
			inputError:     true,
		},
		{
			name:     "Empty_Index_Still_Answers",
			bind:     true,
			question: "What is X?",
			setup: func(f *fixture) {
				f.llm.OnGenerate = func(ctx context.Context, p llm.Prompt) (string, error) {
					if !strings.Contains(p.User, "no passages") {
						return "", errors.New("expected the no passages marker")
					}
					return "The article does not say.", nil
				}
			},
			expectedStatus: jobModel.JobStatusCompleted,
			expectedAnswer: "The article does not say.",
			llmCalls:       1,
		},
		{
			name:     "Cache_Hit_Skips_LLM",
			bind:     true,
			question: "What is X?",
			setup: func(f *fixture) {
				_ = f.cache.Set(context.Background(), responseCache.QuestionKey("doc-1", "What is X?"),
					jobModel.JobResult{DocumentId: "doc-1", Question: "What is X?", Answer: "cached answer"}, 0)
			},
			expectedStatus: jobModel.JobStatusCompleted,
			expectedAnswer: "cached answer",
		},
		{
			name:     "LLM_Failure",
			bind:     true,
			question: "What is X?",
			setup: func(f *fixture) {
				f.llm.OnGenerate = func(ctx context.Context, p llm.Prompt) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStatus: jobModel.JobStatusFailed,
			llmCalls:       1,
		},
		{
			name:     "Embedding_Failure",
			bind:     true,
			question: "What is X?",
			setup: func(f *fixture) {
				f.embedder.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobModel.JobStatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture()
			if tt.bind {
				_ = f.sessions.SetDocumentForUser(ctx, "u1", "doc-1")
			}
			if tt.setup != nil {
				tt.setup(f)
			}

			got := f.svc.Ask(ctx, jobModel.Job{Id: "a1", UserId: "u1", JobType: jobModel.JobTypeAsk, Input: jobModel.JobInput{Question: tt.question}})

			if got.Status != tt.expectedStatus {
				t.Fatalf("status = %s, want %s (error %q)", got.Status, tt.expectedStatus, got.Error)
			}
			if tt.expectedStatus == jobModel.JobStatusFailed && got.Error == "" {
				t.Error("failed task without error text")
			}
			if tt.inputError && (got.Result == nil || got.Result.InputError == "") {
				t.Errorf("expected input error, got %+v", got.Result)
			}
			if tt.expectedAnswer != "" && got.Result.Answer != tt.expectedAnswer {
				t.Errorf("answer = %q, want %q", got.Result.Answer, tt.expectedAnswer)
			}
			if f.llm.Calls() != tt.llmCalls {
				t.Errorf("llm calls = %d, want %d", f.llm.Calls(), tt.llmCalls)
			}
		})
	}
}

func TestAsk_UsesRerankedChunksAndCaches(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ing := f.svc.Ingest(ctx, ingestJob(t, "u1"))
	if ing.Status != jobModel.JobStatusCompleted {
		t.Fatalf("ingest failed: %s", ing.Error)
	}
	f.reranker.OnRerank = func(ctx context.Context, query string, texts []string) ([]float64, error) {
		scores := make([]float64, len(texts))
		for i, text := range texts {
			if strings.Contains(text, "experiment twice") {
				scores[i] = 5
			}
		}
		return scores, nil
	}

	job := jobModel.Job{Id: "a1", UserId: "u1", Input: jobModel.JobInput{Question: "How was X measured?"}}
	first := f.svc.Ask(ctx, job)
	if first.Status != jobModel.JobStatusCompleted {
		t.Fatalf("ask failed: %s", first.Error)
	}
	if len(first.Result.ChunksUsed) == 0 || !strings.Contains(first.Result.ChunksUsed[0], "experiment twice") {
		t.Errorf("best chunk not first: %v", first.Result.ChunksUsed)
	}
	if len(first.Result.ChunksUsed) > 2 {
		t.Errorf("used %d chunks, want at most 2", len(first.Result.ChunksUsed))
	}

	second := f.svc.Ask(ctx, job)
	if second.Result.Answer != first.Result.Answer || f.llm.Calls() != 1 {
		t.Errorf("second ask should be served from cache, llm calls = %d", f.llm.Calls())
	}
}

func TestReingestInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ing := f.svc.Ingest(ctx, ingestJob(t, "u1"))
	docId := ing.Result.DocumentId
	_ = f.cache.Set(ctx, responseCache.SummaryKey(docId), jobModel.JobResult{Summary: "old"}, 0)

	// drop the metadata so the next ingestion indexes again instead of skipping
	f.articles = store.InitInMemoryArticleStore()
	f.svc = rag.NewService(
		rag.Capabilities{Embedder: f.embedder, Reranker: f.reranker, LLM: f.llm},
		rag.Stores{Index: f.index, Articles: f.articles, Sessions: f.sessions, Cache: f.cache},
	)
	again := f.svc.Ingest(ctx, ingestJob(t, "u1"))
	if again.Status != jobModel.JobStatusCompleted || again.Result.Skipped {
		t.Fatalf("re-ingest = %+v", again.Result)
	}
	if _, found, _ := f.cache.Get(ctx, responseCache.SummaryKey(docId)); found {
		t.Error("cache entry survived re-ingestion")
	}
}

func TestTrimResponse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Answer one.\n\nSecond paragraph.", "Answer one."},
		{"X works. Question: what else?", "X works."},
		{"  plain  ", "plain"},
		{"Now, the answer is here.", "Now, the answer is here."},
		{"It is 5. Finally, more.", "It is 5."},
	}
	for _, tt := range tests {
		if got := rag.TrimResponse(tt.in); got != tt.want {
			t.Errorf("TrimResponse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

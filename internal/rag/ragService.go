package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/metrics"
	"github.com/akolanti/PaperRAG/internal/rag/embedding"
	"github.com/akolanti/PaperRAG/internal/rag/ingest"
	"github.com/akolanti/PaperRAG/internal/rag/llm"
	"github.com/akolanti/PaperRAG/internal/rag/rerank"
	"github.com/akolanti/PaperRAG/internal/rag/responseCache"
	"github.com/akolanti/PaperRAG/internal/rag/retrieval"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

/*
The worker only sees Service. The private struct holds the model clients and stores,
all of them handed in through NewService so tests can swap any of them.
*/

// Service runs one task to completion and returns the job in a terminal state.
type Service interface {
	Ingest(ctx context.Context, job jobModel.Job) jobModel.Job
	Ask(ctx context.Context, job jobModel.Job) jobModel.Job
	Summarize(ctx context.Context, job jobModel.Job) jobModel.Job
}

var ErrNoDocument = errors.New("no article ingested for this user yet, ingest one first")

// Capabilities are the model backed collaborators.
type Capabilities struct {
	Embedder embedding.Embedder
	Reranker rerank.Reranker
	LLM      llm.Provider
}

type Stores struct {
	Index    vectorDB.DataProcessor
	Articles commonModels.ArticleStore
	Sessions commonModels.SessionStore
	Cache    responseCache.Cache
	Locker   ingest.Locker
	Fetcher  ingest.Fetcher
}

type service struct {
	llmProvider llm.Provider
	retriever   *retrieval.Retriever
	pipeline    *ingest.Pipeline
	articles    commonModels.ArticleStore
	sessions    commonModels.SessionStore
	cache       responseCache.Cache
	logger      *logger_i.Logger

	topK     int
	topN     int
	cacheTTL time.Duration
}

func NewService(caps Capabilities, stores Stores) Service {
	fetcher := stores.Fetcher
	if fetcher == nil {
		fetcher = ingest.NewHTTPFetcher()
	}
	return &service{
		llmProvider: caps.LLM,
		retriever:   retrieval.NewRetriever(caps.Embedder, stores.Index, caps.Reranker),
		pipeline: ingest.NewPipeline(ingest.PipelineConfig{
			Fetcher:  fetcher,
			Embedder: caps.Embedder,
			VectorDB: stores.Index,
			Articles: stores.Articles,
			Locker:   stores.Locker,
		}),
		articles: stores.Articles,
		sessions: stores.Sessions,
		cache:    stores.Cache,
		logger:   logger_i.NewLogger("RAG Service"),
		topK:     config.RetrievalTopK,
		topN:     config.RerankTopN,
		cacheTTL: config.ResponseCacheTTL,
	}
}

func (s *service) Ingest(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.WithContext(ctx).With("JobId", job.Id)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	job = logOutput(job, jobModel.IngestFetch, log)
	src, err := sourceFor(job.Input)
	if err != nil {
		return inputError(job, err.Error())
	}

	job = logOutput(job, jobModel.IngestProcessing, log)
	out, err := s.pipeline.Run(ctx, src)
	if err != nil {
		return s.jobError(job, err, "INGESTION_FAILURE")
	}

	if !out.Skipped {
		if err := s.cache.InvalidateDocument(ctx, out.Document.Id); err != nil {
			return s.jobError(job, err, "CACHE_INVALIDATION_FAILURE")
		}
	}

	job = logOutput(job, jobModel.SessionLookup, log)
	if err := s.sessions.SetDocumentForUser(ctx, job.UserId, out.Document.Id); err != nil {
		return s.jobError(job, err, "SESSION_BIND_FAILURE")
	}

	message := fmt.Sprintf("Article ingested: %d chunks indexed", out.NumChunks)
	if out.Skipped {
		message = "Article already ingested, bound to your session"
	}
	return returnOutput(job, &jobModel.JobResult{
		DocumentId: out.Document.Id,
		Title:      out.Document.Title,
		NumChunks:  out.NumChunks,
		Skipped:    out.Skipped,
		Message:    message,
	})
}

func (s *service) Ask(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.WithContext(ctx).With("JobId", job.Id)
	question := job.Input.Question
	if question == "" {
		return inputError(job, "question is empty")
	}

	docId, err := s.executeSessionStep(ctx, log, &job)
	if errors.Is(err, ErrNoDocument) {
		return inputError(job, err.Error())
	}
	if err != nil {
		return s.jobError(job, err, "SESSION_LOOKUP_FAILURE")
	}

	key := responseCache.QuestionKey(docId, question)
	if cached, found := s.executeCacheCheckStep(ctx, log, &job, key, responseCache.PurposeQuestion); found {
		return returnOutput(job, &cached)
	}

	chunks, err := s.executeRetrievalStep(ctx, log, &job, question, docId)
	if err != nil {
		return s.jobError(job, err, "RETRIEVAL_FAILURE")
	}

	answer, err := s.executeLLMStep(ctx, log, &job, answerPrompt(question, chunks))
	if err != nil {
		return s.jobError(job, err, "LLM_GENERATION_FAILURE")
	}

	used := make([]string, len(chunks))
	for i, c := range chunks {
		used[i] = c.Text
	}
	result := jobModel.JobResult{
		DocumentId: docId,
		Question:   question,
		Answer:     answer,
		ChunksUsed: used,
	}
	s.saveToCache(ctx, log, key, result)
	return returnOutput(job, &result)
}

func (s *service) Summarize(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.WithContext(ctx).With("JobId", job.Id)

	docId, err := s.executeSessionStep(ctx, log, &job)
	if errors.Is(err, ErrNoDocument) {
		return inputError(job, err.Error())
	}
	if err != nil {
		return s.jobError(job, err, "SESSION_LOOKUP_FAILURE")
	}

	key := responseCache.SummaryKey(docId)
	if cached, found := s.executeCacheCheckStep(ctx, log, &job, key, responseCache.PurposeSummary); found {
		return returnOutput(job, &cached)
	}

	article, err := s.articles.GetArticle(ctx, docId)
	if errors.Is(err, commonModels.ErrNotFound) {
		return inputError(job, "the article bound to this user is no longer stored, ingest it again")
	}
	if err != nil {
		return s.jobError(job, err, "ARTICLE_LOOKUP_FAILURE")
	}

	summary, err := s.executeLLMStep(ctx, log, &job, summaryPrompt(article))
	if err != nil {
		return s.jobError(job, err, "LLM_GENERATION_FAILURE")
	}

	result := jobModel.JobResult{
		DocumentId: docId,
		Title:      article.Title,
		Summary:    summary,
		Abstract:   article.Abstract,
		Conclusion: article.Conclusion,
	}
	s.saveToCache(ctx, log, key, result)
	return returnOutput(job, &result)
}

func sourceFor(in jobModel.JobInput) (ingest.Source, error) {
	if in.FilePath != "" {
		name := in.FileName
		if name == "" {
			name = in.FilePath
		}
		return ingest.Source{Kind: ingest.SourceFile, Locator: in.FilePath, FileName: name, Uploaded: true}, nil
	}
	return ingest.ParseSource(in.Source)
}

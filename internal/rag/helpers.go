package rag

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/metrics"
	"github.com/akolanti/PaperRAG/internal/rag/llm"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

func returnOutput(job jobModel.Job, result *jobModel.JobResult) jobModel.Job {
	job.Result = result
	job.Status = jobModel.JobStatusCompleted
	job.CurrentStep = jobModel.Complete
	return job
}

// inputError completes the job with a user facing problem instead of failing it.
func inputError(job jobModel.Job, message string) jobModel.Job {
	return returnOutput(job, &jobModel.JobResult{InputError: message})
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("Processing", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string) jobModel.Job {
	s.logger.Error(message, "JobId", job.Id, "step", job.CurrentStep, "error", err)
	job.Error = err.Error()
	job.Status = jobModel.JobStatusFailed
	job.CurrentStep = jobModel.Error
	return job
}

func (s *service) executeSessionStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) (string, error) {
	*job = logOutput(*job, jobModel.SessionLookup, log)
	docId, err := s.sessions.GetDocumentForUser(ctx, job.UserId)
	if errors.Is(err, commonModels.ErrNotFound) || (err == nil && docId == "") {
		return "", ErrNoDocument
	}
	return docId, err
}

// executeCacheCheckStep treats a failing cache as a miss.
func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, key string, purpose string) (jobModel.JobResult, bool) {
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	cached, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("Cache lookup failed", "error", err)
		found = false
	}
	metrics.CaptureCacheLookup(purpose, found)
	if found {
		log.Info("Cache hit", "purpose", purpose)
	}
	return cached, found
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, question string, docId string) ([]commonModels.ScoredChunk, error) {
	*job = logOutput(*job, jobModel.RerankCall, log)
	return s.retriever.Retrieve(ctx, question, docId, s.topK, s.topN)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, prompt llm.Prompt) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	raw, err := s.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return TrimResponse(raw), nil
}

func (s *service) saveToCache(ctx context.Context, log *logger_i.Logger, key string, result jobModel.JobResult) {
	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		log.Warn("Failed to save to cache", "error", err)
	}
}

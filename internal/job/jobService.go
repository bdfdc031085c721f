package job

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/metrics"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"github.com/google/uuid"
)

var ErrQueueFull = errors.New("task queue is full, try again later")

// Service is the submit and poll boundary shared by the HTTP handlers, the MCP tools and the worker pool.
type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	Sessions          commonModels.SessionStore
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	Sessions          commonModels.SessionStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		Sessions:          cfg.Sessions,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// Submit records a pending task and queues it without blocking. The caller gets the id immediately.
func (s *Service) Submit(ctx context.Context, jobType jobModel.JobType, userId string, input jobModel.JobInput) (string, error) {
	log := s.logger.WithContext(ctx)
	newJob := jobModel.Job{
		Id:          uuid.NewString(),
		TraceId:     logger_i.TraceId(ctx),
		UserId:      userId,
		JobType:     jobType,
		Input:       input,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusPending,
		CurrentStep: jobModel.Queued,
	}

	if err := s.JobStore.SaveJob(ctx, newJob); err != nil {
		return "", fmt.Errorf("saving task: %w", err)
	}

	select {
	case s.JobChannel <- newJob:
	default:
		s.JobStore.DeleteJob(ctx, newJob.Id)
		metrics.IncrementRejectedJobs()
		log.Warn("Queue full, task rejected", "type", jobType)
		return "", ErrQueueFull
	}
	metrics.IncrementJobsInQueue()
	log.Info("Created new job", "job id", newJob.Id, "type", jobType)

	// a new worker every RequestsPerNewWorkerCount tasks, and for every ingestion since those are long
	accurateCount := atomic.AddInt64(&s.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || jobType == jobModel.JobTypeIngest {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
		}
	}
	return newJob.Id, nil
}

// Poll is a pure read. An id the store does not know is reported as pending.
func (s *Service) Poll(ctx context.Context, id string) jobModel.Job {
	if j, found := s.JobStore.GetJob(ctx, id); found {
		return j
	}
	return jobModel.PendingView(id)
}

// HasDocument reports whether userId has an ingested article bound.
func (s *Service) HasDocument(ctx context.Context, userId string) (bool, error) {
	docId, err := s.Sessions.GetDocumentForUser(ctx, userId)
	if errors.Is(err, commonModels.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return docId != "", nil
}

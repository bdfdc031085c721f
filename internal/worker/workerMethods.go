package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/akolanti/PaperRAG/internal/config"
	jobmodel "github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/metrics"
)

func (p *Pool) executeJob(job jobmodel.Job) {
	start := time.Now()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, p.jobTimeout)
	defer cancel()
	log := p.logger.WithContext(ctx).With("jobId", job.Id, "type", job.JobType)
	log.Debug("Processing job")

	job.CurrentStep = jobmodel.RAGCall
	if err := p.jobService.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to update job step", "err", err)
	}

	result := p.runHandler(ctx, job)
	result.EndTime = time.Now()
	if !result.Status.IsTerminal() {
		result = failed(result, errors.New("task ended without a terminal state"))
	}

	// the task deadline may already be spent, the terminal write still has to land
	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer saveCancel()
	if err := p.jobService.JobStore.FinishJob(saveCtx, result); err != nil {
		if errors.Is(err, jobmodel.ErrTerminal) {
			log.Warn("Job already finished, result dropped")
		} else {
			log.Error("Failed to store job result", "err", err)
		}
	}

	metrics.CaptureJobMetrics(string(job.JobType), string(result.Status), time.Since(start))
	log.Info("Job finished", "status", result.Status, "duration", time.Since(start))
}

// runHandler turns a panic inside a task into a failed task.
func (p *Pool) runHandler(ctx context.Context, job jobmodel.Job) (result jobmodel.Job) {
	handler, ok := p.handlers[job.JobType]
	if !ok {
		return failed(job, fmt.Errorf("unknown job type %q", job.JobType))
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Task panicked", "jobId", job.Id, "panic", r, "stack", string(debug.Stack()))
			result = failed(job, fmt.Errorf("panic: %v", r))
		}
	}()
	return handler(ctx, job)
}

var errShuttingDown = errors.New("server shutting down")

// failQueued finishes every task left in the queue so polls do not report it pending until the TTL.
func (p *Pool) failQueued() {
	for {
		select {
		case queued := <-p.jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			queued.EndTime = time.Now()
			result := failed(queued, errShuttingDown)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := p.jobService.JobStore.FinishJob(ctx, result)
			cancel()
			if err != nil && !errors.Is(err, jobmodel.ErrTerminal) {
				p.logger.Error("Failed to store job result", "jobId", queued.Id, "err", err)
			}
			metrics.CaptureJobMetrics(string(queued.JobType), string(result.Status), 0)
		default:
			return
		}
	}
}

func failed(job jobmodel.Job, err error) jobmodel.Job {
	job.Status = jobmodel.JobStatusFailed
	job.Error = err.Error()
	job.CurrentStep = jobmodel.Error
	return job
}

// removeWorker expects the caller to have released the worker's slot in currentWorkerCount.
func (p *Pool) removeWorker(reason string) {
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", p.WorkerCount())
	p.workerWaitGroup.Done()
}

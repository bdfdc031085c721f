package store

import (
	"context"
	"sync"

	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]jobModel.Job
	logger   *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]jobModel.Job),
		logger:   logger_i.NewLogger("InMem JobStore"),
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, jobToStore jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	if current, ok := store.jobMap[jobToStore.Id]; ok && current.Status.IsTerminal() {
		return nil
	}
	store.jobMap[jobToStore.Id] = jobToStore
	store.logger.Debug("Saved job to store", "jobId", jobToStore.Id, "step", jobToStore.CurrentStep)
	return nil
}

func (store *InMemoryJobStore) FinishJob(ctx context.Context, job jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	if current, ok := store.jobMap[job.Id]; ok && current.Status.IsTerminal() {
		return jobModel.ErrTerminal
	}
	store.jobMap[job.Id] = job
	store.logger.Debug("Finished job", "jobId", job.Id, "status", job.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	result, found := store.jobMap[jobId]
	return result, found
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
}

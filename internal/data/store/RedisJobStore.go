package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/data/redisStore"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

// RedisJobStore keeps the live record under job:<id> and the terminal record under job:<id>:done.
// The terminal key is written with SETNX so the first finisher wins.
type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisJobStore(ctx context.Context, opts redisStore.Options) *RedisJobStore {
	s := redisStore.GetRedisStore(ctx, opts, config.RedisJobStore)
	if s == nil {
		return nil
	}
	return NewRedisJobStore(s)
}

func NewRedisJobStore(store *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  store,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func jobKey(id string) string {
	return "job:" + id
}

func doneKey(id string) string {
	return "job:" + id + ":done"
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	log := s.logger.WithContext(ctx).With("jobId", job.Id)
	log.Debug("saving job")
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, jobKey(job.Id), data, config.RedisJobStoreTTL)
	if err == nil {
		log.Debug("Saved job to Redis")
	}
	return err
}

func (s *RedisJobStore) FinishJob(ctx context.Context, job jobModel.Job) error {
	log := s.logger.WithContext(ctx).With("jobId", job.Id)
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	written, err := s.store.SetNX(ctx, doneKey(job.Id), data, config.RedisJobStoreTTL)
	if err != nil {
		return err
	}
	if !written {
		log.Warn("terminal state already recorded")
		return jobModel.ErrTerminal
	}
	if err := s.store.Del(ctx, jobKey(job.Id)); err != nil {
		log.Warn("could not drop live record", "error", err)
	}
	log.Debug("Finished job", "status", job.Status)
	return nil
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	if job, found := s.read(ctx, doneKey(jobId)); found {
		return job, true
	}
	return s.read(ctx, jobKey(jobId))
}

func (s *RedisJobStore) read(ctx context.Context, key string) (jobModel.Job, bool) {
	var job jobModel.Job
	val, err := s.store.Get(ctx, key)
	if s.store.IsNil(err) {
		return job, false
	} else if err != nil {
		s.logger.WithContext(ctx).Error("could not read job", "key", key, "error", err)
		return job, false
	}

	if err = json.Unmarshal([]byte(val), &job); err != nil {
		s.logger.WithContext(ctx).Error("corrupt job record", "key", key, "error", err)
		return job, false
	}
	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobID string) {
	err := s.store.Del(ctx, jobKey(jobID), doneKey(jobID))
	if err != nil {
		s.logger.Error("Error deleting job from Redis", "jobId", jobID, "error", err)
		return
	}
	s.logger.Debug("Job deleted from Redis", "jobId", jobID)
}

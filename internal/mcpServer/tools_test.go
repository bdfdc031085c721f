package mcpServer

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/PaperRAG/internal/data/store"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/job"
	"github.com/akolanti/PaperRAG/internal/rag"
	"github.com/akolanti/PaperRAG/internal/rag/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *job.Service, *store.InMemorySessionStore) {
	t.Helper()
	sessions := store.InitInMemorySessionStore()
	jobs := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store.InitInMemoryJobStore(),
		Sessions:          sessions,
	})
	return NewServer(jobs), jobs, sessions
}

func TestHandleIngest(t *testing.T) {
	s, jobs, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleIngest(ctx, nil, IngestInput{UserId: "u1", Source: "https://arxiv.org/abs/2401.00001"})
	require.NoError(t, err)
	require.NotEmpty(t, out.TaskId)
	assert.Equal(t, "/task_status/"+out.TaskId, out.StatusURL)

	queued := <-jobs.JobChannel
	assert.Equal(t, jobModel.JobTypeIngest, queued.JobType)
	assert.Equal(t, "u1", queued.UserId)

	tests := []struct {
		name  string
		input IngestInput
	}{
		{"Missing_User", IngestInput{Source: "https://arxiv.org/abs/2401.00001"}},
		{"Bad_Scheme", IngestInput{UserId: "u1", Source: "ftp://host/paper.pdf"}},
		{"Local_Path", IngestInput{UserId: "u1", Source: "/tmp/paper.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleIngest(ctx, nil, tt.input)
			assert.Error(t, err)
		})
	}
	assert.Len(t, jobs.JobChannel, 0)
	_, _, err = s.handleIngest(ctx, nil, IngestInput{UserId: "u1", Source: "/tmp/paper.pdf"})
	assert.True(t, errors.Is(err, ingest.ErrInvalidSource))
}

func TestHandleAsk_RequiresDocument(t *testing.T) {
	s, jobs, sessions := newTestServer(t)
	ctx := context.Background()

	_, _, err := s.handleAsk(ctx, nil, AskInput{UserId: "u1", Question: "what?"})
	assert.True(t, errors.Is(err, rag.ErrNoDocument))

	_, _, err = s.handleAsk(ctx, nil, AskInput{UserId: "u1", Question: "  "})
	assert.Error(t, err)

	require.NoError(t, sessions.SetDocumentForUser(ctx, "u1", "2401.00001"))
	_, out, err := s.handleAsk(ctx, nil, AskInput{UserId: "u1", Question: "what?"})
	require.NoError(t, err)

	queued := <-jobs.JobChannel
	assert.Equal(t, out.TaskId, queued.Id)
	assert.Equal(t, "what?", queued.Input.Question)
}

func TestHandleSummarize(t *testing.T) {
	s, jobs, sessions := newTestServer(t)
	ctx := context.Background()

	_, _, err := s.handleSummarize(ctx, nil, SummarizeInput{UserId: "u1"})
	assert.True(t, errors.Is(err, rag.ErrNoDocument))

	require.NoError(t, sessions.SetDocumentForUser(ctx, "u1", "doc"))
	_, _, err = s.handleSummarize(ctx, nil, SummarizeInput{UserId: "u1"})
	require.NoError(t, err)
	assert.Equal(t, jobModel.JobTypeSummarize, (<-jobs.JobChannel).JobType)
}

func TestHandleStatus(t *testing.T) {
	s, jobs, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleStatus(ctx, nil, StatusInput{TaskId: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, "unknown", out.TaskId)
	assert.Equal(t, string(jobModel.JobStatusPending), out.Status)

	id, err := jobs.Submit(ctx, jobModel.JobTypeSummarize, "u1", jobModel.JobInput{})
	require.NoError(t, err)
	done := jobs.Poll(ctx, id)
	done.Status = jobModel.JobStatusCompleted
	done.Result = &jobModel.JobResult{Summary: "short"}
	require.NoError(t, jobs.JobStore.FinishJob(ctx, done))

	_, out, err = s.handleStatus(ctx, nil, StatusInput{TaskId: id})
	require.NoError(t, err)
	assert.Equal(t, string(jobModel.JobStatusCompleted), out.Status)
	require.NotNil(t, out.Result)
	assert.Equal(t, "short", out.Result.Summary)

	_, _, err = s.handleStatus(ctx, nil, StatusInput{})
	assert.Error(t, err)
}

func TestHandler_NotNil(t *testing.T) {
	s, _, _ := newTestServer(t)
	assert.NotNil(t, s.Handler())
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/akolanti/PaperRAG/internal/data/store"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/job"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler  *Handler
	jobs     *job.Service
	sessions *store.InMemorySessionStore
	router   *chi.Mux
	dir      string
}

func newFixture(t *testing.T, queue int) fixture {
	t.Helper()
	sessions := store.InitInMemorySessionStore()
	jobs := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, queue),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store.InitInMemoryJobStore(),
		Sessions:          sessions,
	})
	dir := t.TempDir()
	h := NewHandler(jobs, dir)

	r := chi.NewRouter()
	r.Get("/health", h.HealthHandler)
	r.Post("/ingest", h.IngestHandler)
	r.Post("/ingest/upload", h.UploadHandler)
	r.Post("/question_answer", h.QuestionHandler)
	r.Post("/summarize", h.SummarizeHandler)
	r.Get("/task_status/{id}", h.TaskStatusHandler)
	return fixture{handler: h, jobs: jobs, sessions: sessions, router: r, dir: dir}
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t, 1)
	rec := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestIngestHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"Arxiv_Link", `{"user_id":"u1","source":"https://arxiv.org/abs/2401.00001v2"}`, http.StatusAccepted},
		{"Direct_URL", `{"user_id":"u1","source":"https://example.org/paper.pdf"}`, http.StatusAccepted},
		{"Missing_User", `{"source":"https://arxiv.org/abs/2401.00001"}`, http.StatusBadRequest},
		{"Bad_Scheme", `{"user_id":"u1","source":"ftp://example.org/paper.pdf"}`, http.StatusBadRequest},
		{"Local_Path", `{"user_id":"u1","source":"/etc/paper.pdf"}`, http.StatusBadRequest},
		{"Malformed_Json", `{"user_id":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 5)
			rec := f.do(http.MethodPost, "/ingest", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusAccepted {
				var res api.SubmitResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				assert.NotEmpty(t, res.TaskId)
				assert.Len(t, f.jobs.JobChannel, 1)
			} else {
				var res api.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				assert.NotEmpty(t, res.Error.Message)
				assert.Len(t, f.jobs.JobChannel, 0)
			}
		})
	}
}

func TestIngestHandler_QueueFull(t *testing.T) {
	f := newFixture(t, 1)
	body := `{"user_id":"u1","source":"https://arxiv.org/abs/2401.00001"}`
	assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/ingest", body).Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodPost, "/ingest", body).Code)
}

func TestQuestionHandler(t *testing.T) {
	f := newFixture(t, 5)

	rec := f.do(http.MethodPost, "/question_answer", `{"user_id":"u1","question":"what?"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no article ingested")

	rec = f.do(http.MethodPost, "/question_answer", `{"user_id":"u1","question":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, f.sessions.SetDocumentForUser(context.Background(), "u1", "2401.00001"))
	rec = f.do(http.MethodPost, "/question_answer", `{"user_id":"u1","question":"what?"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	queued := <-f.jobs.JobChannel
	assert.Equal(t, jobModel.JobTypeAsk, queued.JobType)
	assert.Equal(t, "what?", queued.Input.Question)
}

func TestSummarizeHandler(t *testing.T) {
	f := newFixture(t, 5)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/summarize", `{"user_id":"u1"}`).Code)

	require.NoError(t, f.sessions.SetDocumentForUser(context.Background(), "u1", "doc"))
	assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/summarize", `{"user_id":"u1"}`).Code)
	assert.Equal(t, jobModel.JobTypeSummarize, (<-f.jobs.JobChannel).JobType)
}

func TestTaskStatusHandler(t *testing.T) {
	f := newFixture(t, 5)

	rec := f.do(http.MethodGet, "/task_status/nope", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res api.TaskStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "nope", res.TaskId)
	assert.Equal(t, "pending", res.Status)

	id, err := f.jobs.Submit(context.Background(), jobModel.JobTypeAsk, "u1", jobModel.JobInput{Question: "q"})
	require.NoError(t, err)
	done := f.jobs.Poll(context.Background(), id)
	done.Status = jobModel.JobStatusCompleted
	done.Result = &jobModel.JobResult{Answer: "42", ChunksUsed: []string{"c1"}}
	require.NoError(t, f.jobs.JobStore.FinishJob(context.Background(), done))

	rec = f.do(http.MethodGet, "/task_status/"+id, "")
	res = api.TaskStatusResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "completed", res.Status)
	require.NotNil(t, res.Result)
	assert.Equal(t, "42", res.Result.Answer)
	assert.Equal(t, []string{"c1"}, res.Result.ChunksUsed)
}

func uploadRequest(t *testing.T, userId, fileName, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if userId != "" {
		require.NoError(t, mw.WriteField("user_id", userId))
	}
	part, err := mw.CreateFormFile("document", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/ingest/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler(t *testing.T) {
	f := newFixture(t, 5)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, uploadRequest(t, "u1", "paper.md", "# Title\n\nbody"))
	require.Equal(t, http.StatusAccepted, rec.Code)

	queued := <-f.jobs.JobChannel
	assert.Equal(t, "paper.md", queued.Input.FileName)
	assert.Equal(t, f.dir, filepath.Dir(queued.Input.FilePath))
	saved, err := os.ReadFile(queued.Input.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", string(saved))
}

func TestUploadHandler_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		userId   string
		fileName string
	}{
		{"Missing_User", "", "paper.pdf"},
		{"Unsupported_Type", "u1", "paper.exe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 5)
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, uploadRequest(t, tt.userId, tt.fileName, "x"))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			entries, err := os.ReadDir(f.dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestUploadHandler_QueueFullRemovesFile(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.jobs.Submit(context.Background(), jobModel.JobTypeSummarize, "u0", jobModel.JobInput{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, uploadRequest(t, "u1", "paper.txt", "text"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

package apiClient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_SubmitAndWait(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /question_answer", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var req api.QuestionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "u1", req.UserId)
		assert.Equal(t, "why?", req.Question)
		writeJSON(w, http.StatusAccepted, api.SubmitResponse{TaskId: "t1", StatusURL: "/task_status/t1"})
	})
	mux.HandleFunc("GET /task_status/t1", func(w http.ResponseWriter, r *http.Request) {
		status := "pending"
		if polls.Add(1) >= 3 {
			status = "completed"
		}
		writeJSON(w, http.StatusOK, api.TaskStatusResponse{TaskId: "t1", Status: status})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL+"/", "tok")
	c.PollInterval = 10 * time.Millisecond

	sub, err := c.Ask(context.Background(), "u1", "why?")
	require.NoError(t, err)
	assert.Equal(t, "t1", sub.TaskId)

	res, err := c.Wait(context.Background(), sub.TaskId)
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, int32(3), polls.Load())
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: api.ErrorBody{Code: 400, Message: "user_id is required"}})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Summarize(context.Background(), "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "user_id is required", apiErr.Message)
}

func TestClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ingest/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "u1", r.FormValue("user_id"))
		file, header, err := r.FormFile("document")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "paper.md", header.Filename)
		writeJSON(w, http.StatusAccepted, api.SubmitResponse{TaskId: "t2"})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "paper.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title"), 0600))

	sub, err := New(srv.URL, "").Upload(context.Background(), "u1", path)
	require.NoError(t, err)
	assert.Equal(t, "t2", sub.TaskId)

	_, err = New(srv.URL, "").Upload(context.Background(), "u1", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestClient_WaitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.TaskStatusResponse{TaskId: "t", Status: "pending"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	c.PollInterval = 5 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Wait(ctx, "t")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

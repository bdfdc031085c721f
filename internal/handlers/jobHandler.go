package handlers

import (
	"errors"
	"net/http"

	"github.com/akolanti/PaperRAG/internal/adapter"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/job"
	"github.com/akolanti/PaperRAG/internal/rag"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

type Handler struct {
	jobs      *job.Service
	uploadDir string
	logger    *logger_i.Logger
}

func NewHandler(jobService *job.Service, uploadDir string) *Handler {
	return &Handler{
		jobs:      jobService,
		uploadDir: uploadDir,
		logger:    logger_i.NewLogger("RequestHandler"),
	}
}

// submit queues the task and answers 202, or 503 when the queue is full.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request, jobType jobModel.JobType, userId string, input jobModel.JobInput) bool {
	id, err := h.jobs.Submit(r.Context(), jobType, userId, input)
	if errors.Is(err, job.ErrQueueFull) {
		h.WriteErrorResponse(w, http.StatusServiceUnavailable, err.Error())
		return false
	}
	if err != nil {
		h.logger.WithContext(r.Context()).Error("Could not submit task", "type", jobType, "error", err)
		h.WriteErrorResponse(w, http.StatusInternalServerError, "could not queue task")
		return false
	}
	h.writeJsonResponse(w, http.StatusAccepted, adapter.ToSubmitResponse(id))
	return true
}

// requireDocument answers 400 when the user has nothing ingested yet.
func (h *Handler) requireDocument(w http.ResponseWriter, r *http.Request, userId string) bool {
	ok, err := h.jobs.HasDocument(r.Context(), userId)
	if err != nil {
		h.logger.WithContext(r.Context()).Error("Session lookup failed", "error", err)
		h.WriteErrorResponse(w, http.StatusInternalServerError, "session lookup failed")
		return false
	}
	if !ok {
		h.WriteErrorResponse(w, http.StatusBadRequest, rag.ErrNoDocument.Error())
		return false
	}
	return true
}

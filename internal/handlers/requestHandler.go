package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/PaperRAG/internal/adapter"
	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/rag/ingest"
)

// HealthHandler godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// IngestHandler godoc
// @Summary      Ingest an article by link
// @Description  Queues ingestion of an arXiv link or a direct document URL and binds the article to the user.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestRequest     true  "User and source"
// @Success      202      {object}  api.SubmitResponse    "Task queued"
// @Failure      400      {object}  api.ErrorResponse     "Missing fields or unusable source"
// @Failure      503      {object}  api.ErrorResponse     "Queue full"
// @Router       /ingest [post]
func (h *Handler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	var req api.IngestRequest
	if err := h.decode(w, r, &req); err != nil {
		h.WriteErrorResponse(w, http.StatusBadRequest, "malformed json body")
		return
	}
	if strings.TrimSpace(req.UserId) == "" {
		h.WriteErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}
	src, err := ingest.ParseSource(req.Source)
	if err != nil {
		h.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if src.Kind == ingest.SourceFile {
		h.WriteErrorResponse(w, http.StatusBadRequest, "local paths are not accepted, upload the file to /ingest/upload")
		return
	}
	h.submit(w, r, jobModel.JobTypeIngest, req.UserId, jobModel.JobInput{Source: src.Locator})
}

// UploadHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Receives a PDF, DOCX, TXT or Markdown file via multipart/form-data and queues its ingestion.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        user_id   formData  string  true  "User id"
// @Param        document  formData  file    true  "The document"
// @Success      202  {object}  api.SubmitResponse  "Task queued"
// @Failure      400  {object}  api.ErrorResponse   "Missing fields, unsupported type or file too large"
// @Failure      500  {object}  api.ErrorResponse   "Storage error"
// @Router       /ingest/upload [post]
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		h.WriteErrorResponse(w, http.StatusBadRequest, "file too large or bad request")
		return
	}
	userId := r.FormValue("user_id")
	if strings.TrimSpace(userId) == "" {
		h.WriteErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		h.WriteErrorResponse(w, http.StatusBadRequest, "could not retrieve file")
		return
	}
	defer fileReader.Close()

	originalName := filepath.Base(fileMetadata.Filename)
	if _, err := ingest.ParseSource(originalName); err != nil {
		h.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	targetDir, err := getTargetDirectory(h.uploadDir)
	if err != nil {
		log.Error("Couldn't get target directory", "err", err)
		h.WriteErrorResponse(w, http.StatusInternalServerError, "storage error")
		return
	}
	tempFilePath := filepath.Join(targetDir, fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), utils.GetNewUUID()[:8], filepath.Ext(originalName)))
	destination, err := os.Create(tempFilePath)
	if err != nil {
		h.WriteErrorResponse(w, http.StatusInternalServerError, "storage error")
		return
	}
	_, err = io.Copy(destination, fileReader)
	if closeErr := destination.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tempFilePath)
		h.WriteErrorResponse(w, http.StatusInternalServerError, "write error")
		return
	}

	input := jobModel.JobInput{FilePath: tempFilePath, FileName: originalName}
	if !h.submit(w, r, jobModel.JobTypeIngest, userId, input) {
		_ = os.Remove(tempFilePath)
	}
}

// QuestionHandler godoc
// @Summary      Ask a question about the bound article
// @Tags         Question Answering
// @Accept       json
// @Produce      json
// @Param        request  body      api.QuestionRequest  true  "User and question"
// @Success      202      {object}  api.SubmitResponse   "Task queued"
// @Failure      400      {object}  api.ErrorResponse    "Missing fields or no article ingested"
// @Failure      503      {object}  api.ErrorResponse    "Queue full"
// @Router       /question_answer [post]
func (h *Handler) QuestionHandler(w http.ResponseWriter, r *http.Request) {
	var req api.QuestionRequest
	if err := h.decode(w, r, &req); err != nil {
		h.WriteErrorResponse(w, http.StatusBadRequest, "malformed json body")
		return
	}
	if strings.TrimSpace(req.UserId) == "" || strings.TrimSpace(req.Question) == "" {
		h.WriteErrorResponse(w, http.StatusBadRequest, "user_id and question are required")
		return
	}
	if !h.requireDocument(w, r, req.UserId) {
		return
	}
	h.submit(w, r, jobModel.JobTypeAsk, req.UserId, jobModel.JobInput{Question: req.Question})
}

// SummarizeHandler godoc
// @Summary      Summarize the bound article
// @Tags         Summarization
// @Accept       json
// @Produce      json
// @Param        request  body      api.SummarizeRequest  true  "User"
// @Success      202      {object}  api.SubmitResponse    "Task queued"
// @Failure      400      {object}  api.ErrorResponse     "Missing user or no article ingested"
// @Failure      503      {object}  api.ErrorResponse     "Queue full"
// @Router       /summarize [post]
func (h *Handler) SummarizeHandler(w http.ResponseWriter, r *http.Request) {
	var req api.SummarizeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.WriteErrorResponse(w, http.StatusBadRequest, "malformed json body")
		return
	}
	if strings.TrimSpace(req.UserId) == "" {
		h.WriteErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if !h.requireDocument(w, r, req.UserId) {
		return
	}
	h.submit(w, r, jobModel.JobTypeSummarize, req.UserId, jobModel.JobInput{})
}

// TaskStatusHandler godoc
// @Summary      Get task status
// @Description  Pure read of a task. Unknown ids are reported as pending.
// @Tags         Task Status
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  api.TaskStatusResponse
// @Router       /task_status/{id} [get]
func (h *Handler) TaskStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	if id == "" {
		h.WriteErrorResponse(w, http.StatusBadRequest, "task id is required")
		return
	}
	h.writeJsonResponse(w, http.StatusOK, adapter.ToTaskStatusResponse(h.jobs.Poll(r.Context(), id)))
}

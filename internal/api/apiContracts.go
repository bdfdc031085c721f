package api

import (
	"time"

	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
)

// requests---------------------

type IngestRequest struct {
	UserId string `json:"user_id" validate:"required" example:"42"`
	Source string `json:"source" validate:"required" example:"https://arxiv.org/abs/1706.03762"`
}

type QuestionRequest struct {
	UserId   string `json:"user_id" validate:"required" example:"42"`
	Question string `json:"question" validate:"required" example:"Which datasets were used?"`
}

type SummarizeRequest struct {
	UserId string `json:"user_id" validate:"required" example:"42"`
}

// responses---------------------

type SubmitResponse struct {
	TaskId    string `json:"task_id" example:"5b0c7a9e-3b7c-4d55-9d7c-2f1f6d7c9a10"`
	StatusURL string `json:"status_url" example:"/task_status/5b0c7a9e-3b7c-4d55-9d7c-2f1f6d7c9a10"`
}

type TaskStatusResponse struct {
	TaskId    string              `json:"task_id"`
	Type      string              `json:"type,omitempty" example:"ask"`
	Status    string              `json:"status" example:"completed"`
	Step      string              `json:"step,omitempty" example:"LLM"`
	Result    *jobModel.JobResult `json:"result,omitempty"`
	Error     string              `json:"error,omitempty"`
	CreatedAt *time.Time          `json:"created_at,omitempty"`
	EndedAt   *time.Time          `json:"ended_at,omitempty"`
}

type ErrorBody struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"user_id is required"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

package adapter

import (
	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
)

func ToSubmitResponse(id string) api.SubmitResponse {
	return api.SubmitResponse{
		TaskId:    id,
		StatusURL: "/task_status/" + id,
	}
}

func ToTaskStatusResponse(job jobModel.Job) api.TaskStatusResponse {
	res := api.TaskStatusResponse{
		TaskId: job.Id,
		Type:   string(job.JobType),
		Status: string(job.Status),
		Step:   string(job.CurrentStep),
		Result: job.Result,
		Error:  job.Error,
	}
	if !job.CreatedTime.IsZero() {
		created := job.CreatedTime
		res.CreatedAt = &created
	}
	if !job.EndTime.IsZero() {
		ended := job.EndTime
		res.EndedAt = &ended
	}
	return res
}

func BadRequest(code int, message string) api.ErrorResponse {
	return api.ErrorResponse{Error: api.ErrorBody{Code: code, Message: message}}
}

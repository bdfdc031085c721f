package mcpServer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/PaperRAG/internal/adapter"
	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/rag"
	"github.com/akolanti/PaperRAG/internal/rag/ingest"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var errMissingUser = errors.New("user_id is required")

type IngestInput struct {
	UserId string `json:"user_id" jsonschema:"id of the user the article is bound to"`
	Source string `json:"source" jsonschema:"arXiv link or direct URL of a PDF, DOCX, TXT or Markdown document"`
}

type AskInput struct {
	UserId   string `json:"user_id" jsonschema:"id of the user whose bound article is queried"`
	Question string `json:"question" jsonschema:"question about the article"`
}

type SummarizeInput struct {
	UserId string `json:"user_id" jsonschema:"id of the user whose bound article is summarized"`
}

type StatusInput struct {
	TaskId string `json:"task_id" jsonschema:"id returned by one of the submit tools"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_article",
		Description: "Queue ingestion of a scientific article and bind it to the user. Poll task_status for the result.",
	}, s.handleIngest)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_article",
		Description: "Queue a question about the user's bound article. Poll task_status for the answer.",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_article",
		Description: "Queue a summary of the user's bound article. Poll task_status for the summary.",
	}, s.handleSummarize)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "task_status",
		Description: "Read the state of a task. Unknown ids are reported as pending.",
	}, s.handleStatus)
}

func (s *Server) handleIngest(ctx context.Context, _ *mcp.CallToolRequest, input IngestInput) (*mcp.CallToolResult, api.SubmitResponse, error) {
	if strings.TrimSpace(input.UserId) == "" {
		return nil, api.SubmitResponse{}, errMissingUser
	}
	src, err := ingest.ParseSource(input.Source)
	if err != nil {
		return nil, api.SubmitResponse{}, err
	}
	if src.Kind == ingest.SourceFile {
		return nil, api.SubmitResponse{}, fmt.Errorf("%w: local paths are not accepted", ingest.ErrInvalidSource)
	}
	return s.submit(ctx, jobModel.JobTypeIngest, input.UserId, jobModel.JobInput{Source: src.Locator})
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, api.SubmitResponse, error) {
	if strings.TrimSpace(input.UserId) == "" {
		return nil, api.SubmitResponse{}, errMissingUser
	}
	if strings.TrimSpace(input.Question) == "" {
		return nil, api.SubmitResponse{}, errors.New("question is required")
	}
	if err := s.requireDocument(ctx, input.UserId); err != nil {
		return nil, api.SubmitResponse{}, err
	}
	return s.submit(ctx, jobModel.JobTypeAsk, input.UserId, jobModel.JobInput{Question: input.Question})
}

func (s *Server) handleSummarize(ctx context.Context, _ *mcp.CallToolRequest, input SummarizeInput) (*mcp.CallToolResult, api.SubmitResponse, error) {
	if strings.TrimSpace(input.UserId) == "" {
		return nil, api.SubmitResponse{}, errMissingUser
	}
	if err := s.requireDocument(ctx, input.UserId); err != nil {
		return nil, api.SubmitResponse{}, err
	}
	return s.submit(ctx, jobModel.JobTypeSummarize, input.UserId, jobModel.JobInput{})
}

func (s *Server) handleStatus(ctx context.Context, _ *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, api.TaskStatusResponse, error) {
	if strings.TrimSpace(input.TaskId) == "" {
		return nil, api.TaskStatusResponse{}, errors.New("task_id is required")
	}
	return nil, adapter.ToTaskStatusResponse(s.jobs.Poll(ctx, input.TaskId)), nil
}

func (s *Server) submit(ctx context.Context, jobType jobModel.JobType, userId string, input jobModel.JobInput) (*mcp.CallToolResult, api.SubmitResponse, error) {
	id, err := s.jobs.Submit(ctx, jobType, userId, input)
	if err != nil {
		s.logger.WithContext(ctx).Error("Could not submit task", "type", jobType, "error", err)
		return nil, api.SubmitResponse{}, err
	}
	return nil, adapter.ToSubmitResponse(id), nil
}

func (s *Server) requireDocument(ctx context.Context, userId string) error {
	ok, err := s.jobs.HasDocument(ctx, userId)
	if err != nil {
		return fmt.Errorf("session lookup: %w", err)
	}
	if !ok {
		return rag.ErrNoDocument
	}
	return nil
}

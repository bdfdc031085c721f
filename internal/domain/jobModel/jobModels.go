package jobModel

import (
	"context"
	"errors"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"

	Queued           InternalStatus = "Queued"
	SessionLookup    InternalStatus = "SessionLookup"
	CacheCall        InternalStatus = "CacheCall"
	RAGCall          InternalStatus = "RAG"
	RerankCall       InternalStatus = "Rerank"
	LLMCall          InternalStatus = "LLM"
	VectorDBCall     InternalStatus = "VectorDB"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"

	IngestFetch      InternalStatus = "IngestFetch"
	IngestNormalize  InternalStatus = "IngestNormalize"
	IngestProcessing InternalStatus = "IngestProcessing"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeIngest    JobType = "ingest"
	JobTypeAsk       JobType = "ask"
	JobTypeSummarize JobType = "summarize"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	UserId      string         `json:"user_id"`
	JobType     JobType        `json:"job_type"`
	Input       JobInput       `json:"input"`
	Result      *JobResult     `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobInput struct {
	Source   string `json:"source,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Question string `json:"question,omitempty"`
}

// JobResult is the union of every task outcome. InputError carries a user facing problem
// (no bound document, empty question) and is still a completed task.
type JobResult struct {
	DocumentId string `json:"document_id,omitempty"`
	Title      string `json:"title,omitempty"`
	NumChunks  int    `json:"num_chunks,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
	Message    string `json:"message,omitempty"`

	Question   string   `json:"question,omitempty"`
	Answer     string   `json:"answer,omitempty"`
	ChunksUsed []string `json:"chunks_used,omitempty"`

	Summary    string `json:"summary,omitempty"`
	Abstract   string `json:"abstract,omitempty"`
	Conclusion string `json:"conclusion,omitempty"`

	InputError string `json:"error,omitempty"`
}

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// PendingView is what a poll returns for an id the store has never seen.
func PendingView(id string) Job {
	return Job{Id: id, Status: JobStatusPending}
}

var ErrTerminal = errors.New("job already reached a terminal state")

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	// FinishJob records the terminal state once. Later calls return ErrTerminal.
	FinishJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

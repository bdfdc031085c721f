package apiClient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/akolanti/PaperRAG/internal/customHttpClient"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
)

const defaultTimeout = 60 * time.Second

// APIError is a non 2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL      string
	token        string
	http         *http.Client
	PollInterval time.Duration
}

func New(baseURL string, token string) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		token:        token,
		http:         customHttpClient.NewClient(defaultTimeout),
		PollInterval: time.Second,
	}
}

func (c *Client) Ingest(ctx context.Context, userId string, source string) (api.SubmitResponse, error) {
	var res api.SubmitResponse
	err := c.postJSON(ctx, "/ingest", api.IngestRequest{UserId: userId, Source: source}, &res)
	return res, err
}

// Upload sends a local file through the multipart endpoint.
func (c *Client) Upload(ctx context.Context, userId string, path string) (api.SubmitResponse, error) {
	var res api.SubmitResponse
	file, err := os.Open(path)
	if err != nil {
		return res, err
	}
	defer file.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("user_id", userId); err != nil {
		return res, err
	}
	part, err := mw.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return res, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return res, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/ingest/upload", &body)
	if err != nil {
		return res, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return res, c.do(req, &res)
}

func (c *Client) Ask(ctx context.Context, userId string, question string) (api.SubmitResponse, error) {
	var res api.SubmitResponse
	err := c.postJSON(ctx, "/question_answer", api.QuestionRequest{UserId: userId, Question: question}, &res)
	return res, err
}

func (c *Client) Summarize(ctx context.Context, userId string) (api.SubmitResponse, error) {
	var res api.SubmitResponse
	err := c.postJSON(ctx, "/summarize", api.SummarizeRequest{UserId: userId}, &res)
	return res, err
}

func (c *Client) Status(ctx context.Context, taskId string) (api.TaskStatusResponse, error) {
	var res api.TaskStatusResponse
	req, err := c.newRequest(ctx, http.MethodGet, "/task_status/"+taskId, nil)
	if err != nil {
		return res, err
	}
	return res, c.do(req, &res)
}

// Wait polls until the task is completed or failed, or ctx ends.
func (c *Client) Wait(ctx context.Context, taskId string) (api.TaskStatusResponse, error) {
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()
	for {
		res, err := c.Status(ctx, taskId)
		if err != nil {
			return res, err
		}
		if jobModel.JobStatus(res.Status).IsTerminal() {
			return res, nil
		}
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, into interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, into)
}

func (c *Client) newRequest(ctx context.Context, method string, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, into interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil || errBody.Error.Message == "" {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Error.Message}
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

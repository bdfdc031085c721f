package openAI

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/rag/llm"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger = logger_i.NewLogger("llm_openai")

var ErrEmptyResponse = errors.New("chat completion returned no content")

type llmClient struct {
	api       openai.Client
	modelName string
	maxTokens int64
}

// NewOpenAIClient works against api.openai.com or any compatible server given by baseURL.
func NewOpenAIClient(apiKey string, baseURL string, modelName string) llm.Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	logger.Info("OpenAI client created", "model", modelName, "baseURL", baseURL)
	return &llmClient{
		api:       openai.NewClient(opts...),
		modelName: modelName,
		maxTokens: int64(config.MaxOutputTokens),
	}
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               c.modelName,
		Temperature:         openai.Float(float64(config.ModelTemperature)),
		MaxCompletionTokens: openai.Int(c.maxTokens),
	})
	if err != nil {
		logger.WithContext(ctx).Error("Chat completion failed", "error", err)
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

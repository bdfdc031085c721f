package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/rag/llm"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"google.golang.org/genai"
)

var logger = logger_i.NewLogger("llm_gemini")

var ErrEmptyResponse = errors.New("gemini returned an empty response")

type llmClient struct {
	client    *genai.Client
	modelName string
	maxTokens int32
}

func NewGeminiClient(ctx context.Context, modelName string, apikey string) (llm.Provider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, maxTokens: config.MaxOutputTokens}, nil
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	log := logger.WithContext(ctx)

	contentConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(config.ModelTemperature),
		MaxOutputTokens: c.maxTokens,
	}
	if prompt.System != "" {
		contentConfig.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt.User), contentConfig)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

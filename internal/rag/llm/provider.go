package llm

import "context"

type Prompt struct {
	System string
	User   string
}

type Provider interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

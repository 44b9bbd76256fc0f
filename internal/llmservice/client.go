package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"filing-rag/internal/config"
)

// Client calls an OpenAI-compatible chat model to turn an assembled
// prompt into an answer.
type Client struct {
	cfg *config.LLMConfig
}

func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{cfg: cfg}
}

// Generate sends one prompt to the configured chat model and returns
// its completion.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	log.Debug().Str("model", c.cfg.Model).Msg("Generating answer")

	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(c.cfg.Key, "Bearer ")),
		openai.WithModel(c.cfg.Model),
	}
	if c.cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(c.cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return "", err
	}

	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	res, err := llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return res.Choices[0].Content, nil
}

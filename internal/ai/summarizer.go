package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spec-kit/voice-servicedesk/internal/config"
)

// Summarizer turns retrieved knowledge-base text into voice-friendly
// answers. It is a thin contract over an LLM chat-completion call so the
// knowledge service can be tested without the network.
type Summarizer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type openAISummarizer struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewSummarizer builds the OpenAI-backed summarizer, or a disabled one when
// no API key is configured.
func NewSummarizer(cfg config.SummarizerConfig) Summarizer {
	if cfg.APIKey == "" {
		return disabledSummarizer{}
	}
	return &openAISummarizer{
		client:    openai.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (s *openAISummarizer) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("summarizer returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type disabledSummarizer struct{}

func (disabledSummarizer) Complete(context.Context, string, string) (string, error) {
	return "", errors.New("summarizer not configured")
}

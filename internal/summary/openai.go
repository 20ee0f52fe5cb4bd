// Package summary пишет короткое вступление к дайджесту через OpenAI.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultPrompt = "\n\nWrite a two sentence intro for a business news brief built from the headlines above."

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAISummarizer struct {
	client chatClient
	// Что просим у модели. Дописывается после текста
	prompt string
	// Без ключа summarizer выключен и всегда возвращает пустую строку
	enabled bool
}

func NewOpenAISummarizer(apiKey, prompt string, log *zap.Logger) *OpenAISummarizer {
	if strings.TrimSpace(prompt) == "" {
		prompt = defaultPrompt
	}

	s := &OpenAISummarizer{
		client:  openai.NewClient(apiKey),
		prompt:  prompt,
		enabled: apiKey != "",
	}

	log.Info("openai summarizer configured", zap.Bool("enabled", s.enabled))

	return s
}

// Summarize возвращает выжимку text. Обрезает ответ до последнего законченного предложения
func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if !s.enabled || strings.TrimSpace(text) == "" {
		return "", nil
	}

	request := openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: text + s.prompt,
			},
		},
		MaxTokens:   256,
		Temperature: 0.7,
		TopP:        1,
	}

	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai completion: empty choices")
	}

	return completeSentences(resp.Choices[0].Message.Content), nil
}

// Модель упирается в MaxTokens и обрывает фразу на середине. Хвост без точки выкидываем
func completeSentences(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasSuffix(raw, ".") {
		return raw
	}

	last := strings.LastIndex(raw, ".")
	if last < 0 {
		return raw
	}

	return raw[:last+1]
}

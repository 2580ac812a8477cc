package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	"MediVoice/pkg/locale"
	"MediVoice/pkg/nlp"

	"github.com/sashabaranov/go-openai"
)

type IChatGPT interface {
	nlp.IIntentExtractor
}

type chatGPTService struct {
	client *openai.Client
	model  string
}

func NewChatGPT() (IChatGPT, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}

	return NewChatGPTWithConfig(openai.DefaultConfig(apiKey), os.Getenv("OPENAI_CHAT_MODEL")), nil
}

func NewChatGPTWithConfig(cfg openai.ClientConfig, model string) IChatGPT {
	if model == "" {
		model = openai.GPT4oMini
	}

	return &chatGPTService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *chatGPTService) Extract(ctx context.Context, utterance string, l locale.Locale) (nlp.IntentResult, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: nlp.IntentPrompt(l),
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: utterance,
		},
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: 0.2,
			MaxTokens:   200,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)

	if err != nil {
		return nlp.IntentResult{}, fmt.Errorf("ChatGPT API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nlp.IntentResult{}, fmt.Errorf("no response from ChatGPT")
	}

	return nlp.ParseIntent(resp.Choices[0].Message.Content)
}

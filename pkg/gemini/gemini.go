package gemini

import (
	"context"
	"errors"
	"os"
	"strings"

	"MediVoice/pkg/locale"
	"MediVoice/pkg/nlp"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type IGemini interface {
	nlp.IIntentExtractor
	Close()
}

type geminiClient struct {
	apiKey    string
	modelName string
	client    *genai.Client
}

func NewGeminiClient() (IGemini, error) {

	apiKey := os.Getenv("GEMINI_API_KEY")

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		apiKey:    apiKey,
		modelName: modelName,
		client:    client,
	}, nil
}

func (g *geminiClient) Extract(ctx context.Context, utterance string, l locale.Locale) (nlp.IntentResult, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(nlp.IntentPrompt(l))}}
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	res, err := model.GenerateContent(ctx, genai.Text(utterance))
	if err != nil {
		return nlp.IntentResult{}, err
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return nlp.IntentResult{}, errors.New("no response from Gemini API")
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return nlp.IntentResult{}, errors.New("unexpected response format from Gemini API")
	}

	return nlp.ParseIntent(sb.String())
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

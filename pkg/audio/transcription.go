package audio

import (
	"MediVoice/pkg/locale"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyTranscript   = errors.New("transcription returned no text")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Formats accepted by the transcription endpoint.
var supportedExtensions = map[string]bool{
	".flac": true, ".m4a": true, ".mp3": true, ".mp4": true, ".mpeg": true,
	".mpga": true, ".oga": true, ".ogg": true, ".wav": true, ".webm": true,
}

type ITranscriber interface {
	Transcribe(ctx context.Context, audio io.Reader, fileName string, l locale.Locale) (string, error)
}

type whisperTranscriber struct {
	client *openai.Client
	model  string
}

func NewWhisperTranscriber() (ITranscriber, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}

	return NewWhisperTranscriberWithConfig(openai.DefaultConfig(apiKey), os.Getenv("OPENAI_TRANSCRIPTION_MODEL")), nil
}

func NewWhisperTranscriberWithConfig(cfg openai.ClientConfig, model string) ITranscriber {
	if model == "" {
		model = openai.Whisper1
	}

	return &whisperTranscriber{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (t *whisperTranscriber) Transcribe(ctx context.Context, audio io.Reader, fileName string, l locale.Locale) (string, error) {
	if err := ValidateFileName(fileName); err != nil {
		return "", err
	}

	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: fileName,
		Reader:   audio,
		Language: l.Language(),
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcription API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

func ValidateFileName(fileName string) error {
	if !supportedExtensions[strings.ToLower(filepath.Ext(fileName))] {
		return ErrUnsupportedFormat
	}
	return nil
}

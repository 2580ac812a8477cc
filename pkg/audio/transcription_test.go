package audio

import (
	"MediVoice/pkg/locale"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranscriber(t *testing.T, reply string, seen *map[string]string) ITranscriber {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		body, _ := io.ReadAll(file)

		*seen = map[string]string{
			"model":    r.FormValue("model"),
			"language": r.FormValue("language"),
			"file":     header.Filename,
			"body":     string(body),
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewWhisperTranscriberWithConfig(cfg, "")
}

func TestTranscribe(t *testing.T) {
	var seen map[string]string
	tr := newTestTranscriber(t, `{"text":"  llévame a inicio "}`, &seen)

	text, err := tr.Transcribe(context.Background(), strings.NewReader("RIFF"), "clip.wav", locale.Locale("es-ES"))
	require.NoError(t, err)

	assert.Equal(t, "llévame a inicio", text)
	assert.Equal(t, openai.Whisper1, seen["model"])
	assert.Equal(t, "es", seen["language"])
	assert.Equal(t, "clip.wav", seen["file"])
	assert.Equal(t, "RIFF", seen["body"])
}

func TestTranscribeEmptyText(t *testing.T) {
	var seen map[string]string
	tr := newTestTranscriber(t, `{"text":"   "}`, &seen)

	_, err := tr.Transcribe(context.Background(), strings.NewReader("RIFF"), "clip.webm", locale.Default)
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestValidateFileName(t *testing.T) {
	assert.NoError(t, ValidateFileName("memo.M4A"))
	assert.NoError(t, ValidateFileName("take.ogg"))
	assert.ErrorIs(t, ValidateFileName("notes.txt"), ErrUnsupportedFormat)
	assert.ErrorIs(t, ValidateFileName("noext"), ErrUnsupportedFormat)
}

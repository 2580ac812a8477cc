package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"MediVoice/pkg/locale"

	jsoniter "github.com/json-iterator/go"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, content string, status int) (*httptest.Server, *openai.ChatCompletionRequest) {
	t.Helper()
	var got openai.ChatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.NoError(t, jsoniter.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
			return
		}
		_ = jsoniter.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func newTestClient(srv *httptest.Server) IChatGPT {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewChatGPTWithConfig(cfg, "")
}

func TestExtract(t *testing.T) {
	srv, got := newTestServer(t, `{"success":true,"voice_feedback":"Added metformin at 8.","medicine":"metformin","dosage":"","schedule":"at 8"}`, http.StatusOK)

	res, err := newTestClient(srv).Extract(context.Background(), "remind me to take metformin at 8", locale.EnglishUS)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Added metformin at 8.", res.VoiceFeedback)
	assert.Equal(t, "metformin", res.Data["medicine"])

	assert.Equal(t, openai.GPT4oMini, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "remind me to take metformin at 8", got.Messages[1].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
}

func TestExtractAPIError(t *testing.T) {
	srv, _ := newTestServer(t, "", http.StatusTooManyRequests)

	_, err := newTestClient(srv).Extract(context.Background(), "add aspirin", locale.EnglishUS)
	assert.ErrorContains(t, err, "ChatGPT API error")
}

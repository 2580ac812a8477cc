package nlp

import (
	"context"

	"MediVoice/pkg/locale"
)

// IntentResult is what an intent extractor hands back for a free-text
// request. Data is opaque to the voice engine.
type IntentResult struct {
	Success       bool                   `json:"success"`
	VoiceFeedback string                 `json:"voice_feedback"`
	Data          map[string]interface{} `json:"data,omitempty"`
}

type IIntentExtractor interface {
	Extract(ctx context.Context, utterance string, l locale.Locale) (IntentResult, error)
}

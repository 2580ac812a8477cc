package voice

import (
	"MediVoice/pkg/nlp"
	"MediVoice/pkg/speech"
	"time"
)

type MatchRequest struct {
	Text   string `json:"text" validate:"required,max=500"`
	Route  string `json:"route" validate:"omitempty,startswith=/"`
	Locale string `json:"locale" validate:"omitempty,max=16"`
}

type TranscribeRequest struct {
	Route  string `form:"route" validate:"omitempty,startswith=/"`
	Locale string `form:"locale" validate:"omitempty,max=16"`
}

type TranscribeResponse struct {
	Transcript string         `json:"transcript"`
	Match      *MatchResponse `json:"match"`
}

type MatchScore struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
}

type MatchResponse struct {
	Input       string            `json:"input"`
	Cleaned     string            `json:"cleaned"`
	Route       string            `json:"route,omitempty"`
	Global      MatchScore        `json:"global"`
	Context     *MatchScore       `json:"context,omitempty"`
	Accepted    string            `json:"accepted"`
	Target      string            `json:"target,omitempty"`
	FreeText    bool              `json:"free_text"`
	Dosage      nlp.DosageSignals `json:"dosage"`
	Suggestions []nlp.Suggestion  `json:"suggestions,omitempty"`
}

type CommandEntry struct {
	Action   string   `json:"action"`
	Target   string   `json:"target,omitempty"`
	Keywords []string `json:"keywords"`
}

type CommandsResponse struct {
	Locale  string                    `json:"locale"`
	Help    string                    `json:"help"`
	Global  []CommandEntry            `json:"global"`
	Context map[string][]CommandEntry `json:"context"`
}

type SuggestResponse struct {
	Query       string           `json:"query"`
	Suggestions []nlp.Suggestion `json:"suggestions"`
}

type CreateKeywordRequest struct {
	Action   string `json:"action" validate:"required,max=32"`
	Route    string `json:"route" validate:"omitempty,startswith=/"`
	Locale   string `json:"locale" validate:"required"`
	Keyword  string `json:"keyword" validate:"required,max=64"`
	Position int    `json:"position" validate:"gte=0"`
}

type KeywordResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Route     string    `json:"route,omitempty"`
	Locale    string    `json:"locale"`
	Keyword   string    `json:"keyword"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Device → server message types.
const (
	MessageHello            = "hello"
	MessageRoute            = "route"
	MessageContent          = "content"
	MessageLocale           = "locale"
	MessageTranscript       = "transcript"
	MessageListening        = "listening"
	MessageRecognitionError = "recognition_error"
	MessageSpeechDone       = "speech_done"
	MessageSpeechError      = "speech_error"
	MessageAnnounce         = "announce"
	MessageStopListening    = "stop_listening"
)

// Server → device message types.
const (
	MessageReady         = "ready"
	MessageSpeak         = "speak"
	MessageCancelSpeech  = "cancel_speech"
	MessageListen        = "listen"
	MessageNavigate      = "navigate"
	MessageHaptic        = "haptic"
	MessageContextAction = "context_action"
	MessageIntentResult  = "intent_result"
	MessageNotice        = "notice"
	MessageError         = "error"
)

type HelloMessage struct {
	Locale  string         `json:"locale" validate:"required,max=16"`
	Route   string         `json:"route" validate:"required,startswith=/"`
	Content string         `json:"content"`
	Voices  []speech.Voice `json:"voices"`
}

type RouteMessage struct {
	Route   string `json:"route" validate:"required,startswith=/"`
	Content string `json:"content"`
}

type ContentMessage struct {
	Content string `json:"content"`
}

type LocaleMessage struct {
	Locale string `json:"locale" validate:"required,max=16"`
}

type TranscriptMessage struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

type ListeningMessage struct {
	Listening bool `json:"listening"`
}

type RecognitionErrorMessage struct {
	Code    string `json:"code" validate:"required"`
	Message string `json:"message"`
}

type SpeechDoneMessage struct {
	ID string `json:"id" validate:"required"`
}

type SpeechErrorMessage struct {
	ID      string `json:"id" validate:"required"`
	Message string `json:"message"`
}

type AnnounceMessage struct {
	Primary   string `json:"primary" validate:"required"`
	Secondary string `json:"secondary"`
	Listen    bool   `json:"listen"`
}

type ReadyEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Locale    string `json:"locale"`
	Supported bool   `json:"supported"`
}

type SpeakCommand struct {
	Type   string  `json:"type"`
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Locale string  `json:"locale"`
	Voice  string  `json:"voice,omitempty"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

type SimpleCommand struct {
	Type string `json:"type"`
}

type ListenCommand struct {
	Type   string `json:"type"`
	On     bool   `json:"on"`
	Locale string `json:"locale,omitempty"`
}

type NavigateCommand struct {
	Type  string `json:"type"`
	Route string `json:"route,omitempty"`
	Back  bool   `json:"back,omitempty"`
}

type HapticCommand struct {
	Type    string `json:"type"`
	Pattern string `json:"pattern"`
}

type ContextActionEvent struct {
	Type      string `json:"type"`
	Route     string `json:"route"`
	Action    string `json:"action"`
	Utterance string `json:"utterance"`
}

type IntentResultEvent struct {
	Type     string                 `json:"type"`
	Success  bool                   `json:"success"`
	Feedback string                 `json:"feedback"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

type NoticeEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

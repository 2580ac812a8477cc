package voice

import "MediVoice/pkg/response"

var (
	ErrKeywordNotFound    = response.NewError(404, "command keyword not found")
	ErrInvalidKeyword     = response.NewError(400, "command keyword is too short")
	ErrKeywordExists      = response.NewError(409, "command keyword already exists")
	ErrUnknownAction      = response.NewError(400, "unknown global command action")
	ErrUnsupportedLocale  = response.NewError(400, "unsupported locale")
	ErrSessionNotFound    = response.NewError(404, "voice session not found")
	ErrInvalidMessage     = response.NewError(400, "invalid device message")
	ErrUnknownMessageType = response.NewError(400, "unknown device message type")
	ErrHelloRequired      = response.NewError(400, "hello message required before other messages")
	ErrCatalogUnavailable = response.NewError(503, "command catalog unavailable")
	ErrUnauthorizedAccess = response.NewError(403, "unauthorized access to voice features")
	ErrWebsocketRequired  = response.NewError(426, "websocket upgrade required")
	ErrRateLimitExceeded  = response.NewError(429, "rate limit exceeded")

	ErrTranscriberUnavailable = response.NewError(503, "audio transcription unavailable")
	ErrUnsupportedAudio       = response.NewError(415, "unsupported audio format")
	ErrAudioTooLarge          = response.NewError(413, "audio file too large")
	ErrNoSpeechDetected       = response.NewError(422, "no speech detected in audio")
)

package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"MediVoice/pkg/locale"
)

var (
	ErrRecognitionUnsupported = errors.New("speech recognition is not supported on this device")
	ErrSpeechCancelled        = errors.New("speech cancelled")
	ErrNoSynthesizer          = errors.New("no speech synthesizer available")
	ErrNoRecognizer           = errors.New("no speech recognizer available")
)

// Recognizer is a continuous recognition session keyed by locale. Results
// and errors arrive asynchronously through the Adapter's Handle methods.
type Recognizer interface {
	Start(l locale.Locale) error
	Stop() error
}

// Synthesizer plays one utterance and blocks until it finished, failed or
// ctx was cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
	Cancel() error
	Voices() []Voice
}

type Voice struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Locale  string `json:"locale"`
	Default bool   `json:"default,omitempty"`
}

type Utterance struct {
	ID     string        `json:"id"`
	Text   string        `json:"text"`
	Locale locale.Locale `json:"locale"`
	Voice  string        `json:"voice,omitempty"`
	Rate   float64       `json:"rate"`
	Pitch  float64       `json:"pitch"`
	Volume float64       `json:"volume"`
}

type Options struct {
	Rate   float64
	Pitch  float64
	Volume float64
}

// DefaultOptions speaks slightly slower than normal.
func DefaultOptions() Options {
	return Options{Rate: 0.9, Pitch: 1, Volume: 1}
}

// RecognitionError is reported by a recognizer. Codes follow the browser
// speech API ("no-speech", "network", "not-allowed", ...).
type RecognitionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RecognitionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("recognition error: %s", e.Code)
	}
	return fmt.Sprintf("recognition error: %s: %s", e.Code, e.Message)
}

// Permanent reports whether the recognizer can never work on this device.
func (e *RecognitionError) Permanent() bool {
	switch strings.ToLower(e.Code) {
	case "unsupported", "not-allowed", "service-not-allowed":
		return true
	}
	return false
}

func (e *RecognitionError) Is(target error) bool {
	return target == ErrRecognitionUnsupported && e.Permanent()
}

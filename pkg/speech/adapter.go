package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"MediVoice/pkg/locale"
	"MediVoice/pkg/utils"

	"github.com/sirupsen/logrus"
)

var unavailableNotice = locale.Table{
	locale.EnglishUS:  "Voice commands are not available on this device. You can still use the buttons.",
	locale.SpanishES:  "Los comandos de voz no estan disponibles en este dispositivo. Puedes usar los botones.",
	locale.Indonesian: "Perintah suara tidak tersedia di perangkat ini. Anda masih bisa memakai tombol.",
}

type TranscriptHandler func(text string)

type NoticeHandler func(text string)

// Adapter wraps a recognizer and a synthesizer behind the calls the voice
// engine makes. At most one utterance plays at a time.
type Adapter struct {
	rec  Recognizer
	syn  Synthesizer
	opts Options
	log  logrus.FieldLogger

	mu          sync.Mutex
	locale      locale.Locale
	transcript  string
	listening   bool
	unsupported bool
	speakSeq    uint64
	stopSpeak   context.CancelCauseFunc
	observers   []TranscriptHandler
	notice      NoticeHandler
}

func NewAdapter(rec Recognizer, syn Synthesizer, l locale.Locale, log logrus.FieldLogger) *Adapter {
	if !l.IsSupported() {
		l = locale.Default
	}
	return &Adapter{
		rec:    rec,
		syn:    syn,
		opts:   DefaultOptions(),
		log:    log,
		locale: l,
	}
}

func (a *Adapter) SetOptions(opts Options) {
	a.mu.Lock()
	a.opts = opts
	a.mu.Unlock()
}

// OnTranscript registers fn for every new finalized transcript.
func (a *Adapter) OnTranscript(fn TranscriptHandler) {
	a.mu.Lock()
	a.observers = append(a.observers, fn)
	a.mu.Unlock()
}

// OnNotice registers fn for user-facing notices such as recognition being
// unavailable.
func (a *Adapter) OnNotice(fn NoticeHandler) {
	a.mu.Lock()
	a.notice = fn
	a.mu.Unlock()
}

func (a *Adapter) Locale() locale.Locale {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.locale
}

// SetLocale switches the active locale and restarts a running recognizer.
func (a *Adapter) SetLocale(l locale.Locale) {
	if !l.IsSupported() {
		l = locale.Default
	}

	a.mu.Lock()
	changed := l != a.locale
	a.locale = l
	restart := changed && a.listening && a.rec != nil
	a.mu.Unlock()

	if !restart {
		return
	}
	if err := a.rec.Stop(); err != nil {
		a.log.WithField("error", err.Error()).Warn("[Speech] stop before locale switch failed")
	}
	if err := a.rec.Start(l); err != nil {
		a.HandleRecognitionError(err)
	}
}

func (a *Adapter) Transcript() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transcript
}

func (a *Adapter) ClearTranscript() {
	a.mu.Lock()
	a.transcript = ""
	a.mu.Unlock()
}

func (a *Adapter) IsListening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

// IsSupported is false once the recognizer reported a permanent failure.
func (a *Adapter) IsSupported() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rec != nil && !a.unsupported
}

func (a *Adapter) StartListening() error {
	a.mu.Lock()
	if a.rec == nil {
		a.mu.Unlock()
		return ErrNoRecognizer
	}
	if a.unsupported {
		a.mu.Unlock()
		return ErrRecognitionUnsupported
	}
	if a.listening {
		a.mu.Unlock()
		return nil
	}
	a.listening = true
	l := a.locale
	a.mu.Unlock()

	if err := a.rec.Start(l); err != nil {
		a.HandleRecognitionError(err)
		return fmt.Errorf("start recognizer: %w", err)
	}
	return nil
}

func (a *Adapter) StopListening() {
	a.mu.Lock()
	if a.rec == nil || !a.listening {
		a.mu.Unlock()
		return
	}
	a.listening = false
	a.mu.Unlock()

	if err := a.rec.Stop(); err != nil {
		a.log.WithField("error", err.Error()).Warn("[Speech] stop recognizer failed")
	}
}

// HandleResult feeds a recognizer result. Interim results are ignored and a
// finalized result replaces the previous transcript. Observers only run
// when the transcript actually changed.
func (a *Adapter) HandleResult(text string, final bool) {
	if !final {
		return
	}
	text = strings.TrimSpace(text)

	a.mu.Lock()
	if text == "" || text == a.transcript {
		a.mu.Unlock()
		return
	}
	a.transcript = text
	observers := append([]TranscriptHandler(nil), a.observers...)
	a.mu.Unlock()

	for _, fn := range observers {
		fn(text)
	}
}

// HandleListening records the recognizer's own view of whether it runs.
func (a *Adapter) HandleListening(on bool) {
	a.mu.Lock()
	a.listening = on && !a.unsupported
	a.mu.Unlock()
}

// HandleRecognitionError never propagates. Permanent failures are logged
// once and surfaced as a notice; anything else just resets listening.
func (a *Adapter) HandleRecognitionError(err error) {
	if err == nil {
		return
	}

	if !errors.Is(err, ErrRecognitionUnsupported) {
		a.mu.Lock()
		a.listening = false
		a.mu.Unlock()
		a.log.WithField("error", err.Error()).Debug("[Speech] transient recognition error")
		return
	}

	a.mu.Lock()
	first := !a.unsupported
	a.unsupported = true
	a.listening = false
	notice, l := a.notice, a.locale
	a.mu.Unlock()

	if !first {
		return
	}
	a.log.WithField("error", err.Error()).Warn("[Speech] speech recognition unavailable")
	if notice != nil {
		notice(locale.Localize(unavailableNotice, l))
	}
}

// Speak plays text in the current locale and returns once playback ended.
// Starting a new utterance cancels the one in flight, whose Speak then
// returns ErrSpeechCancelled.
func (a *Adapter) Speak(ctx context.Context, text string) error {
	a.mu.Lock()
	opts := a.opts
	a.mu.Unlock()
	return a.SpeakWith(ctx, text, opts)
}

func (a *Adapter) SpeakWith(ctx context.Context, text string, opts Options) error {
	if a.syn == nil {
		return ErrNoSynthesizer
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	l := a.Locale()
	u := Utterance{
		ID:     utils.NewULID(),
		Text:   text,
		Locale: l,
		Voice:  PickVoice(a.syn.Voices(), l),
		Rate:   opts.Rate,
		Pitch:  opts.Pitch,
		Volume: opts.Volume,
	}

	speakCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	a.mu.Lock()
	previous := a.stopSpeak
	a.speakSeq++
	seq := a.speakSeq
	a.stopSpeak = cancel
	a.mu.Unlock()

	if previous != nil {
		previous(ErrSpeechCancelled)
		if err := a.syn.Cancel(); err != nil {
			a.log.WithField("error", err.Error()).Warn("[Speech] cancel previous utterance failed")
		}
	}

	err := a.syn.Speak(speakCtx, u)

	a.mu.Lock()
	if a.speakSeq == seq {
		a.stopSpeak = nil
	}
	a.mu.Unlock()

	if errors.Is(context.Cause(speakCtx), ErrSpeechCancelled) {
		return ErrSpeechCancelled
	}
	if err != nil {
		return fmt.Errorf("speak %s: %w", u.ID, err)
	}
	return nil
}

// CancelSpeech silences the current utterance, if any.
func (a *Adapter) CancelSpeech() {
	a.mu.Lock()
	stop := a.stopSpeak
	a.stopSpeak = nil
	a.mu.Unlock()

	if stop != nil {
		stop(ErrSpeechCancelled)
	}
	if a.syn == nil {
		return
	}
	if err := a.syn.Cancel(); err != nil {
		a.log.WithField("error", err.Error()).Warn("[Speech] cancel failed")
	}
}

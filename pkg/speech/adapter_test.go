package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"MediVoice/pkg/locale"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	mu      sync.Mutex
	started []locale.Locale
	stops   int
	failed  error
}

func (f *fakeRecognizer) Start(l locale.Locale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, l)
	return f.failed
}

func (f *fakeRecognizer) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

type fakeSynthesizer struct {
	mu       sync.Mutex
	voices   []Voice
	spoken   []Utterance
	cancels  int
	hold     bool
	finish   chan struct{}
	speakErr error
}

func (f *fakeSynthesizer) Speak(ctx context.Context, u Utterance) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, u)
	hold, finish, err := f.hold, f.finish, f.speakErr
	f.mu.Unlock()

	if !hold {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-finish:
		return err
	}
}

func (f *fakeSynthesizer) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	return nil
}

func (f *fakeSynthesizer) Voices() []Voice {
	return f.voices
}

func (f *fakeSynthesizer) spokenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.spoken)
}

func newAdapter(t *testing.T, l locale.Locale) (*Adapter, *fakeRecognizer, *fakeSynthesizer) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	rec := &fakeRecognizer{}
	syn := &fakeSynthesizer{finish: make(chan struct{})}
	return NewAdapter(rec, syn, l, logger), rec, syn
}

func TestTranscriptReplacesAndDedupes(t *testing.T) {
	a, _, _ := newAdapter(t, locale.EnglishUS)

	var got []string
	a.OnTranscript(func(text string) { got = append(got, text) })

	a.HandleResult("go ho", false)
	a.HandleResult("go home", true)
	a.HandleResult("go home", true)
	a.HandleResult("  ", true)
	assert.Equal(t, []string{"go home"}, got)
	assert.Equal(t, "go home", a.Transcript())

	a.HandleResult("scan", true)
	assert.Equal(t, "scan", a.Transcript())

	a.ClearTranscript()
	assert.Empty(t, a.Transcript())
	a.HandleResult("scan", true)
	assert.Equal(t, []string{"go home", "scan", "scan"}, got)
}

func TestStartStopAreIdempotent(t *testing.T) {
	a, rec, _ := newAdapter(t, locale.SpanishES)

	require.NoError(t, a.StartListening())
	require.NoError(t, a.StartListening())
	assert.True(t, a.IsListening())
	assert.Equal(t, []locale.Locale{locale.SpanishES}, rec.started)

	a.StopListening()
	a.StopListening()
	assert.False(t, a.IsListening())
	assert.Equal(t, 1, rec.stops)
}

func TestUnsupportedIsPermanentAndNoticedOnce(t *testing.T) {
	a, rec, _ := newAdapter(t, locale.EnglishUS)

	var notices []string
	a.OnNotice(func(text string) { notices = append(notices, text) })

	require.NoError(t, a.StartListening())
	a.HandleRecognitionError(&RecognitionError{Code: "unsupported"})
	a.HandleRecognitionError(&RecognitionError{Code: "not-allowed", Message: "denied"})

	assert.Len(t, notices, 1)
	assert.Equal(t, locale.Localize(unavailableNotice, locale.EnglishUS), notices[0])
	assert.False(t, a.IsSupported())
	assert.False(t, a.IsListening())

	err := a.StartListening()
	assert.ErrorIs(t, err, ErrRecognitionUnsupported)
	assert.Len(t, rec.started, 1)

	a.HandleListening(true)
	assert.False(t, a.IsListening())
}

func TestTransientErrorResetsListening(t *testing.T) {
	a, rec, _ := newAdapter(t, locale.EnglishUS)

	var notices int
	a.OnNotice(func(string) { notices++ })

	require.NoError(t, a.StartListening())
	a.HandleRecognitionError(&RecognitionError{Code: "no-speech"})
	assert.False(t, a.IsListening())
	assert.True(t, a.IsSupported())
	assert.Zero(t, notices)

	require.NoError(t, a.StartListening())
	assert.Len(t, rec.started, 2)
}

func TestStartFailureIsSurfaced(t *testing.T) {
	a, rec, _ := newAdapter(t, locale.EnglishUS)
	rec.failed = &RecognitionError{Code: "unsupported"}

	err := a.StartListening()
	assert.ErrorIs(t, err, ErrRecognitionUnsupported)
	assert.False(t, a.IsListening())
	assert.False(t, a.IsSupported())
}

func TestSetLocaleRestartsRunningRecognizer(t *testing.T) {
	a, rec, _ := newAdapter(t, locale.EnglishUS)

	a.SetLocale(locale.Indonesian)
	assert.Empty(t, rec.started)
	assert.Equal(t, locale.Indonesian, a.Locale())

	// The idle change is picked up by the next start.
	require.NoError(t, a.StartListening())
	a.SetLocale(locale.SpanishES)
	a.SetLocale(locale.SpanishES)

	assert.Equal(t, []locale.Locale{locale.Indonesian, locale.SpanishES}, rec.started)
	assert.Equal(t, 1, rec.stops)
	assert.Equal(t, locale.SpanishES, a.Locale())

	a.SetLocale("fr-FR")
	assert.Equal(t, locale.Default, a.Locale())
}

func TestSpeakBuildsUtterance(t *testing.T) {
	a, _, syn := newAdapter(t, locale.SpanishES)
	syn.voices = []Voice{
		{ID: "en", Locale: "en-US", Default: true},
		{ID: "mx", Locale: "es-MX"},
	}

	require.NoError(t, a.Speak(context.Background(), "  Hola  "))
	require.NoError(t, a.Speak(context.Background(), ""))

	require.Len(t, syn.spoken, 1)
	u := syn.spoken[0]
	assert.Equal(t, "Hola", u.Text)
	assert.Equal(t, locale.SpanishES, u.Locale)
	assert.Equal(t, "mx", u.Voice)
	assert.Equal(t, 0.9, u.Rate)
	assert.Len(t, u.ID, 26)
}

func TestNewSpeakCancelsPrevious(t *testing.T) {
	a, _, syn := newAdapter(t, locale.EnglishUS)
	syn.hold = true

	first := make(chan error, 1)
	go func() { first <- a.Speak(context.Background(), "first") }()
	require.Eventually(t, func() bool { return syn.spokenCount() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- a.Speak(context.Background(), "second") }()

	select {
	case err := <-first:
		assert.ErrorIs(t, err, ErrSpeechCancelled)
	case <-time.After(time.Second):
		t.Fatal("first utterance was not cancelled")
	}

	require.Eventually(t, func() bool { return syn.spokenCount() == 2 }, time.Second, 5*time.Millisecond)
	close(syn.finish)
	assert.NoError(t, <-second)

	syn.mu.Lock()
	defer syn.mu.Unlock()
	assert.Equal(t, 1, syn.cancels)
}

func TestCancelSpeech(t *testing.T) {
	a, _, syn := newAdapter(t, locale.EnglishUS)
	syn.hold = true

	done := make(chan error, 1)
	go func() { done <- a.Speak(context.Background(), "long text") }()
	require.Eventually(t, func() bool { return syn.spokenCount() == 1 }, time.Second, 5*time.Millisecond)

	a.CancelSpeech()
	assert.ErrorIs(t, <-done, ErrSpeechCancelled)

	a.CancelSpeech()
	syn.mu.Lock()
	defer syn.mu.Unlock()
	assert.Equal(t, 2, syn.cancels)
}

func TestSpeakErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	assert.ErrorIs(t, NewAdapter(nil, nil, locale.EnglishUS, logger).Speak(context.Background(), "hi"), ErrNoSynthesizer)
	assert.ErrorIs(t, NewAdapter(nil, nil, locale.EnglishUS, logger).StartListening(), ErrNoRecognizer)

	a, _, syn := newAdapter(t, locale.EnglishUS)
	boom := errors.New("audio device lost")
	syn.speakErr = boom
	assert.ErrorIs(t, a.Speak(context.Background(), "hi"), boom)
}

func TestPickVoice(t *testing.T) {
	voices := []Voice{
		{ID: "en-gb", Locale: "en-GB"},
		{ID: "en-us", Locale: "en_US"},
		{ID: "es-mx", Locale: "es-MX"},
		{ID: "fallback", Locale: "fr-FR", Default: true},
	}

	assert.Equal(t, "en-us", PickVoice(voices, locale.EnglishUS))
	assert.Equal(t, "es-mx", PickVoice(voices, locale.SpanishES))
	assert.Equal(t, "fallback", PickVoice(voices, locale.Indonesian))
	assert.Equal(t, "", PickVoice(nil, locale.EnglishUS))
}

func TestRecognitionError(t *testing.T) {
	assert.True(t, (&RecognitionError{Code: "Unsupported"}).Permanent())
	assert.False(t, (&RecognitionError{Code: "network"}).Permanent())
	assert.EqualError(t, &RecognitionError{Code: "no-speech"}, "recognition error: no-speech")
	assert.EqualError(t, &RecognitionError{Code: "network", Message: "offline"}, "recognition error: network: offline")
}

package command

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"MediVoice/pkg/locale"
	"MediVoice/pkg/nlp"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSpeaker struct {
	mu        sync.Mutex
	announced []string
	listened  []string
	cancels   int
}

func (f *fakeSpeaker) Announce(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announced = append(f.announced, text)
}

func (f *fakeSpeaker) AnnounceAndListen(_ context.Context, primary, _ string, _ bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listened = append(f.listened, primary)
}

func (f *fakeSpeaker) CancelSpeech() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeSpeaker) snapshot() (announced, listened []string, cancels int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.announced...), append([]string(nil), f.listened...), f.cancels
}

type fakeNavigator struct {
	mu     sync.Mutex
	routes []string
	backs  int
}

func (f *fakeNavigator) Navigate(route string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, route)
	return nil
}

func (f *fakeNavigator) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backs++
	return nil
}

func (f *fakeNavigator) snapshot() ([]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.routes...), f.backs
}

type fakeHaptics struct {
	mu       sync.Mutex
	patterns []HapticPattern
}

func (f *fakeHaptics) Vibrate(p HapticPattern) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, p)
}

func (f *fakeHaptics) snapshot() []HapticPattern {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]HapticPattern(nil), f.patterns...)
}

type fakeTranscript struct {
	clears atomic.Int32
}

func (f *fakeTranscript) ClearTranscript() { f.clears.Add(1) }

type fakeIntents struct {
	release chan struct{}
	calls   atomic.Int32
	result  nlp.IntentResult
	err     error
}

func (f *fakeIntents) Extract(ctx context.Context, _ string, _ locale.Locale) (nlp.IntentResult, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nlp.IntentResult{}, ctx.Err()
		}
	}
	return f.result, f.err
}

type harness struct {
	d          *Dispatcher
	clock      *clock.Mock
	speaker    *fakeSpeaker
	nav        *fakeNavigator
	haptics    *fakeHaptics
	transcript *fakeTranscript
}

func newHarness(t *testing.T, route string, opts ...Option) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	h := &harness{
		clock:      clock.NewMock(),
		speaker:    &fakeSpeaker{},
		nav:        &fakeNavigator{},
		haptics:    &fakeHaptics{},
		transcript: &fakeTranscript{},
	}
	opts = append([]Option{
		WithClock(h.clock),
		WithHaptics(h.haptics),
		WithTranscript(h.transcript),
	}, opts...)
	h.d = NewDispatcher(DefaultConfig(), h.speaker, h.nav, logger, opts...)
	h.d.SetPage(route, "")
	t.Cleanup(h.d.Close)
	return h
}

func (h *harness) routes() []string {
	routes, _ := h.nav.snapshot()
	return routes
}

func TestDispatchGoHomeNavigatesAfterDelay(t *testing.T) {
	h := newHarness(t, RouteDashboard)

	out := h.d.Dispatch(context.Background(), "go home please")
	assert.Equal(t, StageGlobal, out.Stage)
	assert.Equal(t, ActionHome, out.Result.Action)
	assert.Equal(t, 1.0, out.Result.Confidence)

	announced, _, _ := h.speaker.snapshot()
	assert.Equal(t, []string{"Taking you home"}, announced)
	assert.Equal(t, []HapticPattern{HapticAck}, h.haptics.snapshot())
	assert.EqualValues(t, 1, h.transcript.clears.Load())
	assert.Equal(t, 1, h.d.Pending())

	h.clock.Add(DefaultConfig().NavigateDelay - time.Millisecond)
	assert.Empty(t, h.routes())

	h.clock.Add(time.Millisecond)
	assert.Eventually(t, func() bool {
		routes := h.routes()
		return len(routes) == 1 && routes[0] == RouteDashboard
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return h.d.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestDispatchTypoResolvesFuzzily(t *testing.T) {
	h := newHarness(t, RouteMedicines)

	out := h.d.Dispatch(context.Background(), "scaan")
	require.Equal(t, StageGlobal, out.Stage)
	assert.Equal(t, ActionScan, out.Result.Action)
	assert.Greater(t, out.Result.Confidence, 0.5)
	assert.Less(t, out.Result.Confidence, 1.0)

	h.clock.Add(DefaultConfig().NavigateDelay)
	assert.Eventually(t, func() bool {
		routes := h.routes()
		return len(routes) == 1 && routes[0] == RouteScan
	}, time.Second, 5*time.Millisecond)
}

func TestDispatchUnknownHasNoEffect(t *testing.T) {
	h := newHarness(t, RouteDashboard)

	out := h.d.Dispatch(context.Background(), "xyzzy")
	assert.Equal(t, StageIgnored, out.Stage)
	assert.True(t, out.Result.IsUnknown())
	assert.Equal(t, 0.0, out.Result.Confidence)

	h.clock.Add(time.Minute)
	announced, listened, cancels := h.speaker.snapshot()
	assert.Empty(t, announced)
	assert.Empty(t, listened)
	assert.Zero(t, cancels)
	assert.Empty(t, h.routes())
	assert.Empty(t, h.haptics.snapshot())
	assert.Zero(t, h.transcript.clears.Load())
}

func TestDispatchBlankUtterance(t *testing.T) {
	h := newHarness(t, RouteDashboard)

	for _, text := range []string{"", "   ", "\t\n"} {
		out := h.d.Dispatch(context.Background(), text)
		assert.Equal(t, StageIgnored, out.Stage, "%q", text)
		assert.Equal(t, nlp.NoMatch, out.Result, "%q", text)
	}
}

func TestDispatchContextWinsOverGlobal(t *testing.T) {
	h := newHarness(t, RouteScan)

	var got []ContextAction
	unsubscribe := h.d.Bus().Subscribe(RouteScan, func(a ContextAction) { got = append(got, a) })
	defer unsubscribe()

	// "ambil foto" is also an exact global SCAN keyword.
	out := h.d.Dispatch(context.Background(), "ambil foto")
	assert.Equal(t, StageContext, out.Stage)
	assert.Equal(t, ActionCapture, out.Result.Action)

	require.Len(t, got, 1)
	assert.Equal(t, ContextAction{Route: RouteScan, Action: ActionCapture, Utterance: "ambil foto"}, got[0])

	announced, _, _ := h.speaker.snapshot()
	assert.Equal(t, []string{"Okay"}, announced)
	assert.Equal(t, []HapticPattern{HapticAck}, h.haptics.snapshot())
	assert.EqualValues(t, 1, h.transcript.clears.Load())
	assert.Zero(t, h.d.Pending())
}

func TestDispatchContextOnVerifyRoute(t *testing.T) {
	h := newHarness(t, RouteVerify)

	out := h.d.Dispatch(context.Background(), "check")
	assert.Equal(t, StageContext, out.Stage)
	assert.Equal(t, ActionCheck, out.Result.Action)

	h.clock.Add(time.Minute)
	assert.Empty(t, h.routes())
}

func TestDispatchContextPrecedesFreeText(t *testing.T) {
	h := newHarness(t, RouteReminders)

	out := h.d.Dispatch(context.Background(), "remind me later")
	assert.Equal(t, StageContext, out.Stage)
	assert.Equal(t, ActionSnooze, out.Result.Action)
}

func TestDispatchIgnoresExcludedRoutes(t *testing.T) {
	for _, route := range []string{RouteLanguage, RouteSignup} {
		h := newHarness(t, route)

		out := h.d.Dispatch(context.Background(), "go home")
		assert.Equal(t, StageExcluded, out.Stage, route)

		h.clock.Add(time.Minute)
		announced, _, _ := h.speaker.snapshot()
		assert.Empty(t, announced, route)
		assert.Empty(t, h.routes(), route)
	}
}

func TestDispatchStopCancelsSpeechImmediately(t *testing.T) {
	h := newHarness(t, RouteMedicines)
	h.d.SetContent("Aspirin, 100 milligrams, every morning")

	out := h.d.Dispatch(context.Background(), "stop talking")
	assert.Equal(t, ActionStop, out.Result.Action)

	announced, listened, cancels := h.speaker.snapshot()
	assert.Equal(t, 1, cancels)
	assert.Empty(t, announced)
	assert.Empty(t, listened)
	assert.Empty(t, h.haptics.snapshot())
	assert.Zero(t, h.d.Pending())
}

func TestDispatchStopBeatsEveryRouteVocabulary(t *testing.T) {
	stop := DefaultTable()[0]
	require.Equal(t, ActionStop, stop.Action)

	for route := range DefaultContextTable() {
		for _, keywords := range stop.Keywords {
			for _, keyword := range keywords {
				h := newHarness(t, route)
				var published int
				unsubscribe := h.d.Bus().Subscribe(route, func(ContextAction) { published++ })

				out := h.d.Dispatch(context.Background(), keyword)
				unsubscribe()

				assert.Equal(t, StageGlobal, out.Stage, "%s on %s", keyword, route)
				assert.Equal(t, ActionStop, out.Result.Action, "%s on %s", keyword, route)
				_, _, cancels := h.speaker.snapshot()
				assert.Equal(t, 1, cancels, "%s on %s", keyword, route)
				assert.Zero(t, published, "%s on %s", keyword, route)
			}
		}
	}
}

func TestDispatchExactGlobalBeatsFuzzyContext(t *testing.T) {
	tests := []struct {
		route     string
		utterance string
		action    nlp.Action
		target    string
	}{
		{route: RouteReminders, utterance: "take a photo", action: ActionScan, target: RouteScan},
		{route: RouteAlarm, utterance: "obat saya", action: ActionMedicines, target: RouteMedicines},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			h := newHarness(t, tt.route)

			out := h.d.Dispatch(context.Background(), tt.utterance)
			require.Equal(t, StageGlobal, out.Stage)
			assert.Equal(t, tt.action, out.Result.Action)
			assert.Equal(t, 1.0, out.Result.Confidence)

			h.clock.Add(DefaultConfig().NavigateDelay)
			assert.Eventually(t, func() bool {
				routes := h.routes()
				return len(routes) == 1 && routes[0] == tt.target
			}, time.Second, 5*time.Millisecond)
		})
	}
}

func TestDispatchHelpOnAlarmRoute(t *testing.T) {
	h := newHarness(t, RouteAlarm)

	out := h.d.Dispatch(context.Background(), "what can i say")
	require.Equal(t, StageGlobal, out.Stage)
	assert.Equal(t, ActionHelp, out.Result.Action)

	assert.Eventually(t, func() bool {
		_, listened, _ := h.speaker.snapshot()
		return len(listened) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestContextPrecedes(t *testing.T) {
	exactCtx := nlp.MatchResult{Action: ActionCapture, Confidence: 1.0}
	fuzzyCtx := nlp.MatchResult{Action: ActionTaken, Confidence: 0.8}
	exactGlobal := nlp.MatchResult{Action: ActionScan, Confidence: 1.0}
	fuzzyGlobal := nlp.MatchResult{Action: ActionScan, Confidence: 0.9}

	assert.True(t, ContextPrecedes(exactCtx, exactGlobal, 0.5))
	assert.True(t, ContextPrecedes(fuzzyCtx, fuzzyGlobal, 0.5))
	assert.True(t, ContextPrecedes(fuzzyCtx, nlp.NoMatch, 0.5))
	assert.False(t, ContextPrecedes(fuzzyCtx, exactGlobal, 0.5))
	assert.False(t, ContextPrecedes(nlp.NoMatch, nlp.NoMatch, 0.5))
	assert.False(t, ContextPrecedes(nlp.MatchResult{Action: ActionCapture, Confidence: 0.5}, nlp.NoMatch, 0.5))

	assert.True(t, Interrupts(nlp.MatchResult{Action: ActionStop, Confidence: 1.0}))
	assert.False(t, Interrupts(nlp.MatchResult{Action: ActionStop, Confidence: 0.8}))
	assert.False(t, Interrupts(exactGlobal))
}

func TestDispatchRepeat(t *testing.T) {
	h := newHarness(t, RouteMedicines)
	h.d.SetContent("Aspirin, 100 milligrams, every morning")

	h.d.Dispatch(context.Background(), "repeat")
	assert.Eventually(t, func() bool {
		_, listened, _ := h.speaker.snapshot()
		return len(listened) == 1 && listened[0] == "Aspirin, 100 milligrams, every morning"
	}, time.Second, 5*time.Millisecond)
}

func TestDispatchRepeatWithoutContent(t *testing.T) {
	h := newHarness(t, RouteDashboard)
	h.d.SetLocale(locale.SpanishES)

	h.d.Dispatch(context.Background(), "repite por favor")
	assert.Eventually(t, func() bool {
		_, listened, _ := h.speaker.snapshot()
		return len(listened) == 1 && listened[0] == "No hay nada que repetir en esta pagina"
	}, time.Second, 5*time.Millisecond)
}

func TestDispatchHelp(t *testing.T) {
	h := newHarness(t, RouteDashboard)

	out := h.d.Dispatch(context.Background(), "what can i say")
	assert.Equal(t, ActionHelp, out.Result.Action)
	assert.Eventually(t, func() bool {
		_, listened, _ := h.speaker.snapshot()
		return len(listened) == 1 && listened[0] == HelpMessage(locale.EnglishUS)
	}, time.Second, 5*time.Millisecond)
}

func TestDispatchVerifyMedicineRouteGuard(t *testing.T) {
	h := newHarness(t, RouteVerify)

	// Context vocabulary on this route does not contain the phrase, so the
	// global command resolves and hits the guard.
	out := h.d.Dispatch(context.Background(), "which pill")
	require.Equal(t, StageGlobal, out.Stage)
	assert.Equal(t, ActionVerifyMedicine, out.Result.Action)
	assert.Zero(t, h.d.Pending())
	assert.Eventually(t, func() bool {
		_, listened, _ := h.speaker.snapshot()
		return len(listened) == 1 && listened[0] == locale.Localize(alreadyVerifying, locale.EnglishUS)
	}, time.Second, 5*time.Millisecond)

	h2 := newHarness(t, RouteDashboard)
	h2.d.Dispatch(context.Background(), "which pill")
	h2.clock.Add(DefaultConfig().NavigateDelay)
	assert.Eventually(t, func() bool {
		routes := h2.routes()
		return len(routes) == 1 && routes[0] == RouteVerify
	}, time.Second, 5*time.Millisecond)
}

func TestDispatchBack(t *testing.T) {
	h := newHarness(t, RouteMedicines)

	h.d.Dispatch(context.Background(), "go back")
	h.clock.Add(DefaultConfig().NavigateDelay)
	assert.Eventually(t, func() bool {
		_, backs := h.nav.snapshot()
		return backs == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRouteChangeCancelsDeferredNavigation(t *testing.T) {
	h := newHarness(t, RouteMedicines)

	h.d.Dispatch(context.Background(), "go home")
	require.Equal(t, 1, h.d.Pending())

	h.d.SetPage(RouteScan, "")
	assert.Zero(t, h.d.Pending())

	h.clock.Add(time.Minute)
	assert.Never(t, func() bool { return len(h.routes()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestSameRouteKeepsDeferredNavigation(t *testing.T) {
	h := newHarness(t, RouteMedicines)

	h.d.Dispatch(context.Background(), "show my reminders")
	h.d.SetPage(RouteMedicines, "updated list")
	assert.Equal(t, 1, h.d.Pending())
}

func TestDispatchLocalizedConfirmation(t *testing.T) {
	h := newHarness(t, RouteMedicines)
	h.d.SetLocale(locale.SpanishES)

	out := h.d.Dispatch(context.Background(), "ir a inicio")
	assert.Equal(t, ActionHome, out.Result.Action)

	announced, _, _ := h.speaker.snapshot()
	assert.Equal(t, []string{"Te llevo al inicio"}, announced)
}

func TestFreeTextSingleFlight(t *testing.T) {
	intents := &fakeIntents{
		release: make(chan struct{}),
		result:  nlp.IntentResult{Success: true, VoiceFeedback: "Added aspirin, every morning"},
	}
	h := newHarness(t, RouteMedicines, WithIntentExtractor(intents))

	out := h.d.Dispatch(context.Background(), "add aspirin 100 mg every morning")
	assert.Equal(t, StageFreeText, out.Stage)
	assert.Eventually(t, func() bool { return intents.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, h.d.Extracting())

	out = h.d.Dispatch(context.Background(), "add aspirin 100 mg every morning please")
	assert.Equal(t, StageBusy, out.Stage)

	close(intents.release)
	assert.Eventually(t, func() bool {
		announced, _, _ := h.speaker.snapshot()
		return len(announced) == 1 && announced[0] == "Added aspirin, every morning"
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return !h.d.Extracting() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []HapticPattern{HapticSuccess}, h.haptics.snapshot())
	assert.EqualValues(t, 1, intents.calls.Load())
	assert.Empty(t, h.routes())
}

func TestFreeTextFailureSpeaksAndBuzzes(t *testing.T) {
	intents := &fakeIntents{err: errors.New("upstream timeout")}
	h := newHarness(t, RouteDashboard, WithIntentExtractor(intents))

	h.d.Dispatch(context.Background(), "remind me to take metformin at 8")
	assert.Eventually(t, func() bool {
		announced, _, _ := h.speaker.snapshot()
		return len(announced) == 1 && announced[0] == locale.Localize(intentFailed, locale.EnglishUS)
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		p := h.haptics.snapshot()
		return len(p) == 1 && p[0] == HapticFailure
	}, time.Second, 5*time.Millisecond)
}

func TestFreeTextWithoutExtractor(t *testing.T) {
	h := newHarness(t, RouteDashboard)

	out := h.d.Dispatch(context.Background(), "add ibuprofen 200 mg twice a day")
	assert.Equal(t, StageFreeText, out.Stage)

	announced, _, _ := h.speaker.snapshot()
	assert.Equal(t, []string{"Sorry, I can't add medicines right now"}, announced)
}

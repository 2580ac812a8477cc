package command

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"MediVoice/pkg/locale"
	"MediVoice/pkg/nlp"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

type HapticPattern string

const (
	HapticAck     HapticPattern = "ack"
	HapticSuccess HapticPattern = "success"
	HapticFailure HapticPattern = "failure"
)

type Navigator interface {
	Navigate(route string) error
	Back() error
}

type Haptics interface {
	Vibrate(pattern HapticPattern)
}

// Speaker is the slice of the voice butler the dispatcher talks through.
type Speaker interface {
	Announce(text string)
	AnnounceAndListen(ctx context.Context, primary, secondary string, autoActivate bool)
	CancelSpeech()
}

type TranscriptClearer interface {
	ClearTranscript()
}

type Config struct {
	AcceptThreshold float64
	NavigateDelay   time.Duration
	ExcludedRoutes  []string
}

func DefaultConfig() Config {
	return Config{
		AcceptThreshold: 0.5,
		NavigateDelay:   1500 * time.Millisecond,
		ExcludedRoutes:  []string{RouteLanguage, RouteSignup},
	}
}

type Stage string

const (
	StageIgnored  Stage = "ignored"
	StageExcluded Stage = "excluded"
	StageContext  Stage = "context"
	StageFreeText Stage = "free_text"
	StageBusy     Stage = "busy"
	StageGlobal   Stage = "global"
)

// Outcome reports which stage of the pipeline consumed an utterance.
type Outcome struct {
	Stage  Stage           `json:"stage"`
	Result nlp.MatchResult `json:"result"`
}

type Option func(*Dispatcher)

func WithMatcher(m nlp.IMatcher) Option {
	return func(d *Dispatcher) { d.matcher = m }
}

func WithContextResolver(r *ContextResolver) Option {
	return func(d *Dispatcher) { d.resolver = r }
}

func WithContextBus(b *ContextBus) Option {
	return func(d *Dispatcher) { d.bus = b }
}

func WithIntentExtractor(e nlp.IIntentExtractor) Option {
	return func(d *Dispatcher) { d.intents = e }
}

func WithHaptics(h Haptics) Option {
	return func(d *Dispatcher) { d.haptics = h }
}

func WithTranscript(t TranscriptClearer) Option {
	return func(d *Dispatcher) { d.transcript = t }
}

func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

type Dispatcher struct {
	cfg        Config
	matcher    nlp.IMatcher
	resolver   *ContextResolver
	bus        *ContextBus
	dosage     *nlp.DosageExtractor
	intents    nlp.IIntentExtractor
	speaker    Speaker
	nav        Navigator
	haptics    Haptics
	transcript TranscriptClearer
	clock      clock.Clock
	log        logrus.FieldLogger
	excluded   map[string]struct{}

	mu         sync.Mutex
	route      string
	content    string
	locale     locale.Locale
	generation uint64
	timerSeq   uint64
	pending    map[uint64]*clock.Timer

	extracting atomic.Bool
}

func NewDispatcher(cfg Config, speaker Speaker, nav Navigator, log logrus.FieldLogger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		dosage:   nlp.NewDosageExtractor(),
		speaker:  speaker,
		nav:      nav,
		log:      log,
		excluded: make(map[string]struct{}, len(cfg.ExcludedRoutes)),
		locale:   locale.Default,
		pending:  make(map[uint64]*clock.Timer),
	}
	for _, route := range cfg.ExcludedRoutes {
		d.excluded[route] = struct{}{}
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.matcher == nil {
		d.matcher = nlp.NewMatcher(DefaultTable())
	}
	if d.resolver == nil {
		d.resolver = NewContextResolver(DefaultContextTable())
	}
	if d.bus == nil {
		d.bus = NewContextBus()
	}
	if d.haptics == nil {
		d.haptics = noHaptics{}
	}
	if d.clock == nil {
		d.clock = clock.New()
	}
	return d
}

// SetPage records the active route and its readable content. Moving to a
// different route drops every navigation still waiting to fire.
func (d *Dispatcher) SetPage(route, content string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if route != d.route {
		d.cancelPendingLocked()
	}
	d.route = route
	d.content = content
}

func (d *Dispatcher) SetContent(content string) {
	d.mu.Lock()
	d.content = content
	d.mu.Unlock()
}

func (d *Dispatcher) SetLocale(l locale.Locale) {
	d.mu.Lock()
	d.locale = l
	d.mu.Unlock()
}

func (d *Dispatcher) Route() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.route
}

func (d *Dispatcher) Bus() *ContextBus {
	return d.bus
}

// Pending reports how many deferred navigations are waiting.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close stops every deferred navigation. The dispatcher stays usable.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.cancelPendingLocked()
	d.mu.Unlock()
}

// Dispatch runs one utterance through context resolution, the free-text
// intent check and global resolution, performing at most one effect. An
// exact STOP is honoured ahead of every stage.
func (d *Dispatcher) Dispatch(ctx context.Context, utterance string) Outcome {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return Outcome{Stage: StageIgnored, Result: nlp.NoMatch}
	}

	d.mu.Lock()
	route, content, loc := d.route, d.content, d.locale
	d.mu.Unlock()

	if _, skip := d.excluded[route]; skip {
		return Outcome{Stage: StageExcluded, Result: nlp.NoMatch}
	}

	global := d.matcher.Match(text)
	if Interrupts(global) {
		d.speaker.CancelSpeech()
		d.clear()
		return Outcome{Stage: StageGlobal, Result: global}
	}

	if res := d.resolver.ResolveContext(text, route); ContextPrecedes(res, global, d.cfg.AcceptThreshold) {
		handled := d.bus.Publish(ContextAction{Route: route, Action: res.Action, Utterance: text})
		d.log.WithFields(logrus.Fields{
			"route":      route,
			"action":     res.Action,
			"confidence": res.Confidence,
			"handlers":   handled,
		}).Debug("[Dispatcher] context action")

		d.haptics.Vibrate(HapticAck)
		d.clear()
		d.speaker.Announce(locale.Localize(contextAck, loc))
		return Outcome{Stage: StageContext, Result: res}
	}

	if d.dosage.LooksLikeAddRequest(text) {
		if !d.submitIntent(ctx, text, loc) {
			return Outcome{Stage: StageBusy, Result: nlp.NoMatch}
		}
		return Outcome{Stage: StageFreeText, Result: nlp.NoMatch}
	}

	res := global
	if !res.Exceeds(d.cfg.AcceptThreshold) {
		return Outcome{Stage: StageIgnored, Result: res}
	}

	if res.Action == ActionStop {
		d.speaker.CancelSpeech()
		d.clear()
		return Outcome{Stage: StageGlobal, Result: res}
	}

	d.log.WithFields(logrus.Fields{
		"route":      route,
		"action":     res.Action,
		"confidence": res.Confidence,
	}).Debug("[Dispatcher] global action")

	d.haptics.Vibrate(HapticAck)
	d.clear()
	d.perform(ctx, res.Action, route, content, loc)
	return Outcome{Stage: StageGlobal, Result: res}
}

// Interrupts reports whether a global result cuts speech before any other
// stage runs. Only an exact STOP does.
func Interrupts(global nlp.MatchResult) bool {
	return global.Action == ActionStop && global.Exact()
}

// ContextPrecedes reports whether a route-scoped result is taken over the
// global one. An exact context hit always wins. A fuzzy one loses to an
// exact global hit.
func ContextPrecedes(contextual, global nlp.MatchResult, threshold float64) bool {
	if !contextual.Exceeds(threshold) {
		return false
	}
	return contextual.Exact() || !global.Exact()
}

func (d *Dispatcher) perform(ctx context.Context, action nlp.Action, route, content string, loc locale.Locale) {
	switch action {
	case ActionRepeat:
		text := content
		if strings.TrimSpace(text) == "" {
			text = locale.Localize(nothingToRepeat, loc)
		}
		go d.speaker.AnnounceAndListen(ctx, text, "", true)

	case ActionHelp:
		go d.speaker.AnnounceAndListen(ctx, HelpMessage(loc), "", true)

	case ActionBack:
		d.speaker.Announce(locale.Localize(confirmations[action], loc))
		d.deferNavigation("back", d.nav.Back)

	case ActionVerifyMedicine:
		if route == RouteVerify {
			go d.speaker.AnnounceAndListen(ctx, locale.Localize(alreadyVerifying, loc), "", true)
			return
		}
		d.navigateTo(action, RouteVerify, loc)

	default:
		target, ok := navigationTargets[string(action)]
		if !ok {
			d.log.WithField("action", action).Warn("[Dispatcher] action has no effect")
			return
		}
		d.navigateTo(action, target, loc)
	}
}

func (d *Dispatcher) navigateTo(action nlp.Action, target string, loc locale.Locale) {
	d.speaker.Announce(locale.Localize(confirmations[action], loc))
	d.deferNavigation(target, func() error { return d.nav.Navigate(target) })
}

// deferNavigation lets the spoken confirmation start before the page
// changes underneath it.
func (d *Dispatcher) deferNavigation(target string, navigate func() error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.timerSeq++
	id, gen := d.timerSeq, d.generation
	d.pending[id] = d.clock.AfterFunc(d.cfg.NavigateDelay, func() {
		d.mu.Lock()
		_, live := d.pending[id]
		delete(d.pending, id)
		stale := gen != d.generation
		d.mu.Unlock()

		if !live || stale {
			return
		}
		if err := navigate(); err != nil {
			d.log.WithFields(logrus.Fields{
				"target": target,
				"error":  err.Error(),
			}).Warn("[Dispatcher] deferred navigation failed")
		}
	})
}

func (d *Dispatcher) cancelPendingLocked() {
	for id, t := range d.pending {
		t.Stop()
		delete(d.pending, id)
	}
	d.generation++
}

// submitIntent hands a free-text request to the extractor. It returns false
// when an earlier request is still outstanding.
func (d *Dispatcher) submitIntent(ctx context.Context, text string, loc locale.Locale) bool {
	if d.intents == nil {
		d.clear()
		d.haptics.Vibrate(HapticFailure)
		d.speaker.Announce(locale.Localize(intentUnavailable, loc))
		return true
	}
	if !d.extracting.CompareAndSwap(false, true) {
		d.log.WithField("utterance", text).Debug("[Dispatcher] extraction in flight, dropping utterance")
		return false
	}
	d.clear()

	go func() {
		defer d.extracting.Store(false)

		res, err := d.intents.Extract(ctx, text, loc)
		if err != nil {
			d.log.WithFields(logrus.Fields{
				"locale": loc,
				"error":  err.Error(),
			}).Error("[Dispatcher] intent extraction failed")
			d.haptics.Vibrate(HapticFailure)
			d.speaker.Announce(locale.Localize(intentFailed, loc))
			return
		}

		feedback := strings.TrimSpace(res.VoiceFeedback)
		if res.Success {
			d.haptics.Vibrate(HapticSuccess)
		} else {
			d.haptics.Vibrate(HapticFailure)
			if feedback == "" {
				feedback = locale.Localize(intentFailed, loc)
			}
		}
		if feedback != "" {
			d.speaker.Announce(feedback)
		}
	}()
	return true
}

// Extracting reports whether a free-text request is outstanding.
func (d *Dispatcher) Extracting() bool {
	return d.extracting.Load()
}

func (d *Dispatcher) clear() {
	if d.transcript != nil {
		d.transcript.ClearTranscript()
	}
}

type noHaptics struct{}

func (noHaptics) Vibrate(HapticPattern) {}

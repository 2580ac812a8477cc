package butler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"MediVoice/pkg/locale"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// Speech is the speech I/O surface the butler drives.
type Speech interface {
	Speak(ctx context.Context, text string) error
	StartListening() error
	StopListening()
	CancelSpeech()
	Locale() locale.Locale
}

type Config struct {
	// SettleDelay separates the end of an announcement from reopening the
	// microphone so the recognizer does not pick up trailing audio.
	SettleDelay time.Duration
	IdlePrompt  time.Duration
	IdleMessage locale.Table
}

func DefaultConfig() Config {
	return Config{
		SettleDelay: 700 * time.Millisecond,
		IdlePrompt:  8 * time.Second,
		IdleMessage: locale.Table{
			locale.EnglishUS:  "I'm listening",
			locale.SpanishES:  "Te escucho",
			locale.Indonesian: "Saya mendengarkan",
		},
	}
}

// Session is a snapshot of the turn-taking state.
type Session struct {
	AutoListening bool      `json:"auto_listening"`
	LastSpeech    time.Time `json:"last_speech,omitempty"`
}

// Butler sequences announcements and reopens the microphone afterwards.
// All session state is owned here; callers only see Session snapshots.
type Butler struct {
	cfg    Config
	speech Speech
	clock  clock.Clock
	log    logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	session Session
	epoch   uint64
	settle  *clock.Timer
	idle    *clock.Timer
	closed  bool
}

func New(cfg Config, speech Speech, clk clock.Clock, log logrus.FieldLogger) *Butler {
	if clk == nil {
		clk = clock.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Butler{
		cfg:    cfg,
		speech: speech,
		clock:  clk,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AnnounceAndListen speaks primary followed by secondary and, when
// autoActivate is set, starts listening once the settle delay has passed.
// It returns after the announcement finished and the reactivation is
// scheduled.
func (b *Butler) AnnounceAndListen(ctx context.Context, primary, secondary string, autoActivate bool) {
	text := joinText(primary, secondary)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	wasListening := b.resetLocked()
	epoch := b.epoch
	b.mu.Unlock()

	if wasListening {
		b.speech.StopListening()
	}

	if text != "" {
		if err := b.speech.Speak(ctx, text); err != nil {
			b.log.WithField("error", err.Error()).Warn("[Butler] announcement failed, continuing")
		}
	}

	if !autoActivate || ctx.Err() != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || epoch != b.epoch {
		return
	}
	b.settle = b.clock.AfterFunc(b.cfg.SettleDelay, func() { b.activate(epoch) })
}

// AnnounceLocalized picks the announcement for the current locale.
func (b *Butler) AnnounceLocalized(ctx context.Context, messages locale.Table, autoActivate bool) {
	b.AnnounceAndListen(ctx, locale.Localize(messages, b.speech.Locale()), "", autoActivate)
}

// Announce speaks text in the background and leaves listening untouched.
func (b *Butler) Announce(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	go func() {
		if err := b.speech.Speak(b.ctx, text); err != nil && !errors.Is(err, context.Canceled) {
			b.log.WithField("error", err.Error()).Warn("[Butler] announce failed")
		}
	}()
}

func (b *Butler) CancelSpeech() {
	b.speech.CancelSpeech()
}

// StopAutoListening ends the listening session. It is a no-op when idle.
func (b *Butler) StopAutoListening() {
	b.mu.Lock()
	wasListening := b.resetLocked()
	b.mu.Unlock()

	if wasListening {
		b.speech.StopListening()
	}
}

func (b *Butler) Session() Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

func (b *Butler) IsAutoListening() bool {
	return b.Session().AutoListening
}

// Close stops every timer and aborts background announcements.
func (b *Butler) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	wasListening := b.resetLocked()
	b.mu.Unlock()

	b.cancel()
	if wasListening {
		b.speech.StopListening()
	}
}

func (b *Butler) activate(epoch uint64) {
	b.mu.Lock()
	if b.closed || epoch != b.epoch {
		b.mu.Unlock()
		return
	}
	b.settle = nil
	b.session = Session{AutoListening: true, LastSpeech: b.clock.Now()}
	b.armIdleLocked(epoch)
	b.mu.Unlock()

	if err := b.speech.StartListening(); err != nil {
		b.log.WithField("error", err.Error()).Warn("[Butler] could not start listening")
	}
}

func (b *Butler) armIdleLocked(epoch uint64) {
	if b.idle != nil {
		b.idle.Stop()
	}
	b.idle = b.clock.AfterFunc(b.cfg.IdlePrompt, func() { b.nudge(epoch) })
}

func (b *Butler) nudge(epoch uint64) {
	b.mu.Lock()
	live := !b.closed && epoch == b.epoch && b.session.AutoListening
	if live {
		b.idle = nil
	}
	b.mu.Unlock()
	if !live {
		return
	}

	text := locale.Localize(b.cfg.IdleMessage, b.speech.Locale())
	if err := b.speech.Speak(b.ctx, text); err != nil && !errors.Is(err, context.Canceled) {
		b.log.WithField("error", err.Error()).Warn("[Butler] idle prompt failed")
	}
}

// resetLocked starts a new epoch, drops both timers and clears the session.
// It reports whether the session was listening.
func (b *Butler) resetLocked() bool {
	b.epoch++
	if b.settle != nil {
		b.settle.Stop()
		b.settle = nil
	}
	if b.idle != nil {
		b.idle.Stop()
		b.idle = nil
	}
	was := b.session.AutoListening
	b.session = Session{}
	return was
}

func joinText(primary, secondary string) string {
	primary, secondary = strings.TrimSpace(primary), strings.TrimSpace(secondary)
	switch {
	case primary == "":
		return secondary
	case secondary == "":
		return primary
	default:
		return primary + " " + secondary
	}
}

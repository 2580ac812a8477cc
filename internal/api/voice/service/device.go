package voiceService

import (
	"MediVoice/internal/api/voice"
	"MediVoice/pkg/command"
	"MediVoice/pkg/locale"
	"MediVoice/pkg/speech"
	websocketPkg "MediVoice/pkg/websocket"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

var errSpeechTimeout = errors.New("device did not finish speaking in time")

// remoteDevice drives the speech engines, router and vibration motor of a
// connected device. Speak blocks until the device reports the utterance
// finished.
type remoteDevice struct {
	peer    websocketPkg.IPeer
	clock   clock.Clock
	log     logrus.FieldLogger
	base    time.Duration
	perRune time.Duration

	mu      sync.Mutex
	voices  []speech.Voice
	waiting map[string]chan error
	closed  bool
}

func newRemoteDevice(peer websocketPkg.IPeer, clk clock.Clock, cfg *VoiceConfig, log logrus.FieldLogger) *remoteDevice {
	return &remoteDevice{
		peer:    peer,
		clock:   clk,
		log:     log,
		base:    cfg.SpeechTimeout,
		perRune: cfg.SpeechPerRune,
		waiting: make(map[string]chan error),
	}
}

func (d *remoteDevice) setVoices(voices []speech.Voice) {
	d.mu.Lock()
	d.voices = append([]speech.Voice(nil), voices...)
	d.mu.Unlock()
}

func (d *remoteDevice) Start(l locale.Locale) error {
	return d.peer.Send(voice.ListenCommand{Type: voice.MessageListen, On: true, Locale: string(l)})
}

func (d *remoteDevice) Stop() error {
	return d.peer.Send(voice.ListenCommand{Type: voice.MessageListen, On: false})
}

func (d *remoteDevice) Voices() []speech.Voice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]speech.Voice(nil), d.voices...)
}

func (d *remoteDevice) Speak(ctx context.Context, u speech.Utterance) error {
	done := make(chan error, 1)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return websocketPkg.ErrPeerClosed
	}
	d.waiting[u.ID] = done
	d.mu.Unlock()
	defer d.forget(u.ID)

	err := d.peer.Send(voice.SpeakCommand{
		Type:   voice.MessageSpeak,
		ID:     u.ID,
		Text:   u.Text,
		Locale: string(u.Locale),
		Voice:  u.Voice,
		Rate:   u.Rate,
		Pitch:  u.Pitch,
		Volume: u.Volume,
	})
	if err != nil {
		return err
	}

	timer := d.clock.Timer(d.base + time.Duration(utf8.RuneCountInString(u.Text))*d.perRune)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		d.log.WithField("utterance_id", u.ID).Warn("[Device] speech timed out")
		return errSpeechTimeout
	}
}

func (d *remoteDevice) Cancel() error {
	return d.peer.Send(voice.SimpleCommand{Type: voice.MessageCancelSpeech})
}

func (d *remoteDevice) Navigate(route string) error {
	return d.peer.Send(voice.NavigateCommand{Type: voice.MessageNavigate, Route: route})
}

func (d *remoteDevice) Back() error {
	return d.peer.Send(voice.NavigateCommand{Type: voice.MessageNavigate, Back: true})
}

func (d *remoteDevice) Vibrate(p command.HapticPattern) {
	if err := d.peer.Send(voice.HapticCommand{Type: voice.MessageHaptic, Pattern: string(p)}); err != nil {
		d.log.WithField("error", err.Error()).Debug("[Device] haptic not delivered")
	}
}

// complete resolves the Speak call waiting on id. Unknown ids are ignored.
func (d *remoteDevice) complete(id string, err error) {
	d.mu.Lock()
	done, ok := d.waiting[id]
	delete(d.waiting, id)
	d.mu.Unlock()

	if ok {
		done <- err
	}
}

func (d *remoteDevice) forget(id string) {
	d.mu.Lock()
	delete(d.waiting, id)
	d.mu.Unlock()
}

// close fails every utterance still waiting on the device.
func (d *remoteDevice) close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	for id, done := range d.waiting {
		done <- websocketPkg.ErrPeerClosed
		delete(d.waiting, id)
	}
}

func speechFailure(message string) error {
	if message == "" {
		message = "unknown error"
	}
	return fmt.Errorf("device speech error: %s", message)
}

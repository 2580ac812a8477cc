package voiceService

import (
	"MediVoice/internal/api/voice"
	voiceRepository "MediVoice/internal/api/voice/repository"
	"MediVoice/internal/entity"
	"MediVoice/pkg/butler"
	"MediVoice/pkg/command"
	"MediVoice/pkg/locale"
	"MediVoice/pkg/nlp"
	"MediVoice/pkg/speech"
	"MediVoice/pkg/utils"
	websocketPkg "MediVoice/pkg/websocket"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// deviceSession is the engine built for one connected device.
type deviceSession struct {
	id      string
	device  entity.DeviceLoginData
	svc     *voiceService
	peer    websocketPkg.IPeer
	log     *logrus.Entry
	ctx     context.Context
	started time.Time

	remote     *remoteDevice
	adapter    *speech.Adapter
	butler     *butler.Butler
	dispatcher *command.Dispatcher

	mu          sync.Mutex
	unsubscribe func()

	utterances atomic.Int64
}

func (s *voiceService) Serve(ctx context.Context, device entity.DeviceLoginData, peer websocketPkg.IPeer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := &deviceSession{
		id:      utils.NewULID(),
		device:  device,
		svc:     s,
		peer:    peer,
		ctx:     ctx,
		started: time.Now(),
	}
	sess.log = s.log.WithFields(logrus.Fields{
		"session_id": sess.id,
		"device_id":  device.ID,
	})

	if s.config.KeepAlive > 0 {
		go peer.KeepAlive(ctx, s.config.KeepAlive)
	}

	for {
		data, err := peer.Receive()
		if err != nil {
			sess.log.WithField("error", err.Error()).Debug("Device connection closed")
			sess.close()
			return nil
		}

		if err := sess.handle(data); err != nil {
			sess.log.WithField("error", err.Error()).Warn("Rejected device message")
			sess.send(voice.ErrorEvent{Type: voice.MessageError, Message: err.Error()})
		}
	}
}

func (sess *deviceSession) handle(data []byte) error {
	kind := jsoniter.Get(data, "type").ToString()
	if kind == "" {
		return voice.ErrInvalidMessage
	}

	if sess.dispatcher == nil && kind != voice.MessageHello {
		return voice.ErrHelloRequired
	}

	switch kind {
	case voice.MessageHello:
		var msg voice.HelloMessage
		if err := sess.decode(data, &msg); err != nil {
			return err
		}
		if sess.dispatcher != nil {
			return voice.ErrInvalidMessage
		}
		sess.open(msg)

	case voice.MessageRoute:
		var msg voice.RouteMessage
		if err := sess.decode(data, &msg); err != nil {
			return err
		}
		sess.dispatcher.SetPage(msg.Route, msg.Content)
		sess.follow(msg.Route)

	case voice.MessageContent:
		var msg voice.ContentMessage
		if err := sess.decode(data, &msg); err != nil {
			return err
		}
		sess.dispatcher.SetContent(msg.Content)

	case voice.MessageLocale:
		var msg voice.LocaleMessage
		if err := sess.decode(data, &msg); err != nil {
			return err
		}
		l := locale.Parse(msg.Locale)
		sess.adapter.SetLocale(l)
		sess.dispatcher.SetLocale(l)

	case voice.MessageTranscript:
		var msg voice.TranscriptMessage
		if err := sess.decode(data, &msg); err != nil {
			return err
		}
		sess.adapter.HandleResult(msg.Text, msg.Final)

	case voice.MessageListening:
		var msg voice.ListeningMessage
		if err := sess.decode(data, &msg); err != nil {
			return err
		}
		sess.adapter.HandleListening(msg.Listening)

	case voice.MessageRecognitionError:
		var msg voice.RecognitionErrorMessage
		if err := sess.decode(data, &msg); err != nil {
			return err
		}
		sess.adapter.HandleRecognitionError(&speech.RecognitionError{Code: msg.Code, Message: msg.Message})

	case voice.MessageSpeechDone:
		var msg voice.SpeechDoneMessage
		if err := sess.decode(data, &msg); err != nil {
			return err
		}
		sess.remote.complete(msg.ID, nil)

	case voice.MessageSpeechError:
		var msg voice.SpeechErrorMessage
		if err := sess.decode(data, &msg); err != nil {
			return err
		}
		sess.remote.complete(msg.ID, speechFailure(msg.Message))

	case voice.MessageAnnounce:
		var msg voice.AnnounceMessage
		if err := sess.decode(data, &msg); err != nil {
			return err
		}
		go sess.butler.AnnounceAndListen(sess.ctx, msg.Primary, msg.Secondary, msg.Listen)

	case voice.MessageStopListening:
		sess.butler.StopAutoListening()
		sess.adapter.StopListening()

	default:
		return voice.ErrUnknownMessageType
	}

	return nil
}

func (sess *deviceSession) decode(data []byte, dest interface{}) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return voice.ErrInvalidMessage
	}
	if err := sess.svc.validator.Struct(dest); err != nil {
		return voice.ErrInvalidMessage
	}
	return nil
}

// open assembles the engine once the device introduced itself.
func (sess *deviceSession) open(msg voice.HelloMessage) {
	s := sess.svc
	l := locale.Parse(msg.Locale)
	cat := s.currentCatalog()

	sess.remote = newRemoteDevice(sess.peer, s.clock, s.config, sess.log)
	sess.remote.setVoices(msg.Voices)

	sess.adapter = speech.NewAdapter(sess.remote, sess.remote, l, sess.log)
	sess.butler = butler.New(s.config.Butler, sess.adapter, s.clock, sess.log)

	opts := []command.Option{
		command.WithMatcher(cat.matcher),
		command.WithContextResolver(cat.resolver),
		command.WithHaptics(sess.remote),
		command.WithTranscript(sess.adapter),
		command.WithClock(s.clock),
	}
	if s.intents != nil {
		opts = append(opts, command.WithIntentExtractor(&intentForwarder{inner: s.intents, session: sess}))
	}
	sess.dispatcher = command.NewDispatcher(s.config.Command, sess.butler, sess.remote, sess.log, opts...)
	sess.dispatcher.SetLocale(l)
	sess.dispatcher.SetPage(msg.Route, msg.Content)
	sess.follow(msg.Route)

	sess.adapter.OnTranscript(func(text string) {
		sess.utterances.Add(1)
		outcome := sess.dispatcher.Dispatch(sess.ctx, text)
		sess.log.WithFields(logrus.Fields{
			"stage":      outcome.Stage,
			"action":     outcome.Result.Action,
			"confidence": outcome.Result.Confidence,
		}).Debug("Dispatched utterance")
	})
	sess.adapter.OnNotice(func(text string) {
		sess.send(voice.NoticeEvent{Type: voice.MessageNotice, Text: text})
	})

	sess.persistStart(l, msg.Route)

	sess.send(voice.ReadyEvent{
		Type:      voice.MessageReady,
		SessionID: sess.id,
		Locale:    string(l),
		Supported: sess.adapter.IsSupported(),
	})

	go sess.butler.AnnounceAndListen(sess.ctx, "", "", true)
}

// follow forwards context actions of route to the device, replacing the
// forwarder of the previous route.
func (sess *deviceSession) follow(route string) {
	unsubscribe := sess.dispatcher.Bus().Subscribe(route, func(evt command.ContextAction) {
		sess.send(voice.ContextActionEvent{
			Type:      voice.MessageContextAction,
			Route:     evt.Route,
			Action:    string(evt.Action),
			Utterance: evt.Utterance,
		})
	})

	sess.mu.Lock()
	previous := sess.unsubscribe
	sess.unsubscribe = unsubscribe
	sess.mu.Unlock()

	if previous != nil {
		previous()
	}
}

func (sess *deviceSession) send(v interface{}) {
	if err := sess.peer.Send(v); err != nil && !errors.Is(err, websocketPkg.ErrPeerClosed) {
		sess.log.WithField("error", err.Error()).Warn("Failed to send device message")
	}
}

func (sess *deviceSession) close() {
	if sess.dispatcher == nil {
		return
	}

	sess.butler.Close()
	sess.dispatcher.Close()
	sess.remote.close()

	sess.mu.Lock()
	if sess.unsubscribe != nil {
		sess.unsubscribe()
		sess.unsubscribe = nil
	}
	sess.mu.Unlock()

	sess.persistEnd()
}

func (sess *deviceSession) persistStart(l locale.Locale, route string) {
	repo, ok := sess.repository()
	if !ok {
		return
	}

	err := repo.Sessions.CreateSession(sess.ctx, entity.VoiceSession{
		ID:        sess.id,
		DeviceID:  sess.device.ID,
		UserID:    sess.device.UserID,
		Locale:    string(l),
		Route:     route,
		StartedAt: sess.started,
	})
	if err != nil {
		sess.log.WithField("error", err.Error()).Warn("Failed to record voice session")
	}
}

func (sess *deviceSession) persistEnd() {
	repo, ok := sess.repository()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	endedAt := time.Now()
	err := repo.Sessions.EndSession(ctx, entity.VoiceSession{
		ID:         sess.id,
		Locale:     string(sess.adapter.Locale()),
		Route:      sess.dispatcher.Route(),
		Utterances: int(sess.utterances.Load()),
		EndedAt:    &endedAt,
	})
	if err != nil {
		sess.log.WithField("error", err.Error()).Warn("Failed to close voice session")
	}
}

func (sess *deviceSession) repository() (voiceRepository.Client, bool) {
	if sess.svc.voiceRepo == nil {
		return voiceRepository.Client{}, false
	}
	repo, err := sess.svc.voiceRepo.NewClient(false)
	if err != nil {
		sess.log.WithField("error", err.Error()).Warn("Failed to create repository client")
		return voiceRepository.Client{}, false
	}
	return repo, true
}

// intentForwarder reports every extraction result to the device before the
// dispatcher speaks its feedback.
type intentForwarder struct {
	inner   nlp.IIntentExtractor
	session *deviceSession
}

func (f *intentForwarder) Extract(ctx context.Context, utterance string, l locale.Locale) (nlp.IntentResult, error) {
	res, err := f.inner.Extract(ctx, utterance, l)
	if err != nil {
		f.session.send(voice.IntentResultEvent{Type: voice.MessageIntentResult, Success: false})
		return res, err
	}

	f.session.send(voice.IntentResultEvent{
		Type:     voice.MessageIntentResult,
		Success:  res.Success,
		Feedback: res.VoiceFeedback,
		Data:     res.Data,
	})
	return res, nil
}

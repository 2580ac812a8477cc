package main

import (
	"MediVoice/internal/api/voice"
	websocketPkg "MediVoice/pkg/websocket"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type simulator struct {
	peer websocketPkg.IPeer
	out  io.Writer

	mu    sync.Mutex
	route string
}

func newSimulator(peer websocketPkg.IPeer, out io.Writer, route string) *simulator {
	return &simulator{peer: peer, out: out, route: route}
}

func (s *simulator) currentRoute() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.route
}

func (s *simulator) hello(locale string) error {
	return s.peer.Send(struct {
		Type string `json:"type"`
		voice.HelloMessage
	}{voice.MessageHello, voice.HelloMessage{Locale: locale, Route: s.currentRoute()}})
}

// listen handles server messages until the connection drops.
func (s *simulator) listen() error {
	for {
		data, err := s.peer.Receive()
		if err != nil {
			return nil
		}
		if err := s.handle(data); err != nil {
			s.println(color.RedString("bad message: %v", err))
		}
	}
}

func (s *simulator) handle(data []byte) error {
	switch msgType := jsoniter.Get(data, "type").ToString(); msgType {
	case voice.MessageSpeak:
		var cmd voice.SpeakCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return err
		}
		s.printf("%s %s", color.GreenString("speak[%s]", cmd.Locale), cmd.Text)
		return s.peer.Send(struct {
			Type string `json:"type"`
			voice.SpeechDoneMessage
		}{voice.MessageSpeechDone, voice.SpeechDoneMessage{ID: cmd.ID}})

	case voice.MessageNavigate:
		var cmd voice.NavigateCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return err
		}
		if cmd.Back {
			s.println(color.YellowString("navigate back"))
			return nil
		}
		s.println(color.YellowString("navigate %s", cmd.Route))
		return s.changeRoute(cmd.Route)

	case voice.MessageListen:
		var cmd voice.ListenCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return err
		}
		if cmd.On {
			s.println(color.MagentaString("mic on (%s)", cmd.Locale))
		} else {
			s.println(color.MagentaString("mic off"))
		}

	case voice.MessageCancelSpeech:
		s.println(color.MagentaString("speech cancelled"))

	case voice.MessageContextAction:
		var ev voice.ContextActionEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}
		s.println(color.CyanString("action %s on %s", ev.Action, ev.Route))

	case voice.MessageError:
		var ev voice.ErrorEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}
		s.println(color.RedString("error: %s", ev.Message))

	case "":
		return fmt.Errorf("missing type")

	default:
		s.printf("%s %s", color.BlueString("%s", msgType), string(data))
	}
	return nil
}

// input sends one typed line and reports whether the user asked to quit.
func (s *simulator) input(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	if !strings.HasPrefix(line, ":") {
		return false, s.peer.Send(struct {
			Type string `json:"type"`
			voice.TranscriptMessage
		}{voice.MessageTranscript, voice.TranscriptMessage{Text: line, Final: true}})
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "q":
		return true, nil
	case "route":
		return false, s.changeRoute(arg)
	case "locale":
		return false, s.peer.Send(struct {
			Type string `json:"type"`
			voice.LocaleMessage
		}{voice.MessageLocale, voice.LocaleMessage{Locale: arg}})
	case "announce":
		return false, s.peer.Send(struct {
			Type string `json:"type"`
			voice.AnnounceMessage
		}{voice.MessageAnnounce, voice.AnnounceMessage{Primary: arg, Listen: true}})
	case "stop":
		return false, s.peer.Send(voice.SimpleCommand{Type: voice.MessageStopListening})
	default:
		s.println(color.RedString("unknown command :%s", name))
		return false, nil
	}
}

func (s *simulator) changeRoute(route string) error {
	if !strings.HasPrefix(route, "/") {
		return fmt.Errorf("route must start with /")
	}

	s.mu.Lock()
	s.route = route
	s.mu.Unlock()

	return s.peer.Send(struct {
		Type string `json:"type"`
		voice.RouteMessage
	}{voice.MessageRoute, voice.RouteMessage{Route: route}})
}

func (s *simulator) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *simulator) println(line string) {
	fmt.Fprintln(s.out, line)
}

package voiceService

import (
	"MediVoice/internal/api/voice"
	"MediVoice/pkg/audio"
	contextPkg "MediVoice/pkg/context"
	"MediVoice/pkg/locale"
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
)

// Transcribe turns a recorded utterance into text and scores it like Match.
func (s *voiceService) Transcribe(ctx context.Context, req voice.TranscribeRequest, clip io.Reader, fileName string) (*voice.TranscribeResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.transcriber == nil {
		return nil, voice.ErrTranscriberUnavailable
	}
	if err := audio.ValidateFileName(fileName); err != nil {
		return nil, voice.ErrUnsupportedAudio
	}

	l := locale.Parse(req.Locale)
	text, err := s.transcriber.Transcribe(ctx, clip, fileName, l)
	if err != nil {
		if errors.Is(err, audio.ErrEmptyTranscript) {
			return nil, voice.ErrNoSpeechDetected
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"file_name":  fileName,
			"error":      err.Error(),
		}).Error("Failed to transcribe audio")
		return nil, err
	}

	match, err := s.Match(ctx, voice.MatchRequest{
		Text:   text,
		Route:  req.Route,
		Locale: string(l),
	})
	if err != nil {
		return nil, err
	}

	return &voice.TranscribeResponse{Transcript: text, Match: match}, nil
}

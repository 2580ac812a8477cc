package voiceHandler

import (
	"MediVoice/internal/api/voice"
	contextPkg "MediVoice/pkg/context"
	"MediVoice/pkg/handlerUtil"
	"MediVoice/pkg/log"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const maxAudioSize = 5 * 1024 * 1024

var errMissingAudio = errors.New("audio file is required")

func (h *VoiceHandler) Transcribe(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req voice.TranscribeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	file, err := ctx.FormFile("audio")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, errMissingAudio, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing audio upload")

	if file.Size > maxAudioSize {
		return errHandler.Handle(ctx, requestID, voice.ErrAudioTooLarge, ctx.Path(), "validate_audio_file")
	}

	clip, err := file.Open()
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_file")
	}
	defer clip.Close()

	response, err := h.voiceService.Transcribe(c, req, clip, file.Filename)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "transcribe_audio")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
	}
}

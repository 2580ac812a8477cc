package voiceHandler

import (
	"MediVoice/internal/api/voice"
	contextPkg "MediVoice/pkg/context"
	"MediVoice/pkg/handlerUtil"
	"MediVoice/pkg/locale"
	"MediVoice/pkg/log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *VoiceHandler) Match(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req voice.MatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"route":      req.Route,
	}).Debug("Matching utterance")

	response, err := h.voiceService.Match(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "match_utterance")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
	}
}

func (h *VoiceHandler) GetCommands(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	l := locale.Default
	if tag := ctx.Query("locale"); tag != "" {
		l = locale.Parse(tag)
	}

	response, err := h.voiceService.Commands(c, l)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_commands")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
}

func (h *VoiceHandler) SuggestCommands(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	query := ctx.Query("q")
	if query == "" {
		return errHandler.HandleValidationError(ctx, requestID, errMissingQuery, ctx.Path())
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return errHandler.HandleValidationError(ctx, requestID, errInvalidLimit, ctx.Path())
		}
		limit = parsed
	}

	response, err := h.voiceService.Suggest(c, query, limit)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "suggest_commands")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
}

func (h *VoiceHandler) CreateKeyword(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req voice.CreateKeywordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	response, err := h.voiceService.CreateKeyword(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_keyword")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, response)
	}
}

func (h *VoiceHandler) DeactivateKeyword(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID, errMissingID, ctx.Path())
	}

	if err := h.voiceService.DeactivateKeyword(c, id); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "deactivate_keyword")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusNoContent, nil)
}

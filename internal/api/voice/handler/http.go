package voiceHandler

import (
	voiceService "MediVoice/internal/api/voice/service"
	"MediVoice/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type VoiceHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	voiceService voiceService.IVoiceService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	vs voiceService.IVoiceService,
) *VoiceHandler {
	return &VoiceHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		voiceService: vs,
	}
}

func (h *VoiceHandler) Start(srv fiber.Router) {
	voice := srv.Group("/voice")

	// All voice endpoints require a device token
	voice.Use(h.middleware.NewTokenMiddleware)

	voice.Post("/match", h.Match)
	voice.Post("/transcribe", h.Transcribe)

	voice.Get("/commands", h.GetCommands)
	voice.Get("/commands/suggest", h.SuggestCommands)
	voice.Post("/commands", h.CreateKeyword)
	voice.Delete("/commands/:id", h.DeactivateKeyword)

	// Device gateway
	voice.Use("/ws", h.RequireUpgrade)
	voice.Get("/ws", websocket.New(h.ServeDevice))
}

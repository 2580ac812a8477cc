package config

import (
	"MediVoice/database/postgres"
	voiceHandler "MediVoice/internal/api/voice/handler"
	voiceRepository "MediVoice/internal/api/voice/repository"
	voiceService "MediVoice/internal/api/voice/service"
	"MediVoice/internal/middleware"
	"MediVoice/pkg/audio"
	"MediVoice/pkg/gemini"
	"MediVoice/pkg/nlp"
	"MediVoice/pkg/openai"
	"MediVoice/pkg/redis"
	"MediVoice/pkg/utils"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	intents     nlp.IIntentExtractor
	transcriber audio.ITranscriber
	closers     []func()
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		s.closers = append(s.closers, func() { _ = db.Close() })
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		s.closers = append(s.closers, func() { _ = redisServer.Close() })
		return nil
	}
}

// WithIntentExtractor picks the free-text provider named by INTENT_PROVIDER.
// Without one the engine tells users it cannot add medicines.
func WithIntentExtractor() ServerOption {
	return func(s *Server) error {
		provider := strings.ToLower(strings.TrimSpace(os.Getenv("INTENT_PROVIDER")))

		switch provider {
		case "", "none":
			if s.log != nil {
				s.log.Info("No intent provider configured, free-text requests are disabled")
			}
			return nil

		case "openai":
			client, err := openai.NewChatGPT()
			if err != nil {
				return fmt.Errorf("failed to create OpenAI client: %w", err)
			}
			s.intents = client
			return nil

		case "gemini":
			client, err := gemini.NewGeminiClient()
			if err != nil {
				if s.log != nil {
					s.log.Errorf("Failed to create Gemini client: %v", err)
				}
				return fmt.Errorf("failed to create Gemini client: %w", err)
			}
			s.intents = client
			s.closers = append(s.closers, client.Close)
			return nil
		}

		return fmt.Errorf("unknown INTENT_PROVIDER %q", provider)
	}
}

// WithTranscriber enables audio uploads when OPENAI_API_KEY is set.
func WithTranscriber() ServerOption {
	return func(s *Server) error {
		if os.Getenv("OPENAI_API_KEY") == "" {
			if s.log != nil {
				s.log.Info("No OpenAI key configured, audio transcription is disabled")
			}
			return nil
		}

		transcriber, err := audio.NewWhisperTranscriber()
		if err != nil {
			return fmt.Errorf("failed to create transcriber: %w", err)
		}
		s.transcriber = transcriber
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, middleware.RateLimitFromEnv())
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Voice Domain
	var voiceRepo voiceRepository.Repository
	if s.db != nil {
		voiceRepo = voiceRepository.New(s.db, s.log)
	}

	opts := []voiceService.Option{}
	if s.redisServer != nil {
		opts = append(opts, voiceService.WithCache(s.redisServer))
	}
	if s.intents != nil {
		opts = append(opts, voiceService.WithIntentExtractor(s.intents))
	}
	if s.transcriber != nil {
		opts = append(opts, voiceService.WithTranscriber(s.transcriber))
	}

	voiceServices := voiceService.NewVoiceService(s.log, voiceRepo, s.utils, s.validator, voiceService.NewVoiceConfigFromEnv(), opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := voiceServices.ReloadCatalog(ctx); err != nil {
		s.log.Warnf("Serving the built-in command catalog: %v", err)
	}

	voiceHandlers := voiceHandler.New(s.log, s.validator, s.middleware, voiceServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, voiceHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())
	s.engine.Use(s.middleware.NewRateLimiter)
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		return err
	}

	return nil
}

// Shutdown stops the listener and releases every client the options opened.
func (s *Server) Shutdown() error {
	err := s.engine.ShutdownWithTimeout(10 * time.Second)
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}

package voiceService

import (
	"MediVoice/internal/api/voice"
	voiceRepository "MediVoice/internal/api/voice/repository"
	"MediVoice/internal/entity"
	"MediVoice/pkg/audio"
	"MediVoice/pkg/butler"
	"MediVoice/pkg/command"
	"MediVoice/pkg/locale"
	"MediVoice/pkg/nlp"
	"MediVoice/pkg/redis"
	"MediVoice/pkg/utils"
	websocketPkg "MediVoice/pkg/websocket"
	"context"
	"io"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type IVoiceService interface {
	Match(ctx context.Context, req voice.MatchRequest) (*voice.MatchResponse, error)
	Commands(ctx context.Context, l locale.Locale) (*voice.CommandsResponse, error)
	Suggest(ctx context.Context, query string, limit int) (*voice.SuggestResponse, error)
	Transcribe(ctx context.Context, req voice.TranscribeRequest, clip io.Reader, fileName string) (*voice.TranscribeResponse, error)

	CreateKeyword(ctx context.Context, req voice.CreateKeywordRequest) (*voice.KeywordResponse, error)
	DeactivateKeyword(ctx context.Context, id string) error
	ReloadCatalog(ctx context.Context) error

	// Serve runs one device connection until the peer goes away.
	Serve(ctx context.Context, device entity.DeviceLoginData, peer websocketPkg.IPeer) error
}

type voiceService struct {
	log         *logrus.Logger
	voiceRepo   voiceRepository.Repository
	cache       redis.IRedis
	utils       utils.IUtils
	intents     nlp.IIntentExtractor
	transcriber audio.ITranscriber
	validator   *validator.Validate
	dosage      *nlp.DosageExtractor
	config      *VoiceConfig
	clock       clock.Clock

	catalog atomic.Pointer[catalog]
}

type VoiceConfig struct {
	Command        command.Config
	Butler         butler.Config
	SpeechTimeout  time.Duration
	SpeechPerRune  time.Duration
	KeepAlive      time.Duration
	CatalogTTL     time.Duration
	SuggestLimit   int
	MaxSuggestions int
}

func DefaultVoiceConfig() *VoiceConfig {
	return &VoiceConfig{
		Command:        command.DefaultConfig(),
		Butler:         butler.DefaultConfig(),
		SpeechTimeout:  5 * time.Second,
		SpeechPerRune:  80 * time.Millisecond,
		KeepAlive:      30 * time.Second,
		CatalogTTL:     time.Hour,
		SuggestLimit:   5,
		MaxSuggestions: 20,
	}
}

// NewVoiceConfigFromEnv overrides the engine timings with the VOICE_*_MS
// variables that are set.
func NewVoiceConfigFromEnv() *VoiceConfig {
	cfg := DefaultVoiceConfig()
	cfg.Butler.SettleDelay = durationFromEnv("VOICE_SETTLE_DELAY_MS", cfg.Butler.SettleDelay)
	cfg.Butler.IdlePrompt = durationFromEnv("VOICE_IDLE_PROMPT_MS", cfg.Butler.IdlePrompt)
	cfg.Command.NavigateDelay = durationFromEnv("VOICE_NAVIGATE_DELAY_MS", cfg.Command.NavigateDelay)
	return cfg
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	ms, err := strconv.Atoi(os.Getenv(key))
	if err != nil || ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

type Option func(*voiceService)

func WithClock(c clock.Clock) Option {
	return func(s *voiceService) { s.clock = c }
}

func WithCache(c redis.IRedis) Option {
	return func(s *voiceService) { s.cache = c }
}

func WithIntentExtractor(e nlp.IIntentExtractor) Option {
	return func(s *voiceService) { s.intents = e }
}

func WithTranscriber(t audio.ITranscriber) Option {
	return func(s *voiceService) { s.transcriber = t }
}

func NewVoiceService(
	log *logrus.Logger,
	voiceRepo voiceRepository.Repository,
	utils utils.IUtils,
	validate *validator.Validate,
	config *VoiceConfig,
	opts ...Option,
) IVoiceService {
	if config == nil {
		config = DefaultVoiceConfig()
	}

	s := &voiceService{
		log:       log,
		voiceRepo: voiceRepo,
		utils:     utils,
		validator: validate,
		dosage:    nlp.NewDosageExtractor(),
		config:    config,
		clock:     clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.catalog.Store(builtinCatalog())
	return s
}

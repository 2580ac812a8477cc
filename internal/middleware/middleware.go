package middleware

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	// NewRateLimiter throttles each client IP with its own token bucket.
	NewRateLimiter(ctx *fiber.Ctx) error
	// NewTokenMiddleware admits requests carrying a valid device token.
	NewTokenMiddleware(ctx *fiber.Ctx) error
	NewRequestIDMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
}

const (
	defaultRatePerSecond = 50
	defaultBurst         = 100
)

type Option func(*middleware)

// WithRateLimit overrides the per-IP request rate and burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(m *middleware) {
		if perSecond > 0 && burst > 0 {
			m.rateLimitter = newRateLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// RateLimitFromEnv reads RATE_LIMIT_RPS and RATE_LIMIT_BURST, keeping the
// defaults for anything unset or unparsable.
func RateLimitFromEnv() Option {
	perSecond, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil {
		perSecond = defaultRatePerSecond
	}
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil {
		burst = defaultBurst
	}
	return WithRateLimit(perSecond, burst)
}

type middleware struct {
	token               *tokenMiddleware
	rateLimitter        *rateLimiter
	requestIDMiddleware fiber.Handler
	log                 *logrus.Logger
}

func New(logger *logrus.Logger, opts ...Option) Middleware {
	m := &middleware{
		token:               newTokenMiddleware(),
		rateLimitter:        newRateLimiter(defaultRatePerSecond, defaultBurst),
		requestIDMiddleware: NewRequestIDMiddleware(),
		log:                 logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}

// Package context carries request-scoped values from the HTTP and websocket
// edges down to the voice services and their logs.
package context

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// HeaderRequestID is the header a request ID arrives in and is echoed back on.
const HeaderRequestID = "X-Request-ID"

// Unknown is logged when a value never reached the context.
const Unknown = "unknown"

type key int

const (
	requestIDKey key = iota
	deviceIDKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithDeviceID records the authenticated device behind a request.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDKey, deviceID)
}

func GetDeviceID(ctx context.Context) string {
	return stringValue(ctx, deviceIDKey)
}

// FromFiberCtx starts from the request's user context, so values set by
// earlier middleware survive, and makes sure it carries a request ID.
func FromFiberCtx(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if GetRequestID(ctx) != Unknown {
		return ctx
	}

	requestID, _ := c.Locals(HeaderRequestID).(string)
	if requestID == "" {
		requestID = c.Get(HeaderRequestID)
	}
	if requestID == "" {
		requestID = Unknown
	}

	return WithRequestID(ctx, requestID)
}

func stringValue(ctx context.Context, k key) string {
	v, ok := ctx.Value(k).(string)
	if !ok || v == "" {
		return Unknown
	}
	return v
}

package config

import (
	"MediVoice/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// audioBodyLimit leaves room for a short recorded utterance on /voice/transcribe.
const audioBodyLimit = 8 * 1024 * 1024

func NewFiber(logger *logrus.Logger) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:           "MediVoice",
			BodyLimit:         audioBodyLimit,
			DisableKeepalive:  false,
			StrictRouting:     true,
			CaseSensitive:     true,
			EnablePrintRoutes: logger.IsLevelEnabled(logrus.DebugLevel),
			JSONEncoder:       jsoniter.Marshal,
			JSONDecoder:       jsoniter.Unmarshal,
			ErrorHandler:      newErrorHandler(logger),
		})

	return app
}

// newErrorHandler renders errors that escape a handler in the same
// {"error": ...} shape the handlers write. Server faults keep their detail
// in the log only.
func newErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := response.StatusCode(err)
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		message := err.Error()
		if code >= fiber.StatusInternalServerError {
			logger.WithFields(logrus.Fields{
				"request_id": c.Locals("request_id"),
				"path":       c.Path(),
				"error":      err.Error(),
			}).Error("Unhandled error")
			message = "An unexpected error occurred"
		}

		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}

package handlerUtil

import (
	"MediVoice/internal/api/voice"
	"MediVoice/pkg/log"
	"MediVoice/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	// Voice domain errors
	if errors.Is(err, voice.ErrKeywordNotFound) {
		h.logger.WithFields(fields).Warn("Command keyword not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Command keyword not found",
			"code":  "KEYWORD_NOT_FOUND",
		})
	}

	if errors.Is(err, voice.ErrInvalidKeyword) || errors.Is(err, voice.ErrUnknownAction) {
		h.logger.WithFields(fields).Warn("Invalid command keyword")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "INVALID_KEYWORD",
		})
	}

	if errors.Is(err, voice.ErrKeywordExists) {
		h.logger.WithFields(fields).Warn("Duplicate command keyword")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Command keyword already exists",
			"code":  "KEYWORD_EXISTS",
		})
	}

	if errors.Is(err, voice.ErrUnsupportedLocale) {
		h.logger.WithFields(fields).Warn("Unsupported locale")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported locale",
			"code":  "UNSUPPORTED_LOCALE",
		})
	}

	if errors.Is(err, voice.ErrWebsocketRequired) {
		h.logger.WithFields(fields).Warn("Websocket upgrade missing")
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
			"error": "Websocket upgrade required",
			"code":  "UPGRADE_REQUIRED",
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code
		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	h.logger.WithFields(fields).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "An unexpected error occurred",
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}

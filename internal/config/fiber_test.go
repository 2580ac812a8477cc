package config

import (
	"MediVoice/pkg/response"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiberErrorHandler(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := NewFiber(logger)

	app.Get("/teapot", func(c *fiber.Ctx) error { return response.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/gone", func(c *fiber.Ctx) error { return fiber.ErrGone })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db password leaked in message") })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{path: "/teapot", status: fiber.StatusTeapot, message: "short and stout"},
		{path: "/gone", status: fiber.StatusGone, message: "Gone"},
		{path: "/boom", status: fiber.StatusInternalServerError, message: "An unexpected error occurred"},
		{path: "/missing", status: fiber.StatusNotFound, message: "Cannot GET /missing"},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, tt.message, jsoniter.Get(body, "error").ToString(), tt.path)
	}

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "db password leaked in message", hook.LastEntry().Data["error"])
}

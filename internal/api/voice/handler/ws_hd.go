package voiceHandler

import (
	"MediVoice/internal/api/voice"
	"MediVoice/internal/entity"
	"MediVoice/internal/middleware"
	contextPkg "MediVoice/pkg/context"
	"MediVoice/pkg/handlerUtil"
	jwtPkg "MediVoice/pkg/jwt"
	"MediVoice/pkg/log"
	websocketPkg "MediVoice/pkg/websocket"
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

var (
	errMissingQuery = errors.New("query parameter q is required")
	errInvalidLimit = errors.New("limit must be a non-negative integer")
	errMissingID    = errors.New("keyword id is required")
)

func (h *VoiceHandler) RequireUpgrade(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}

	errHandler := handlerUtil.New(h.log)
	return errHandler.Handle(ctx, h.middleware.GetRequestID(ctx), voice.ErrWebsocketRequired, ctx.Path(), "device_gateway")
}

func (h *VoiceHandler) ServeDevice(conn *websocket.Conn) {
	requestID, _ := conn.Locals(middleware.RequestIDKey).(string)
	device, ok := conn.Locals(jwtPkg.DeviceLocalsKey).(entity.DeviceLoginData)
	if !ok {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
		}).Warn("Device gateway reached without device login data")
		_ = conn.Close()
		return
	}

	peer := websocketPkg.NewPeer(conn)
	defer peer.Close()

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"device_id":  device.ID,
	}).Info("Device connected")

	ctx := contextPkg.WithRequestID(context.Background(), requestID)
	if err := h.voiceService.Serve(ctx, device, peer); err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"device_id":  device.ID,
			"error":      err.Error(),
		}).Warn("Device session ended with error")
		return
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"device_id":  device.ID,
	}).Info("Device disconnected")
}

package controller

import (
	"jurisperform-be/internal/pkg/serverutils"
	internalWS "jurisperform-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type ILiveController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
}

type liveController struct {
	hub *internalWS.Hub
	log *zap.Logger
}

func NewLiveController(hub *internalWS.Hub, log *zap.Logger) ILiveController {
	if log == nil {
		log = zap.NewNop()
	}
	return &liveController{hub: hub, log: log}
}

func (c *liveController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/live/v1")
	h.Use(auth)
	h.Get("/ws", c.Upgrade)
}

// Upgrade switches an authenticated request to a websocket that receives
// TUTOR_TURN_COMPLETED, COURSE_SELECTION_CHANGED and CONVERSATION_DELETED
// frames for the caller's conversations.
func (c *liveController) Upgrade(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		c.log.Debug("live session started", zap.String("user_id", userId.String()))
		internalWS.Serve(c.hub, conn, userId)
		c.log.Debug("live session ended", zap.String("user_id", userId.String()))
	})(ctx)
}

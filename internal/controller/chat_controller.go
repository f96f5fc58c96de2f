package controller

import (
	"bufio"
	"context"
	"time"

	"jurisperform-be/internal/dto"
	"jurisperform-be/internal/pkg/serverutils"
	"jurisperform-be/internal/service"
	"jurisperform-be/pkg/tutor"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Chat(ctx *fiber.Ctx) error
}

const streamHeartbeat = 10 * time.Second

type chatController struct {
	service   service.ITutorService
	log       *zap.Logger
	heartbeat time.Duration
}

func NewChatController(service service.ITutorService, log *zap.Logger) IChatController {
	if log == nil {
		log = zap.NewNop()
	}
	return &chatController{service: service, log: log, heartbeat: streamHeartbeat}
}

func (c *chatController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/chat/v1")
	h.Use(auth)
	h.Post("", c.Chat)
}

// Chat answers one tutor turn as a data stream. Request problems are
// reported with a status code; once streaming starts, failures travel as
// error lines.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	turn, err := c.service.Prepare(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set("X-Accel-Buffering", "no")
	ctx.Set(tutor.DataStreamHeader, tutor.DataStreamHeaderValue)

	// The fiber context is recycled once the handler returns; the stream
	// only keeps values captured here.
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx.UserContext()))
	shutdown := ctx.Context().Done()
	log := c.log.With(zap.String("user_id", userId.String()))

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		sink := tutor.NewDataStreamWriter(w)
		watched := make(chan struct{})
		go func() {
			defer close(watched)
			watchStream(streamCtx, cancel, sink, shutdown, c.heartbeat)
		}()
		// w must not be touched by the watcher once this function returns.
		defer func() {
			cancel()
			<-watched
		}()

		res, err := c.service.Run(streamCtx, turn, sink)
		if err != nil {
			log.Warn("chat stream ended with error", zap.Error(err))
			return
		}
		log.Info("chat turn completed",
			zap.Int("steps", res.Steps),
			zap.String("finish_reason", res.FinishReason),
		)
	})
	return nil
}

type heartbeater interface {
	Heartbeat() error
}

// watchStream cancels the turn when the server shuts down or when a
// heartbeat cannot be flushed, which is how a closed client connection
// shows up on a fasthttp body stream.
func watchStream(ctx context.Context, cancel context.CancelFunc, sink heartbeater, shutdown <-chan struct{}, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-shutdown:
			cancel()
			return
		case <-ticker.C:
			if err := sink.Heartbeat(); err != nil {
				cancel()
				return
			}
		}
	}
}

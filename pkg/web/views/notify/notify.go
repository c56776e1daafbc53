package notify

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/scienceol/sampletrack/pkg/core/notify"
	"github.com/scienceol/sampletrack/pkg/core/notify/events"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
)

const maxMessageSize = 1 << 16

// Handle streams sample status changes to websocket clients. Clients only
// listen; anything they send is ignored.
type Handle struct {
	wsClient *melody.Melody
}

func NewNotifyHandle(ctx context.Context) *Handle {
	return NewNotifyHandleWith(ctx, events.NewEvents())
}

func NewNotifyHandleWith(ctx context.Context, center notify.MsgCenter) *Handle {
	wsClient := melody.New()
	wsClient.Config.MaxMessageSize = maxMessageSize
	h := &Handle{wsClient: wsClient}
	h.initWebSocket()

	if err := center.Registry(ctx, notify.SampleStatusChanged, h.OnStatusChanged); err != nil {
		logger.Errorf(ctx, "Registry SampleStatusChanged fail err: %+v", err)
	}
	return h
}

// SampleStatus godoc
// @Summary  Live stream of sample status changes
// @Tags     notify
// @Router   /v1/ws/samples [get]
func (h *Handle) SampleStatus(ctx *gin.Context) {
	if err := h.wsClient.HandleRequestWithKeys(ctx.Writer, ctx.Request, map[string]any{
		"ctx": context.WithoutCancel(ctx.Request.Context()),
	}); err != nil {
		logger.Errorf(ctx, "SampleStatus HandleRequestWithKeys err: %+v", err)
	}
}

func (h *Handle) OnStatusChanged(_ context.Context, msg string) error {
	if h.wsClient.IsClosed() {
		return nil
	}
	return h.wsClient.Broadcast([]byte(msg))
}

func (h *Handle) Sessions() int {
	return h.wsClient.Len()
}

func (h *Handle) Close() error {
	return h.wsClient.Close()
}

func (h *Handle) initWebSocket() {
	h.wsClient.HandleConnect(func(s *melody.Session) {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "sample ws connect remote: %s", s.Request.RemoteAddr)
		}
	})

	h.wsClient.HandleDisconnect(func(s *melody.Session) {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "sample ws disconnected remote: %s", s.Request.RemoteAddr)
		}
	})

	h.wsClient.HandleError(func(s *melody.Session, err error) {
		if errors.Is(err, melody.ErrMessageBufferFull) {
			return
		}
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseGoingAway {
			return
		}
		if ctx, ok := s.Get("ctx"); ok {
			logger.Errorf(ctx.(context.Context), "sample ws error remote: %s, err: %+v", s.Request.RemoteAddr, err)
		}
	})

	h.wsClient.HandleMessage(func(_ *melody.Session, _ []byte) {})
}

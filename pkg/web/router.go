package web

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/scienceol/sampletrack/internal/config"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/middleware/metrics"
	"github.com/scienceol/sampletrack/pkg/web/views/health"
	notifyView "github.com/scienceol/sampletrack/pkg/web/views/notify"
	orderView "github.com/scienceol/sampletrack/pkg/web/views/order"
	sampleView "github.com/scienceol/sampletrack/pkg/web/views/sample"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Handles struct {
	Order   *orderView.Handle
	Sample  *sampleView.Handle
	Notify  *notifyView.Handle
	Metrics *metrics.Registry
}

func DefaultHandles(ctx context.Context) *Handles {
	return &Handles{
		Order:   orderView.NewOrderHandle(),
		Sample:  sampleView.NewSampleHandle(),
		Notify:  notifyView.NewNotifyHandle(ctx),
		Metrics: metrics.NewRegistry(),
	}
}

// NewRouter installs every route on g. The returned func closes the
// websocket hub.
func NewRouter(ctx context.Context, g *gin.Engine) context.CancelFunc {
	return NewRouterWith(g, DefaultHandles(ctx))
}

func NewRouterWith(g *gin.Engine, h *Handles) context.CancelFunc {
	installMiddleware(g, h)
	installURL(g, h)
	return func() {
		if err := h.Notify.Close(); err != nil {
			logger.Warnf(context.Background(), "close ws hub err: %+v", err)
		}
	}
}

func installMiddleware(g *gin.Engine, h *Handles) {
	g.ContextWithFallback = true
	server := config.Global().Server
	g.Use(gin.Recovery())
	g.Use(cors.Default())
	g.Use(otelgin.Middleware(fmt.Sprintf("%s-%s", server.Platform, server.Service)))
	g.Use(logger.LogWithWriter())
	if h.Metrics != nil {
		g.Use(h.Metrics.Middleware())
	}
}

func installURL(g *gin.Engine, h *Handles) {
	g.GET("/health-check", health.HealthCheck)
	g.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	if h.Metrics != nil {
		g.GET("/metrics", h.Metrics.Handler())
	}

	api := g.Group("/api")
	api.GET("/health", health.Health)
	api.GET("/health/live", health.Live)
	api.GET("/health/ready", health.Ready)

	v1 := api.Group("/v1")
	{
		orderRouter := v1.Group("/orders")
		orderRouter.POST("", h.Order.CreateOrder)
		orderRouter.POST("/status", h.Order.OrderStatus)
	}

	{
		sampleRouter := v1.Group("/samples")
		sampleRouter.GET("/to-process", h.Sample.SamplesToMake)
		sampleRouter.POST("/claim", h.Sample.ClaimSamples)
		sampleRouter.POST("/qc-results", h.Sample.LogQCResults)
		sampleRouter.GET("/to-ship", h.Sample.SamplesToShip)
		sampleRouter.POST("/shipped", h.Sample.RecordShipped)
		v1.POST("/sample/status", h.Sample.SampleStatus)
	}

	{
		wsRouter := v1.Group("/ws")
		wsRouter.GET("/samples", h.Notify.SampleStatus)
	}
}

package relay

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/sampletrack/internal/config"
	relayImpl "github.com/scienceol/sampletrack/pkg/core/relay/relay"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/middleware/metrics"
	"github.com/scienceol/sampletrack/pkg/middleware/redis"
	"github.com/scienceol/sampletrack/pkg/middleware/trace"
	"github.com/scienceol/sampletrack/pkg/utils"
	"github.com/scienceol/sampletrack/pkg/web/views/health"
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:          "relay",
		Long:         "Forward order and sample status notifications from redis to a webhook",
		SilenceUsage: true,
		PreRunE:      initRelay,
		RunE:         runRelay,
		PostRunE:     cleanRelay,
	}
}

func initRelay(cmd *cobra.Command, _ []string) error {
	conf := config.Global()
	if conf.Relay.WebhookURL == "" {
		return fmt.Errorf("RELAY_WEBHOOK_URL is required")
	}
	if conf.Redis.Disabled {
		return fmt.Errorf("relay needs redis, unset REDIS_DISABLED")
	}
	trace.InitTrace(cmd.Context(), &trace.InitConfig{
		ServiceName:    fmt.Sprintf("%s-relay", conf.Server.Platform),
		Version:        conf.Trace.Version,
		Env:            conf.Server.Env,
		Exporter:       conf.Trace.Exporter,
		TraceEndpoint:  conf.Trace.TraceEndpoint,
		MetricEndpoint: conf.Trace.MetricEndpoint,
		Insecure:       conf.Trace.Insecure,
	})
	redis.InitRedis(cmd.Context(), &redis.Redis{
		Host: conf.Redis.Host, Port: conf.Redis.Port,
		Password: conf.Redis.Password, DB: conf.Redis.DB,
	})
	return nil
}

func runRelay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Root().Context()
	svc, err := relayImpl.New()
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	router := gin.New()
	router.Use(gin.Recovery(), logger.LogWithWriter(), reg.Middleware())
	router.GET("/metrics", reg.Handler())
	router.GET("/api/health", health.Health)
	router.GET("/api/health/live", health.Live)

	port := config.Global().Relay.Port
	httpServer := http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSNextProto:      make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
	}

	utils.SafelyGo(func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf(ctx, "start relay health server err: %v", err)
		}
	}, func(err error) {
		logger.Errorf(ctx, "run relay health server err: %+v", err)
		os.Exit(1)
	})

	fmt.Printf("Relay started, health checks on port %d. Press Ctrl+C to shutdown.\n", port)
	<-cmd.Context().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("shut down relay health server err: %+v", err)
	}
	svc.Close(shutdownCtx)
	return nil
}

func cleanRelay(cmd *cobra.Command, _ []string) error {
	redis.CloseRedis(cmd.Context())
	trace.CloseTrace()
	return nil
}

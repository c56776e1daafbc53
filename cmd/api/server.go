package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/scienceol/sampletrack/docs" // swagger generated docs

	"github.com/gin-gonic/gin"
	"github.com/scienceol/sampletrack/internal/config"
	"github.com/scienceol/sampletrack/pkg/core/notify/events"
	stgrpc "github.com/scienceol/sampletrack/pkg/grpc"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/middleware/redis"
	"github.com/scienceol/sampletrack/pkg/middleware/trace"
	"github.com/scienceol/sampletrack/pkg/repo/store"
	"github.com/scienceol/sampletrack/pkg/utils"
	"github.com/scienceol/sampletrack/pkg/web"
	"github.com/spf13/cobra"
)

func NewWeb() *cobra.Command {
	return &cobra.Command{
		Use:          "apiserver",
		Long:         "Start the API server (HTTP + gRPC)",
		SilenceUsage: true,
		PreRunE:      initWeb,
		RunE:         newRouter,
		PostRunE:     cleanWebResource,
	}
}

func initWeb(cmd *cobra.Command, _ []string) error {
	conf := config.Global()
	trace.InitTrace(cmd.Context(), &trace.InitConfig{
		ServiceName:    fmt.Sprintf("%s-%s", conf.Server.Service, conf.Server.Platform),
		Version:        conf.Trace.Version,
		Env:            conf.Server.Env,
		Exporter:       conf.Trace.Exporter,
		TraceEndpoint:  conf.Trace.TraceEndpoint,
		MetricEndpoint: conf.Trace.MetricEndpoint,
		Insecure:       conf.Trace.Insecure,
	})
	if err := store.Init(cmd.Context(), conf); err != nil {
		return err
	}
	if conf.Redis.Disabled {
		logger.Warnf(cmd.Context(), "redis disabled, status notifications stay in process")
		return nil
	}
	redis.InitRedis(cmd.Context(), &redis.Redis{
		Host: conf.Redis.Host, Port: conf.Redis.Port,
		Password: conf.Redis.Password, DB: conf.Redis.DB,
	})
	return nil
}

func newRouter(cmd *cobra.Command, _ []string) error {
	router := gin.New()
	cancel := web.NewRouter(cmd.Root().Context(), router)
	conf := config.Global()
	port := conf.Server.Port
	addr := ":" + strconv.Itoa(port)

	httpServer := http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       30 * time.Second,
		TLSNextProto:      make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
	}

	fmt.Printf("API Server starting on http://0.0.0.0:%d\n", port)

	utils.SafelyGo(func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf(cmd.Context(), "start server err: %v\n", err)
		}
	}, func(err error) {
		logger.Errorf(cmd.Context(), "run http server err: %+v", err)
		os.Exit(1)
	})

	grpcPort := conf.Server.GrpcPort
	grpcServer, err := stgrpc.NewServer(cmd.Root().Context(), grpcPort)
	if err != nil {
		logger.Errorf(cmd.Context(), "start gRPC server err: %+v", err)
	} else {
		fmt.Printf("gRPC Server starting on port %d\n", grpcPort)
	}

	fmt.Printf("Server started. Press Ctrl+C to shutdown.\n")
	<-cmd.Context().Done()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	cancel()
	ctx, cancelTimeout := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancelTimeout()
	if err := httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("shut down server err: %+v", err)
	}
	return nil
}

func cleanWebResource(cmd *cobra.Command, _ []string) error {
	ctx := context.WithoutCancel(cmd.Context())
	if err := events.NewEvents().Close(ctx); err != nil {
		logger.Warnf(ctx, "close events err: %+v", err)
	}
	redis.CloseRedis(ctx)
	store.Close(ctx)
	trace.CloseTrace()
	return nil
}

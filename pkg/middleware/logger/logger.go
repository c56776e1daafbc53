package logger

import (
	"context"
	"os"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ServiceEnv struct {
	Platform string
	Service  string
	Env      string
}

type LogConfig struct {
	Path       string
	LogLevel   string
	ServiceEnv ServiceEnv
}

var (
	logger *otelzap.SugaredLogger
	base   *otelzap.Logger
	writer *lumberjack.Logger
)

func init() {
	base = otelzap.New(zap.NewNop())
	logger = base.Sugar()
}

func Init(conf *LogConfig) {
	level := parseLevel(conf.LogLevel)
	encoderConf := zap.NewProductionEncoderConfig()
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConf.TimeKey = "time"

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConf), zapcore.Lock(os.Stdout), level),
	}

	if conf.Path != "" {
		writer = &lumberjack.Logger{
			Filename:   conf.Path,
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConf), zapcore.AddSync(writer), level))
	}

	z := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).With(
		zap.String("platform", conf.ServiceEnv.Platform),
		zap.String("service", conf.ServiceEnv.Service),
		zap.String("env", conf.ServiceEnv.Env),
	)

	base = otelzap.New(z,
		otelzap.WithMinLevel(level),
		otelzap.WithTraceIDField(true),
	)
	logger = base.Sugar()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func Close() {
	if base != nil {
		_ = base.Sync()
	}
	if writer != nil {
		_ = writer.Close()
	}
}

// Zap exposes the underlying logger for libraries that take a *zap.Logger.
func Zap() *zap.Logger {
	return base.Logger
}

func Debugf(ctx context.Context, format string, args ...any) {
	logger.Ctx(ctx).Debugf(format, args...)
}

func Infof(ctx context.Context, format string, args ...any) {
	logger.Ctx(ctx).Infof(format, args...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	logger.Ctx(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	logger.Ctx(ctx).Errorf(format, args...)
}

func Fatalf(ctx context.Context, format string, args ...any) {
	logger.Ctx(ctx).Fatalf(format, args...)
}

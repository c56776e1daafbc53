package redis

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/extra/rediscmd/v9"
	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
)

const slowCmd = 100 * time.Millisecond

// logHook reports failed and slow commands.
type logHook struct{}

func (logHook) DialHook(next r.DialHook) r.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			logger.Errorf(ctx, "redis dial %s err: %+v", addr, err)
		}
		return conn, err
	}
}

func (logHook) ProcessHook(next r.ProcessHook) r.ProcessHook {
	return func(ctx context.Context, cmd r.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		if err != nil && err != r.Nil {
			logger.Errorf(ctx, "redis cmd: %s err: %+v", rediscmd.CmdString(cmd), err)
		} else if cost := time.Since(start); cost > slowCmd {
			logger.Warnf(ctx, "redis slow cmd: %s cost: %s", rediscmd.CmdString(cmd), cost)
		}
		return err
	}
}

func (logHook) ProcessPipelineHook(next r.ProcessPipelineHook) r.ProcessPipelineHook {
	return func(ctx context.Context, cmds []r.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && err != r.Nil {
			_, summary := rediscmd.CmdsString(cmds)
			logger.Errorf(ctx, "redis pipeline: %s err: %+v", summary, err)
		}
		return err
	}
}

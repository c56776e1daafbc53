package redis

import (
	"context"
	"fmt"
	"time"

	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
)

type Redis struct {
	Host     string
	Port     int
	Password string
	DB       int
}

var redisClient *r.Client

func initRedis(conf *Redis) (*r.Client, error) {
	client := r.NewClient(&r.Options{
		Addr:         fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Password:     conf.Password,
		DB:           conf.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	client.AddHook(logHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func InitRedis(ctx context.Context, conf *Redis) {
	var err error
	redisClient, err = initRedis(conf)
	if err != nil {
		logger.Fatalf(ctx, "init redis fail err: %+v", err)
	}
}

func CloseRedis(_ context.Context) {
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

// GetClient returns the process-wide client, nil when redis is disabled.
func GetClient() *r.Client {
	return redisClient
}

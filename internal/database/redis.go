package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedis connects to redis. Returns nil on failure: every redis
// consumer in this service treats a nil client as "cache and pub/sub
// disabled" rather than an error.
func NewRedis(host string, port int, password string, db int, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("failed to connect to redis, continuing without cache/pubsub",
			zap.String("addr", client.Options().Addr),
			zap.Error(err))
		_ = client.Close()
		return nil
	}

	logger.Info("redis connected", zap.String("addr", client.Options().Addr))
	return client
}

package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/praio-service/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis - connection shared by the refresh stream publisher and listener
type Redis struct {
	client *redis.Client
	addr   string
	logger *zap.Logger
}

// NewRedis connects and pings within ctx; an unreachable server is an error.
func NewRedis(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Info("Redis connected", zap.String("addr", addr), zap.Int("db", cfg.DB))

	return &Redis{
		client: client,
		addr:   addr,
		logger: logger,
	}, nil
}

func (r *Redis) Close() error {
	r.logger.Info("Closing Redis connection", zap.String("addr", r.addr))
	return r.client.Close()
}

func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Client() *redis.Client {
	return r.client
}

package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kinkando/photo-feed-service/config"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

type Option func(*goredis.Options)

// WithPingOnConnect checks every new pooled connection before it is handed out.
func WithPingOnConnect() Option {
	return func(o *goredis.Options) {
		o.OnConnect = func(ctx context.Context, conn *goredis.Conn) error {
			return conn.Ping(ctx).Err()
		}
	}
}

func WithMaxRetries(n int) Option {
	return func(o *goredis.Options) {
		o.MaxRetries = n
	}
}

// Options translates the redis config into client options. Zero values keep
// the go-redis defaults.
func Options(cfg config.RedisConfig, options ...Option) *goredis.Options {
	opts := &goredis.Options{
		Addr:            net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Username:        cfg.Username,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		DialTimeout:     cfg.DialTimeout,
		MaxRetries:      3,
		ConnMaxIdleTime: 30 * time.Minute,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: cfg.Host}
	}
	for _, option := range options {
		option(opts)
	}
	return opts
}

// NewClient dials redis and waits for the first PING.
func NewClient(ctx context.Context, cfg config.RedisConfig, options ...Option) (*goredis.Client, error) {
	opts := Options(cfg, options...)
	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}

	logger.Infof("redis: connected to %s db %d", opts.Addr, opts.DB)
	return client, nil
}

func Shutdown(client *goredis.Client) {
	if err := client.Close(); err != nil {
		logger.Errorf("redis: close: %s", err.Error())
		return
	}
	logger.Info("redis: closed")
}

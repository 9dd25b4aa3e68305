package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/lending/internal/infrastructure/config"
)

const (
	defaultConnectTimeout = 3 * time.Second
	defaultSlowThreshold  = 100 * time.Millisecond
)

// NewClient 创建Redis客户端
// 缓存只是加速手段，启动时连不上直接报错，由调用方决定是否降级为不缓存
// 所有命令经过commandLogHook，失败和慢命令写日志
func NewClient(cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = defaultSlowThreshold
	}
	client.AddHook(commandLogHook{logger: logger, slow: slow})

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis连接失败(%s): %w", cfg.Addr(), err)
	}

	logger.Info("Redis连接成功",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
		zap.Int("pool_size", client.Options().PoolSize),
	)
	return client, nil
}

// commandLogHook 记录失败和超过阈值的命令
// redis.Nil表示key不存在，属于正常的缓存未命中，不记录
type commandLogHook struct {
	logger *zap.Logger
	slow   time.Duration
}

func (h commandLogHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h commandLogHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(cmd.Name(), time.Since(start), err)
		return err
	}
}

func (h commandLogHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.observe("pipeline", time.Since(start), err)
		return err
	}
}

func (h commandLogHook) observe(name string, elapsed time.Duration, err error) {
	switch {
	case err != nil && !errors.Is(err, redis.Nil):
		h.logger.Warn("Redis命令失败", zap.String("cmd", name), zap.Duration("elapsed", elapsed), zap.Error(err))
	case elapsed >= h.slow:
		h.logger.Warn("Redis慢命令", zap.String("cmd", name), zap.Duration("elapsed", elapsed))
	}
}

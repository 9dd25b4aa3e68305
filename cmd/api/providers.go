package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/lending/internal/application/lending"
	"github.com/xiebiao/lending/internal/infrastructure/config"
	"github.com/xiebiao/lending/internal/infrastructure/notification"
	"github.com/xiebiao/lending/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/lending/internal/infrastructure/persistence/sqlstore"
	lendinghttp "github.com/xiebiao/lending/internal/interface/http"
	"github.com/xiebiao/lending/internal/interface/http/handler"
	"github.com/xiebiao/lending/pkg/mq"
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================
// 有些依赖需要从Config中提取参数，或者按开关选择实现，
// Wire无法自动推断，需要手写Provider。
// 返回cleanup函数的Provider，Wire会按创建的逆序调用清理。

// provideDB 创建数据库连接，cleanup关闭连接池
func provideDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := sqlstore.NewDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideTxManager 事务管理器，带行锁等待上限
func provideTxManager(db *gorm.DB, cfg *config.Config) *sqlstore.TxManager {
	return sqlstore.NewTxManager(db, cfg.Lending.LockWaitTimeout)
}

// providePolicy 借阅规则
func providePolicy(cfg *config.Config) lending.Policy {
	policy := lending.DefaultPolicy()
	if cfg.Lending.LoanPeriodDays > 0 {
		policy.LoanPeriodDays = cfg.Lending.LoanPeriodDays
	}
	if cfg.Lending.TopActiveLimit > 0 {
		policy.TopActiveLimit = cfg.Lending.TopActiveLimit
	}
	return policy
}

// provideAvailabilityCache Redis启用时使用缓存，否则直接查库
func provideAvailabilityCache(cfg *config.Config, logger *zap.Logger) (lending.AvailabilityCache, func(), error) {
	if !cfg.Redis.Enabled {
		logger.Info("Redis未启用，可借情况查询直接访问数据库")
		return lending.NoCache, func() {}, nil
	}
	client, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = client.Close() }
	return redis.NewAvailabilityCache(client, cfg.Redis.AvailabilityTTL), cleanup, nil
}

// providePublisher RabbitMQ启用时发布到交换机，否则只写日志
func providePublisher(cfg *config.Config, logger *zap.Logger) (notification.Publisher, func(), error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ未启用，借阅通知只写日志")
		return notification.NewLogPublisher(logger), func() {}, nil
	}
	publisher, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.ExchangeType, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = publisher.Close() }
	return publisher, cleanup, nil
}

// provideDispatcher 创建并启动通知分发器，cleanup等待队列投递完
func provideDispatcher(publisher notification.Publisher, cfg *config.Config, logger *zap.Logger) (*notification.Dispatcher, func()) {
	n := cfg.Notification
	dispatcher := notification.NewDispatcher(publisher, notification.Config{
		Workers:         n.Workers,
		QueueSize:       n.QueueSize,
		RatePerSecond:   n.RatePerSecond,
		Burst:           n.Burst,
		PublishTimeout:  n.PublishTimeout,
		BreakerFailures: n.BreakerFailures,
		BreakerTimeout:  n.BreakerTimeout,
		DrainTimeout:    n.DrainTimeout,
	}, logger)
	dispatcher.Start()
	return dispatcher, dispatcher.Close
}

// provideGinEngine 创建Gin引擎并注册路由
func provideGinEngine(
	cfg *config.Config,
	logger *zap.Logger,
	lendingHandler *handler.LendingHandler,
	catalogHandler *handler.CatalogHandler,
) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode, gin.DebugMode:
		gin.SetMode(cfg.Server.Mode)
	}
	return lendinghttp.NewRouter(logger, lendingHandler, catalogHandler)
}

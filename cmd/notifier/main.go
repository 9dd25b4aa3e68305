// notifier 借阅通知消费者
//
// 订阅loan.created事件并记录投递。
// 消息至少投递一次，按event_id去重后再处理。
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/lending/internal/infrastructure/config"
	"github.com/xiebiao/lending/internal/infrastructure/notification"
	"github.com/xiebiao/lending/pkg/logger"
	"github.com/xiebiao/lending/pkg/mq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.EnableCaller)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	consumer, err := mq.NewConsumer(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.ExchangeType,
		cfg.RabbitMQ.Queue,
		[]string{notification.RoutingKeyLoanCreated},
		zlog,
	)
	if err != nil {
		zlog.Fatal("创建消费者失败", zap.Error(err))
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := newLoanCreatedHandler(zlog)
	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		zlog.Fatal("消费失败", zap.Error(err))
	}
}

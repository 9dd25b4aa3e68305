// Package notification 借阅通知的异步投递
//
// 借出事务提交之后才调用NotifyLoanCreated，它只把事件放进内存队列就返回：
// 队列满了直接丢弃并记日志，永远不阻塞、不影响借阅结果。
// 后台worker按限流速率取出事件，经熔断器发布到消息队列。
package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xiebiao/lending/pkg/circuitbreaker"
	"github.com/xiebiao/lending/pkg/metrics"
	"github.com/xiebiao/lending/pkg/tracing"
)

// RoutingKeyLoanCreated 借出成功事件的路由键
const RoutingKeyLoanCreated = "loan.created"

// Publisher 消息发布接口（pkg/mq.Publisher实现）
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// LoanCreatedEvent 借出成功事件
type LoanCreatedEvent struct {
	EventID    string    `json:"event_id"` // 消费方据此去重
	LoanID     uint      `json:"loan_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Config 投递配置
type Config struct {
	Workers         int
	QueueSize       int
	RatePerSecond   float64 // <=0表示不限流
	Burst           int
	PublishTimeout  time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	DrainTimeout    time.Duration // Close等待队列排空的上限，超时后剩余事件丢弃
}

// 投递结果（指标标签）
const (
	resultSent     = "sent"
	resultFailed   = "failed"
	resultRejected = "rejected" // 熔断打开，未调用下游
	resultDropped  = "dropped"  // 队列已满或已关闭
)

// Dispatcher 借阅通知分发器
type Dispatcher struct {
	publisher      Publisher
	breaker        *circuitbreaker.Breaker
	limiter        *rate.Limiter
	logger         *zap.Logger
	publishTimeout time.Duration
	drainTimeout   time.Duration
	workers        int

	queue chan LoanCreatedEvent
	wg    sync.WaitGroup

	// stopCtx在排空超时后取消，打断限流等待和正在进行的发布
	stopCtx context.Context
	stop    context.CancelFunc

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewDispatcher 创建分发器，调用Start后才开始投递
func NewDispatcher(publisher Publisher, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 3 * time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	stopCtx, stop := context.WithCancel(context.Background())
	return &Dispatcher{
		publisher: publisher,
		breaker: circuitbreaker.New("loan-notification", circuitbreaker.Config{
			MaxRequests:         1,
			Timeout:             cfg.BreakerTimeout,
			ConsecutiveFailures: cfg.BreakerFailures,
		}, logger),
		limiter:        rate.NewLimiter(limit, burst),
		logger:         logger,
		publishTimeout: cfg.PublishTimeout,
		drainTimeout:   cfg.DrainTimeout,
		workers:        cfg.Workers,
		queue:          make(chan LoanCreatedEvent, cfg.QueueSize),
		stopCtx:        stopCtx,
		stop:           stop,
	}
}

// Start 启动后台worker，重复调用无副作用
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	d.logger.Info("借阅通知分发器已启动", zap.Int("workers", d.workers), zap.Int("queue_size", cap(d.queue)))
}

// NotifyLoanCreated 投递借出成功通知（非阻塞，尽力而为）
// 必须在借出事务提交之后调用
func (d *Dispatcher) NotifyLoanCreated(ctx context.Context, loanID uint) {
	event := LoanCreatedEvent{
		EventID:    uuid.NewString(),
		LoanID:     loanID,
		TraceID:    tracing.ExtractTraceID(ctx),
		OccurredAt: time.Now().UTC(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "分发器已关闭")
		return
	}

	select {
	case d.queue <- event:
	default:
		d.drop(event, "通知队列已满")
	}
}

// Close 停止接收新事件，在DrainTimeout内投递队列中剩余事件
// 超时后取消限流等待，剩余事件丢弃
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	defer d.stop()

	if !started {
		// 没有worker，队列里的事件直接丢弃
		for event := range d.queue {
			d.drop(event, "分发器未启动")
		}
		return
	}

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(d.drainTimeout):
		d.logger.Warn("通知队列排空超时，丢弃剩余事件", zap.Duration("drain_timeout", d.drainTimeout))
		d.stop()
		<-drained
	}
	d.logger.Info("借阅通知分发器已关闭")
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for event := range d.queue {
		if err := d.limiter.Wait(d.stopCtx); err != nil {
			d.drop(event, "分发器关闭超时")
			continue
		}
		d.publish(event)
	}
}

func (d *Dispatcher) publish(event LoanCreatedEvent) {
	ctx, cancel := context.WithTimeout(d.stopCtx, d.publishTimeout)
	defer cancel()

	err := d.breaker.Execute(func() error {
		return d.publisher.Publish(ctx, RoutingKeyLoanCreated, event)
	})

	switch {
	case err == nil:
		metrics.IncCounterVec(metrics.LoanNotificationsTotal, map[string]string{"result": resultSent})
		d.logger.Debug("借阅通知已发布", zap.Uint("loan_id", event.LoanID), zap.String("event_id", event.EventID))
	case errors.Is(err, circuitbreaker.ErrOpenState) || errors.Is(err, circuitbreaker.ErrTooManyRequests):
		metrics.IncCounterVec(metrics.LoanNotificationsTotal, map[string]string{"result": resultRejected})
		d.logger.Warn("熔断中，借阅通知未发布", zap.Uint("loan_id", event.LoanID), zap.String("event_id", event.EventID))
	default:
		metrics.IncCounterVec(metrics.LoanNotificationsTotal, map[string]string{"result": resultFailed})
		d.logger.Warn("借阅通知发布失败",
			zap.Uint("loan_id", event.LoanID),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) drop(event LoanCreatedEvent, reason string) {
	metrics.IncCounterVec(metrics.LoanNotificationsTotal, map[string]string{"result": resultDropped})
	d.logger.Warn("借阅通知被丢弃",
		zap.Uint("loan_id", event.LoanID),
		zap.String("event_id", event.EventID),
		zap.String("reason", reason),
	)
}

// LogPublisher 未启用消息队列时使用，只记录日志
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher 创建日志发布者
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish 实现Publisher接口
func (p *LogPublisher) Publish(_ context.Context, routingKey string, message interface{}) error {
	p.logger.Info("借阅通知（未启用消息队列）", zap.String("routing_key", routingKey), zap.Any("message", message))
	return nil
}

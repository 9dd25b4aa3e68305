// Package circuitbreaker 在sony/gobreaker之上封装熔断器
//
// 熔断器核心思想：
// 1. 监控下游调用的失败次数
// 2. 连续失败达到阈值时快速失败（打开熔断器）
// 3. 过一段时间后放行少量探测请求（半开状态），成功则恢复
//
// 这里只负责统一配置、状态日志和状态指标，状态机本身交给gobreaker
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/xiebiao/lending/pkg/metrics"
)

// ErrOpenState 熔断器打开时的快速失败错误
var ErrOpenState = gobreaker.ErrOpenState

// ErrTooManyRequests 半开状态下探测请求已满
var ErrTooManyRequests = gobreaker.ErrTooManyRequests

// Config 熔断器配置
type Config struct {
	// MaxRequests 半开状态下允许的最大请求数（建议1-5）
	MaxRequests uint32

	// Interval 关闭状态下清零统计的周期，0表示不清零
	Interval time.Duration

	// Timeout 打开状态持续时间，过后转为半开
	Timeout time.Duration

	// ConsecutiveFailures 连续失败多少次后熔断
	ConsecutiveFailures uint32
}

// Breaker 熔断器
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New 创建熔断器
//
// 示例：
//
//	cb := circuitbreaker.New("loan-notification", circuitbreaker.Config{
//	    MaxRequests:         1,
//	    Timeout:             30 * time.Second,
//	    ConsecutiveFailures: 5,
//	}, logger)
func New(name string, cfg Config, logger *zap.Logger) *Breaker {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("熔断器状态变化",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(stateValue(to)))
		},
	}

	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, 0)
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute 通过熔断器执行调用
// 熔断打开时不调用fn，直接返回ErrOpenState
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// State 当前状态（closed / half-open / open）
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Name 熔断器名称
func (b *Breaker) Name() string {
	return b.cb.Name()
}

// stateValue 指标取值：0=CLOSED, 1=HALF_OPEN, 2=OPEN
func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

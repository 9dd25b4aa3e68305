// Package metrics 提供基于Prometheus的借阅指标
//
// 指标分三类：
//
// **1. 借阅业务指标**
//   - lending_operations_total{operation,result}: 借出/归还/续借次数，result为success或错误大类
//   - lending_operation_duration_seconds{operation}: 含等待行锁在内的事务耗时
//
// **2. 通知指标**
//   - loan_notifications_total{result}: published | failed | dropped | rejected
//   - circuit_breaker_state{name}: 0=CLOSED, 1=HALF_OPEN, 2=OPEN
//
// **3. HTTP指标**
//   - http_requests_total{method,path,status}
//   - http_request_duration_seconds{method,path}
//
// 所有指标在包初始化时通过promauto注册到默认Registry，
// 业务代码无需调用初始化函数，测试中也不会遇到nil指标。
//
// 查询示例（PromQL）：
//
//	# 借出失败率（按原因）
//	sum by (result) (rate(lending_operations_total{operation="loan",result!="success"}[5m]))
//
//	# 借出P99耗时（行锁排队会直接反映在这里）
//	histogram_quantile(0.99, rate(lending_operation_duration_seconds_bucket{operation="loan"}[5m]))
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LendingOperationsTotal 借阅操作总数（Counter）
	// 标签：operation（loan/return/extend）、result（success/not_found/...）
	LendingOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lending_operations_total",
			Help: "借阅操作总数",
		},
		[]string{"operation", "result"},
	)

	// LendingOperationDuration 借阅操作耗时（Histogram）
	// 同一本书的请求在行锁上排队，热门图书的耗时会明显偏高
	LendingOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lending_operation_duration_seconds",
			Help:    "借阅操作耗时（秒）",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	// LoanNotificationsTotal 借阅通知投递结果（Counter）
	LoanNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_notifications_total",
			Help: "借阅通知投递总数",
		},
		[]string{"result"},
	)

	// CircuitBreakerState 熔断器状态（Gauge）
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=HALF_OPEN, 2=OPEN）",
		},
		[]string{"name"},
	)

	// HTTPRequestsTotal HTTP请求总数（Counter）
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)
)

// Handler 暴露/metrics端点
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// ObserveLending 记录一次借阅操作的结果和耗时
func ObserveLending(operation, result string, seconds float64) {
	IncCounterVec(LendingOperationsTotal, map[string]string{"operation": operation, "result": result})
	ObserveHistogramVec(LendingOperationDuration, map[string]string{"operation": operation}, seconds)
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestObserveLending 测试借阅指标记录
func TestObserveLending(t *testing.T) {
	before := testutil.ToFloat64(LendingOperationsTotal.WithLabelValues("loan", "success"))

	ObserveLending("loan", "success", 0.02)
	ObserveLending("loan", "success", 0.03)

	after := testutil.ToFloat64(LendingOperationsTotal.WithLabelValues("loan", "success"))
	if after-before != 2 {
		t.Errorf("Counter增量错误: expected=2, got=%f", after-before)
	}

	// 不同result标签互不影响
	failed := testutil.ToFloat64(LendingOperationsTotal.WithLabelValues("loan", "precondition_failed"))
	ObserveLending("loan", "precondition_failed", 0.01)
	if got := testutil.ToFloat64(LendingOperationsTotal.WithLabelValues("loan", "precondition_failed")); got-failed != 1 {
		t.Errorf("失败计数增量错误: expected=1, got=%f", got-failed)
	}
}

// TestSetGaugeVec 测试熔断器状态Gauge
func TestSetGaugeVec(t *testing.T) {
	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "loan-notify"}, 2)

	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("loan-notify")); got != 2 {
		t.Errorf("Gauge值错误: expected=2, got=%f", got)
	}
}

// TestHandler 测试/metrics端点输出
func TestHandler(t *testing.T) {
	IncCounterVec(LoanNotificationsTotal, map[string]string{"result": "published"})

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "loan_notifications_total") {
		t.Error("输出中缺少loan_notifications_total")
	}
}

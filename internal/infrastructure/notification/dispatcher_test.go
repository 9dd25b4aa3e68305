package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/lending/pkg/metrics"
)

// fakePublisher 记录发布的事件，可以指定返回错误
type fakePublisher struct {
	mu     sync.Mutex
	events []LoanCreatedEvent
	keys   []string
	calls  int
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, message.(LoanCreatedEvent))
	return nil
}

func (p *fakePublisher) snapshot() ([]LoanCreatedEvent, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]LoanCreatedEvent(nil), p.events...), p.calls
}

func notificationCount(result string) float64 {
	return testutil.ToFloat64(metrics.LoanNotificationsTotal.WithLabelValues(result))
}

func TestDispatcher_Delivers(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, Config{Workers: 2, QueueSize: 16, BreakerTimeout: time.Minute}, zap.NewNop())
	d.Start()

	for id := uint(1); id <= 10; id++ {
		d.NotifyLoanCreated(context.Background(), id)
	}
	d.Close()

	events, calls := pub.snapshot()
	assert.Equal(t, 10, calls)
	require.Len(t, events, 10)

	seenLoans := make(map[uint]bool)
	seenIDs := make(map[string]bool)
	for _, e := range events {
		seenLoans[e.LoanID] = true
		seenIDs[e.EventID] = true
		assert.False(t, e.OccurredAt.IsZero())
	}
	assert.Len(t, seenLoans, 10)
	assert.Len(t, seenIDs, 10, "每个事件的EventID唯一")
	assert.Equal(t, RoutingKeyLoanCreated, pub.keys[0])
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, Config{Workers: 1, QueueSize: 1}, zap.NewNop())
	before := notificationCount(resultDropped)

	// 未启动worker，第一个事件占满队列
	done := make(chan struct{})
	go func() {
		for id := uint(1); id <= 3; id++ {
			d.NotifyLoanCreated(context.Background(), id)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyLoanCreated不应阻塞")
	}
	assert.Equal(t, before+2, notificationCount(resultDropped))

	d.Close()
	assert.Equal(t, before+3, notificationCount(resultDropped), "未启动时关闭，队列中的事件也被丢弃")

	_, calls := pub.snapshot()
	assert.Zero(t, calls)
}

func TestDispatcher_BreakerStopsCalls(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	d := NewDispatcher(pub, Config{
		Workers:         1,
		QueueSize:       16,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	}, zap.NewNop())
	rejectedBefore := notificationCount(resultRejected)
	failedBefore := notificationCount(resultFailed)

	d.Start()
	for id := uint(1); id <= 5; id++ {
		d.NotifyLoanCreated(context.Background(), id)
	}
	d.Close()

	_, calls := pub.snapshot()
	assert.Equal(t, 2, calls, "熔断后不再调用下游")
	assert.Equal(t, failedBefore+2, notificationCount(resultFailed))
	assert.Equal(t, rejectedBefore+3, notificationCount(resultRejected))
}

func TestDispatcher_CloseDrainTimeout(t *testing.T) {
	pub := &fakePublisher{}
	// 每1000秒只放行1个，第2个事件起限流等待永远等不到
	d := NewDispatcher(pub, Config{
		Workers:       1,
		QueueSize:     8,
		RatePerSecond: 0.001,
		Burst:         1,
		DrainTimeout:  100 * time.Millisecond,
	}, zap.NewNop())
	droppedBefore := notificationCount(resultDropped)

	d.Start()
	for id := uint(1); id <= 3; id++ {
		d.NotifyLoanCreated(context.Background(), id)
	}

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("排空超时后Close必须返回")
	}

	events, _ := pub.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, uint(1), events[0].LoanID)
	assert.Equal(t, droppedBefore+2, notificationCount(resultDropped))
}

func TestDispatcher_NotifyAfterClose(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, Config{Workers: 1, QueueSize: 4}, zap.NewNop())
	d.Start()
	d.Close()
	d.Close() // 重复关闭无副作用

	assert.NotPanics(t, func() {
		d.NotifyLoanCreated(context.Background(), 1)
	})
	_, calls := pub.snapshot()
	assert.Zero(t, calls)
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(zap.NewNop())
	assert.NoError(t, p.Publish(context.Background(), RoutingKeyLoanCreated, LoanCreatedEvent{LoanID: 1}))
}

package main

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/xiebiao/lending/internal/infrastructure/notification"
)

// seenLimit 内存里最多记住多少个event_id
const seenLimit = 10000

// loanCreatedHandler 处理loan.created消息
// 重复投递的事件只记录一次
type loanCreatedHandler struct {
	logger *zap.Logger

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

func newLoanCreatedHandler(logger *zap.Logger) *loanCreatedHandler {
	return &loanCreatedHandler{
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Handle 返回错误会导致消息重新入队
// 格式错误或缺少字段的消息重投也不会变好，记录日志后直接确认丢弃
func (h *loanCreatedHandler) Handle(body []byte) error {
	var event notification.LoanCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("丢弃格式错误的消息", zap.ByteString("body", body), zap.Error(err))
		return nil
	}
	if event.EventID == "" || event.LoanID == 0 {
		h.logger.Warn("丢弃缺少event_id或loan_id的消息", zap.ByteString("body", body))
		return nil
	}

	if !h.markSeen(event.EventID) {
		h.logger.Debug("重复事件，跳过", zap.String("event_id", event.EventID))
		return nil
	}

	h.logger.Info("借出通知已送达",
		zap.String("event_id", event.EventID),
		zap.Uint("loan_id", event.LoanID),
		zap.String("trace_id", event.TraceID),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

// markSeen 第一次见到返回true
func (h *loanCreatedHandler) markSeen(eventID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.seen[eventID]; ok {
		return false
	}
	h.seen[eventID] = struct{}{}
	h.order = append(h.order, eventID)
	if len(h.order) > seenLimit {
		delete(h.seen, h.order[0])
		h.order = h.order[1:]
	}
	return true
}

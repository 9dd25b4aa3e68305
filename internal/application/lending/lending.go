// Package lending 借阅核心用例
//
// 借出和归还在同一个事务里完成"锁图书行 → 校验 → 写借阅 → 调整可借数量 → 写流水"，
// 同一本书的借还在图书行锁上排队，不同图书之间完全并行。
// 加锁顺序固定为先图书行、后借阅行，借出与归还一致，避免死锁。
// 通知和缓存失效只在事务提交之后进行，失败不影响借还结果。
package lending

import (
	"context"
	"time"

	"github.com/xiebiao/lending/internal/domain/book"
	"github.com/xiebiao/lending/internal/domain/loan"
	apperrors "github.com/xiebiao/lending/pkg/errors"
	"github.com/xiebiao/lending/pkg/metrics"
)

const tracerName = "lending"

// Notifier 借出成功通知（事务提交后调用，尽力而为，不关心结果）
type Notifier interface {
	NotifyLoanCreated(ctx context.Context, loanID uint)
}

// AvailabilityCache 可借情况缓存
type AvailabilityCache interface {
	Get(ctx context.Context, bookID uint) (*book.Availability, bool, error)
	Set(ctx context.Context, a *book.Availability) error
	Invalidate(ctx context.Context, bookID uint) error
}

// Policy 借阅规则
type Policy struct {
	LoanPeriodDays int // 默认借期（天）
	TopActiveLimit int // 活跃会员榜单长度
}

// DefaultPolicy 默认规则：借期14天，榜单5人
func DefaultPolicy() Policy {
	return Policy{LoanPeriodDays: loan.DefaultPeriodDays, TopActiveLimit: 5}
}

// NoCache 不使用缓存（Redis未启用时）
var NoCache AvailabilityCache = noCache{}

type noCache struct{}

func (noCache) Get(context.Context, uint) (*book.Availability, bool, error) { return nil, false, nil }
func (noCache) Set(context.Context, *book.Availability) error              { return nil }
func (noCache) Invalidate(context.Context, uint) error                     { return nil }

// NoNotifier 不发送通知
var NoNotifier Notifier = noNotifier{}

type noNotifier struct{}

func (noNotifier) NotifyLoanCreated(context.Context, uint) {}

// resultLabel 指标结果标签：成功为ok，失败为错误大类
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return apperrors.KindOf(err).String()
}

// observe 记录一次用例执行的结果和耗时
func observe(operation string, start time.Time, err error) {
	metrics.ObserveLending(operation, resultLabel(err), time.Since(start).Seconds())
}

package loan

import (
	"context"
	"time"
)

// Repository 借阅仓储接口
// 教学要点：
// 1. 支持事务操作（通过context传递事务）
// 2. 加锁顺序固定：先锁图书行，再锁借阅行，借出与归还一致，避免死锁
type Repository interface {
	// Create 创建进行中的借阅，回填ID
	// 同一(book, member)已有进行中借阅时返回ErrDuplicateActiveLoan
	Create(ctx context.Context, loan *Loan) error

	// FindActiveForUpdate 加锁查询(book, member)的进行中借阅
	// 并发归还同一笔借阅时，后到者阻塞到先到者提交，然后查不到记录
	// 不存在时返回ErrNoActiveLoan
	FindActiveForUpdate(ctx context.Context, bookID, memberID uint) (*Loan, error)

	// Close 标记归还
	// 只更新仍为进行中的记录，未更新任何行时返回false（已被关闭或已删除），不重试
	Close(ctx context.Context, loanID uint, returnedAt time.Time) (bool, error)

	// ExtendDueDate 续借：due_date = due_date + additionalDays天
	// 表达式更新，不先读取当前应还日期，并发续借不会丢失
	// 未匹配任何行时返回false
	ExtendDueDate(ctx context.Context, loanID uint, additionalDays int) (bool, error)

	// FindByID 根据ID查询借阅
	FindByID(ctx context.Context, id uint) (*Loan, error)

	// CountActiveByBook 某本书进行中的借阅数
	CountActiveByBook(ctx context.Context, bookID uint) (int64, error)
}

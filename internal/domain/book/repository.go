package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. LockByID和AdjustAvailable必须在事务内调用(通过context传递事务)
type Repository interface {
	// Create 登记图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书(不加锁,只读)
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// LockByID 悲观锁查询图书
	// SELECT ... FOR UPDATE,其他事务对同一行加锁时阻塞到本事务结束
	// 同一本书的借出/归还在这里串行化
	LockByID(ctx context.Context, id uint) (*Book, error)

	// AdjustAvailable 原子调整可借数量
	// UPDATE books SET available_copies = available_copies + ? WHERE id = ?
	// 不做读-改-写,即使调用前没有LockByID也不会丢失更新
	AdjustAvailable(ctx context.Context, id uint, delta int) error
}

// LedgerRepository 库存流水仓储
type LedgerRepository interface {
	// Append 追加一条流水(与AdjustAvailable同一事务)
	Append(ctx context.Context, entry *LedgerEntry) error

	// ListByBook 按时间顺序列出某本书的流水
	ListByBook(ctx context.Context, bookID uint) ([]*LedgerEntry, error)

	// SumDelta 某本书所有流水的delta之和
	SumDelta(ctx context.Context, bookID uint) (int, error)
}

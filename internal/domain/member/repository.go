package member

import (
	"context"
)

// Repository 会员仓储接口
// DDD设计说明：
// 1. 接口定义在domain层（依赖倒置原则）
// 2. 具体实现在infrastructure/persistence/sqlstore
type Repository interface {
	// Create 登记会员
	// 如果邮箱已存在，返回ErrEmailDuplicate
	Create(ctx context.Context, member *Member) error

	// FindByID 根据ID查找会员
	// 如果不存在，返回ErrMemberNotFound
	FindByID(ctx context.Context, id uint) (*Member, error)

	// Exists 轻量存在性检查（不加锁）
	Exists(ctx context.Context, id uint) (bool, error)

	// TopActive 进行中借阅最多的会员，至少有一笔进行中借阅才会上榜
	TopActive(ctx context.Context, limit int) ([]*ActiveMember, error)
}

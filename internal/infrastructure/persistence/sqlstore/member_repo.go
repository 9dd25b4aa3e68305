package sqlstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/lending/internal/domain/member"
)

// memberRepository 会员仓储实现
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建会员仓储
func NewMemberRepository(db *gorm.DB) member.Repository {
	return &memberRepository{db: db}
}

// Create 登记会员
func (r *memberRepository) Create(ctx context.Context, m *member.Member) error {
	model := &MemberModel{
		Name:  m.Name,
		Email: m.Email,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return member.ErrEmailDuplicate
		}
		return classifyError(err, "登记会员失败")
	}
	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	m.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找会员
func (r *memberRepository) FindByID(ctx context.Context, id uint) (*member.Member, error) {
	var model MemberModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, member.ErrMemberNotFound
		}
		return nil, classifyError(err, "查询会员失败")
	}
	return &member.Member{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// Exists 存在性检查,不加锁
// 事务内调用时走事务连接(SQLite单连接下走默认连接会死锁)
func (r *memberRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := getDB(ctx, r.db).Model(&MemberModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, classifyError(err, "查询会员失败")
	}
	return count > 0, nil
}

// TopActive 进行中借阅最多的会员
// SELECT m.id, m.name, COUNT(l.id) FROM members m
// JOIN loans l ON l.member_id = m.id AND l.is_returned = false
// GROUP BY m.id, m.name ORDER BY COUNT(l.id) DESC, m.id ASC LIMIT ?
func (r *memberRepository) TopActive(ctx context.Context, limit int) ([]*member.ActiveMember, error) {
	var rows []*member.ActiveMember
	err := getDB(ctx, r.db).
		Table("members AS m").
		Select("m.id AS member_id, m.name AS name, COUNT(l.id) AS active_loans").
		Joins("JOIN loans AS l ON l.member_id = m.id AND l.is_returned = ?", false).
		Group("m.id, m.name").
		Order("active_loans DESC, m.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, classifyError(err, "查询活跃会员失败")
	}
	return rows, nil
}

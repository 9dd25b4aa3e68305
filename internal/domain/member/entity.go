package member

import (
	"time"
)

// Member 会员实体
// 借阅核心只关心会员是否存在,不修改会员数据
type Member struct {
	ID        uint
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMember 创建新会员（工厂方法）
func NewMember(name, email string) *Member {
	now := time.Now()
	return &Member{
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ActiveMember 活跃会员读模型（按进行中借阅数排序）
type ActiveMember struct {
	MemberID    uint   `json:"member_id"`
	Name        string `json:"name"`
	ActiveLoans int64  `json:"active_loans"`
}

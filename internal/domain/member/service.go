package member

import (
	"context"
	"regexp"
	"strings"
)

// Service 会员领域服务
// 设计说明：
// 1. 会员登记的校验规则放在这里，借阅核心只依赖Repository.Exists
// 2. Service依赖Repository接口，不依赖具体实现
type Service interface {
	// Register 登记会员
	Register(ctx context.Context, name, email string) (*Member, error)

	// GetMemberByID 根据ID获取会员
	GetMemberByID(ctx context.Context, id uint) (*Member, error)
}

type service struct {
	repo Repository
}

// NewService 创建会员服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register 登记会员
// 业务规则：
// 1. 姓名1-100个字符
// 2. 邮箱格式校验
// 3. 邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, name, email string) (*Member, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < 1 || n > 100 {
		return nil, ErrInvalidName
	}
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	m := NewMember(name, strings.ToLower(email))
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err // Repository已转换为ErrEmailDuplicate
	}
	return m, nil
}

// GetMemberByID 根据ID获取会员
func (s *service) GetMemberByID(ctx context.Context, id uint) (*Member, error) {
	return s.repo.FindByID(ctx, id)
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// isValidEmail 邮箱格式校验（用户名@域名.后缀）
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

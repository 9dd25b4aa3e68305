package member

import (
	"context"

	"github.com/xiebiao/lending/internal/domain/member"
)

// RegisterMemberUseCase 会员登记用例
// 只调用一个领域服务,借阅相关的会员数据由lending用例只读访问
type RegisterMemberUseCase struct {
	memberService member.Service
}

// NewRegisterMemberUseCase 创建会员登记用例
func NewRegisterMemberUseCase(memberService member.Service) *RegisterMemberUseCase {
	return &RegisterMemberUseCase{memberService: memberService}
}

// RegisterMemberRequest 登记请求
type RegisterMemberRequest struct {
	Name  string
	Email string
}

// RegisterMemberResponse 登记响应
type RegisterMemberResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// Execute 执行登记
func (uc *RegisterMemberUseCase) Execute(ctx context.Context, req RegisterMemberRequest) (*RegisterMemberResponse, error) {
	m, err := uc.memberService.Register(ctx, req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	// 领域实体 → 应用层DTO
	return &RegisterMemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

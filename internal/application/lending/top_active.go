package lending

import (
	"context"
	"time"

	"github.com/xiebiao/lending/internal/domain/member"
	"github.com/xiebiao/lending/pkg/tracing"
)

// TopActiveMembersUseCase 活跃会员榜单
// 按进行中的借阅数降序,没有进行中借阅的会员不上榜
type TopActiveMembersUseCase struct {
	memberRepo member.Repository
	limit      int
}

// NewTopActiveMembersUseCase 创建榜单用例
func NewTopActiveMembersUseCase(memberRepo member.Repository, policy Policy) *TopActiveMembersUseCase {
	limit := policy.TopActiveLimit
	if limit <= 0 {
		limit = DefaultPolicy().TopActiveLimit
	}
	return &TopActiveMembersUseCase{memberRepo: memberRepo, limit: limit}
}

// Execute 查询榜单
func (uc *TopActiveMembersUseCase) Execute(ctx context.Context) (members []*member.ActiveMember, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "TopActiveMembers")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		observe("top_active", start, err)
	}()

	return uc.memberRepo.TopActive(ctx, uc.limit)
}

package lending

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/lending/internal/domain/loan"
	"github.com/xiebiao/lending/pkg/tracing"
)

// ExtendDueDateUseCase 续借用例
// 只更新一行,不需要跨实体事务
type ExtendDueDateUseCase struct {
	loanRepo loan.Repository
	logger   *zap.Logger
}

// NewExtendDueDateUseCase 创建续借用例
func NewExtendDueDateUseCase(loanRepo loan.Repository, logger *zap.Logger) *ExtendDueDateUseCase {
	return &ExtendDueDateUseCase{loanRepo: loanRepo, logger: logger}
}

// ExtendDueDateRequest 续借请求
type ExtendDueDateRequest struct {
	LoanID         uint
	AdditionalDays int
}

// ExtendDueDateResponse 续借结果
type ExtendDueDateResponse struct {
	LoanID         uint `json:"loan_id"`
	AdditionalDays int  `json:"additional_days"`
}

// Execute 执行续借
// 教学要点:
//  1. 负数天数在访问存储之前拒绝
//  2. due_date = due_date + N天 由数据库计算,不先读再写,
//     两个并发续借(1天和2天)最终一定共延长3天
//  3. 按ID直接更新,不做存在性预查;没有匹配行即借阅不存在
func (uc *ExtendDueDateUseCase) Execute(ctx context.Context, req ExtendDueDateRequest) (resp *ExtendDueDateResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "ExtendDueDate")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		observe("extend", start, err)
	}()

	if err := loan.ValidateExtension(req.AdditionalDays); err != nil {
		return nil, err
	}

	updated, err := uc.loanRepo.ExtendDueDate(ctx, req.LoanID, req.AdditionalDays)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, loan.ErrLoanNotFound
	}

	uc.logger.Info("续借成功", zap.Uint("loan_id", req.LoanID), zap.Int("additional_days", req.AdditionalDays))
	return &ExtendDueDateResponse{LoanID: req.LoanID, AdditionalDays: req.AdditionalDays}, nil
}

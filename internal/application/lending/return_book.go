package lending

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/lending/internal/domain/book"
	"github.com/xiebiao/lending/internal/domain/loan"
	"github.com/xiebiao/lending/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/lending/pkg/tracing"
)

// ReturnBookUseCase 归还图书用例
type ReturnBookUseCase struct {
	bookRepo   book.Repository
	loanRepo   loan.Repository
	ledgerRepo book.LedgerRepository
	txManager  *sqlstore.TxManager
	cache      AvailabilityCache
	logger     *zap.Logger
	now        func() time.Time
}

// NewReturnBookUseCase 创建归还用例
func NewReturnBookUseCase(
	bookRepo book.Repository,
	loanRepo loan.Repository,
	ledgerRepo book.LedgerRepository,
	txManager *sqlstore.TxManager,
	cache AvailabilityCache,
	logger *zap.Logger,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		bookRepo:   bookRepo,
		loanRepo:   loanRepo,
		ledgerRepo: ledgerRepo,
		txManager:  txManager,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

// ReturnBookRequest 归还请求
type ReturnBookRequest struct {
	BookID   uint
	MemberID uint
}

// ReturnBookResponse 归还结果
type ReturnBookResponse struct {
	LoanID          uint      `json:"loan_id"`
	ReturnDate      time.Time `json:"return_date"`
	Overdue         bool      `json:"overdue"`          // 归还时是否已逾期
	AvailableCopies int       `json:"available_copies"` // 归还后的可借数量
}

// Execute 执行归还
// 教学要点:
//  1. 先锁图书行,与借出的加锁顺序一致
//  2. 再加锁查询进行中的借阅:两个并发归还同一笔借阅时,
//     后到者等先到者提交后才能查询,此时借阅已关闭,返回ErrNoActiveLoan,
//     可借数量不会被加两次
func (uc *ReturnBookUseCase) Execute(ctx context.Context, req ReturnBookRequest) (resp *ReturnBookResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReturnBook")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		observe("return", start, err)
	}()

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
		if err != nil {
			return err
		}

		l, err := uc.loanRepo.FindActiveForUpdate(txCtx, req.BookID, req.MemberID)
		if err != nil {
			return err
		}

		now := uc.now().UTC()
		overdue := l.IsOverdue(now)
		if err := l.MarkReturned(now); err != nil {
			return err
		}

		closed, err := uc.loanRepo.Close(txCtx, l.ID, now)
		if err != nil {
			return err
		}
		if !closed {
			// 加锁查询之后仍然没有关闭任何行,只报告不重试
			return loan.ErrNoActiveLoan
		}

		if err := uc.bookRepo.AdjustAvailable(txCtx, req.BookID, 1); err != nil {
			return err
		}
		if err := uc.ledgerRepo.Append(txCtx, book.NewLedgerEntry(req.BookID, l.ID, book.ChangeReturn)); err != nil {
			return err
		}

		resp = &ReturnBookResponse{
			LoanID:          l.ID,
			ReturnDate:      *l.ReturnDate,
			Overdue:         overdue,
			AvailableCopies: b.AvailableCopies + 1,
		}
		return nil
	})
	if err != nil {
		uc.logger.Info("归还失败",
			zap.Uint("book_id", req.BookID),
			zap.Uint("member_id", req.MemberID),
			zap.Error(err),
		)
		return nil, err
	}

	if cacheErr := uc.cache.Invalidate(ctx, req.BookID); cacheErr != nil {
		uc.logger.Warn("可借情况缓存失效失败", zap.Uint("book_id", req.BookID), zap.Error(cacheErr))
	}

	uc.logger.Info("归还成功",
		zap.Uint("loan_id", resp.LoanID),
		zap.Uint("book_id", req.BookID),
		zap.Uint("member_id", req.MemberID),
		zap.Bool("overdue", resp.Overdue),
	)
	return resp, nil
}

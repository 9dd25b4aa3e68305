package lending

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/lending/internal/domain/book"
	"github.com/xiebiao/lending/internal/domain/loan"
	"github.com/xiebiao/lending/internal/domain/member"
	"github.com/xiebiao/lending/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/lending/pkg/tracing"
)

// LoanBookUseCase 借出图书用例
// 教学要点:这是整个项目最核心的用例
// 涉及:事务处理、悲观锁、提交后的副作用
type LoanBookUseCase struct {
	memberRepo member.Repository
	bookRepo   book.Repository
	loanRepo   loan.Repository
	ledgerRepo book.LedgerRepository
	txManager  *sqlstore.TxManager
	notifier   Notifier
	cache      AvailabilityCache
	policy     Policy
	logger     *zap.Logger
	now        func() time.Time
}

// NewLoanBookUseCase 创建借出用例
func NewLoanBookUseCase(
	memberRepo member.Repository,
	bookRepo book.Repository,
	loanRepo loan.Repository,
	ledgerRepo book.LedgerRepository,
	txManager *sqlstore.TxManager,
	notifier Notifier,
	cache AvailabilityCache,
	policy Policy,
	logger *zap.Logger,
) *LoanBookUseCase {
	return &LoanBookUseCase{
		memberRepo: memberRepo,
		bookRepo:   bookRepo,
		loanRepo:   loanRepo,
		ledgerRepo: ledgerRepo,
		txManager:  txManager,
		notifier:   notifier,
		cache:      cache,
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

// LoanBookRequest 借出请求
type LoanBookRequest struct {
	BookID   uint
	MemberID uint
}

// LoanBookResponse 借出结果
type LoanBookResponse struct {
	LoanID          uint      `json:"loan_id"`
	BookID          uint      `json:"book_id"`
	MemberID        uint      `json:"member_id"`
	LoanDate        time.Time `json:"loan_date"`
	DueDate         time.Time `json:"due_date"`
	AvailableCopies int       `json:"available_copies"` // 借出后的可借数量
}

// Execute 执行借出
//
// 核心问题:超借
// 场景:某书只剩1本,10人同时借
// 错误实现:先查available_copies,判断>0,再写回available_copies-1
// 结果:多个请求都通过判断,借出数超过馆藏
//
// 正确实现:悲观锁
//  1. 校验会员存在(不加锁)
//  2. SELECT FOR UPDATE 锁定图书行,同一本书的请求在这里排队
//  3. 锁内判断可借数量
//  4. 创建借阅记录
//  5. available_copies = available_copies - 1
//  6. COMMIT释放锁,之后才发送通知
func (uc *LoanBookUseCase) Execute(ctx context.Context, req LoanBookRequest) (resp *LoanBookResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "LoanBook")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		observe("loan", start, err)
	}()

	var created *loan.Loan
	var remaining int
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 步骤1:会员存在性校验
		exists, err := uc.memberRepo.Exists(txCtx, req.MemberID)
		if err != nil {
			return err
		}
		if !exists {
			return member.ErrMemberNotFound
		}

		// 步骤2:锁定图书行
		b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
		if err != nil {
			return err
		}

		// 步骤3:锁内检查可借数量
		if !b.HasAvailableCopy() {
			return book.ErrNoCopiesAvailable
		}

		// 步骤4:创建借阅记录
		l := loan.NewLoan(req.BookID, req.MemberID, uc.now(), uc.policy.LoanPeriodDays)
		if err := uc.loanRepo.Create(txCtx, l); err != nil {
			return err
		}

		// 步骤5:扣减可借数量并记流水
		if err := uc.bookRepo.AdjustAvailable(txCtx, req.BookID, -1); err != nil {
			return err
		}
		if err := uc.ledgerRepo.Append(txCtx, book.NewLedgerEntry(req.BookID, l.ID, book.ChangeLend)); err != nil {
			return err
		}

		created = l
		remaining = b.AvailableCopies - 1
		return nil
	})
	if err != nil {
		uc.logger.Info("借出失败",
			zap.Uint("book_id", req.BookID),
			zap.Uint("member_id", req.MemberID),
			zap.Error(err),
		)
		return nil, err
	}

	// 事务已提交,以下副作用失败都不影响借出结果
	if cacheErr := uc.cache.Invalidate(ctx, req.BookID); cacheErr != nil {
		uc.logger.Warn("可借情况缓存失效失败", zap.Uint("book_id", req.BookID), zap.Error(cacheErr))
	}
	uc.notifier.NotifyLoanCreated(ctx, created.ID)

	uc.logger.Info("借出成功",
		zap.Uint("loan_id", created.ID),
		zap.Uint("book_id", req.BookID),
		zap.Uint("member_id", req.MemberID),
		zap.Time("due_date", created.DueDate),
	)

	return &LoanBookResponse{
		LoanID:          created.ID,
		BookID:          created.BookID,
		MemberID:        created.MemberID,
		LoanDate:        created.LoanDate,
		DueDate:         created.DueDate,
		AvailableCopies: remaining,
	}, nil
}

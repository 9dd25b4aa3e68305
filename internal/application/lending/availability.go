package lending

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/lending/internal/domain/book"
	"github.com/xiebiao/lending/pkg/tracing"
)

// GetAvailabilityUseCase 查询图书可借情况(Cache-Aside)
// 只读,不加锁;借还提交后会删除缓存
type GetAvailabilityUseCase struct {
	bookRepo book.Repository
	cache    AvailabilityCache
	logger   *zap.Logger
}

// NewGetAvailabilityUseCase 创建查询用例
func NewGetAvailabilityUseCase(bookRepo book.Repository, cache AvailabilityCache, logger *zap.Logger) *GetAvailabilityUseCase {
	return &GetAvailabilityUseCase{bookRepo: bookRepo, cache: cache, logger: logger}
}

// Execute 查询可借情况
// 缓存读写失败只记日志,回源数据库
func (uc *GetAvailabilityUseCase) Execute(ctx context.Context, bookID uint) (a *book.Availability, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetAvailability")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		observe("availability", start, err)
	}()

	cached, hit, cacheErr := uc.cache.Get(ctx, bookID)
	if cacheErr != nil {
		uc.logger.Warn("读取可借情况缓存失败", zap.Uint("book_id", bookID), zap.Error(cacheErr))
	}
	if hit {
		return cached, nil
	}

	b, err := uc.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	a = b.Availability()
	if cacheErr := uc.cache.Set(ctx, a); cacheErr != nil {
		uc.logger.Warn("写入可借情况缓存失败", zap.Uint("book_id", bookID), zap.Error(cacheErr))
	}
	return a, nil
}

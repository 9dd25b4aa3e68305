package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/lending/internal/domain/book"
)

// ledgerRepository 库存流水仓储实现
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建库存流水仓储
func NewLedgerRepository(db *gorm.DB) book.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Append 追加流水(必须与AdjustAvailable在同一事务)
func (r *ledgerRepository) Append(ctx context.Context, entry *book.LedgerEntry) error {
	model := &LedgerEntryModel{
		BookID:     entry.BookID,
		LoanID:     entry.LoanID,
		ChangeType: string(entry.ChangeType),
		Delta:      entry.Delta,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return classifyError(err, "写入库存流水失败")
	}
	entry.ID = model.ID
	entry.CreatedAt = model.CreatedAt
	return nil
}

// ListByBook 按写入顺序列出流水
func (r *ledgerRepository) ListByBook(ctx context.Context, bookID uint) ([]*book.LedgerEntry, error) {
	var models []LedgerEntryModel
	if err := getDB(ctx, r.db).Where("book_id = ?", bookID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, classifyError(err, "查询库存流水失败")
	}

	entries := make([]*book.LedgerEntry, len(models))
	for i := range models {
		entries[i] = &book.LedgerEntry{
			ID:         models[i].ID,
			BookID:     models[i].BookID,
			LoanID:     models[i].LoanID,
			ChangeType: book.ChangeType(models[i].ChangeType),
			Delta:      models[i].Delta,
			CreatedAt:  models[i].CreatedAt,
		}
	}
	return entries, nil
}

// SumDelta 某本书流水delta之和
func (r *ledgerRepository) SumDelta(ctx context.Context, bookID uint) (int, error) {
	var sum int64
	err := getDB(ctx, r.db).Model(&LedgerEntryModel{}).
		Where("book_id = ?", bookID).
		Select("COALESCE(SUM(delta), 0)").
		Row().Scan(&sum)
	if err != nil {
		return 0, classifyError(err, "统计库存流水失败")
	}
	return int(sum), nil
}

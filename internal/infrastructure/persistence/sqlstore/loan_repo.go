package sqlstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/lending/internal/domain/loan"
)

// loanRepository 借阅仓储实现
// 教学要点:
// 1. 事务通过context传递,所有方法都使用getDB
// 2. 归还、续借都是带条件的UPDATE,用受影响行数判断结果
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository 创建借阅仓储
func NewLoanRepository(db *gorm.DB) loan.Repository {
	return &loanRepository{db: db}
}

// Create 创建进行中的借阅
// 唯一索引uk_loans_active冲突说明该会员已借此书未还
func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	active := true
	model := &LoanModel{
		BookID:     l.BookID,
		MemberID:   l.MemberID,
		LoanDate:   l.LoanDate,
		DueDate:    l.DueDate,
		IsReturned: false,
		Active:     &active,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return loan.ErrDuplicateActiveLoan
		}
		return classifyError(err, "创建借阅失败")
	}

	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	l.UpdatedAt = model.UpdatedAt
	return nil
}

// FindActiveForUpdate 加锁查询进行中的借阅
// SELECT * FROM loans WHERE book_id = ? AND member_id = ? AND is_returned = false FOR UPDATE
func (r *loanRepository) FindActiveForUpdate(ctx context.Context, bookID, memberID uint) (*loan.Loan, error) {
	var model LoanModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("book_id = ? AND member_id = ? AND is_returned = ?", bookID, memberID, false).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrNoActiveLoan
		}
		return nil, classifyError(err, "锁定借阅失败")
	}
	return toLoanEntity(&model), nil
}

// Close 标记归还,同时清除进行中标记
// UPDATE loans SET is_returned = true, return_date = ?, active = NULL
// WHERE id = ? AND is_returned = false
func (r *loanRepository) Close(ctx context.Context, loanID uint, returnedAt time.Time) (bool, error) {
	result := getDB(ctx, r.db).Model(&LoanModel{}).
		Where("id = ? AND is_returned = ?", loanID, false).
		Updates(map[string]interface{}{
			"is_returned": true,
			"return_date": returnedAt.UTC(),
			"active":      nil,
		})
	if result.Error != nil {
		return false, classifyError(result.Error, "归还借阅失败")
	}
	return result.RowsAffected > 0, nil
}

// ExtendDueDate 续借
// UPDATE loans SET due_date = <due_date加N天> WHERE id = ?
// 只按ID匹配,不做存在性预查
func (r *loanRepository) ExtendDueDate(ctx context.Context, loanID uint, additionalDays int) (bool, error) {
	db := getDB(ctx, r.db)
	result := db.Model(&LoanModel{}).
		Where("id = ?", loanID).
		Update("due_date", gorm.Expr(dueDateAddExpr(db), additionalDays))
	if result.Error != nil {
		return false, classifyError(result.Error, "续借失败")
	}
	return result.RowsAffected > 0, nil
}

// FindByID 根据ID查询借阅
func (r *loanRepository) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var model LoanModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, classifyError(err, "查询借阅失败")
	}
	return toLoanEntity(&model), nil
}

// CountActiveByBook 某本书进行中的借阅数
func (r *loanRepository) CountActiveByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&LoanModel{}).
		Where("book_id = ? AND is_returned = ?", bookID, false).
		Count(&count).Error
	if err != nil {
		return 0, classifyError(err, "统计借阅失败")
	}
	return count, nil
}

// toLoanEntity GORM模型 → 领域实体
func toLoanEntity(model *LoanModel) *loan.Loan {
	l := &loan.Loan{
		ID:         model.ID,
		BookID:     model.BookID,
		MemberID:   model.MemberID,
		LoanDate:   model.LoanDate.UTC(),
		DueDate:    model.DueDate.UTC(),
		IsReturned: model.IsReturned,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
	if model.ReturnDate != nil {
		returned := model.ReturnDate.UTC()
		l.ReturnDate = &returned
	}
	return l
}

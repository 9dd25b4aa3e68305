package loan

import (
	"time"
)

// DefaultPeriodDays 默认借期（天）
const DefaultPeriodDays = 14

// Loan 借阅记录（聚合根）
// 教学要点：
// 1. 创建时为进行中状态（IsReturned=false, ReturnDate=nil）
// 2. 归还恰好发生一次，之后不再变化；借阅记录从不删除
// 3. ReturnDate非空 当且仅当 IsReturned为true
// 4. DueDate是日历日期（UTC零点），续借按整天累加
type Loan struct {
	ID         uint
	BookID     uint
	MemberID   uint
	LoanDate   time.Time
	DueDate    time.Time
	IsReturned bool
	ReturnDate *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewLoan 创建进行中的借阅（工厂方法）
// now由调用方传入，便于测试固定时间
func NewLoan(bookID, memberID uint, now time.Time, periodDays int) *Loan {
	now = now.UTC()
	return &Loan{
		BookID:    bookID,
		MemberID:  memberID,
		LoanDate:  now,
		DueDate:   DueDateFrom(now, periodDays),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DueDateFrom 计算应还日期：借出当天（UTC）零点再加periodDays天
func DueDateFrom(loanDate time.Time, periodDays int) time.Time {
	y, m, d := loanDate.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, periodDays)
}

// IsActive 是否为进行中的借阅
func (l *Loan) IsActive() bool {
	return !l.IsReturned
}

// MarkReturned 标记归还（领域行为）
// 已归还的借阅不能再次归还
func (l *Loan) MarkReturned(now time.Time) error {
	if l.IsReturned {
		return ErrNoActiveLoan
	}
	returned := now.UTC()
	l.IsReturned = true
	l.ReturnDate = &returned
	l.UpdatedAt = returned
	return nil
}

// IsOverdue 在now时刻是否逾期（进行中且已过应还日期）
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsActive() && now.UTC().After(l.DueDate.AddDate(0, 0, 1))
}

// MaxExtensionDays 单次续借天数上限
// 超出后数据库日期运算会溢出或得到NULL
const MaxExtensionDays = 3650

// ValidateExtension 续借天数必须在[0, MaxExtensionDays]内，在访问存储之前校验
func ValidateExtension(additionalDays int) error {
	if additionalDays < 0 || additionalDays > MaxExtensionDays {
		return ErrInvalidExtension
	}
	return nil
}

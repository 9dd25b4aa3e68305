package book

import (
	"time"
)

// Book 图书实体(库存台账的聚合根)
// 设计说明:
// 1. TotalCopies是馆藏副本总数,登记后不随借还变化
// 2. AvailableCopies是当前可借副本数,只能在行锁内通过原子增减修改
// 3. 任意已提交时刻: AvailableCopies + 进行中借阅数 == TotalCopies
type Book struct {
	ID              uint
	ISBN            string // ISBN号(国际标准书号)
	Title           string // 书名
	Author          string // 作者
	TotalCopies     int    // 馆藏副本总数
	AvailableCopies int    // 可借副本数
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBook 创建新图书(工厂方法)
// 新登记的图书所有副本都在馆
func NewBook(isbn, title, author string, totalCopies int) *Book {
	now := time.Now()
	return &Book{
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// HasAvailableCopy 是否还有可借副本
// 教学要点:必须在LockByID之后调用,否则读到的值可能已经过期
func (b *Book) HasAvailableCopy() bool {
	return b.AvailableCopies >= 1
}

// OnLoan 借出中的副本数
func (b *Book) OnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

// ChangeType 库存流水类型
type ChangeType string

const (
	ChangeLend   ChangeType = "LEND"   // 借出,delta=-1
	ChangeReturn ChangeType = "RETURN" // 归还,delta=+1
)

// LedgerEntry 库存流水
// 与AvailableCopies的调整在同一事务内写入,
// 因此 sum(Delta) == AvailableCopies - TotalCopies 对每本书恒成立
type LedgerEntry struct {
	ID         uint
	BookID     uint
	LoanID     uint
	ChangeType ChangeType
	Delta      int
	CreatedAt  time.Time
}

// NewLedgerEntry 创建库存流水
func NewLedgerEntry(bookID, loanID uint, changeType ChangeType) *LedgerEntry {
	delta := -1
	if changeType == ChangeReturn {
		delta = 1
	}
	return &LedgerEntry{
		BookID:     bookID,
		LoanID:     loanID,
		ChangeType: changeType,
		Delta:      delta,
		CreatedAt:  time.Now(),
	}
}

// Availability 可借情况快照(只读,可以缓存)
type Availability struct {
	BookID          uint `json:"book_id"`
	TotalCopies     int  `json:"total_copies"`
	AvailableCopies int  `json:"available_copies"`
	OnLoan          int  `json:"on_loan"`
}

// Availability 生成可借情况快照
func (b *Book) Availability() *Availability {
	return &Availability{
		BookID:          b.ID,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		OnLoan:          b.OnLoan(),
	}
}

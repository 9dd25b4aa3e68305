package lending

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/lending/internal/domain/book"
	"github.com/xiebiao/lending/internal/domain/loan"
	"github.com/xiebiao/lending/internal/domain/member"
	"github.com/xiebiao/lending/internal/infrastructure/config"
	"github.com/xiebiao/lending/internal/infrastructure/persistence/sqlstore"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// recordingNotifier 记录通知,并在收到通知时确认借阅已经提交可见
type recordingNotifier struct {
	mu        sync.Mutex
	loans     loan.Repository
	loanIDs   []uint
	committed []bool
}

func (n *recordingNotifier) NotifyLoanCreated(_ context.Context, loanID uint) {
	// 用全新的context查询:如果还在事务里,事务外看不到这条借阅
	_, err := n.loans.FindByID(context.Background(), loanID)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.loanIDs = append(n.loanIDs, loanID)
	n.committed = append(n.committed, err == nil)
}

func (n *recordingNotifier) snapshot() ([]uint, []bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]uint(nil), n.loanIDs...), append([]bool(nil), n.committed...)
}

// mapCache 内存版可借情况缓存
type mapCache struct {
	mu          sync.Mutex
	items       map[uint]book.Availability
	invalidated []uint
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[uint]book.Availability)}
}

func (c *mapCache) Get(_ context.Context, bookID uint) (*book.Availability, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.items[bookID]
	if !ok {
		return nil, false, nil
	}
	return &a, true, nil
}

func (c *mapCache) Set(_ context.Context, a *book.Availability) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[a.BookID] = *a
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, bookID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, bookID)
	c.invalidated = append(c.invalidated, bookID)
	return nil
}

// harness 用SQLite内存库组装全部用例
type harness struct {
	db       *gorm.DB
	books    book.Repository
	members  member.Repository
	loans    loan.Repository
	ledger   book.LedgerRepository
	notifier *recordingNotifier
	cache    *mapCache

	loanBook     *LoanBookUseCase
	returnBook   *ReturnBookUseCase
	extend       *ExtendDueDateUseCase
	availability *GetAvailabilityUseCase
	topActive    *TopActiveMembersUseCase
}

// openHarness 不依赖testing.T,属性测试每轮都要新建
func openHarness() (*harness, func(), error) {
	return openHarnessWith(config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
}

// openHarnessWith 使用指定的数据库配置组装用例
func openHarnessWith(dbCfg config.DatabaseConfig) (*harness, func(), error) {
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		Database: dbCfg,
	}
	db, err := sqlstore.NewDB(cfg, zap.NewNop())
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	logger := zap.NewNop()
	h := &harness{
		db:      db,
		books:   sqlstore.NewBookRepository(db),
		members: sqlstore.NewMemberRepository(db),
		loans:   sqlstore.NewLoanRepository(db),
		ledger:  sqlstore.NewLedgerRepository(db),
		cache:   newMapCache(),
	}
	h.notifier = &recordingNotifier{loans: h.loans}
	txManager := sqlstore.NewTxManager(db, time.Second)
	policy := DefaultPolicy()

	h.loanBook = NewLoanBookUseCase(h.members, h.books, h.loans, h.ledger, txManager, h.notifier, h.cache, policy, logger)
	h.loanBook.now = func() time.Time { return fixedNow }
	h.returnBook = NewReturnBookUseCase(h.books, h.loans, h.ledger, txManager, h.cache, logger)
	h.returnBook.now = func() time.Time { return fixedNow.Add(72 * time.Hour) }
	h.extend = NewExtendDueDateUseCase(h.loans, logger)
	h.availability = NewGetAvailabilityUseCase(h.books, h.cache, logger)
	h.topActive = NewTopActiveMembersUseCase(h.members, policy)
	return h, closeFn, nil
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h, closeFn, err := openHarness()
	require.NoError(t, err)
	t.Cleanup(closeFn)
	return h
}

// newFileHarness SQLite文件库+连接池,多个事务真正并发执行
func newFileHarness(t *testing.T) *harness {
	t.Helper()
	h, closeFn, err := openHarnessWith(config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "lending.db"),
		MaxOpenConns: 50,
		MaxIdleConns: 10,
	})
	require.NoError(t, err)
	t.Cleanup(closeFn)
	return h
}

func (h *harness) addBook(t require.TestingT, isbn string, copies int) *book.Book {
	b := book.NewBook(isbn, "测试图书", "测试作者", copies)
	require.NoError(t, h.books.Create(context.Background(), b))
	return b
}

func (h *harness) addMember(t require.TestingT, name string) *member.Member {
	m := member.NewMember(name, name+"@example.com")
	require.NoError(t, h.members.Create(context.Background(), m))
	return m
}

func (h *harness) available(t require.TestingT, bookID uint) int {
	b, err := h.books.FindByID(context.Background(), bookID)
	require.NoError(t, err)
	return b.AvailableCopies
}

func (h *harness) activeLoans(t require.TestingT, bookID uint) int {
	n, err := h.loans.CountActiveByBook(context.Background(), bookID)
	require.NoError(t, err)
	return int(n)
}

// assertConsistent 校验 可借数 + 进行中借阅数 == 馆藏总数,且流水之和吻合
func (h *harness) assertConsistent(t require.TestingT, bookID uint) {
	b, err := h.books.FindByID(context.Background(), bookID)
	require.NoError(t, err)
	active := h.activeLoans(t, bookID)
	require.Equal(t, b.TotalCopies, b.AvailableCopies+active, "可借数 + 进行中借阅数 必须等于馆藏总数")

	sum, err := h.ledger.SumDelta(context.Background(), bookID)
	require.NoError(t, err)
	require.Equal(t, b.AvailableCopies-b.TotalCopies, sum, "流水之和必须等于可借数变化")
}

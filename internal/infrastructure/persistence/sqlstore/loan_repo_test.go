package sqlstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/lending/internal/domain/loan"
)

func TestLoanRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	b := seedBook(t, db, "9787115428028", 2)
	m := seedMember(t, db, "alice")

	l := loan.NewLoan(b.ID, m.ID, fixedNow, loan.DefaultPeriodDays)
	require.NoError(t, repo.Create(ctx, l))
	assert.NotZero(t, l.ID)

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, got.IsReturned)
	assert.Nil(t, got.ReturnDate)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got.DueDate)

	count, err := repo.CountActiveByBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 同一会员同一本书只能有一条进行中借阅
	err = repo.Create(ctx, loan.NewLoan(b.ID, m.ID, fixedNow, loan.DefaultPeriodDays))
	assert.ErrorIs(t, err, loan.ErrDuplicateActiveLoan)

	returnedAt := fixedNow.Add(48 * time.Hour)
	closed, err := repo.Close(ctx, l.ID, returnedAt)
	require.NoError(t, err)
	assert.True(t, closed)

	got, err = repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, got.IsReturned)
	require.NotNil(t, got.ReturnDate)
	assert.True(t, returnedAt.Equal(*got.ReturnDate))

	// 第二次关闭不更新任何行
	closed, err = repo.Close(ctx, l.ID, returnedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, closed)

	// 归还后可以再次借阅
	again := loan.NewLoan(b.ID, m.ID, fixedNow, loan.DefaultPeriodDays)
	require.NoError(t, repo.Create(ctx, again))

	count, err = repo.CountActiveByBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)
}

func TestLoanRepository_FindActiveForUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewLoanRepository(db)
	txManager := NewTxManager(db, time.Second)
	b := seedBook(t, db, "9787115428028", 1)
	m := seedMember(t, db, "alice")

	l := loan.NewLoan(b.ID, m.ID, fixedNow, loan.DefaultPeriodDays)
	require.NoError(t, repo.Create(context.Background(), l))

	err := txManager.Transaction(context.Background(), func(ctx context.Context) error {
		found, err := repo.FindActiveForUpdate(ctx, b.ID, m.ID)
		require.NoError(t, err)
		assert.Equal(t, l.ID, found.ID)

		closed, err := repo.Close(ctx, found.ID, fixedNow)
		require.NoError(t, err)
		assert.True(t, closed)

		_, err = repo.FindActiveForUpdate(ctx, b.ID, m.ID)
		assert.ErrorIs(t, err, loan.ErrNoActiveLoan)
		return nil
	})
	require.NoError(t, err)
}

func TestLoanRepository_ExtendDueDate(t *testing.T) {
	db := newTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	b := seedBook(t, db, "9787115428028", 1)
	m := seedMember(t, db, "alice")

	l := loan.NewLoan(b.ID, m.ID, fixedNow, loan.DefaultPeriodDays)
	require.NoError(t, repo.Create(ctx, l))

	ok, err := repo.ExtendDueDate(ctx, l.ID, 20)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC), got.DueDate, "跨月累加")

	// 续借0天也算匹配到
	ok, err = repo.ExtendDueDate(ctx, l.ID, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExtendDueDate(ctx, 9999, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestLoanRepository_ConcurrentExtend 并发续借1天和2天,最终共延长3天
func TestLoanRepository_ConcurrentExtend(t *testing.T) {
	db := newTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	b := seedBook(t, db, "9787115428028", 1)
	m := seedMember(t, db, "alice")

	l := loan.NewLoan(b.ID, m.ID, fixedNow, loan.DefaultPeriodDays)
	require.NoError(t, repo.Create(ctx, l))

	var wg sync.WaitGroup
	for _, days := range []int{1, 2} {
		wg.Add(1)
		go func(days int) {
			defer wg.Done()
			ok, err := repo.ExtendDueDate(ctx, l.ID, days)
			assert.NoError(t, err)
			assert.True(t, ok)
		}(days)
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.DueDate.AddDate(0, 0, 3), got.DueDate)
}

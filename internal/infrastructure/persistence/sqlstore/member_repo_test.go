package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/lending/internal/domain/loan"
	"github.com/xiebiao/lending/internal/domain/member"
)

func TestMemberRepository_Exists(t *testing.T) {
	db := newTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()
	m := seedMember(t, db, "alice")

	ok, err := repo.Exists(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, member.ErrMemberNotFound)

	err = repo.Create(ctx, member.NewMember("alice2", "alice@example.com"))
	assert.ErrorIs(t, err, member.ErrEmailDuplicate)
}

func TestMemberRepository_TopActive(t *testing.T) {
	db := newTestDB(t)
	members := NewMemberRepository(db)
	loans := NewLoanRepository(db)
	ctx := context.Background()

	b1 := seedBook(t, db, "9787115428028", 5)
	b2 := seedBook(t, db, "9787115428029", 5)
	b3 := seedBook(t, db, "9787115428030", 5)
	alice := seedMember(t, db, "alice")
	bob := seedMember(t, db, "bob")
	carol := seedMember(t, db, "carol")
	seedMember(t, db, "dave") // 没有借阅,不上榜

	borrow := func(bookID, memberID uint) *loan.Loan {
		l := loan.NewLoan(bookID, memberID, fixedNow, loan.DefaultPeriodDays)
		require.NoError(t, loans.Create(ctx, l))
		return l
	}

	borrow(b1.ID, bob.ID)
	borrow(b2.ID, bob.ID)
	borrow(b3.ID, bob.ID)
	borrow(b1.ID, alice.ID)
	borrow(b2.ID, alice.ID)
	returned := borrow(b1.ID, carol.ID)
	_, err := loans.Close(ctx, returned.ID, fixedNow) // 已归还的不计入
	require.NoError(t, err)

	top, err := members.TopActive(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, bob.ID, top[0].MemberID)
	assert.Equal(t, int64(3), top[0].ActiveLoans)
	assert.Equal(t, "alice", top[1].Name)
	assert.Equal(t, int64(2), top[1].ActiveLoans)

	top, err = members.TopActive(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, bob.ID, top[0].MemberID)
}

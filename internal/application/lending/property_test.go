package lending

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/xiebiao/lending/internal/domain/book"
	"github.com/xiebiao/lending/internal/domain/loan"
	"github.com/xiebiao/lending/internal/domain/member"
)

// TestLending_Invariants 随机借还序列下,
// 每一步提交后 可借数 + 进行中借阅数 == 馆藏总数,且和一个简单模型的预期一致
func TestLending_Invariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h, closeFn, err := openHarness()
		require.NoError(rt, err)
		defer closeFn()

		ctx := context.Background()
		isbns := []string{"9787115428028", "9780306406157"}
		books := make([]*book.Book, len(isbns))
		for i, isbn := range isbns {
			copies := rapid.IntRange(0, 3).Draw(rt, "copies")
			books[i] = h.addBook(rt, isbn, copies)
		}
		members := make([]*member.Member, 3)
		for i := range members {
			members[i] = h.addMember(rt, string(rune('a'+i))+"member")
		}

		// 模型:每本书的可借数,以及(书,会员)是否有进行中的借阅
		type key struct{ book, member int }
		available := make([]int, len(books))
		for i, b := range books {
			available[i] = b.TotalCopies
		}
		active := make(map[key]bool)

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for s := 0; s < steps; s++ {
			bi := rapid.IntRange(0, len(books)-1).Draw(rt, "book")
			mi := rapid.IntRange(0, len(members)-1).Draw(rt, "member")
			k := key{bi, mi}
			req := struct{ bookID, memberID uint }{books[bi].ID, members[mi].ID}

			if rapid.Bool().Draw(rt, "loan") {
				_, err := h.loanBook.Execute(ctx, LoanBookRequest{BookID: req.bookID, MemberID: req.memberID})
				switch {
				case available[bi] == 0:
					require.True(rt, errors.Is(err, book.ErrNoCopiesAvailable), "want NoCopiesAvailable, got %v", err)
				case active[k]:
					require.True(rt, errors.Is(err, loan.ErrDuplicateActiveLoan), "want DuplicateActiveLoan, got %v", err)
				default:
					require.NoError(rt, err)
					available[bi]--
					active[k] = true
				}
			} else {
				_, err := h.returnBook.Execute(ctx, ReturnBookRequest{BookID: req.bookID, MemberID: req.memberID})
				if active[k] {
					require.NoError(rt, err)
					available[bi]++
					delete(active, k)
				} else {
					require.True(rt, errors.Is(err, loan.ErrNoActiveLoan), "want NoActiveLoan, got %v", err)
				}
			}

			for i, b := range books {
				require.Equal(rt, available[i], h.available(rt, b.ID))
				h.assertConsistent(rt, b.ID)
			}
		}
	})
}

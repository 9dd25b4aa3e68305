package book

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo 内存版仓储,只用于领域服务测试
type memoryRepo struct {
	mu     sync.Mutex
	nextID uint
	books  map[uint]*Book
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{books: make(map[uint]*Book)}
}

func (r *memoryRepo) Create(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	copied := *b
	r.books[b.ID] = &copied
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id uint) (*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memoryRepo) FindByISBN(_ context.Context, isbn string) (*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			copied := *b
			return &copied, nil
		}
	}
	return nil, ErrBookNotFound
}

func (r *memoryRepo) LockByID(ctx context.Context, id uint) (*Book, error) {
	return r.FindByID(ctx, id)
}

func (r *memoryRepo) AdjustAvailable(_ context.Context, id uint, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return ErrBookNotFound
	}
	next := b.AvailableCopies + delta
	if next < 0 || next > b.TotalCopies {
		return ErrCopiesOutOfRange
	}
	b.AvailableCopies = next
	return nil
}

func TestRegisterBook(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	b, err := svc.RegisterBook(ctx, "978-7-115-42802-8", "Go语言实战", "William Kennedy", 3)
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, 3, b.TotalCopies)
	assert.Equal(t, 3, b.AvailableCopies, "新登记的图书全部在馆")

	got, err := svc.GetBookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go语言实战", got.Title)
}

func TestRegisterBook_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	_, err := svc.RegisterBook(ctx, "9787115428028", "Go语言实战", "William Kennedy", 1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		isbn   string
		copies int
		want   error
	}{
		{"ISBN位数不对", "12345", 1, ErrInvalidISBN},
		{"ISBN含字母", "97871154280AB", 1, ErrInvalidISBN},
		{"馆藏为负", "7115428021", -1, ErrInvalidCopies},
		{"ISBN重复", "9787115428028", 1, ErrISBNDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterBook(ctx, tt.isbn, "标题", "作者", tt.copies)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIsValidISBN(t *testing.T) {
	assert.True(t, isValidISBN("0-306-40615-2"))
	assert.True(t, isValidISBN("080442957X"))
	assert.True(t, isValidISBN("978-0-306-40615-7"))
	assert.False(t, isValidISBN("97803064061X7"))
	assert.False(t, isValidISBN(""))
}

func TestBook_Copies(t *testing.T) {
	b := NewBook("9780306406157", "标题", "作者", 2)
	assert.True(t, b.HasAvailableCopy())
	assert.Equal(t, 0, b.OnLoan())

	b.AvailableCopies = 0
	assert.False(t, b.HasAvailableCopy())
	assert.Equal(t, 2, b.OnLoan())
}

func TestNewLedgerEntry(t *testing.T) {
	lend := NewLedgerEntry(1, 10, ChangeLend)
	assert.Equal(t, -1, lend.Delta)

	ret := NewLedgerEntry(1, 10, ChangeReturn)
	assert.Equal(t, 1, ret.Delta)
}

func TestBook_Availability(t *testing.T) {
	b := NewBook("9780306406157", "标题", "作者", 3)
	b.ID = 7
	b.AvailableCopies = 1

	a := b.Availability()
	assert.Equal(t, &Availability{BookID: 7, TotalCopies: 3, AvailableCopies: 1, OnLoan: 2}, a)
}

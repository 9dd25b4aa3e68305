package book

import (
	"context"
	"errors"
	"regexp"
)

// Service 图书登记领域服务
// 借还不经过这里,借还由lending用例在事务内直接操作Repository
type Service interface {
	// RegisterBook 登记图书
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 馆藏数量必须>=0
	// - ISBN不能重复
	RegisterBook(ctx context.Context, isbn, title, author string, totalCopies int) (*Book, error)

	// GetBookByID 根据ID获取图书
	GetBookByID(ctx context.Context, id uint) (*Book, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// RegisterBook 登记图书
func (s *service) RegisterBook(ctx context.Context, isbn, title, author string, totalCopies int) (*Book, error) {
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	if totalCopies < 0 {
		return nil, ErrInvalidCopies
	}

	// Repository也会处理唯一索引冲突,这里提前给出友好错误
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	b := NewBook(isbn, title, author, totalCopies)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

var isbnSeparators = regexp.MustCompile(`[^0-9Xx]`)

// isValidISBN 校验ISBN格式
// 支持ISBN-10(末位可以是X)和ISBN-13,允许连字符分隔(978-7-115-42802-8)
// 简化实现:只检查位数,不校验校验位
func isValidISBN(isbn string) bool {
	clean := isbnSeparators.ReplaceAllString(isbn, "")
	switch len(clean) {
	case 10:
		return regexp.MustCompile(`^[0-9]{9}[0-9Xx]$`).MatchString(clean)
	case 13:
		return regexp.MustCompile(`^[0-9]{13}$`).MatchString(clean)
	default:
		return false
	}
}

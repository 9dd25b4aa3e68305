package book

import (
	"context"

	"github.com/xiebiao/lending/internal/domain/book"
)

// RegisterBookUseCase 图书登记用例
// 设计说明:
// 1. 应用层负责用例编排,校验规则(ISBN格式、馆藏数量、ISBN重复)由领域服务负责
// 2. 输入输出使用DTO,与HTTP层解耦
type RegisterBookUseCase struct {
	bookService book.Service
}

// NewRegisterBookUseCase 创建登记用例
func NewRegisterBookUseCase(bookService book.Service) *RegisterBookUseCase {
	return &RegisterBookUseCase{
		bookService: bookService,
	}
}

// RegisterBookRequest 登记请求DTO
type RegisterBookRequest struct {
	ISBN        string // ISBN号
	Title       string // 书名
	Author      string // 作者
	TotalCopies int    // 馆藏副本数
}

// RegisterBookResponse 登记响应DTO
type RegisterBookResponse struct {
	ID              uint   `json:"id"`
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	CreatedAt       string `json:"created_at"`
}

// Execute 执行登记用例
func (uc *RegisterBookUseCase) Execute(ctx context.Context, req RegisterBookRequest) (*RegisterBookResponse, error) {
	b, err := uc.bookService.RegisterBook(ctx, req.ISBN, req.Title, req.Author, req.TotalCopies)
	if err != nil {
		return nil, err
	}

	return &RegisterBookResponse{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CreatedAt:       b.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

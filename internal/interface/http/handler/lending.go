package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/lending/internal/application/lending"
	"github.com/xiebiao/lending/internal/interface/http/dto"
	apperrors "github.com/xiebiao/lending/pkg/errors"
	"github.com/xiebiao/lending/pkg/response"
)

// LendingHandler 借阅HTTP处理器
// 只做参数绑定和响应转换,业务规则全部在用例里
type LendingHandler struct {
	loanBook     *lending.LoanBookUseCase
	returnBook   *lending.ReturnBookUseCase
	extend       *lending.ExtendDueDateUseCase
	availability *lending.GetAvailabilityUseCase
	topActive    *lending.TopActiveMembersUseCase
}

// NewLendingHandler 创建借阅处理器
func NewLendingHandler(
	loanBook *lending.LoanBookUseCase,
	returnBook *lending.ReturnBookUseCase,
	extend *lending.ExtendDueDateUseCase,
	availability *lending.GetAvailabilityUseCase,
	topActive *lending.TopActiveMembersUseCase,
) *LendingHandler {
	return &LendingHandler{
		loanBook:     loanBook,
		returnBook:   returnBook,
		extend:       extend,
		availability: availability,
		topActive:    topActive,
	}
}

// LoanBook 借出图书
// @Summary      借出图书
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Param        id      path int                 true "图书ID"
// @Param        request body dto.LoanBookRequest true "会员信息"
// @Success      200 {object} response.Response{data=dto.LoanBookResponse}
// @Failure      404 {object} response.Response "图书或会员不存在"
// @Failure      409 {object} response.Response "无可借副本/重复借阅"
// @Router       /api/v1/books/{id}/loan [post]
func (h *LendingHandler) LoanBook(c *gin.Context) {
	var path dto.IDPath
	if err := c.ShouldBindUri(&path); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "图书ID不正确")
		return
	}
	var req dto.LoanBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.loanBook.Execute(c.Request.Context(), lending.LoanBookRequest{
		BookID:   path.ID,
		MemberID: req.MemberID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.LoanBookResponse{
		LoanID:          result.LoanID,
		BookID:          result.BookID,
		MemberID:        result.MemberID,
		LoanDate:        result.LoanDate.UTC().Format(dto.DateTimeLayout),
		DueDate:         result.DueDate.UTC().Format(dto.DateLayout),
		AvailableCopies: result.AvailableCopies,
	})
}

// ReturnBook 归还图书
// @Summary      归还图书
// @Tags         借阅
// @Router       /api/v1/books/{id}/return [post]
func (h *LendingHandler) ReturnBook(c *gin.Context) {
	var path dto.IDPath
	if err := c.ShouldBindUri(&path); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "图书ID不正确")
		return
	}
	var req dto.ReturnBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.returnBook.Execute(c.Request.Context(), lending.ReturnBookRequest{
		BookID:   path.ID,
		MemberID: req.MemberID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ReturnBookResponse{
		LoanID:          result.LoanID,
		ReturnDate:      result.ReturnDate.UTC().Format(dto.DateTimeLayout),
		Overdue:         result.Overdue,
		AvailableCopies: result.AvailableCopies,
	})
}

// ExtendDueDate 续借
// @Summary      续借
// @Tags         借阅
// @Router       /api/v1/loans/{id}/extend [post]
func (h *LendingHandler) ExtendDueDate(c *gin.Context) {
	var path dto.IDPath
	if err := c.ShouldBindUri(&path); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "借阅ID不正确")
		return
	}
	var req dto.ExtendDueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.extend.Execute(c.Request.Context(), lending.ExtendDueDateRequest{
		LoanID:         path.ID,
		AdditionalDays: *req.AdditionalDays,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ExtendDueDateResponse{
		LoanID:         result.LoanID,
		AdditionalDays: result.AdditionalDays,
	})
}

// GetAvailability 查询可借情况
// @Summary      查询可借情况
// @Tags         借阅
// @Router       /api/v1/books/{id}/availability [get]
func (h *LendingHandler) GetAvailability(c *gin.Context) {
	var path dto.IDPath
	if err := c.ShouldBindUri(&path); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "图书ID不正确")
		return
	}

	a, err := h.availability.Execute(c.Request.Context(), path.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, a)
}

// TopActiveMembers 活跃会员榜单
// @Summary      活跃会员榜单
// @Tags         借阅
// @Router       /api/v1/members/top-active [get]
func (h *LendingHandler) TopActiveMembers(c *gin.Context) {
	members, err := h.topActive.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, members)
}

package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/lending/internal/application/book"
	appmember "github.com/xiebiao/lending/internal/application/member"
	"github.com/xiebiao/lending/internal/interface/http/dto"
	apperrors "github.com/xiebiao/lending/pkg/errors"
	"github.com/xiebiao/lending/pkg/response"
)

// CatalogHandler 图书和会员登记
type CatalogHandler struct {
	registerBook   *appbook.RegisterBookUseCase
	registerMember *appmember.RegisterMemberUseCase
}

// NewCatalogHandler 创建登记处理器
func NewCatalogHandler(registerBook *appbook.RegisterBookUseCase, registerMember *appmember.RegisterMemberUseCase) *CatalogHandler {
	return &CatalogHandler{
		registerBook:   registerBook,
		registerMember: registerMember,
	}
}

// RegisterBook 登记图书
// @Summary      登记图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appbook.RegisterBookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [post]
func (h *CatalogHandler) RegisterBook(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.RegisterBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	// 2. 调用应用层用例
	result, err := h.registerBook.Execute(c.Request.Context(), appbook.RegisterBookRequest{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		TotalCopies: req.TotalCopies,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RegisterMember 登记会员
// @Summary      登记会员
// @Tags         会员
// @Router       /api/v1/members [post]
func (h *CatalogHandler) RegisterMember(c *gin.Context) {
	var req dto.RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.registerMember.Execute(c.Request.Context(), appmember.RegisterMemberRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

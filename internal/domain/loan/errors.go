package loan

import (
	apperrors "github.com/xiebiao/lending/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrLoanNotFound 借阅记录不存在
	ErrLoanNotFound = apperrors.New(apperrors.ErrCodeLoanNotFound, "借阅记录不存在")

	// ErrNoActiveLoan 没有进行中的借阅（从未借过或已经归还）
	ErrNoActiveLoan = apperrors.New(apperrors.ErrCodeNoActiveLoan, "没有进行中的借阅")

	// ErrDuplicateActiveLoan 同一会员对同一图书已有进行中的借阅
	ErrDuplicateActiveLoan = apperrors.New(apperrors.ErrCodeDuplicateActiveLoan, "该会员已借阅此书且尚未归还")

	// ErrInvalidExtension 续借天数为负数或超过上限
	ErrInvalidExtension = apperrors.New(apperrors.ErrCodeInvalidExtension, "续借天数非法")
)

package book

import (
	apperrors "github.com/xiebiao/lending/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrNoCopiesAvailable 无可借副本
	ErrNoCopiesAvailable = apperrors.New(apperrors.ErrCodeNoCopiesAvailable, "该图书暂无可借副本")

	// ErrCopiesOutOfRange 可借数量调整后越界(小于0或超过馆藏总数)
	ErrCopiesOutOfRange = apperrors.New(apperrors.ErrCodeCopiesOutOfRange, "可借数量超出范围")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "ISBN号已存在")

	// ErrInvalidCopies 馆藏数量不合法
	ErrInvalidCopies = apperrors.New(apperrors.ErrCodeInvalidParams, "馆藏数量不能为负数")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")
)

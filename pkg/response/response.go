package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/lending/pkg/errors"
)

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码（0表示成功），方便客户端判断错误类型
// 2. Message是用户友好的提示信息
// 3. Data是业务数据，成功时返回，失败时为null
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应（Code=0表示成功）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// HTTP状态码按错误大类决定，业务错误码原样返回
// 用法：
//
//	resp, err := loanBookUseCase.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	kind := apperrors.KindOf(appErr)

	// 内部错误只写日志，不返回给客户端
	if appErr.Err != nil {
		fields := []zap.Field{
			zap.Int("code", appErr.Code),
			zap.String("path", c.FullPath()),
			zap.Error(appErr.Err),
		}
		if requestID, ok := c.Get(RequestIDKey); ok {
			fields = append(fields, zap.Any("request_id", requestID))
		}
		if kind == apperrors.KindInternal {
			zap.L().Error(appErr.Message, fields...)
		} else {
			zap.L().Warn(appErr.Message, fields...)
		}
	}

	c.JSON(StatusOf(kind), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

// ErrorWithCode 自定义错误码和消息（参数绑定失败等）
func ErrorWithCode(c *gin.Context, code int, message string) {
	kind := apperrors.KindOf(apperrors.New(code, message))
	c.JSON(StatusOf(kind), Response{
		Code:    code,
		Message: message,
	})
}

// RequestIDKey 请求ID在gin.Context中的键
const RequestIDKey = "request_id"

// StatusOf 错误大类 → HTTP状态码
func StatusOf(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidArgument:
		return http.StatusBadRequest
	case apperrors.KindPreconditionFailed:
		return http.StatusConflict
	case apperrors.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

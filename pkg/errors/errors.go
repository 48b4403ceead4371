package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// 预定义错误
var (
	ErrNotFound       = New(http.StatusNotFound, "资源不存在")
	ErrUnauthorized   = New(http.StatusUnauthorized, "未授权")
	ErrForbidden      = New(http.StatusForbidden, "禁止访问")
	ErrBadRequest     = New(http.StatusBadRequest, "请求错误")
	ErrInternalServer = New(http.StatusInternalServerError, "服务器内部错误")
	ErrValidation     = New(http.StatusUnprocessableEntity, "验证错误")
	ErrTokenExpired   = New(http.StatusUnauthorized, "令牌已过期")
	ErrTokenInvalid   = New(http.StatusUnauthorized, "令牌无效")

	ErrMenuHasChildren = New(http.StatusConflict, "存在子菜单，不允许删除")
	ErrMenuCycle       = New(http.StatusBadRequest, "上级菜单不能是自身或其子菜单")
	ErrUnknownMenuKey  = New(http.StatusUnprocessableEntity, "包含不存在的菜单标识")
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 解包错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同码同消息视为同一错误，便于 errors.Is 匹配预定义错误的派生实例
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New 创建新错误
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 包装错误
func Wrap(err error, code int, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// WithDetail 在预定义错误上附加细节
func (e *AppError) WithDetail(format string, args ...interface{}) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: fmt.Errorf(format, args...)}
}

// Is 检查是否为指定错误
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As 类型转换错误
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetCode 获取错误码
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// GetMessage 获取错误消息
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// NotFound 创建未找到错误
func NotFound(resource string) *AppError {
	return New(http.StatusNotFound, fmt.Sprintf("%s不存在", resource))
}

// BadRequest 创建请求错误
func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// Forbidden 创建禁止访问错误
func Forbidden(message string) *AppError {
	if message == "" {
		message = "禁止访问"
	}
	return New(http.StatusForbidden, message)
}

// Validation 创建验证错误
func Validation(message string) *AppError {
	return New(http.StatusUnprocessableEntity, message)
}

// Internal 包装内部错误
func Internal(err error) *AppError {
	return Wrap(err, http.StatusInternalServerError, "服务器内部错误")
}

// Duplicate 创建重复错误
func Duplicate(field string) *AppError {
	return New(http.StatusConflict, fmt.Sprintf("%s已存在", field))
}

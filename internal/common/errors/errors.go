// Package errors 定义业务错误码和错误处理
package errors

import (
	"fmt"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown          = New(1000, "未知错误")
	ErrInvalidParams    = New(1001, "参数错误")
	ErrNotFound         = New(1002, "资源不存在")
	ErrAlreadyExists    = New(1003, "资源已存在")
	ErrDatabaseError    = New(1004, "数据库错误")
	ErrCacheError       = New(1005, "缓存错误")
	ErrInternalError    = New(1006, "内部错误")
	ErrRateLimitExceed  = New(1008, "请求过于频繁")
	ErrOperationFailed  = New(1009, "操作失败")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录")
	ErrTokenExpired     = New(2001, "登录已过期")
	ErrTokenInvalid     = New(2002, "无效的令牌")
	ErrTokenRefreshFail = New(2003, "刷新令牌失败")
	ErrPermissionDenied = New(2004, "权限不足")
	ErrAccountDisabled  = New(2005, "账号已禁用")
	ErrPasswordError    = New(2007, "密码错误")
)

// 用户与租户错误码 (3000-3999)
var (
	ErrUserNotFound   = New(3000, "用户不存在")
	ErrUserExists     = New(3001, "用户已存在")
	ErrTenantNotFound = New(3100, "租户不存在")
	ErrTenantDisabled = New(3101, "租户已停用")
	ErrTenantMissing  = New(3102, "缺少租户标识")
)

// 线索错误码 (4000-4999)
var (
	ErrLeadNotFound     = New(4000, "线索不存在")
	ErrBatchNotFound    = New(4001, "线索批次不存在")
	ErrBatchEmptyLeads  = New(4002, "批次未关联任何线索")
	ErrLeadAlreadyBound = New(4003, "线索已挂接其他批次")
)

// 订单错误码 (5000-5999)
var (
	ErrOrderNotFound       = New(5000, "订单不存在")
	ErrOrderStatusError    = New(5001, "订单状态异常")
	ErrOrderCannotTransfer = New(5002, "订单状态不允许该流转")
	ErrProductNotFound     = New(5007, "商品不存在")
	ErrProductOffShelf     = New(5008, "商品已下架")
)

// 成本与利润错误码 (6000-6999)
var (
	ErrCostValidation    = New(6000, "成本字段校验失败")
	ErrCostRecordMissing = New(6001, "订单成本记录不存在")
	ErrCalculationFailed = New(6002, "利润计算失败")
)

// 报表与导出错误码 (7000-7999)
var (
	ErrReportFailed = New(7000, "报表生成失败")
	ErrExportFailed = New(7001, "导出失败")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

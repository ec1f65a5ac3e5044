// Package profit 提供订单利润计算与报表服务
package profit

import (
	"errors"
	"fmt"
	"strings"
)

// CostValidationError 成本字段校验错误
// 一次性收集全部非法字段，调用方修正后可重试；抛出时不落任何部分写入
type CostValidationError struct {
	Fields []string `json:"fields"`
}

// Error 实现 error 接口
func (e *CostValidationError) Error() string {
	return fmt.Sprintf("成本字段校验失败: %s", strings.Join(e.Fields, ", "))
}

// NewCostValidationError 创建成本校验错误
func NewCostValidationError(fields ...string) *CostValidationError {
	return &CostValidationError{Fields: fields}
}

// AsCostValidationError 判断并提取成本校验错误
func AsCostValidationError(err error) (*CostValidationError, bool) {
	var ve *CostValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// 利润计算错误码
const (
	CalcErrOrderNotFound     = "ORDER_NOT_FOUND"     // 订单不存在或跨租户
	CalcErrProductNotFound   = "PRODUCT_NOT_FOUND"   // 商品不存在
	CalcErrCalculationFailed = "CALCULATION_FAILED"  // 内部计算失败
)

// ProfitCalculationError 利润计算错误
type ProfitCalculationError struct {
	Code    string `json:"code"`
	OrderID int64  `json:"order_id"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *ProfitCalculationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] 订单 %d 利润计算失败: %v", e.Code, e.OrderID, e.Err)
	}
	return fmt.Sprintf("[%s] 订单 %d 利润计算失败", e.Code, e.OrderID)
}

// Unwrap 实现 errors.Unwrap
func (e *ProfitCalculationError) Unwrap() error {
	return e.Err
}

// NewOrderNotFoundError 订单不存在
func NewOrderNotFoundError(orderID int64) *ProfitCalculationError {
	return &ProfitCalculationError{Code: CalcErrOrderNotFound, OrderID: orderID}
}

// NewProductNotFoundError 商品不存在
func NewProductNotFoundError(orderID int64) *ProfitCalculationError {
	return &ProfitCalculationError{Code: CalcErrProductNotFound, OrderID: orderID}
}

// NewCalculationFailedError 内部计算失败
func NewCalculationFailedError(orderID int64, err error) *ProfitCalculationError {
	return &ProfitCalculationError{Code: CalcErrCalculationFailed, OrderID: orderID, Err: err}
}

// AsProfitCalculationError 判断并提取利润计算错误
func AsProfitCalculationError(err error) (*ProfitCalculationError, bool) {
	var ce *ProfitCalculationError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

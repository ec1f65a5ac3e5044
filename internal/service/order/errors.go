// Package order 提供订单生命周期与状态流转服务
package order

import (
	"errors"
	"fmt"
)

// InvalidTransitionError 非法状态流转错误
type InvalidTransitionError struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Error 实现 error 接口
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("订单状态不允许从 %s 流转到 %s", e.From, e.To)
}

// AsInvalidTransitionError 判断并提取非法流转错误
func AsInvalidTransitionError(err error) (*InvalidTransitionError, bool) {
	var te *InvalidTransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

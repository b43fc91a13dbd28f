// Package service 提供业务逻辑层的实现
package service

import (
	"errors"
	"fmt"
)

// 错误类别
// 调用方用 errors.Is 判断类别，HTTP 层据此决定状态码
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrPersistence         = errors.New("persistence failure")
)

// Error 业务错误
// Message 是可以返回给客户端的简短描述，Err 是底层原因，只记录日志
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 同时暴露类别和底层原因
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func validationError(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func notFoundError(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// persistenceError 包装数据库错误
// err 为 nil 时返回 nil，方便直接包住仓库调用的返回值
func persistenceError(err error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return &Error{Kind: ErrPersistence, Message: "internal error", Err: err}
}

// PublicMessage 返回可以发给客户端的错误描述
// 持久化错误和未知错误统一返回 "internal error"
func PublicMessage(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) && !errors.Is(svcErr.Kind, ErrPersistence) {
		return svcErr.Message
	}
	return "internal error"
}

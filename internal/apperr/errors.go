package apperr

import (
	"errors"
	"fmt"
)

// ValidationError 输入校验失败，不应重试
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError 礼物或贡献不存在
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// GatewayError 支付网关不可达或未返回可用的跳转链接
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("gateway %s failed", e.Op)
	}
	return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// PersistenceError 事务失败，已整体回滚
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AuthenticationError webhook 签名缺失或不匹配
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "webhook authentication failed: " + e.Reason
}

// Validation 创建校验错误
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound 创建不存在错误
func NotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Gateway 包装网关错误
func Gateway(op string, err error) error {
	return &GatewayError{Op: op, Err: err}
}

// Persistence 包装持久化错误
func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// Authentication 创建认证错误
func Authentication(reason string) error {
	return &AuthenticationError{Reason: reason}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsGateway(err error) bool {
	var target *GatewayError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}

func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// IsPermanent 重试无意义的错误
func IsPermanent(err error) bool {
	return IsValidation(err) || IsNotFound(err) || IsAuthentication(err)
}

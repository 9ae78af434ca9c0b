// Package apperr 定义了服务内统一的错误类型
// handler 层根据 Kind 决定HTTP状态码和给用户的提示
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind string

const (
	KindConfig          Kind = "config"           // 缺少厂商密钥等配置，不重试
	KindVendor          Kind = "vendor"           // 厂商返回非2xx，Body保留原始响应
	KindEmptyResponse   Kind = "empty_response"   // 2xx 但没有可用内容
	KindContentFiltered Kind = "content_filtered" // 图片生成为空，通常是被内容审核拦截
	KindValidation      Kind = "validation"       // 参数错误或前置条件不满足
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict" // 批处理进行中
)

// Error 应用错误
type Error struct {
	Kind    Kind
	Vendor  string // 出错的厂商，非厂商错误为空
	Status  int    // 厂商HTTP状态码
	Message string
	Body    string // 厂商原始响应体
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Vendor != "" {
		msg = fmt.Sprintf("[%s] %s", e.Vendor, msg)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigError 缺少配置项
func NewConfigError(vendor, message string) *Error {
	return &Error{Kind: KindConfig, Vendor: vendor, Message: message}
}

// NewVendorError 厂商返回了非2xx响应
func NewVendorError(vendor string, status int, body string) *Error {
	return &Error{Kind: KindVendor, Vendor: vendor, Status: status, Message: "厂商接口返回错误", Body: body}
}

// NewTransportError 请求未能到达厂商或响应无法读取
func NewTransportError(vendor string, err error) *Error {
	return &Error{Kind: KindVendor, Vendor: vendor, Message: "请求厂商接口失败", Err: err}
}

// NewEmptyResponseError 响应成功但没有可用内容
func NewEmptyResponseError(vendor, message string) *Error {
	return &Error{Kind: KindEmptyResponse, Vendor: vendor, Message: message}
}

func NewContentFilteredError(message string, err error) *Error {
	return &Error{Kind: KindContentFiltered, Message: message, Err: err}
}

func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// KindOf 返回错误链上第一个 *Error 的分类，没有则返回空
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind 判断错误链上是否存在指定分类的错误
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

package errorutil

import (
	"errors"
	"fmt"
)

// Kind 错误分类（封闭集合）
type Kind string

const (
	// KindConfig 配置缺陷（无可解析端点等），只中止当前批次
	KindConfig Kind = "config"
	// KindNotFound 批次或配置不存在
	KindNotFound Kind = "not_found"
	// KindInvocation 外部端点调用失败（统一以失败结果返回，不作为异常抛出）
	KindInvocation Kind = "invocation"
	// KindPersistence 存储不可用
	KindPersistence Kind = "persistence"
	// KindPublish 消息发布失败
	KindPublish Kind = "publish"
)

// Error 带分类与可重试标记的错误结构
type Error struct {
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	err       error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.err
}

// Config 创建配置类错误（不可重试）
func Config(message string) *Error {
	return &Error{Kind: KindConfig, Message: message, Retryable: false}
}

// NotFound 创建未找到类错误（不可重试）
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Retryable: false}
}

// Invocation 创建调用类错误
func Invocation(message string, err error) *Error {
	return &Error{Kind: KindInvocation, Message: message, Retryable: false, err: err}
}

// Persistence 包装存储类错误（网络抖动视为可重试）
func Persistence(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Retryable: true, err: err}
}

// Publish 包装发布类错误
func Publish(message string, err error) *Error {
	return &Error{Kind: KindPublish, Message: message, Retryable: true, err: err}
}

// KindOf 提取错误分类（非本包错误返回空串）
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind 判断错误是否属于指定分类
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

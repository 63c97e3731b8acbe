package domain

import "errors"

// Reason 标记一次拉取/解析的结果类别。
//
// 调用方据此区分“瞬时故障”（网络/非 2xx）与“资源明确不存在”（404/410），
// 以便在需要时采取不同策略；当前 poll 循环对二者一视同仁：本轮跳过，下轮再试。
type Reason string

const (
	ReasonOK       Reason = "ok"
	ReasonNetwork  Reason = "network"
	ReasonStatus   Reason = "status"
	ReasonNotFound Reason = "not_found"
	ReasonDecode   Reason = "decode"
)

// Result 是带标签的成功/失败结果。零值视为失败（Reason 为空）。
type Result[T any] struct {
	Value  T
	Reason Reason
	Err    error
}

func OK[T any](v T) Result[T] {
	return Result[T]{Value: v, Reason: ReasonOK}
}

func Fail[T any](reason Reason, err error) Result[T] {
	if reason == ReasonOK || reason == "" {
		reason = ReasonNetwork
	}
	if err == nil {
		err = errors.New(string(reason))
	}
	return Result[T]{Reason: reason, Err: err}
}

func (r Result[T]) Ok() bool { return r.Reason == ReasonOK }

// Absent 表示服务端明确告知资源不存在；对可选的边车文件这不算错误。
func (r Result[T]) Absent() bool { return r.Reason == ReasonNotFound }

// Transient 表示下一轮重试大概率会有不同结果。
func (r Result[T]) Transient() bool {
	return r.Reason == ReasonNetwork || r.Reason == ReasonStatus
}

package poll

import "github.com/John-Robertt/llmview/internal/domain"

// Observer 用于把“每轮 poll 的结果”从核心循环中解耦出来。
//
// 约束：
// - poll 包只负责发事件，不做任何终端输出。
// - Observer 的实现必须并发安全：tick 在独立 goroutine 中执行。
type Observer interface {
	OnCycle(rep domain.CycleReport)
}

// ObserverFunc 让普通函数满足 Observer。
type ObserverFunc func(rep domain.CycleReport)

func (f ObserverFunc) OnCycle(rep domain.CycleReport) { f(rep) }

// Package page 定义宿主页面的最小 DOM 契约。
//
// 视频元素及其播放状态归宿主页面所有：本系统只修改 currentTime、muted 与字幕轨 mode，
// 不假设独占控制。任何元素都可能缺失（返回 nil），调用方必须静默降级。
package page

import "errors"

// 页面约定的元素 ID 与 class。
const (
	IDContent     = "content"
	IDOverlay     = "start-overlay"
	IDStartButton = "start-button"
	IDVideo       = "video"

	ClassVisible          = "visible"
	ClassNeedsInteraction = "needs-interaction"
)

// 字幕轨 mode（与 TextTrack.mode 取值一致）。
const (
	TrackDisabled = "disabled"
	TrackShowing  = "showing"
)

var (
	// ErrNoMedia 表示视频元素尚未加载媒体，无法 seek/play。
	ErrNoMedia = errors.New("page: video has no media loaded")
	// ErrInvalidTime 表示 seek 目标不是有限数。
	ErrInvalidTime = errors.New("page: current time must be finite")
	// ErrNoTrack 表示字幕轨下标越界。
	ErrNoTrack = errors.New("page: text track index out of range")
)

type Element interface {
	ID() string
	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool
	SetHidden(hidden bool)
	Hidden() bool
	// OnClick 注册点击监听；Click 依次调用所有监听。
	OnClick(fn func())
	Click()
}

// Container 是 markdown 渲染结果的挂载点。
type Container interface {
	Element
	SetInnerHTML(html string)
	InnerHTML() string
	FrameScheduler
}

// FrameScheduler 是 requestAnimationFrame 的抽象：fn 在下一帧执行。
type FrameScheduler interface {
	NextFrame(fn func())
}

type Video interface {
	SetCurrentTime(seconds float64) error
	CurrentTime() float64
	SetMuted(muted bool)
	Muted() bool
	Play() error
	TextTracks() int
	SetTrackMode(i int, mode string) error
	TrackMode(i int) string
}

// Document 按约定 ID 暴露页面元素；缺失的元素返回 nil。
type Document interface {
	Body() Element
	Content() Container
	Overlay() Element
	StartButton() Element
	Video() Video
}

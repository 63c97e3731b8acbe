package page

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewMemory_OmittedElementsAreUntypedNil(t *testing.T) {
	m := NewMemory(MemoryOptions{Omit: []string{IDContent, IDOverlay, IDStartButton, IDVideo}})
	var doc Document = m

	if doc.Content() != nil {
		t.Fatalf("缺失的 content 应返回 nil")
	}
	if doc.Overlay() != nil || doc.StartButton() != nil {
		t.Fatalf("缺失的 overlay/button 应返回 nil")
	}
	if doc.Video() != nil {
		t.Fatalf("缺失的 video 应返回 nil")
	}
	if doc.Body() == nil {
		t.Fatalf("body 必须存在")
	}
}

func TestMemory_InitialState(t *testing.T) {
	m := NewMemory(MemoryOptions{VideoSrc: "/media/a.mp4", Tracks: []Track{{Label: "en", Src: "/media/a.vtt"}}})
	s := m.Snapshot()

	if len(s.BodyClasses) != 1 || s.BodyClasses[0] != ClassNeedsInteraction {
		t.Fatalf("初始 body 应带 needs-interaction，实际 %v", s.BodyClasses)
	}
	if !s.Muted || !s.Paused {
		t.Fatalf("初始视频应静音且暂停：muted=%v paused=%v", s.Muted, s.Paused)
	}
	if len(s.Tracks) != 1 || s.Tracks[0].Mode != TrackDisabled {
		t.Fatalf("字幕轨默认 mode 应为 disabled：%+v", s.Tracks)
	}
}

func TestVideo_SeekNeedsMedia(t *testing.T) {
	m := NewMemory(MemoryOptions{})
	v := m.Video()

	if err := v.SetCurrentTime(3); !errors.Is(err, ErrNoMedia) {
		t.Fatalf("未加载媒体时应返回 ErrNoMedia，实际 %v", err)
	}

	v = NewMemory(MemoryOptions{VideoSrc: "/media/a.mp4"}).Video()
	if err := v.SetCurrentTime(3.5); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if v.CurrentTime() != 3.5 {
		t.Fatalf("期望 3.5，实际 %v", v.CurrentTime())
	}
	if err := v.SetCurrentTime(math.Inf(1)); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("非有限数应返回 ErrInvalidTime，实际 %v", err)
	}
}

func TestVideo_PlayErr(t *testing.T) {
	denied := errors.New("NotAllowedError")
	m := NewMemory(MemoryOptions{VideoSrc: "/a.mp4", PlayErr: denied})
	if err := m.Video().Play(); !errors.Is(err, denied) {
		t.Fatalf("期望 PlayErr，实际 %v", err)
	}
	if !m.Snapshot().Paused {
		t.Fatalf("播放被拒绝时应保持暂停")
	}
}

func TestVideo_TrackBounds(t *testing.T) {
	m := NewMemory(MemoryOptions{VideoSrc: "/a.mp4"})
	v := m.Video()
	if err := v.SetTrackMode(0, TrackShowing); !errors.Is(err, ErrNoTrack) {
		t.Fatalf("无字幕轨时应返回 ErrNoTrack，实际 %v", err)
	}
	if v.TrackMode(0) != "" {
		t.Fatalf("越界 TrackMode 应返回空串")
	}
}

func TestContainer_FramesQueueUntilFlush(t *testing.T) {
	m := NewMemory(MemoryOptions{})
	c := m.Content()

	c.NextFrame(func() { c.AddClass(ClassVisible) })
	if c.HasClass(ClassVisible) {
		t.Fatalf("Flush 之前不应执行帧回调")
	}
	if s := m.Snapshot(); s.PendingFrames != 1 || s.Visible() {
		t.Fatalf("快照应反映 1 个待执行帧且不可见：%+v", s)
	}
	if n := m.Flush(); n != 1 {
		t.Fatalf("期望执行 1 个帧回调，实际 %d", n)
	}
	if !c.HasClass(ClassVisible) {
		t.Fatalf("Flush 之后应可见")
	}
}

func TestContainer_FrameDelayRunsAsync(t *testing.T) {
	m := NewMemory(MemoryOptions{FrameDelay: time.Millisecond})
	var ran atomic.Bool
	done := make(chan struct{})
	m.Content().NextFrame(func() {
		ran.Store(true)
		close(done)
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("帧回调超时未执行")
	}
	if !ran.Load() {
		t.Fatalf("帧回调未执行")
	}
}

func TestElement_ClassesAndClick(t *testing.T) {
	m := NewMemory(MemoryOptions{})
	b := m.StartButton()

	calls := 0
	b.OnClick(func() { calls++ })
	b.OnClick(func() { m.Overlay().SetHidden(true) })
	b.Click()

	if calls != 1 || !m.Overlay().Hidden() {
		t.Fatalf("Click 应依次调用所有监听：calls=%d hidden=%v", calls, m.Overlay().Hidden())
	}

	body := m.Body()
	body.AddClass("x")
	body.AddClass("x")
	body.RemoveClass(ClassNeedsInteraction)
	if got := m.Snapshot().BodyClasses; len(got) != 1 || got[0] != "x" {
		t.Fatalf("class 去重/移除不符合预期：%v", got)
	}
}

package gate

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/John-Robertt/llmview/internal/page"
)

// Gate 把“带声自动播放”推迟到用户第一次点击开始按钮之后（浏览器自动播放策略要求）。
//
// 状态只有一条单向边：overlay 显示 -> 隐藏（一次性，不可逆）。
type Gate struct {
	doc page.Document
	log *slog.Logger

	once    sync.Once
	started atomic.Bool
}

// Wire 查找 overlay、开始按钮与视频并挂上一次性点击处理。
//
// 任一元素缺失时返回 nil（功能静默降级）。字幕在此处启用，与点击无关：
// 视频至少有一条字幕轨时，把第一条设为 showing。
func Wire(doc page.Document, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	if doc == nil {
		return nil
	}
	overlay, button, video := doc.Overlay(), doc.StartButton(), doc.Video()
	if overlay == nil || button == nil || video == nil {
		log.Debug("开始遮罩所需元素缺失，跳过",
			"overlay", overlay != nil, "button", button != nil, "video", video != nil)
		return nil
	}

	EnableCaptions(video, log)

	g := &Gate{doc: doc, log: log}
	button.OnClick(g.start)
	return g
}

// EnableCaptions 把第一条字幕轨设为 showing；没有字幕轨时什么也不做。
func EnableCaptions(v page.Video, log *slog.Logger) bool {
	if v == nil || v.TextTracks() == 0 {
		return false
	}
	if err := v.SetTrackMode(0, page.TrackShowing); err != nil {
		if log != nil {
			log.Warn("启用字幕失败", "error", err)
		}
		return false
	}
	return true
}

// Started 报告开始按钮是否已被点击过。
func (g *Gate) Started() bool {
	if g == nil {
		return false
	}
	return g.started.Load()
}

func (g *Gate) start() {
	g.once.Do(func() {
		if body := g.doc.Body(); body != nil {
			body.RemoveClass(page.ClassNeedsInteraction)
		}
		g.doc.Overlay().SetHidden(true)

		v := g.doc.Video()
		v.SetMuted(false)
		if err := v.Play(); err != nil {
			// 播放被拒绝不是用户可见错误：用户仍可手动点击视频播放。
			g.log.Warn("视频播放被拒绝", "error", err)
		}
		g.started.Store(true)
		g.log.Info("用户已开始播放")
	})
}

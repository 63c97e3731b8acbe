package main

import (
	"log/slog"
	"time"

	"github.com/John-Robertt/llmview/internal/app/poll"
	"github.com/John-Robertt/llmview/internal/config"
	"github.com/John-Robertt/llmview/internal/gate"
	"github.com/John-Robertt/llmview/internal/page"
	"github.com/John-Robertt/llmview/internal/render"
)

// frameDelay 模拟浏览器的一帧（约 60fps）。
const frameDelay = 16 * time.Millisecond

// session 是 watch/serve 共用的运行单元：内存页面 + 开始遮罩 + poller。
type session struct {
	doc    *page.Memory
	gate   *gate.Gate
	poller *poll.Poller
}

func newPage(eff config.EffectiveConfig) *page.Memory {
	opts := page.MemoryOptions{VideoSrc: eff.VideoSrc, FrameDelay: frameDelay}
	if eff.CaptionsSrc != "" {
		opts.Tracks = []page.Track{{
			Label:   "captions",
			SrcLang: eff.CaptionsLang,
			Src:     eff.CaptionsSrc,
			Mode:    page.TrackDisabled,
		}}
	}
	return page.NewMemory(opts)
}

func (c *commandContext) newSession(eff config.EffectiveConfig, log *slog.Logger, obs poll.Observer, kick <-chan struct{}) (*session, error) {
	f, err := c.fetcher()
	if err != nil {
		return nil, err
	}
	cmp, err := c.comparator()
	if err != nil {
		return nil, err
	}

	doc := newPage(eff)
	g := gate.Wire(doc, log)

	p, err := poll.New(poll.Options{
		Fetcher:  f,
		DirURL:   eff.DirURL(),
		Order:    cmp,
		Renderer: render.New(),
		Doc:      doc,
		Interval: eff.Interval,
		Kick:     kick,
		Observer: obs,
		Log:      log,
	})
	if err != nil {
		return nil, err
	}
	return &session{doc: doc, gate: g, poller: p}, nil
}

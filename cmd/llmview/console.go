package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/llmview/internal/app/poll"
	"github.com/John-Robertt/llmview/internal/config"
	"github.com/John-Robertt/llmview/internal/domain"
	"github.com/John-Robertt/llmview/internal/timecode"
)

var _ poll.Observer = (*consoleUI)(nil)

// consoleUI 把每轮 poll 的结果打印成一行。
//
// - 渲染成功总是打印
// - 失败只在原因变化时打印一次（800ms 一轮，逐轮打印会刷屏）
// - unchanged/empty/skipped 静默
type consoleUI struct {
	w io.Writer

	mu       sync.Mutex
	rendered int
	failed   int
	lastFail string
}

func newConsoleUI(w io.Writer) *consoleUI {
	return &consoleUI{w: w}
}

func (c *consoleUI) OnStart(cmd string, eff config.EffectiveConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.w, "[%s] llmview %s\n", time.Now().Format("15:04:05"), cmd)
	fmt.Fprintln(c.w, "配置（生效）:")
	if eff.ConfigPath != "" {
		fmt.Fprintf(c.w, "  config: %s\n", eff.ConfigPath)
	}
	fmt.Fprintf(c.w, "  dir: %s\n", eff.DirURL())
	fmt.Fprintf(c.w, "  interval: %s\n", eff.Interval)
	fmt.Fprintf(c.w, "  order: %s\n", eff.Order)
	fmt.Fprintf(c.w, "  proxy: %s\n", formatProxy(eff.ProxyURL))
	if eff.RetryMax > 0 {
		fmt.Fprintf(c.w, "  retry_max: %d\n", eff.RetryMax)
	}
	fmt.Fprintln(c.w)
}

func (c *consoleUI) OnCycle(rep domain.CycleReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch rep.Stage {
	case domain.StageRendered:
		c.rendered++
		c.lastFail = ""
		fmt.Fprintf(c.w, "[%s] %s%s (%s)\n",
			rep.FinishedAt.Local().Format("15:04:05"), rep.Latest, formatSidecar(rep), formatShortDuration(rep.Duration()),
		)
	case domain.StageList, domain.StageFetch, domain.StageRender:
		key := string(rep.Stage) + "|" + string(rep.Reason) + "|" + rep.Latest
		if key == c.lastFail {
			return
		}
		c.lastFail = key
		c.failed++
		target := rep.Latest
		if target == "" {
			target = "目录列表"
		}
		fmt.Fprintf(c.w, "[%s] FAIL %s %s: %s\n",
			rep.FinishedAt.Local().Format("15:04:05"), target, rep.Reason, truncate(rep.Error, 160),
		)
	}
}

// Summary 返回退出前打印的一行统计。
func (c *consoleUI) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("rendered=%d fail=%d", c.rendered, c.failed)
}

func formatSidecar(rep domain.CycleReport) string {
	switch {
	case rep.Seeked:
		return " seek=" + timecode.Format(rep.Position)
	case rep.Sidecar == "" || rep.Sidecar == domain.ReasonNotFound:
		return ""
	case rep.Sidecar == domain.ReasonOK:
		return " seek=skipped"
	default:
		return " sidecar=" + string(rep.Sidecar)
	}
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/John-Robertt/llmview/internal/domain"
	"github.com/John-Robertt/llmview/internal/fetch"
	"github.com/John-Robertt/llmview/internal/listing"
	"github.com/John-Robertt/llmview/internal/page"
	"github.com/John-Robertt/llmview/internal/render"
	"github.com/John-Robertt/llmview/internal/timecode"
)

// DefaultInterval 是两次 poll 之间的固定间隔。
const DefaultInterval = 800 * time.Millisecond

// Renderer 把 markdown 换入内容容器（*render.Renderer 即是实现）。
type Renderer interface {
	Swap(c page.Container, md *string) error
}

var _ Renderer = (*render.Renderer)(nil)

// Options 描述 Poller 的依赖；除 Log/Observer/Kick/NewID 外均为必填。
type Options struct {
	Fetcher  fetch.Fetcher
	DirURL   string
	Order    listing.Comparator
	Renderer Renderer
	Doc      page.Document

	Interval time.Duration
	// Kick 每收到一个值就立即触发一轮（例如本地目录的 fsnotify 事件）。
	Kick <-chan struct{}

	Observer Observer
	Log      *slog.Logger
	NewID    func() string
}

// Poller 驱动 目录列表 -> 拉取 markdown -> 渲染 -> 边车 seek 的链路。
//
// “最新文件”标记是实例字段；只有在 markdown 拉取成功后才更新，
// 因此拉取失败的文件会在下一轮重试，且不会清空已渲染的内容。
type Poller struct {
	watcher  listing.Watcher
	fetcher  fetch.Fetcher
	dir      *url.URL
	renderer Renderer
	doc      page.Document
	interval time.Duration
	kick     <-chan struct{}
	obs      Observer
	log      *slog.Logger
	newID    func() string

	// 同一时刻最多一轮在跑：tick 到来时若上一轮未结束则直接跳过。
	inflight *semaphore.Weighted

	mu     sync.Mutex
	latest string

	renders atomic.Int64
	skipped atomic.Int64
}

func New(opts Options) (*Poller, error) {
	if opts.Renderer == nil {
		return nil, errors.New("renderer 不能为空")
	}
	if opts.Doc == nil {
		return nil, errors.New("document 不能为空")
	}
	if opts.Fetcher.Client == nil {
		return nil, errors.New("http client 不能为空")
	}
	dir, err := url.Parse(strings.TrimSpace(opts.DirURL))
	if err != nil || dir.Scheme == "" || dir.Host == "" {
		return nil, fmt.Errorf("输出目录 URL 无效：%q", opts.DirURL)
	}
	if !strings.HasSuffix(dir.Path, "/") {
		dir.Path += "/"
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &Poller{
		watcher:  listing.Watcher{Fetcher: opts.Fetcher, DirURL: dir.String(), Order: opts.Order},
		fetcher:  opts.Fetcher,
		dir:      dir,
		renderer: opts.Renderer,
		doc:      opts.Doc,
		interval: interval,
		kick:     opts.Kick,
		obs:      opts.Observer,
		log:      log,
		newID:    newID,
		inflight: semaphore.NewWeighted(1),
	}, nil
}

// Latest 返回最近一次成功渲染的文件名（尚未渲染时为空串）。
func (p *Poller) Latest() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}

// Renders 返回累计渲染次数。
func (p *Poller) Renders() int64 { return p.renders.Load() }

// Skipped 返回因上一轮未结束而被跳过的 tick 数。
func (p *Poller) Skipped() int64 { return p.skipped.Load() }

// Run 立即执行一轮，然后按固定间隔（以及每次 Kick）执行，直到 ctx 取消。
// 每轮在独立 goroutine 中运行；返回前等待在途的一轮结束。
func (p *Poller) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	fire := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Cycle(ctx)
		}()
	}

	kick := p.kick
	fire()
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			fire()
		case _, ok := <-kick:
			if !ok {
				kick = nil
				continue
			}
			fire()
		}
	}
}

// Cycle 执行一轮 poll；任何失败都只记日志并在报告中体现，不会返回 error。
func (p *Poller) Cycle(ctx context.Context) domain.CycleReport {
	rep := domain.CycleReport{ID: p.newID(), StartedAt: time.Now().UTC()}
	if !p.inflight.TryAcquire(1) {
		p.skipped.Add(1)
		rep.Stage = domain.StageSkipped
		return p.finish(rep)
	}
	defer p.inflight.Release(1)

	log := p.log.With("cycle", rep.ID)

	lr := p.watcher.List(ctx)
	if !lr.Ok() {
		log.Warn("拉取目录列表失败", "url", p.dir.String(), "reason", lr.Reason, "error", lr.Err)
		rep.Stage = domain.StageList
		rep.Reason, rep.Error = lr.Reason, errString(lr.Err)
		return p.finish(rep)
	}
	rep.Files = len(lr.Value)

	newest, ok := listing.Latest(lr.Value)
	if !ok {
		rep.Stage = domain.StageEmpty
		return p.finish(rep)
	}
	rep.Latest = newest
	if newest == p.Latest() {
		rep.Stage = domain.StageUnchanged
		return p.finish(rep)
	}

	mdURL, err := p.resolve(newest)
	if err != nil {
		log.Warn("文件名无法解析为 URL", "file", newest, "error", err)
		rep.Stage = domain.StageFetch
		rep.Reason, rep.Error = domain.ReasonDecode, err.Error()
		return p.finish(rep)
	}

	text := p.fetcher.Text(ctx, mdURL)
	if !text.Ok() {
		// 保持现有内容与标记不变，下一轮重试。
		// 404 多半是列表与写入之间的竞态（文件尚未落盘），记 info 即可。
		level := slog.LevelInfo
		if text.Transient() {
			level = slog.LevelWarn
		}
		log.Log(ctx, level, "拉取 markdown 失败", "file", newest, "reason", text.Reason, "error", text.Err)
		rep.Stage = domain.StageFetch
		rep.Reason, rep.Error = text.Reason, errString(text.Err)
		return p.finish(rep)
	}

	if err := p.renderer.Swap(p.doc.Content(), &text.Value); err != nil {
		// 标记不前移：下一轮重试同一文件。
		log.Warn("渲染 markdown 失败", "file", newest, "error", err)
		rep.Stage = domain.StageRender
		rep.Reason, rep.Error = domain.ReasonDecode, err.Error()
		return p.finish(rep)
	}

	p.mu.Lock()
	p.latest = newest
	p.mu.Unlock()
	p.renders.Add(1)
	rep.Stage = domain.StageRendered
	log.Info("已渲染", "file", newest, "bytes", len(text.Value))

	p.syncVideo(ctx, log, newest, &rep)
	return p.finish(rep)
}

func (p *Poller) syncVideo(ctx context.Context, log *slog.Logger, mdName string, rep *domain.CycleReport) {
	video := p.doc.Video()
	if video == nil {
		return
	}
	scURL, err := p.resolve(timecode.SidecarName(mdName))
	if err != nil {
		return
	}

	sc := fetch.JSON[timecode.Sidecar](ctx, p.fetcher, scURL)
	rep.Sidecar = sc.Reason
	switch {
	case sc.Ok():
		if pos, ok := timecode.Seek(video, sc.Value, log); ok {
			rep.Seeked, rep.Position = true, pos
			log.Info("视频已定位", "timecode", timecode.Format(pos))
		}
	case sc.Absent():
		// 边车是可选的。
		log.Debug("无边车文件", "file", mdName)
	default:
		log.Warn("拉取边车失败", "file", mdName, "reason", sc.Reason, "error", sc.Err)
	}
}

func (p *Poller) resolve(name string) (string, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return "", err
	}
	return p.dir.ResolveReference(ref).String(), nil
}

func (p *Poller) finish(rep domain.CycleReport) domain.CycleReport {
	rep.FinishedAt = time.Now().UTC()
	if p.obs != nil {
		p.obs.OnCycle(rep)
	}
	return rep
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

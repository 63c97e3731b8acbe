package server

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/John-Robertt/llmview/internal/page"
)

// Status 提供页面之外的运行状态（通常由 *poll.Poller 与 *gate.Gate 组合而成）。
type Status interface {
	Latest() string
	Renders() int64
}

// Options 描述页面宿主的依赖。
type Options struct {
	Doc *page.Memory
	// Started 报告开始按钮是否已被点击；nil 表示没有开始遮罩。
	Started func() bool
	Status  Status

	// OutputPath 是输出目录挂载的 URL 路径（例如 /llm_out/）；OutputDir 为空时不挂载。
	OutputPath string
	OutputDir  string

	// Refresh 是页面轮询 /state 的间隔；0 使用 DefaultRefresh。
	Refresh time.Duration

	Log *slog.Logger
}

// Server 把内存页面以 HTML/JSON 形式提供给浏览器。它只响应请求，不主动推送。
type Server struct {
	doc     *page.Memory
	started func() bool
	status  Status
	router  chi.Router
	refresh time.Duration
	log     *slog.Logger
}

// DefaultRefresh 与默认 poll 间隔一致。
const DefaultRefresh = 800 * time.Millisecond

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		doc:     opts.Doc,
		started: opts.Started,
		status:  opts.Status,
		refresh: opts.Refresh,
		log:     log,
	}
	if s.refresh <= 0 {
		s.refresh = DefaultRefresh
	}

	outputPath := "/" + strings.Trim(opts.OutputPath, "/") + "/"

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log, outputPath))

	r.Get("/", s.handleIndex)
	r.Get("/state", s.handleState)
	r.Post("/start", s.handleStart)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	if dir := strings.TrimSpace(opts.OutputDir); dir != "" && outputPath != "/" {
		fs := http.StripPrefix(outputPath, http.FileServer(http.Dir(dir)))
		r.Handle(outputPath+"*", noStore(fs))
	}

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// State 是 /state 的响应体。
type State struct {
	Page    page.Snapshot `json:"page"`
	Latest  string        `json:"latest"`
	Renders int64         `json:"renders"`
	Started bool          `json:"started"`
}

func (s *Server) state() State {
	s.doc.Flush()
	st := State{Page: s.doc.Snapshot()}
	if s.status != nil {
		st.Latest = s.status.Latest()
		st.Renders = s.status.Renders()
	}
	if s.started != nil {
		st.Started = s.started()
	}
	return st
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.state()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	view := indexView{
		State:       st,
		Content:     template.HTML(st.Page.ContentHTML), // 来自本地可信输出
		Body:        strings.Join(st.Page.BodyClasses, " "),
		Classes:     strings.Join(st.Page.ContentClasses, " "),
		VideoURL:    st.Page.VideoSrc,
		CurrentTime: strconv.FormatFloat(st.Page.CurrentTime, 'f', 3, 64),
		RefreshMS:   s.refresh.Milliseconds(),
	}
	if st.Page.CurrentTime > 0 && view.VideoURL != "" {
		view.VideoURL += "#t=" + view.CurrentTime
	}
	if err := indexTmpl.Execute(w, view); err != nil {
		s.log.Warn("渲染页面失败", "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(s.state())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	btn := s.doc.StartButton()
	if btn == nil {
		http.NotFound(w, r)
		return
	}
	// 一次性处理由 gate 保证；重复提交只是重定向。
	btn.Click()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/llmview/internal/gate"
	"github.com/John-Robertt/llmview/internal/listing"
	"github.com/John-Robertt/llmview/internal/page"
)

type fakeStatus struct{}

func (fakeStatus) Latest() string { return "b.md" }
func (fakeStatus) Renders() int64 { return 2 }

func newTestServer(t *testing.T, dir string) (*Server, *page.Memory, *gate.Gate) {
	t.Helper()
	doc := page.NewMemory(page.MemoryOptions{
		VideoSrc: "/media/talk.mp4",
		Tracks:   []page.Track{{Label: "English", SrcLang: "en", Src: "/media/talk.vtt"}},
	})
	g := gate.Wire(doc, nil)
	s := New(Options{
		Doc:        doc,
		Started:    g.Started,
		Status:     fakeStatus{},
		OutputPath: "/llm_out/",
		OutputDir:  dir,
	})
	return s, doc, g
}

func TestIndex_RendersPage(t *testing.T) {
	s, doc, _ := newTestServer(t, "")
	doc.Content().SetInnerHTML("<h1>Hello</h1>")
	doc.Content().AddClass(page.ClassVisible)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`<body class="needs-interaction" data-renders="2">`,
		`<div id="content" class="visible"><h1>Hello</h1></div>`,
		`id="start-button"`,
		`<video id="video" src="/media/talk.mp4" muted`,
		`data-current-time="0.000"`,
		`fetch("/state"`,
		`srclang="en"`,
		` default>`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("页面缺少 %q：\n%s", want, body)
		}
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("页面应禁止缓存，实际 %q", got)
	}
}

func TestIndex_CarriesVideoPosition(t *testing.T) {
	s, doc, _ := newTestServer(t, "")
	if err := doc.Video().SetCurrentTime(65.25); err != nil {
		t.Fatalf("seek 失败：%v", err)
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`src="/media/talk.mp4#t=65.250"`,
		`data-current-time="65.250"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("页面应带上已同步的视频位置 %q：\n%s", want, body)
		}
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
	var st State
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("响应不是合法 JSON：%v", err)
	}
	if st.Page.CurrentTime != 65.25 {
		t.Fatalf("/state 的 current_time 应为 65.25，实际 %v", st.Page.CurrentTime)
	}
}

func TestIndex_RefreshInterval(t *testing.T) {
	doc := page.NewMemory(page.MemoryOptions{})
	s := New(Options{Doc: doc, Refresh: 250 * time.Millisecond})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(rec.Body.String(), "250") {
		t.Fatalf("页面轮询间隔应为 250ms：\n%s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `data-current-time="0.000"`) || strings.Contains(rec.Body.String(), "#t=") {
		t.Fatalf("未 seek 时不应带媒体片段：\n%s", rec.Body.String())
	}
}

func TestStart_OneShot(t *testing.T) {
	s, doc, g := newTestServer(t, "")

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start", nil))
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("期望 303，实际 %d", rec.Code)
		}
	}
	if !g.Started() {
		t.Fatalf("POST /start 后应处于 started")
	}
	snap := doc.Snapshot()
	if !snap.OverlayHidden || snap.Muted || snap.Paused {
		t.Fatalf("开始后页面状态不符合预期：%+v", snap)
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Contains(rec.Body.String(), "needs-interaction") {
		t.Fatalf("开始后 body 不应再带 needs-interaction")
	}
	if !strings.Contains(rec.Body.String(), `<div id="start-overlay" hidden>`) {
		t.Fatalf("开始后 overlay 应隐藏：\n%s", rec.Body.String())
	}
}

func TestStart_NoButton(t *testing.T) {
	doc := page.NewMemory(page.MemoryOptions{Omit: []string{page.IDStartButton}})
	s := New(Options{Doc: doc})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("没有开始按钮时期望 404，实际 %d", rec.Code)
	}
}

func TestState_JSON(t *testing.T) {
	s, _, _ := newTestServer(t, "")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))

	var st State
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("响应不是合法 JSON：%v", err)
	}
	if st.Latest != "b.md" || st.Renders != 2 || st.Started {
		t.Fatalf("state 不符合预期：%+v", st)
	}
	if len(st.Page.Tracks) != 1 || st.Page.Tracks[0].Mode != page.TrackShowing {
		t.Fatalf("字幕应在 setup 时启用：%+v", st.Page.Tracks)
	}
}

func TestOutputDir_ServesAutoindex(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0001.md", "0002.md", "0002.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("写入失败：%v", err)
		}
	}
	s, _, _ := newTestServer(t, dir)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/llm_out/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", rec.Code)
	}
	files := listing.Extract(rec.Body.Bytes(), nil)
	if latest, _ := listing.Latest(files); latest != "0002.md" || len(files) != 2 {
		t.Fatalf("目录列表不符合预期：%v", files)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/llm_out/0002.json", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "x" {
		t.Fatalf("文件读取不符合预期：%d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("输出目录应禁止缓存")
	}
}

func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz 不符合预期：%d %q", rec.Code, rec.Body.String())
	}
}

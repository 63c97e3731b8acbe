package httpx

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestNewClient_ProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewClient(Options{ProxyURL: "http://127.0.0.1:8080"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	base := tr.Base.(*http.Transport)
	if base.Proxy == nil {
		t.Fatalf("期望启用代理，但 Proxy=nil")
	}
	if !base.DisableKeepAlives || !tr.DisableKeepAlives {
		t.Fatalf("期望代理模式禁用 keep-alive")
	}
}

func TestNewClient_NoProxyKeepsDefault(t *testing.T) {
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr := c.Transport.(*Transport)
	base := tr.Base.(*http.Transport)
	if base.Proxy != nil {
		t.Fatalf("不期望启用代理，但 Proxy!=nil")
	}
	if c.Timeout != defaultTimeout {
		t.Fatalf("期望默认超时 %v，实际 %v", defaultTimeout, c.Timeout)
	}
}

func TestNewClient_InvalidProxyURL(t *testing.T) {
	if _, err := NewClient(Options{ProxyURL: "http://[::1"}); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if _, err := NewClient(Options{ProxyURL: "127.0.0.1"}); err == nil {
		t.Fatalf("缺少 scheme 的代理地址应报错")
	}
}

func TestTransport_SetsNoStoreHeaders(t *testing.T) {
	got := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Clone()
	}))
	defer srv.Close()

	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("请求失败：%v", err)
	}
	resp.Body.Close()

	h := <-got
	gotCC, gotPragma, gotUA := h.Get("Cache-Control"), h.Get("Pragma"), h.Get("User-Agent")
	if gotCC != "no-store" || gotPragma != "no-cache" {
		t.Fatalf("缓存头不符合预期：Cache-Control=%q Pragma=%q", gotCC, gotPragma)
	}
	if gotUA != DefaultUserAgent {
		t.Fatalf("期望默认 UA，实际 %q", gotUA)
	}
}

type flakyRT struct {
	calls atomic.Int32
	fails int32
}

func (f *flakyRT) RoundTrip(req *http.Request) (*http.Response, error) {
	n := f.calls.Add(1)
	if n <= f.fails {
		return nil, errors.New("boom")
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
}

func TestTransport_BoundedRetry(t *testing.T) {
	base := &flakyRT{fails: 2}
	tr := &Transport{Base: base, RetryMax: 2}

	req, _ := http.NewRequest(http.MethodGet, "http://example.test/", nil)
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("第三次尝试应成功：%v", err)
	}
	resp.Body.Close()
	if base.calls.Load() != 3 {
		t.Fatalf("期望 3 次尝试，实际 %d", base.calls.Load())
	}
}

func TestTransport_NoRetryByDefault(t *testing.T) {
	base := &flakyRT{fails: 1}
	tr := &Transport{Base: base}

	req, _ := http.NewRequest(http.MethodGet, "http://example.test/", nil)
	if _, err := tr.RoundTrip(req); err == nil {
		t.Fatalf("RetryMax=0 时首次失败应直接返回错误")
	}
	if base.calls.Load() != 1 {
		t.Fatalf("期望 1 次尝试，实际 %d", base.calls.Load())
	}
}

type statusRT struct {
	calls  atomic.Int32
	codes  []int
	closed atomic.Int32
}

func (s *statusRT) RoundTrip(req *http.Request) (*http.Response, error) {
	n := int(s.calls.Add(1))
	code := s.codes[min(n, len(s.codes))-1]
	body := &closeCounter{ReadCloser: http.NoBody, n: &s.closed}
	return &http.Response{StatusCode: code, Body: body, Request: req}, nil
}

type closeCounter struct {
	io.ReadCloser
	n *atomic.Int32
}

func (c *closeCounter) Close() error {
	c.n.Add(1)
	return c.ReadCloser.Close()
}

func TestTransport_RetriesTransientStatus(t *testing.T) {
	cases := []struct {
		name      string
		codes     []int
		retryMax  int
		wantCode  int
		wantCalls int32
	}{
		{"503 后成功", []int{503, 200}, 2, 200, 2},
		{"429 后成功", []int{429, 200}, 1, 200, 2},
		{"重试耗尽返回最后响应", []int{502, 502, 502}, 2, 502, 3},
		{"404 不重试", []int{404, 200}, 2, 404, 1},
		{"默认不重试", []int{503, 200}, 0, 503, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			base := &statusRT{codes: c.codes}
			tr := &Transport{Base: base, RetryMax: c.retryMax}

			req, _ := http.NewRequest(http.MethodGet, "http://example.test/", nil)
			resp, err := tr.RoundTrip(req)
			if err != nil {
				t.Fatalf("不期望错误：%v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != c.wantCode {
				t.Fatalf("期望状态码 %d，实际 %d", c.wantCode, resp.StatusCode)
			}
			if got := base.calls.Load(); got != c.wantCalls {
				t.Fatalf("期望 %d 次尝试，实际 %d", c.wantCalls, got)
			}
			// 被丢弃的响应与最终响应的 body 都必须关闭。
			if got := base.closed.Load(); got != c.wantCalls {
				t.Fatalf("期望关闭 %d 个 body，实际 %d", c.wantCalls, got)
			}
		})
	}
}

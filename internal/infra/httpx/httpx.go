package httpx

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 5 * time.Second

	// DefaultUserAgent 在请求未显式指定 UA 时使用。
	DefaultUserAgent = "llmview/1"
)

// Transport 把“绕过缓存 + UA + 有界重试”固化为统一策略。
//
// 设计目标：listing/fetch 只负责“拉什么、怎么解析”，不关心网络策略细节。
type Transport struct {
	Base http.RoundTripper

	UserAgent string

	// RetryMax 表示最大重试次数（不含首次尝试）。默认 0：下一轮 poll 就是重试。
	RetryMax int

	// DisableKeepAlives 决定是否对 Request 设置 Close=true。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对“可重放”的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" {
			ua := t.UserAgent
			if ua == "" {
				ua = DefaultUserAgent
			}
			r.Header.Set("User-Agent", ua)
		}
		// 等价于浏览器 fetch 的 cache: "no-store"：中间缓存与服务端都不应返回旧内容。
		r.Header.Set("Cache-Control", "no-store")
		r.Header.Set("Pragma", "no-cache")
		if t.DisableKeepAlives {
			r.Close = true
		}

		resp, err := t.Base.RoundTrip(r)
		if err == nil {
			// 429/5xx 视为瞬时故障；最后一次尝试仍原样返回响应，由调用方按状态码处理。
			if attempt == max || !retryableStatus(resp.StatusCode) {
				return resp, nil
			}
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			_ = resp.Body.Close()
			continue
		}
		lastErr = err
		if req.Context().Err() != nil {
			// ctx 已取消：不再重试，直接返回最后错误（更可解释）。
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Options 描述 poll 用 HTTP client 的构造参数。
type Options struct {
	ProxyURL string
	RetryMax int
	// Timeout 是单次请求（含重试）的总超时；0 使用默认值。
	Timeout   time.Duration
	UserAgent string
}

// NewClient 构造 listing/fetch 共用的 HTTP client。
//
// 规则：
// - 每个请求都带 no-store/no-cache 头
// - proxyURL 非空：走代理，且禁用 keep-alive（每请求新连接）
// - 有界重试 + 总超时（总超时应小于 poll 间隔的若干倍，避免堆积）
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
		MaxIdleConnsPerHost:   2,
	}

	disableKeepAlives := false
	if proxyURL := strings.TrimSpace(opts.ProxyURL); proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy url 缺少 scheme 或 host")
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &http.Client{
		Transport: &Transport{
			Base:              base,
			UserAgent:         strings.TrimSpace(opts.UserAgent),
			RetryMax:          opts.RetryMax,
			DisableKeepAlives: disableKeepAlives,
		},
		Timeout: timeout,
	}, nil
}

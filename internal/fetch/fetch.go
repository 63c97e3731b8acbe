package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/John-Robertt/llmview/internal/domain"
)

// DefaultMaxBody 是单个响应体的默认上限（markdown/JSON/目录列表都很小）。
const DefaultMaxBody int64 = 8 << 20

// Fetcher 拉取单个文件（markdown 正文或 JSON 边车）。
//
// 约束：
// - 不重试、不缓存（重试由 httpx 的有界策略或下一轮 poll 承担）
// - 任何失败都以失败的 Result 返回，不 panic，也不把 error 抛给 poll 循环
type Fetcher struct {
	Client  *http.Client
	MaxBody int64
}

// Bytes 执行一次 GET 并返回完整响应体。
func (f Fetcher) Bytes(ctx context.Context, u string) domain.Result[[]byte] {
	b, err := f.get(ctx, u)
	if err != nil {
		return domain.Fail[[]byte](ReasonOf(err), err)
	}
	return domain.OK(b)
}

// Text 拉取 markdown 等纯文本文件。
func (f Fetcher) Text(ctx context.Context, u string) domain.Result[string] {
	b, err := f.get(ctx, u)
	if err != nil {
		return domain.Fail[string](ReasonOf(err), err)
	}
	return domain.OK(string(b))
}

// JSON 拉取并解析 JSON 文档；解析失败归类为 ReasonDecode。
func JSON[T any](ctx context.Context, f Fetcher, u string) domain.Result[T] {
	b, err := f.get(ctx, u)
	if err != nil {
		return domain.Fail[T](ReasonOf(err), err)
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return domain.Fail[T](domain.ReasonDecode, fmt.Errorf("解析 JSON 失败（%s）：%w", u, err))
	}
	return domain.OK(v)
}

func (f Fetcher) get(ctx context.Context, u string) ([]byte, error) {
	if f.Client == nil {
		return nil, errors.New("http client 不能为空")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 丢弃少量 body，便于连接复用。
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode}
	}

	limit := f.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, &TooLargeError{URL: u, Limit: limit}
	}
	return b, nil
}

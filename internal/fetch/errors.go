package fetch

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/John-Robertt/llmview/internal/domain"
)

// HTTPStatusError 表示服务端返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	u := strings.TrimSpace(e.URL)
	if u == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d url=%s", e.StatusCode, u)
}

// TooLargeError 表示响应体超过了 MaxBody。
type TooLargeError struct {
	URL   string
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("响应体超过 %d 字节：%s", e.Limit, e.URL)
}

// StatusReason 把 HTTP 状态码映射为 Reason：404/410 视为“明确不存在”。
func StatusReason(code int) domain.Reason {
	switch code {
	case http.StatusNotFound, http.StatusGone:
		return domain.ReasonNotFound
	default:
		return domain.ReasonStatus
	}
}

// ReasonOf 从 error 推断 Reason（用于没有 Result 的调用路径，例如 CLI）。
func ReasonOf(err error) domain.Reason {
	if err == nil {
		return domain.ReasonOK
	}
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return StatusReason(se.StatusCode)
	}
	var tl *TooLargeError
	if errors.As(err, &tl) {
		return domain.ReasonDecode
	}
	return domain.ReasonNetwork
}

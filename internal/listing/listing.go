package listing

import (
	"bytes"
	"context"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/llmview/internal/domain"
	"github.com/John-Robertt/llmview/internal/fetch"
)

// Extract 从目录列表 HTML 中提取所有以 .md 结尾（不区分大小写）的 href，
// 并按 cmp 升序排列（cmp 为 nil 时使用 Lexical）。
//
// 任何元素上的 href 都算（不只 <a>），与外层标记无关；重复项保留。
// 属性按 HTML 规则解析：单引号与无引号的 href 也算，实体会被解码
// （a&amp;b.md -> a&b.md），HTML 注释中的 href 不算。
// 输入无法解析为 HTML 时返回 nil。
func Extract(html []byte, cmp Comparator) []string {
	if cmp == nil {
		cmp = Lexical
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	files := make([]string, 0, 16)
	doc.Find("[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !isMarkdown(href) {
			return
		}
		files = append(files, href)
	})
	slices.SortStableFunc(files, cmp)
	return files
}

// Latest 返回已排序列表的最后一个元素。
func Latest(files []string) (string, bool) {
	if len(files) == 0 {
		return "", false
	}
	return files[len(files)-1], true
}

func isMarkdown(href string) bool {
	// 与 /href="([^"]+\.md)"/i 一致：至少一个字符 + .md 后缀。
	return len(href) > len(".md") && strings.EqualFold(href[len(href)-3:], ".md")
}

// Watcher 拉取输出目录的列表页并提取候选文件。
type Watcher struct {
	Fetcher fetch.Fetcher
	DirURL  string
	Order   Comparator
}

// List 执行一次绕过缓存的目录拉取。
// 失败时返回带 Reason 的 Result（调用方视为“本轮无更新”）；成功但没有候选时返回空切片。
func (w Watcher) List(ctx context.Context) domain.Result[[]string] {
	r := w.Fetcher.Bytes(ctx, w.DirURL)
	if !r.Ok() {
		return domain.Fail[[]string](r.Reason, r.Err)
	}
	return domain.OK(Extract(r.Value, w.Order))
}

package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/John-Robertt/llmview/internal/page"
)

// Renderer 把 markdown 转为 HTML 并替换到页面容器中。
type Renderer struct {
	md goldmark.Markdown
}

// New 构造 Renderer。
//
// 输出目录里的 markdown 来自本地生成流程（可信来源），因此允许内嵌原始 HTML。
func New() *Renderer {
	return &Renderer{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)}
}

// HTML 把 md 转为 HTML；md 为 nil 时返回空串。
func (r *Renderer) HTML(md *string) (string, error) {
	if md == nil || *md == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(*md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Swap 替换容器内容：先移除 visible，写入新内容，下一帧再加回 visible（配合 CSS 过渡）。
// c 为 nil 时什么也不做。
func (r *Renderer) Swap(c page.Container, md *string) error {
	if c == nil {
		return nil
	}
	out, err := r.HTML(md)
	if err != nil {
		return err
	}
	c.RemoveClass(page.ClassVisible)
	c.SetInnerHTML(out)
	c.NextFrame(func() {
		c.AddClass(page.ClassVisible)
	})
	return nil
}

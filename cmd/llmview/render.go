package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/llmview/internal/infra/fsx"
	"github.com/John-Robertt/llmview/internal/render"
)

func newRenderCommand(c *commandContext) *cobra.Command {
	var (
		out   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "render <name|url>",
		Short: "拉取并渲染单个 markdown 文件（输出 HTML 片段）",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := c.ensureConfig()
			if err != nil {
				return err
			}
			target, err := resolveTarget(eff.DirURL(), args[0])
			if err != nil {
				return &usageError{err: err}
			}
			f, err := c.fetcher()
			if err != nil {
				return err
			}

			res := f.Text(cmd.Context(), target)
			if !res.Ok() {
				return fmt.Errorf("拉取 %s 失败（%s）：%v", target, res.Reason, res.Err)
			}
			html, err := render.New().HTML(&res.Value)
			if err != nil {
				return fmt.Errorf("渲染失败：%w", err)
			}

			if out == "" {
				_, err := fmt.Fprint(c.out(), html)
				return err
			}
			if err := fsx.WriteFileAtomic(out, []byte(html), force); err != nil {
				if errors.Is(err, os.ErrExist) {
					return &usageError{err: fmt.Errorf("%s 已存在（使用 --force 覆盖）", out)}
				}
				return fmt.Errorf("写入 %s 失败：%w", out, err)
			}
			fmt.Fprintf(c.errOut(), "已写入 %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "写入文件（原子替换）而不是 stdout")
	cmd.Flags().BoolVar(&force, "force", false, "--out 目标已存在时覆盖")
	return cmd
}

// resolveTarget：绝对 http(s) URL 原样使用，否则视为输出目录下的文件名。
func resolveTarget(dirURL, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("文件名不能为空")
	}
	ref, err := url.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("无效的文件名或 URL：%q", arg)
	}
	if ref.IsAbs() {
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return "", fmt.Errorf("只支持 http/https：%q", arg)
		}
		return ref.String(), nil
	}
	base, err := url.Parse(dirURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

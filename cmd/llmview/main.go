package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/llmview/internal/config"
)

// 退出码：0 正常；1 运行失败；2 用法/配置错误。
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return execute(args, os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	c := &commandContext{}
	defer func() { _ = c.close() }()

	root := newRootCommand(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "错误：%v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// usageError 标记“参数/配置不合法”类错误。
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs 把位置参数校验失败标记为用法错误（退出码 2）。
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) || config.Code(err) != "" {
		return exitUsage
	}
	return exitFail
}

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "llmview",
		Short:         "轮询输出目录，渲染最新的 markdown 并同步视频时间码",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	f := rootCmd.PersistentFlags()
	f.StringVarP(&ctx.cli.ConfigPath, "config", "c", "", "配置文件路径（默认 ./llmview.toml，可选）")
	f.StringVar(&ctx.cli.BaseURL, "base-url", "", "输出目录所在服务的根 URL")
	f.StringVar(&ctx.cli.OutputDir, "output-dir", "", "输出目录路径（默认 /llm_out/）")
	f.IntVar(&ctx.cli.IntervalMS, "interval-ms", 0, "轮询间隔（毫秒，默认 800）")
	f.StringVar(&ctx.cli.Order, "order", "", "“最新”的排序规则：lexical|natural")
	f.StringVar(&ctx.cli.LogLevel, "log-level", "", "日志级别：debug|info|warn|error")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		fs := cmd.Flags()
		ctx.cli.BaseURLSet = fs.Changed("base-url")
		ctx.cli.OutputDirSet = fs.Changed("output-dir")
		ctx.cli.IntervalMSSet = fs.Changed("interval-ms")
		ctx.cli.OrderSet = fs.Changed("order")
		ctx.cli.LogLevelSet = fs.Changed("log-level")
		ctx.cli.ListenSet = fs.Changed("listen")
		ctx.stdout = cmd.OutOrStdout()
		ctx.stderr = cmd.ErrOrStderr()
		return nil
	}

	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newTimecodeCommand(ctx))

	return rootCmd
}

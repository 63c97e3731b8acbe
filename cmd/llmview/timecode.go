package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/llmview/internal/timecode"
)

func newTimecodeCommand(c *commandContext) *cobra.Command {
	// "-->" 会被当作 flag，因此关闭该命令的 flag 解析。
	return &cobra.Command{
		Use:                "timecode <range>",
		Short:              `解析 "HH:MM:SS.mmm --> ..." 的起点并输出秒数`,
		Args:               usageArgs(cobra.MinimumNArgs(1)),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}
			// 允许不加引号：timecode 00:01:02.5 --> 00:01:05
			in := strings.Join(args, " ")
			sec, err := timecode.Parse(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out(), "%s\t%s\n", strconv.FormatFloat(sec, 'f', -1, 64), timecode.Format(sec))
			return nil
		},
	}
}

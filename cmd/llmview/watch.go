package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/llmview/internal/domain"
)

func newWatchCommand(c *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "轮询输出目录并在内存页面中渲染最新文件",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := c.ensureConfig()
			if err != nil {
				return err
			}
			log, err := c.logger()
			if err != nil {
				return err
			}

			ui := newConsoleUI(c.out())
			s, err := c.newSession(eff, log, ui, nil)
			if err != nil {
				return err
			}

			if once {
				rep := s.poller.Cycle(cmd.Context())
				switch rep.Stage {
				case domain.StageList, domain.StageFetch, domain.StageRender:
					return fmt.Errorf("%s 失败（%s）：%s", rep.Stage, rep.Reason, rep.Error)
				case domain.StageEmpty:
					fmt.Fprintln(c.out(), "目录中没有 markdown 文件")
				}
				return nil
			}

			ui.OnStart("watch", eff)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = s.poller.Run(ctx)
			fmt.Fprintf(c.errOut(), "\n%s\n", ui.Summary())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "只执行一轮 poll（失败时退出码为 1）")
	return cmd
}

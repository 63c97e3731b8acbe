package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/llmview/internal/infra/dirwatch"
	"github.com/John-Robertt/llmview/internal/server"
)

func newServeCommand(c *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动页面宿主（可选：同时托管本地输出目录）并持续轮询",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := c.ensureConfig()
			if err != nil {
				return err
			}
			// 托管本地目录且未显式给 --base-url 时，poll 的就是自己。
			if dir != "" && !c.cli.BaseURLSet {
				eff.BaseURL = selfURL(eff.Listen)
				c.eff = &eff
			}
			log, err := c.logger()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var absDir string
			var kick <-chan struct{}
			if dir != "" {
				absDir, err = filepath.Abs(dir)
				if err != nil {
					return err
				}
				if fi, err := os.Stat(absDir); err != nil || !fi.IsDir() {
					return &usageError{err: fmt.Errorf("--dir 不是目录：%q", dir)}
				}
				kick, err = dirwatch.Watch(ctx, absDir, log)
				if err != nil {
					// 监听失败不致命：退化为纯轮询。
					log.Warn("无法监听输出目录，仅使用轮询", "dir", absDir, "error", err)
					kick = nil
				}
			}

			ui := newConsoleUI(c.out())
			s, err := c.newSession(eff, log, ui, kick)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr: eff.Listen,
				Handler: server.New(server.Options{
					Doc:        s.doc,
					Started:    s.gate.Started,
					Status:     s.poller,
					OutputPath: eff.OutputDir,
					OutputDir:  absDir,
					Refresh:    eff.Interval,
					Log:        log,
				}),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ui.OnStart("serve", eff)
			fmt.Fprintf(c.out(), "page: http://%s/\n\n", eff.Listen)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			pollDone := make(chan error, 1)
			go func() { pollDone <- s.poller.Run(ctx) }()

			select {
			case <-ctx.Done():
			case err, ok := <-errCh:
				if ok {
					stop()
					<-pollDone
					return fmt.Errorf("监听 %s 失败：%w", eff.Listen, err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			<-pollDone
			fmt.Fprintf(c.errOut(), "\n%s\n", ui.Summary())
			return nil
		},
	}
	cmd.Flags().StringVar(&c.cli.Listen, "listen", "", "页面宿主监听地址（默认 127.0.0.1:8080）")
	cmd.Flags().StringVar(&dir, "dir", "", "本地输出目录；给出时在 output_dir 路径下托管并监听变化")
	return cmd
}

// selfURL 把监听地址转成可访问的 base URL（":8080" -> http://127.0.0.1:8080）。
func selfURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

package logx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 描述 logger 的构造参数。
type Options struct {
	// Level：debug|info|warn|error，空串 = info。
	Level string
	// Format：auto|text|json，空串 = auto（stderr 是终端用 text，否则 json）。
	Format string
	// File 非空时额外写入滚动日志文件。
	File string

	// Stderr 仅用于测试注入；nil 时使用 os.Stderr。
	Stderr io.Writer
}

// New 构造 slog logger；返回的 io.Closer 用于关闭日志文件（无文件时为 nop）。
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	tty := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	if opts.Stderr != nil {
		w = opts.Stderr
		tty = false
	}

	var closer io.Closer = nopCloser{}
	if file := strings.TrimSpace(opts.File); file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
		}
		w = io.MultiWriter(w, lj)
		closer = lj
		// 落盘的日志应机器可读。
		tty = false
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "auto":
		if tty {
			h = slog.NewTextHandler(w, handlerOpts)
		} else {
			h = slog.NewJSONHandler(w, handlerOpts)
		}
	case "text":
		h = slog.NewTextHandler(w, handlerOpts)
	case "json":
		h = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, nil, fmt.Errorf("log.format 只能是 auto、text 或 json，实际是 %q", opts.Format)
	}
	return slog.New(h), closer, nil
}

// ParseLevel 解析日志级别。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level 只能是 debug、info、warn 或 error，实际是 %q", s)
	}
}

// IsTerminal 报告 f 是否连接到交互终端。
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

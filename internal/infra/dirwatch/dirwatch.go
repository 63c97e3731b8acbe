package dirwatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch 监听本地输出目录：出现 .md/.json 的创建、写入或重命名时发出一次“kick”。
//
// 返回的 channel 容量为 1，连续事件会被合并；ctx 取消后 channel 关闭。
// 这只是让 poller 提前跑一轮，poll 本身仍是唯一的数据来源。
func Watch(ctx context.Context, dir string, log *slog.Logger) (<-chan struct{}, error) {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	kick := make(chan struct{}, 1)
	go func() {
		defer close(kick)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !Relevant(ev) {
					continue
				}
				select {
				case kick <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("目录监听出错", "dir", dir, "error", err)
			}
		}
	}()
	return kick, nil
}

// Relevant 判断事件是否可能改变“最新文件”或其边车。
func Relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".md", ".json":
		return true
	default:
		return false
	}
}

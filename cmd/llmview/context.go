package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/John-Robertt/llmview/internal/config"
	"github.com/John-Robertt/llmview/internal/fetch"
	"github.com/John-Robertt/llmview/internal/infra/httpx"
	"github.com/John-Robertt/llmview/internal/infra/logx"
	"github.com/John-Robertt/llmview/internal/listing"
)

// commandContext 在子命令之间共享：flag 值、懒加载的生效配置与 logger。
type commandContext struct {
	cli config.CLIArgs

	stdout io.Writer
	stderr io.Writer

	eff       *config.EffectiveConfig
	log       *slog.Logger
	logCloser io.Closer
}

// ensureConfig 读取配置文件并与 flag 合并（每个进程只做一次）。
func (c *commandContext) ensureConfig() (config.EffectiveConfig, error) {
	if c.eff != nil {
		return *c.eff, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, err
	}
	eff, err := config.LoadEffective(cwd, c.cli)
	if err != nil {
		return config.EffectiveConfig{}, err
	}
	c.eff = &eff
	return eff, nil
}

func (c *commandContext) logger() (*slog.Logger, error) {
	if c.log != nil {
		return c.log, nil
	}
	eff, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := logx.Options{Level: eff.Log.Level, Format: eff.Log.Format, File: eff.Log.File}
	if c.stderr != nil && c.stderr != os.Stderr {
		opts.Stderr = c.stderr
	}
	log, closer, err := logx.New(opts)
	if err != nil {
		return nil, &usageError{err: err}
	}
	c.log = log
	c.logCloser = closer
	return log, nil
}

func (c *commandContext) fetcher() (fetch.Fetcher, error) {
	eff, err := c.ensureConfig()
	if err != nil {
		return fetch.Fetcher{}, err
	}
	client, err := httpx.NewClient(httpx.Options{ProxyURL: eff.ProxyURL, RetryMax: eff.RetryMax})
	if err != nil {
		return fetch.Fetcher{}, err
	}
	return fetch.Fetcher{Client: client}, nil
}

func (c *commandContext) comparator() (listing.Comparator, error) {
	eff, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return listing.ComparatorByName(eff.Order)
}

func (c *commandContext) out() io.Writer {
	if c.stdout != nil {
		return c.stdout
	}
	return os.Stdout
}

func (c *commandContext) errOut() io.Writer {
	if c.stderr != nil {
		return c.stderr
	}
	return os.Stderr
}

func (c *commandContext) close() error {
	if c.logCloser == nil {
		return nil
	}
	err := c.logCloser.Close()
	c.logCloser = nil
	return err
}

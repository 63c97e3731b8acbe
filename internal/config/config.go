package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/John-Robertt/llmview/internal/infra/logx"
	"github.com/John-Robertt/llmview/internal/listing"
)

const (
	// ErrCodeNotFound 表示显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

// FileName 是默认在 cwd 下查找的配置文件名。
const FileName = "llmview.toml"

const (
	DefaultBaseURL   = "http://127.0.0.1:8080"
	DefaultOutputDir = "/llm_out/"
	DefaultListen    = "127.0.0.1:8080"

	DefaultPollIntervalMS = 800
	minPollIntervalMS     = 100
	maxPollIntervalMS     = 60_000
	maxRetry              = 5
)

// CLIArgs 是 CLI 可覆盖的字段；*Set 记录“是否显式指定”，保证 flag 能覆盖文件中的值。
type CLIArgs struct {
	ConfigPath string

	BaseURL    string
	BaseURLSet bool

	OutputDir    string
	OutputDirSet bool

	IntervalMS    int
	IntervalMSSet bool

	Order    string
	OrderSet bool

	Listen    string
	ListenSet bool

	LogLevel    string
	LogLevelSet bool
}

// FileConfig 对应 llmview.toml 的解析结构。
type FileConfig struct {
	BaseURL        string       `toml:"base_url"`
	OutputDir      string       `toml:"output_dir"`
	PollIntervalMS int          `toml:"poll_interval_ms"`
	Order          string       `toml:"order"`
	RetryMax       int          `toml:"retry_max"`
	Listen         string       `toml:"listen"`
	VideoSrc       string       `toml:"video_src"`
	CaptionsSrc    string       `toml:"captions_src"`
	CaptionsLang   string       `toml:"captions_lang"`
	Proxy          *ProxyConfig `toml:"proxy"`
	Log            LogConfig    `toml:"log"`
}

type ProxyConfig struct {
	URL string `toml:"url"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// EffectiveConfig 是合并并规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// ConfigPath 为空表示没有读取任何配置文件。
	ConfigPath string

	BaseURL   string
	OutputDir string
	Interval  time.Duration
	Order     string
	RetryMax  int
	ProxyURL  string
	Listen    string

	VideoSrc     string
	CaptionsSrc  string
	CaptionsLang string

	Log LogConfig
}

// DirURL 返回输出目录的绝对 URL（总以 / 结尾）。
func (e EffectiveConfig) DirURL() string {
	return strings.TrimRight(e.BaseURL, "/") + e.OutputDir
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则：
// 1) CLI 给了 --config：该文件必须存在
// 2) 否则尝试 <cwd>/llmview.toml（可选）
//
// 覆盖优先级：CLI > 配置文件 > 内置默认值。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	var (
		cfgPath  string
		required bool
	)
	if p := strings.TrimSpace(cli.ConfigPath); p != "" {
		cfgPath = p
		if !filepath.IsAbs(cfgPath) {
			cfgPath = filepath.Join(cwd, cfgPath)
		}
		required = true
	} else {
		cfgPath = filepath.Join(cwd, FileName)
	}
	cfgPath = filepath.Clean(cfgPath)

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		if required {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
		cfgPath = ""
	}
	return merge(cli, fc, cfgPath)
}

func merge(cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	baseURL := pick(cli.BaseURLSet, cli.BaseURL, fc.BaseURL, DefaultBaseURL)
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid(fmt.Errorf("base_url 无效：%q", baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid(fmt.Errorf("base_url 必须是 http/https：%q", baseURL))
	}

	outputDir := normalizeDir(pick(cli.OutputDirSet, cli.OutputDir, fc.OutputDir, DefaultOutputDir))

	intervalMS := fc.PollIntervalMS
	if cli.IntervalMSSet {
		intervalMS = cli.IntervalMS
	}
	if intervalMS == 0 {
		intervalMS = DefaultPollIntervalMS
	}
	// 过小会压垮服务端，过大则失去“实时”意义；超出截断。
	intervalMS = min(max(intervalMS, minPollIntervalMS), maxPollIntervalMS)

	order := pick(cli.OrderSet, cli.Order, fc.Order, "lexical")
	if _, err := listing.ComparatorByName(order); err != nil {
		return invalid(err)
	}

	retryMax := min(max(fc.RetryMax, 0), maxRetry)

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if p, err := url.Parse(proxyURL); err != nil || p.Scheme == "" || p.Host == "" {
			return invalid(fmt.Errorf("proxy.url 无效：%q", proxyURL))
		}
	}

	logCfg := fc.Log
	if cli.LogLevelSet {
		logCfg.Level = cli.LogLevel
	}
	if _, err := logx.ParseLevel(logCfg.Level); err != nil {
		return invalid(err)
	}

	return EffectiveConfig{
		ConfigPath:   cfgPath,
		BaseURL:      strings.TrimRight(baseURL, "/"),
		OutputDir:    outputDir,
		Interval:     time.Duration(intervalMS) * time.Millisecond,
		Order:        strings.ToLower(strings.TrimSpace(order)),
		RetryMax:     retryMax,
		ProxyURL:     proxyURL,
		Listen:       pick(cli.ListenSet, cli.Listen, fc.Listen, DefaultListen),
		VideoSrc:     strings.TrimSpace(fc.VideoSrc),
		CaptionsSrc:  strings.TrimSpace(fc.CaptionsSrc),
		CaptionsLang: strings.TrimSpace(fc.CaptionsLang),
		Log:          logCfg,
	}, nil
}

// pick 按 CLI > 文件 > 默认 取第一个非空值。
func pick(cliSet bool, cliVal, fileVal, def string) string {
	if cliSet && strings.TrimSpace(cliVal) != "" {
		return strings.TrimSpace(cliVal)
	}
	if strings.TrimSpace(fileVal) != "" {
		return strings.TrimSpace(fileVal)
	}
	return def
}

// normalizeDir 保证路径以 / 开头并以 / 结尾："llm_out" -> "/llm_out/"。
func normalizeDir(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

// readFileConfig 读取并解析 TOML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}

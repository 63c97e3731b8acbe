package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEffective_DefaultsWithoutFile(t *testing.T) {
	cwd := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.ConfigPath != "" {
		t.Fatalf("没有配置文件时 ConfigPath 应为空，实际 %q", eff.ConfigPath)
	}
	if eff.DirURL() != "http://127.0.0.1:8080/llm_out/" {
		t.Fatalf("默认输出目录 URL 不符合预期：%q", eff.DirURL())
	}
	if eff.Interval != 800*time.Millisecond {
		t.Fatalf("默认间隔应为 800ms，实际 %v", eff.Interval)
	}
	if eff.Order != "lexical" || eff.RetryMax != 0 || eff.Listen != DefaultListen {
		t.Fatalf("默认值不符合预期：%+v", eff)
	}
}

func TestLoadEffective_ExplicitConfigNotFound(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{ConfigPath: "missing.toml"})
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeNotFound, err, Code(err))
	}
}

func TestLoadEffective_FileValues(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`
base_url = "https://render.example:9000/"
output_dir = "out"
poll_interval_ms = 1500
order = "natural"
retry_max = 9
video_src = "/media/talk.mp4"
captions_src = "/media/talk.vtt"

[proxy]
url = "http://127.0.0.1:3128"

[log]
level = "debug"
format = "json"
`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.DirURL() != "https://render.example:9000/out/" {
		t.Fatalf("DirURL 不符合预期：%q", eff.DirURL())
	}
	if eff.Interval != 1500*time.Millisecond || eff.Order != "natural" {
		t.Fatalf("interval/order 不符合预期：%v %q", eff.Interval, eff.Order)
	}
	if eff.RetryMax != maxRetry {
		t.Fatalf("retry_max 应截断为 %d，实际 %d", maxRetry, eff.RetryMax)
	}
	if eff.ProxyURL != "http://127.0.0.1:3128" || eff.VideoSrc != "/media/talk.mp4" {
		t.Fatalf("proxy/video 不符合预期：%+v", eff)
	}
	if eff.Log.Level != "debug" || eff.Log.Format != "json" {
		t.Fatalf("log 配置不符合预期：%+v", eff.Log)
	}
	if eff.ConfigPath != filepath.Join(cwd, FileName) {
		t.Fatalf("ConfigPath 不符合预期：%q", eff.ConfigPath)
	}
}

func TestLoadEffective_CLIOverridesFile(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`
poll_interval_ms = 1500
order = "natural"
output_dir = "/a/"
`))

	eff, err := LoadEffective(cwd, CLIArgs{
		IntervalMS:    50,
		IntervalMSSet: true,
		Order:         "lexical",
		OrderSet:      true,
		OutputDir:     "/b",
		OutputDirSet:  true,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Interval != 100*time.Millisecond {
		t.Fatalf("过小的间隔应截断为 100ms，实际 %v", eff.Interval)
	}
	if eff.Order != "lexical" || eff.OutputDir != "/b/" {
		t.Fatalf("CLI 覆盖不符合预期：%+v", eff)
	}
}

func TestLoadEffective_Invalid(t *testing.T) {
	cases := map[string]string{
		"toml":     `base_url = `,
		"scheme":   `base_url = "ftp://x"`,
		"relative": `base_url = "/only/path"`,
		"order":    `order = "mtime"`,
		"proxy":    "[proxy]\nurl = \"nohost\"",
		"level":    "[log]\nlevel = \"loud\"",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cwd := t.TempDir()
			writeFile(t, filepath.Join(cwd, FileName), []byte(body))

			_, err := LoadEffective(cwd, CLIArgs{})
			if Code(err) != ErrCodeInvalid {
				t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
			}
		})
	}
}

func TestNormalizeDir(t *testing.T) {
	cases := map[string]string{
		"":           "/",
		"/":          "/",
		"llm_out":    "/llm_out/",
		"/llm_out":   "/llm_out/",
		" a/b/ ":     "/a/b/",
		"//llm_out/": "/llm_out/",
	}
	for in, want := range cases {
		if got := normalizeDir(in); got != want {
			t.Fatalf("normalizeDir(%q)=%q，期望 %q", in, got, want)
		}
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}

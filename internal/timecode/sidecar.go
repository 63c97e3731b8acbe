package timecode

import (
	"log/slog"
	"math"
	"strings"

	"github.com/John-Robertt/llmview/internal/page"
)

// Sidecar 是与 markdown 同名的 .json 元数据（与字幕切分产出的 cue 结构一致）。
type Sidecar struct {
	Timecode string `json:"timecode"`
	Text     string `json:"text,omitempty"`
}

// SidecarName 把 x.md 映射为 x.json；非 .md 结尾时直接追加 .json。
func SidecarName(md string) string {
	if n := len(md); n >= 3 && strings.EqualFold(md[n-3:], ".md") {
		return md[:n-3] + ".json"
	}
	return md + ".json"
}

// Seek 把视频定位到 sc.Timecode 的起点。
//
// 时间码不可解析、不是有限非负数、或 seek 本身失败（例如媒体尚未加载）时只记日志，
// 返回 ok=false；不会把错误抛给调用方。
func Seek(v page.Video, sc Sidecar, log *slog.Logger) (float64, bool) {
	if log == nil {
		log = slog.Default()
	}
	if v == nil {
		return 0, false
	}
	sec, err := Parse(sc.Timecode)
	if err != nil {
		log.Debug("时间码不可解析，跳过 seek", "timecode", sc.Timecode, "error", err)
		return 0, false
	}
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		log.Debug("时间码不是有限数，跳过 seek", "seconds", sec)
		return 0, false
	}
	if err := v.SetCurrentTime(sec); err != nil {
		log.Warn("视频 seek 失败", "seconds", sec, "error", err)
		return 0, false
	}
	return sec, true
}

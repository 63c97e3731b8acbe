package timecode

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Separator 分隔时间码区间的起止两端（WebVTT/SRT 风格）。
const Separator = "-->"

// ErrUnparseable 表示输入不是可识别的时间码；这是“跳过 seek”的信号，不是故障。
var ErrUnparseable = errors.New("timecode: unparseable")

var startRE = regexp.MustCompile(`^(\d+):(\d+):(\d+)(?:\.(\d+))?$`)

// Parse 解析 "HH:MM:SS[.fff] --> ..." 的起点并返回秒数。
//
// 只使用分隔符之前的部分；小数部分右补零到 3 位后按毫秒计（"5" = 500ms），
// 超过 3 位的部分截断。
func Parse(s string) (float64, error) {
	start, _, _ := strings.Cut(s, Separator)
	start = strings.TrimSpace(start)
	if start == "" {
		return 0, ErrUnparseable
	}

	m := startRE.FindStringSubmatch(start)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, start)
	}

	h, err1 := strconv.ParseFloat(m[1], 64)
	min, err2 := strconv.ParseFloat(m[2], 64)
	sec, err3 := strconv.ParseFloat(m[3], 64)
	if err := errors.Join(err1, err2, err3); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	var ms float64
	if frac := m[4]; frac != "" {
		frac = (frac + "000")[:3]
		v, err := strconv.ParseFloat(frac, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnparseable, err)
		}
		ms = v
	}

	total := h*3600 + min*60 + sec + ms/1000
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, ErrUnparseable
	}
	return total, nil
}

// Format 把秒数格式化为 HH:MM:SS.mmm（负数与非有限数按 0 处理）。
func Format(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	totalMS := int64(math.Round(seconds * 1000))
	h := totalMS / 3_600_000
	m := totalMS / 60_000 % 60
	s := totalMS / 1000 % 60
	ms := totalMS % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

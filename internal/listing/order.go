package listing

import (
	"fmt"
	"strings"
)

// Comparator 定义文件名上的全序；“最新” = 排序后的最后一个。
//
// 默认假设文件名内嵌可排序的时间戳前缀，因此字典序近似时间序。
// 这是约定而非校验：命名方案变化时应换用合适的 Comparator。
type Comparator func(a, b string) int

// Lexical 按字节比较（与浏览器端 Array.prototype.sort 的默认行为一致）。
func Lexical(a, b string) int { return strings.Compare(a, b) }

// Natural 把连续数字按数值比较：out_9.md < out_10.md。
// 数值相等但前导零不同（07 vs 7）时，回退为字节比较以保证全序。
func Natural(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			si := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			sj := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na := strings.TrimLeft(a[si:i], "0")
			nb := strings.TrimLeft(b[sj:j], "0")
			if len(na) != len(nb) {
				if len(na) < len(nb) {
					return -1
				}
				return 1
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ComparatorByName 把配置中的 order 字段映射为 Comparator（空串 = lexical）。
func ComparatorByName(name string) (Comparator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lexical":
		return Lexical, nil
	case "natural":
		return Natural, nil
	default:
		return nil, fmt.Errorf("order 只能是 lexical 或 natural，实际是 %q", name)
	}
}

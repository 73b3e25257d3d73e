package node

import (
	"strings"
	"unicode/utf8"
)

func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// NonEmptyLines 去除空白后丢弃空串
func NonEmptyLines(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitTraits 按逗号切分风格特征，为空时使用 fallback
func SplitTraits(s string, fallback string) []string {
	parts := NonEmptyLines(strings.Split(s, ","))
	if len(parts) == 0 && fallback != "" {
		return []string{fallback}
	}
	return parts
}

// FirstNonEmpty 返回第一个去空白后非空的值
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

package node

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "fairybook-api/pkg/errors"
)

// Extraction 模型输出的结构化解析结果：Parsed[T] 或 Unparseable
type Extraction[T any] interface {
	extraction()
}

// Parsed 解析成功
type Parsed[T any] struct {
	Value T
}

// Unparseable 无法解析，保留原始文本
type Unparseable struct {
	Raw string
	Err error
}

func (Parsed[T]) extraction()  {}
func (Unparseable) extraction() {}

// ExtractJSON 从模型输出中解析 JSON 对象。
// 先去掉代码围栏并直接解码；allowFallback 时再截取第一个配平的 {...} 子串解码。
func ExtractJSON[T any](text string, allowFallback bool) Extraction[T] {
	cleaned := StripCodeFence(text)

	var direct T
	err := json.Unmarshal([]byte(cleaned), &direct)
	if err == nil {
		return Parsed[T]{Value: direct}
	}
	if !allowFallback {
		return Unparseable{Raw: text, Err: err}
	}

	candidate, ok := FirstBalancedObject(cleaned)
	if !ok {
		return Unparseable{Raw: text, Err: err}
	}
	var fallback T
	if ferr := json.Unmarshal([]byte(candidate), &fallback); ferr != nil {
		return Unparseable{Raw: text, Err: ferr}
	}
	return Parsed[T]{Value: fallback}
}

// DecodeJSON ExtractJSON 的便捷形式，无法解析时返回结构化输出错误
func DecodeJSON[T any](text string, allowFallback bool) (T, error) {
	switch r := ExtractJSON[T](text, allowFallback).(type) {
	case Parsed[T]:
		return r.Value, nil
	case Unparseable:
		var zero T
		return zero, apperrors.Wrap(r.Err, apperrors.CodeStructuredOutput, "failed to parse JSON from model response").
			WithDetail(TruncateByRunes(r.Raw, 200))
	default:
		var zero T
		return zero, fmt.Errorf("unexpected extraction %T", r)
	}
}

// StripCodeFence 去掉首尾的 ``` 围栏及其语言标记行
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// FirstBalancedObject 返回第一个花括号配平的 {...} 子串，忽略 JSON 字符串内的括号
func FirstBalancedObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

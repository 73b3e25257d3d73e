package entity

import (
	"encoding/json"
	"fmt"
)

// LooseStrings 接受任意 JSON 数组并逐项转为字符串，非数组视为空
type LooseStrings []string

// UnmarshalJSON 实现宽松解析
func (l *LooseStrings) UnmarshalJSON(b []byte) error {
	var items []any
	if err := json.Unmarshal(b, &items); err != nil {
		*l = nil
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case nil:
			out = append(out, "")
		case string:
			out = append(out, v)
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	*l = out
	return nil
}

// Package repository 定义数据访问层接口
package repository

import "errors"

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// DefaultListLimit 列表查询默认条数
const DefaultListLimit = 50

// NormalizeLimit 非正数取默认值，并限制上限
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > 200 {
		return 200
	}
	return limit
}
